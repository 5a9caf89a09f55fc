// Package session provides the database-backed transactional resource that
// sinks write through.
//
// A Session wraps a *sql.DB and opens one transaction per pipeline run:
// Acquire begins it, Rollback discards it, and Release commits whatever is
// still open. Release after Rollback is a no-op, so the executor's
// rollback-then-release sequence leaves nothing committed.
//
// Supported drivers: sqlite (modernc.org/sqlite), pgx (jackc/pgx stdlib),
// mysql (go-sql-driver/mysql) and sqlserver (microsoft/go-mssqldb).
package session
