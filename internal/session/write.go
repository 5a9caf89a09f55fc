package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
)

// CreateTable creates table with one text column per name unless it exists.
func (s *Session) CreateTable(ctx context.Context, table string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("session: create table %s: no columns", table)
	}
	tx, err := s.Tx()
	if err != nil {
		return err
	}

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = s.dialect.quoteColumn(c) + " " + s.dialect.textType
	}
	stmt := s.dialect.createTable(s.dialect.quote(table), strings.Join(defs, ", "))

	ctxlog.FromContext(ctx).Debug("Creating table.", "table", table, "sql", stmt)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("session: create table %s: %w", table, err)
	}
	return nil
}

// InsertBatches inserts rows into table inside the active transaction using
// multi-row INSERT statements of at most batchSize rows, fewer when the
// driver's bind parameter limit requires it. It returns the number of rows
// inserted.
func (s *Session) InsertBatches(ctx context.Context, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("session: batch size must be positive, got %d", batchSize)
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("session: insert into %s: no columns", table)
	}
	tx, err := s.Tx()
	if err != nil {
		return 0, err
	}
	logger := ctxlog.FromContext(ctx)

	quotedCols := make([]string, len(columns))
	for i, c := range columns {
		quotedCols[i] = s.dialect.quoteColumn(c)
	}
	perStmt, err := s.rowsPerStatement(batchSize, len(columns))
	if err != nil {
		return 0, fmt.Errorf("session: insert into %s: %w", table, err)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", s.dialect.quote(table), strings.Join(quotedCols, ", "))

	var inserted int64
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		batch := rows[start:end]

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, len(batch)*len(columns))
		for r, row := range batch {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("session: row %d has %d values, want %d", start+r, len(row), len(columns))
			}
			if r > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('(')
			for c, v := range row {
				if c > 0 {
					b.WriteString(", ")
				}
				b.WriteString(s.dialect.placeholder(len(args) + 1))
				args = append(args, v)
			}
			b.WriteByte(')')
		}

		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return inserted, fmt.Errorf("session: insert into %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = int64(len(batch))
		}
		inserted += n
		logger.Debug("Inserted batch.", "table", table, "rows", n, "total", inserted)
	}
	return inserted, nil
}

// rowsPerStatement caps batchSize so one statement stays within the
// dialect's bind parameter limit.
func (s *Session) rowsPerStatement(batchSize, columns int) (int, error) {
	limit := s.dialect.maxParams / columns
	if limit == 0 {
		return 0, fmt.Errorf("%d columns exceed the %s limit of %d parameters per statement", columns, s.dialect.name, s.dialect.maxParams)
	}
	return min(batchSize, limit), nil
}
