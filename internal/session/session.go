package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
)

var _ pipeline.Transactional = (*Session)(nil)

// ErrNoTransaction is returned by operations that need an acquired session.
var ErrNoTransaction = errors.New("session: no active transaction")

// Session is a pipeline.Transactional backed by database/sql. It is owned by
// one run at a time.
type Session struct {
	db      *sql.DB
	dialect dialect

	mu sync.Mutex
	tx *sql.Tx
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Session, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("session: DSN must not be empty")
	}
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if err := d.checkDSN(dsn); err != nil {
		return nil, fmt.Errorf("session: invalid %s DSN: %w", d.name, err)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open: %w", err)
	}
	if d.name == "sqlite" {
		// In-memory databases exist per connection.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: ping: %w", err)
	}

	ctxlog.FromContext(ctx).Debug("Database session opened.", "driver", d.name)
	return &Session{db: db, dialect: d}, nil
}

// Driver returns the canonical driver name.
func (s *Session) Driver() string { return s.dialect.name }

// DB exposes the connection pool.
func (s *Session) DB() *sql.DB { return s.db }

// Acquire begins the run's transaction.
func (s *Session) Acquire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return errors.New("session: already acquired")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin tx: %w", err)
	}
	s.tx = tx
	ctxlog.FromContext(ctx).Debug("Transaction started.", "driver", s.dialect.name)
	return nil
}

// Rollback discards the open transaction. Without one it does nothing.
func (s *Session) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("session: rollback: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Transaction rolled back.")
	return nil
}

// Release commits the transaction if it is still open.
func (s *Session) Release(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("session: commit: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Transaction committed.")
	return nil
}

// Close rolls back any open transaction and closes the pool.
func (s *Session) Close() error {
	s.mu.Lock()
	tx := s.tx
	s.tx = nil
	s.mu.Unlock()
	if tx != nil {
		_ = tx.Rollback()
	}
	return s.db.Close()
}

// Tx returns the active transaction.
func (s *Session) Tx() (*sql.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx == nil {
		return nil, ErrNoTransaction
	}
	return s.tx, nil
}

// FromContext returns the Session scoped to ec.
func FromContext(ec *pipeline.ExecutionContext) (*Session, error) {
	res, err := ec.Resource()
	if err != nil {
		return nil, err
	}
	s, ok := res.(*Session)
	if !ok {
		return nil, &pipeline.ResourceError{Op: fmt.Sprintf("unavailable: resource is %T, not a database session", res)}
	}
	return s, nil
}
