package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/shopfront/internal/auth/domain"
	"github.com/aussiebroadwan/shopfront/internal/auth/store"
	"github.com/aussiebroadwan/shopfront/internal/auth/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

// Option tweaks a Store at construction.
type Option func(*settings)

type settings struct {
	now     func() time.Time
	codeTTL time.Duration
}

// WithClock replaces time.Now. Tests use it to expire codes without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithCodeTTL overrides store.OneTimeCodeTTL.
func WithCodeTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.codeTTL = d
		}
	}
}

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
	cfg *settings
}

// DSN builds a modernc.org/sqlite connection string for a database file with
// WAL, foreign keys and a busy timeout switched on.
func DSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
}

func NewStore(dsn string, opts ...Option) (*Store, error) {
	cfg := &settings{now: time.Now, codeTTL: store.OneTimeCodeTTL}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer, and every pooled connection to
	// :memory: would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
		cfg: cfg,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.cfg), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{q: s.q, cfg: s.cfg} }
func (s *Store) OneTimeCodes() store.OneTimeCodes {
	return &oneTimeCodesRepo{q: s.q, cfg: s.cfg}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns a UNIQUE violation into store.ErrAlreadyExists. The
// driver only exposes it through the message text.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	}
	return err
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Verified:     row.Verified,
		Role:         domain.Role(row.Role),
		CreatedAt:    fromMillis(row.CreatedAt),
		UpdatedAt:    fromMillis(row.UpdatedAt),
	}
}

func mapOneTimeCode(row gen.OneTimeCode) domain.OneTimeCode {
	return domain.OneTimeCode{
		ID:        row.ID,
		Email:     row.Email,
		CodeHash:  row.CodeHash,
		Purpose:   domain.CodePurpose(row.Purpose),
		CreatedAt: fromMillis(row.CreatedAt),
		ExpiresAt: fromMillis(row.ExpiresAt),
	}
}
