package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/shopfront/internal/auth/store"
	"github.com/aussiebroadwan/shopfront/internal/auth/store/drivers/sqlite/gen"
)

type txStore struct {
	tx  *sql.Tx
	q   *gen.Queries
	cfg *settings
}

func newTx(tx *sql.Tx, cfg *settings) *txStore {
	return &txStore{
		tx:  tx,
		q:   gen.New(tx),
		cfg: cfg,
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users { return &usersRepo{q: t.q, cfg: t.cfg} }
func (t *txStore) OneTimeCodes() store.OneTimeCodes {
	return &oneTimeCodesRepo{q: t.q, cfg: t.cfg}
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
