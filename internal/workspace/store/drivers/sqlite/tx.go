package sqlite

import (
	"context"
	"database/sql"

	"github.com/lettrehq/lettre/internal/workspace/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rollbacks; outer DB stays open

// Ping is a no-op inside a transaction; the connection already exists.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Senders() store.Senders               { return &sendersRepo{db: t.tx} }
func (t *txStore) Members() store.Members               { return &membersRepo{db: t.tx} }
func (t *txStore) Invitations() store.Invitations       { return &invitationsRepo{db: t.tx} }
func (t *txStore) RecoveryTokens() store.RecoveryTokens { return &recoveryTokensRepo{db: t.tx} }
