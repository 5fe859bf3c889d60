package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventmanager/internal/domain"
)

type txManager struct {
	DB *sql.DB
}

// NewTxManager returns a domain.Transactor backed by db.
// A nested WithinTransaction joins the outer transaction.
func NewTxManager(db *sql.DB) domain.Transactor {
	return &txManager{DB: db}
}

// WithinTransaction runs fn in a READ COMMITTED transaction. It commits when fn
// returns nil and rolls back on error or panic.
func (m *txManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (cause: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
