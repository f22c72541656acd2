package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/application/tank"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and tank.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ tank.TxRunner = (*TxRunner)(nil)

const maxTxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool      *pgxpool.Pool
	sequences repository.SequenceRepository
}

// NewTxRunner construye el runner con el pool. sequences es opcional (nil = tabla reference_sequences).
func NewTxRunner(pool *pgxpool.Pool, sequences repository.SequenceRepository) *TxRunner {
	return &TxRunner{pool: pool, sequences: sequences}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un deadlock entre buckets se reintenta completo hasta maxTxAttempts veces.
func (r *TxRunner) Run(ctx context.Context, fn func(store repository.Store) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(store repository.Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	store := NewStore(tx)
	if r.sequences != nil {
		store = store.WithSequences(r.sequences)
	}
	if err := fn(store); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
