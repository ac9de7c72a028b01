package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/internal/domain"
	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constrói o runner com o pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia uma transação, executa fn com repositórios presos à tx e faz Commit ou Rollback.
// Erros de fn voltam intactos; falhas de begin/commit viram domain.StorageError.
func (r *TxRunner) Run(ctx context.Context, fn func(
	units repository.StockUnitRepository,
	movements repository.MovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockUnitRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	return nil
}
