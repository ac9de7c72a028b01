package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo livro de movimentações sobre PostgreSQL (usável com pool ou tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append registra uma movimentação e preenche movement.ID.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimentacoes (materias_primas_id, tipo, quantidade, ordem_producao, observacoes, data_movimentacao)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.StockUnitID, m.Type, m.Quantity, nullIfEmpty(m.ProductionOrder), nullIfEmpty(m.Notes), m.Date,
	).Scan(&m.ID)
	if err != nil {
		return storageErr("append movement", err)
	}
	return nil
}

// ListByStockUnit devolve as movimentações da bobina, mais recentes primeiro.
func (r *MovementRepo) ListByStockUnit(ctx context.Context, stockUnitID int64) ([]*entity.Movement, error) {
	query := `
		SELECT id, materias_primas_id, tipo, quantidade, COALESCE(ordem_producao, ''),
			COALESCE(observacoes, ''), data_movimentacao
		FROM movimentacoes
		WHERE materias_primas_id = $1
		ORDER BY data_movimentacao DESC, id DESC`
	rows, err := r.q.Query(ctx, query, stockUnitID)
	if err != nil {
		return nil, storageErr("list movements", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Movement, error) {
		var m entity.Movement
		err := row.Scan(&m.ID, &m.StockUnitID, &m.Type, &m.Quantity, &m.ProductionOrder, &m.Notes, &m.Date)
		return &m, err
	})
	if err != nil {
		return nil, storageErr("list movements", err)
	}
	return list, nil
}

// DeleteByStockUnit remove as movimentações da bobina; só é chamada pela exclusão em cascata.
func (r *MovementRepo) DeleteByStockUnit(ctx context.Context, stockUnitID int64) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM movimentacoes WHERE materias_primas_id = $1`, stockUnitID)
	if err != nil {
		return 0, storageErr("delete movements", err)
	}
	return tag.RowsAffected(), nil
}
