package repository

import (
	"context"

	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
)

// MovementRepository porto do histórico de movimentações (somente inclusão).
// DeleteByStockUnit existe apenas para a exclusão em cascata da matéria-prima.
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	ListByStockUnit(ctx context.Context, stockUnitID int64) ([]*entity.Movement, error)
	DeleteByStockUnit(ctx context.Context, stockUnitID int64) (int64, error)
}
