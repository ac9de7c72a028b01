package repository

import (
	"context"

	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockUnitRepository define o porto de persistência das matérias-primas.
// Métodos Get* devolvem (nil, nil) quando o registro não existe.
type StockUnitRepository interface {
	Create(ctx context.Context, unit *entity.StockUnit) (int64, error)
	GetByID(ctx context.Context, id int64) (*entity.StockUnit, error)
	// GetForUpdate bloqueia a linha até o fim da transação (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id int64) (*entity.StockUnit, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.StockUnit, error)
	List(ctx context.Context) ([]*entity.StockUnit, error)
	ListByStatus(ctx context.Context, status entity.StockStatus) ([]*entity.StockUnit, error)
	Update(ctx context.Context, unit *entity.StockUnit) error
	UpdateStock(ctx context.Context, id int64, available decimal.Decimal, status entity.StockStatus) error
	UpdateStatus(ctx context.Context, id int64, status entity.StockStatus) error
	Delete(ctx context.Context, id int64) error
	DistinctFabricTypes(ctx context.Context) ([]string, error)
	// DistinctColors lista cores distintas; fabricType vazio considera todos os tecidos.
	DistinctColors(ctx context.Context, fabricType string) ([]string, error)
	BarcodeExists(ctx context.Context, barcode string) (bool, error)
}
