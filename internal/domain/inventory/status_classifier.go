package inventory

import (
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// lowStockRatio fração da quantidade total abaixo da qual a bobina fica em baixo estoque.
var lowStockRatio = decimal.RequireFromString("0.2")

// FitsQuantityScale informa se q cabe em entity.QuantityScale casas decimais sem arredondar.
// Zeros à direita não contam: 1.5000 cabe, 0.0005 não.
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Round(entity.QuantityScale))
}

// ClassifyStatus deriva o status a partir do saldo (serviço de domínio puro).
//
//	disponível <= 0                  -> sem_estoque
//	0 < disponível < total * 0.2     -> baixo_estoque
//	demais casos                     -> em_estoque
func ClassifyStatus(available, total decimal.Decimal) entity.StockStatus {
	if available.LessThanOrEqual(decimal.Zero) {
		return entity.StatusOutOfStock
	}
	if available.LessThan(total.Mul(lowStockRatio)) {
		return entity.StatusLowStock
	}
	return entity.StatusInStock
}
