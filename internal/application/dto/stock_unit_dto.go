package dto

import (
	"strconv"
	"time"

	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockUnitRequest body de POST/PUT /api/materias-primas.
// status nunca é aceito do cliente: é sempre derivado do saldo.
type StockUnitRequest struct {
	FabricType        string           `json:"tipo_tecido" validate:"max=120"`
	Color             string           `json:"cor" validate:"max=80"`
	Lot               string           `json:"lote" validate:"max=80"`
	Supplier          string           `json:"fornecedor" validate:"max=160"`
	TotalQuantity     *decimal.Decimal `json:"quantidade_total,omitempty" validate:"omitempty,gte=0,decimal_scale=3"`
	AvailableQuantity *decimal.Decimal `json:"quantidade_disponivel,omitempty" validate:"omitempty,gte=0,decimal_scale=3"`
	Unit              string           `json:"unidade" validate:"max=10"`
	Location          string           `json:"localizacao" validate:"max=120"`
	EntryDate         string           `json:"data_entrada" validate:"omitempty,max=40"`
	Barcode           string           `json:"codigo_barras" validate:"max=64"`
	Notes             string           `json:"observacoes" validate:"max=1000"`
}

// CutRequest body de POST /api/materias-primas/{id}/corte.
type CutRequest struct {
	Quantity        decimal.Decimal `json:"quantidade" validate:"gt=0,decimal_scale=3"`
	ProductionOrder string          `json:"ordem_producao" validate:"max=60"`
	Responsible     string          `json:"responsavel" validate:"max=120"`
}

// StockUnitResponse representação JSON de uma matéria-prima (mesmos nomes das colunas).
type StockUnitResponse struct {
	ID                int64           `json:"id"`
	FabricType        string          `json:"tipo_tecido"`
	Color             string          `json:"cor"`
	Lot               string          `json:"lote"`
	Supplier          string          `json:"fornecedor"`
	TotalQuantity     decimal.Decimal `json:"quantidade_total"`
	AvailableQuantity decimal.Decimal `json:"quantidade_disponivel"`
	Unit              string          `json:"unidade"`
	Location          string          `json:"localizacao"`
	EntryDate         time.Time       `json:"data_entrada"`
	Barcode           *string         `json:"codigo_barras"`
	Notes             string          `json:"observacoes"`
	Status            string          `json:"status"`
}

// PartitionKey chave usada pelos publicadores de eventos para manter a ordem por bobina.
func (r StockUnitResponse) PartitionKey() string {
	return strconv.FormatInt(r.ID, 10)
}

// StatusChangedPayload payload do evento unit-status-changed.
type StatusChangedPayload struct {
	ID                int64           `json:"id"`
	Status            string          `json:"status"`
	AvailableQuantity decimal.Decimal `json:"quantidade_disponivel"`
}

// PartitionKey ver StockUnitResponse.PartitionKey.
func (p StatusChangedPayload) PartitionKey() string {
	return strconv.FormatInt(p.ID, 10)
}

// MovementResponse representação JSON de uma movimentação.
type MovementResponse struct {
	ID              int64           `json:"id"`
	StockUnitID     int64           `json:"materias_primas_id"`
	Type            string          `json:"tipo"`
	Quantity        decimal.Decimal `json:"quantidade"`
	ProductionOrder *string         `json:"ordem_producao"`
	Notes           *string         `json:"observacoes"`
	Date            time.Time       `json:"data_movimentacao"`
}

// StockBucketsResponse matérias-primas agrupadas pelo status persistido.
type StockBucketsResponse struct {
	OutOfStock []StockUnitResponse `json:"semEstoque"`
	LowStock   []StockUnitResponse `json:"baixoEstoque"`
	InStock    []StockUnitResponse `json:"emEstoque"`
	Totals     map[string]int      `json:"totais"`
}

// ToStockUnitResponse converte a entidade para a resposta HTTP / payload de evento.
func ToStockUnitResponse(u *entity.StockUnit) StockUnitResponse {
	out := StockUnitResponse{
		ID:                u.ID,
		FabricType:        u.FabricType,
		Color:             u.Color,
		Lot:               u.Lot,
		Supplier:          u.Supplier,
		TotalQuantity:     u.TotalQuantity,
		AvailableQuantity: u.AvailableQuantity,
		Unit:              u.Unit,
		Location:          u.Location,
		EntryDate:         u.EntryDate,
		Notes:             u.Notes,
		Status:            string(u.Status),
	}
	if u.Barcode != "" {
		code := u.Barcode
		out.Barcode = &code
	}
	return out
}

// ToStockUnitList converte uma lista; nunca devolve nil para serializar como [].
func ToStockUnitList(units []*entity.StockUnit) []StockUnitResponse {
	out := make([]StockUnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, ToStockUnitResponse(u))
	}
	return out
}

// ToStatusChangedPayload monta o payload de mudança de status.
func ToStatusChangedPayload(u *entity.StockUnit) StatusChangedPayload {
	return StatusChangedPayload{ID: u.ID, Status: string(u.Status), AvailableQuantity: u.AvailableQuantity}
}

// ToMovementList converte o histórico.
func ToMovementList(movements []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		r := MovementResponse{
			ID:          m.ID,
			StockUnitID: m.StockUnitID,
			Type:        m.Type,
			Quantity:    m.Quantity,
			Date:        m.Date,
		}
		if m.ProductionOrder != "" {
			po := m.ProductionOrder
			r.ProductionOrder = &po
		}
		if m.Notes != "" {
			n := m.Notes
			r.Notes = &n
		}
		out = append(out, r)
	}
	return out
}
