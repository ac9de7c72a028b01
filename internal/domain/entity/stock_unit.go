package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus é a classificação derivada da quantidade disponível (valor persistido na coluna status).
type StockStatus string

const (
	StatusOutOfStock StockStatus = "sem_estoque"
	StatusLowStock   StockStatus = "baixo_estoque"
	StatusInStock    StockStatus = "em_estoque"
)

// QuantityScale casas decimais guardadas pelas colunas de quantidade (NUMERIC(12,3)).
const QuantityScale = 3

// DefaultUnit unidade de medida aplicada quando o cadastro não informa nenhuma (metros).
const DefaultUnit = "m"

// StockUnit representa uma matéria-prima (bobina/rolo de tecido) com seu próprio saldo.
// TotalQuantity é a quantidade recebida e não muda após o cadastro; AvailableQuantity só
// muda por corte ou ajuste, sempre acompanhada de uma Movement.
type StockUnit struct {
	ID                int64
	FabricType        string
	Color             string
	Lot               string
	Supplier          string
	TotalQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
	Unit              string
	Location          string
	EntryDate         time.Time
	Barcode           string // vazio = sem código
	Notes             string
	Status            StockStatus
}
