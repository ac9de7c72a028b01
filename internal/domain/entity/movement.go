package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimentação.
const (
	MovementTypeCut        = "corte"  // consumo pela produção
	MovementTypeAdjustment = "ajuste" // correção manual do saldo
)

// Movement é um lançamento imutável no histórico de uma matéria-prima.
// Quantity é o delta com sinal (negativo para consumo).
type Movement struct {
	ID              int64
	StockUnitID     int64
	Type            string
	Quantity        decimal.Decimal
	ProductionOrder string
	Notes           string
	Date            time.Time
}
