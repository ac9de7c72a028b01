package inventory

import (
	"context"

	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
)

// TxRunner executa fn dentro de uma transação de BD, passando repositórios presos a essa tx.
// Commit se fn devolver nil; Rollback completo em qualquer outro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		units repository.StockUnitRepository,
		movements repository.MovementRepository,
	) error) error
}

// Eventos emitidos após o commit.
const (
	EventUnitCreated       = "unit-created"
	EventUnitUpdated       = "unit-updated"
	EventUnitDeleted       = "unit-deleted"
	EventUnitStatusChanged = "unit-status-changed"
)

// Notifier difunde mudanças já confirmadas. Fire-and-forget: não bloqueia nem falha a operação
// de origem; entregas perdidas são apenas registradas no log pela implementação.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
}

// NopNotifier é usado quando nenhum observador está conectado.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, any) {}
