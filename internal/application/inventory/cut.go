package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/materias-primas-api/internal/application/dto"
	"github.com/jhoicas/materias-primas-api/internal/domain"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	domaininv "github.com/jhoicas/materias-primas-api/internal/domain/inventory"
	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// CutInput entrada de um corte.
type CutInput struct {
	Quantity        decimal.Decimal
	ProductionOrder string
	Responsible     string
}

// Cut consome quantidade de uma bobina. Numa única transação: bloqueia a linha (SELECT FOR UPDATE),
// valida o saldo, grava o novo saldo com o status derivado e registra a movimentação de corte.
// Com saldo insuficiente nada é gravado e o erro é domain.ErrInsufficientStock.
// Quantidade <= 0 ou com mais de três casas decimais devolve domain.ErrInvalidInput.
func (uc *StockUnitUseCase) Cut(ctx context.Context, id int64, in CutInput) (*entity.StockUnit, error) {
	if !in.Quantity.IsPositive() || !domaininv.FitsQuantityScale(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}

	err := uc.txRunner.Run(ctx, func(
		units repository.StockUnitRepository,
		movements repository.MovementRepository,
	) error {
		unit, err := units.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if unit == nil {
			return domain.ErrNotFound
		}
		remaining := unit.AvailableQuantity.Sub(in.Quantity)
		if remaining.IsNegative() {
			return domain.ErrInsufficientStock
		}
		status := domaininv.ClassifyStatus(remaining, unit.TotalQuantity)
		if err := units.UpdateStock(ctx, id, remaining, status); err != nil {
			return err
		}
		mov := &entity.Movement{
			StockUnitID:     id,
			Type:            entity.MovementTypeCut,
			Quantity:        in.Quantity.Neg(),
			ProductionOrder: strings.TrimSpace(in.ProductionOrder),
			Date:            uc.now(),
		}
		if responsible := strings.TrimSpace(in.Responsible); responsible != "" {
			mov.Notes = "Responsável: " + responsible
		}
		return movements.Append(ctx, mov)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Warn().Int64("stock_unit_id", id).Str("quantity", in.Quantity.String()).Msg("corte recusado: estoque insuficiente")
		}
		return nil, uc.fail("cortar matéria-prima", id, err)
	}

	updated, err := uc.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := uc.settleStatus(ctx, updated)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("stock_unit_id", id).
		Str("quantity", in.Quantity.String()).
		Str("available", updated.AvailableQuantity.String()).
		Str("production_order", in.ProductionOrder).
		Msg("corte registrado")
	if !changed {
		uc.notifier.Notify(ctx, EventUnitStatusChanged, dto.ToStatusChangedPayload(updated))
	}
	return updated, nil
}

// History devolve as movimentações da bobina, mais recentes primeiro.
// domain.ErrNotFound quando a bobina não existe (inclusive depois de excluída).
func (uc *StockUnitUseCase) History(ctx context.Context, id int64) ([]*entity.Movement, error) {
	if _, err := uc.FindByID(ctx, id); err != nil {
		return nil, err
	}
	list, err := uc.movements.ListByStockUnit(ctx, id)
	if err != nil {
		return nil, uc.fail("buscar histórico", id, err)
	}
	return list, nil
}
