package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/materias-primas-api/internal/application/dto"
	"github.com/jhoicas/materias-primas-api/internal/domain"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
	domaininv "github.com/jhoicas/materias-primas-api/internal/domain/inventory"
	"github.com/jhoicas/materias-primas-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StockUnitUseCase concentra as regras de saldo das matérias-primas: cadastro, edição,
// exclusão em cascata, corte e derivação de status. Toda escrita que mexe em quantidade
// grava o status calculado por ClassifyStatus na mesma instrução; o status enviado pelo
// cliente nunca é usado.
type StockUnitUseCase struct {
	txRunner  TxRunner
	units     repository.StockUnitRepository
	movements repository.MovementRepository
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewStockUnitUseCase constrói o caso de uso. notifier nil equivale a NopNotifier.
func NewStockUnitUseCase(
	txRunner TxRunner,
	units repository.StockUnitRepository,
	movements repository.MovementRepository,
	notifier Notifier,
	log zerolog.Logger,
) *StockUnitUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &StockUnitUseCase{
		txRunner:  txRunner,
		units:     units,
		movements: movements,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

// StockUnitInput dados de cadastro/edição já convertidos pela camada HTTP.
// Na edição, campos vazios (ou nil) mantêm o valor armazenado.
type StockUnitInput struct {
	FabricType        string
	Color             string
	Lot               string
	Supplier          string
	TotalQuantity     decimal.Decimal
	AvailableQuantity *decimal.Decimal
	Unit              string
	Location          string
	EntryDate         *time.Time
	Barcode           string
	Notes             string
}

// StatusBuckets matérias-primas particionadas pelo status persistido.
type StatusBuckets struct {
	OutOfStock []*entity.StockUnit
	LowStock   []*entity.StockUnit
	InStock    []*entity.StockUnit
}

// FindAll lista todas as matérias-primas, sem ordem garantida.
func (uc *StockUnitUseCase) FindAll(ctx context.Context) ([]*entity.StockUnit, error) {
	list, err := uc.units.List(ctx)
	if err != nil {
		return nil, uc.fail("listar matérias-primas", 0, err)
	}
	return list, nil
}

// FindByID devolve domain.ErrNotFound quando o id não existe e um erro de armazenamento
// (errors.Is(err, domain.ErrStorage)) quando a consulta falha.
func (uc *StockUnitUseCase) FindByID(ctx context.Context, id int64) (*entity.StockUnit, error) {
	unit, err := uc.units.GetByID(ctx, id)
	if err != nil {
		return nil, uc.fail("buscar matéria-prima", id, err)
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	return unit, nil
}

// Create cadastra uma bobina. A quantidade disponível é sempre igual à total no cadastro,
// unidade padrão "m" e data de entrada padrão agora.
func (uc *StockUnitUseCase) Create(ctx context.Context, in StockUnitInput) (*entity.StockUnit, error) {
	if in.TotalQuantity.IsNegative() || !domaininv.FitsQuantityScale(in.TotalQuantity) {
		return nil, domain.ErrInvalidInput
	}
	unit := &entity.StockUnit{
		FabricType:        in.FabricType,
		Color:             in.Color,
		Lot:               in.Lot,
		Supplier:          in.Supplier,
		TotalQuantity:     in.TotalQuantity,
		AvailableQuantity: in.TotalQuantity,
		Unit:              firstNonBlank(in.Unit, entity.DefaultUnit),
		Location:          in.Location,
		EntryDate:         uc.now(),
		Barcode:           strings.TrimSpace(in.Barcode),
		Notes:             in.Notes,
	}
	if in.EntryDate != nil {
		unit.EntryDate = *in.EntryDate
	}
	unit.Status = domaininv.ClassifyStatus(unit.AvailableQuantity, unit.TotalQuantity)

	id, err := uc.units.Create(ctx, unit)
	if err != nil {
		return nil, uc.fail("criar matéria-prima", 0, err)
	}
	created, err := uc.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.settleStatus(ctx, created); err != nil {
		return nil, err
	}

	uc.log.Info().Int64("stock_unit_id", created.ID).Str("status", string(created.Status)).Msg("matéria-prima cadastrada")
	uc.notifier.Notify(ctx, EventUnitCreated, dto.ToStockUnitResponse(created))
	return created, nil
}

// Update edita uma bobina existente. Campos vazios mantêm o valor armazenado, exceto unidade
// (volta para "m"). quantidade_total é imutável. Uma nova quantidade_disponivel diferente da atual
// gera uma movimentação de ajuste na mesma transação.
func (uc *StockUnitUseCase) Update(ctx context.Context, id int64, in StockUnitInput) (*entity.StockUnit, error) {
	if in.AvailableQuantity != nil && !domaininv.FitsQuantityScale(*in.AvailableQuantity) {
		return nil, domain.ErrInvalidInput
	}
	var previous entity.StockStatus
	err := uc.txRunner.Run(ctx, func(
		units repository.StockUnitRepository,
		movements repository.MovementRepository,
	) error {
		existing, err := units.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		previous = existing.Status

		merged := mergeStockUnit(existing, in)
		if in.AvailableQuantity != nil && !in.AvailableQuantity.Equal(existing.AvailableQuantity) {
			next := *in.AvailableQuantity
			if next.IsNegative() || next.GreaterThan(existing.TotalQuantity) {
				return domain.ErrInvalidInput
			}
			adjustment := &entity.Movement{
				StockUnitID: id,
				Type:        entity.MovementTypeAdjustment,
				Quantity:    next.Sub(existing.AvailableQuantity),
				Notes:       "Ajuste de saldo na edição",
				Date:        uc.now(),
			}
			if err := movements.Append(ctx, adjustment); err != nil {
				return err
			}
			merged.AvailableQuantity = next
		}
		merged.Status = domaininv.ClassifyStatus(merged.AvailableQuantity, merged.TotalQuantity)
		return units.Update(ctx, merged)
	})
	if err != nil {
		return nil, uc.fail("atualizar matéria-prima", id, err)
	}

	updated, err := uc.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := uc.settleStatus(ctx, updated)
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("stock_unit_id", id).Msg("matéria-prima atualizada")
	uc.notifier.Notify(ctx, EventUnitUpdated, dto.ToStockUnitResponse(updated))
	if !changed && previous != updated.Status {
		uc.notifier.Notify(ctx, EventUnitStatusChanged, dto.ToStatusChangedPayload(updated))
	}
	return updated, nil
}

// Delete remove a bobina e todas as suas movimentações numa única transação.
// Devolve a bobina como estava antes da exclusão.
func (uc *StockUnitUseCase) Delete(ctx context.Context, id int64) (*entity.StockUnit, error) {
	var (
		deleted *entity.StockUnit
		removed int64
	)
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
		n, err := movements.DeleteByStockUnit(ctx, id)
		if err != nil {
			return err
		}
		if err := units.Delete(ctx, id); err != nil {
			return err
		}
		deleted, removed = unit, n
		return nil
	})
	if err != nil {
		return nil, uc.fail("excluir matéria-prima", id, err)
	}

	uc.log.Info().Int64("stock_unit_id", id).Int64("movements", removed).Msg("matéria-prima excluída")
	uc.notifier.Notify(ctx, EventUnitDeleted, dto.ToStockUnitResponse(deleted))
	return deleted, nil
}

// RecomputeStatus reclassifica a bobina e só grava quando o status mudou; chamadas
// consecutivas sem mutação no meio fazem no máximo uma escrita.
func (uc *StockUnitUseCase) RecomputeStatus(ctx context.Context, id int64) (entity.StockStatus, error) {
	unit, err := uc.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := uc.settleStatus(ctx, unit); err != nil {
		return "", err
	}
	return unit.Status, nil
}

// ListByStatus lista as bobinas com o status persistido informado.
func (uc *StockUnitUseCase) ListByStatus(ctx context.Context, status entity.StockStatus) ([]*entity.StockUnit, error) {
	list, err := uc.units.ListByStatus(ctx, status)
	if err != nil {
		return nil, uc.fail("listar por status "+string(status), 0, err)
	}
	return list, nil
}

// ListByStatusBuckets particiona as bobinas em sem estoque / baixo estoque / em estoque.
func (uc *StockUnitUseCase) ListByStatusBuckets(ctx context.Context) (StatusBuckets, error) {
	var (
		buckets StatusBuckets
		err     error
	)
	if buckets.OutOfStock, err = uc.ListByStatus(ctx, entity.StatusOutOfStock); err != nil {
		return StatusBuckets{}, err
	}
	if buckets.LowStock, err = uc.ListByStatus(ctx, entity.StatusLowStock); err != nil {
		return StatusBuckets{}, err
	}
	if buckets.InStock, err = uc.ListByStatus(ctx, entity.StatusInStock); err != nil {
		return StatusBuckets{}, err
	}
	return buckets, nil
}

// settleStatus grava e notifica o status derivado quando ele difere do persistido.
// Atualiza unit.Status em memória.
func (uc *StockUnitUseCase) settleStatus(ctx context.Context, unit *entity.StockUnit) (bool, error) {
	status := domaininv.ClassifyStatus(unit.AvailableQuantity, unit.TotalQuantity)
	if status == unit.Status {
		return false, nil
	}
	if err := uc.units.UpdateStatus(ctx, unit.ID, status); err != nil {
		return false, uc.fail("atualizar status", unit.ID, err)
	}
	uc.log.Info().
		Int64("stock_unit_id", unit.ID).
		Str("from", string(unit.Status)).
		Str("to", string(status)).
		Msg("status recalculado")
	unit.Status = status
	uc.notifier.Notify(ctx, EventUnitStatusChanged, dto.ToStatusChangedPayload(unit))
	return true, nil
}

// fail normaliza err para a taxonomia do domínio e registra falhas de armazenamento.
func (uc *StockUnitUseCase) fail(op string, id int64, err error) error {
	if !domain.IsKnown(err) {
		err = domain.NewStorageError(op, err)
	}
	if errors.Is(err, domain.ErrStorage) {
		ev := uc.log.Error().Err(err).Str("operation", op)
		if id != 0 {
			ev = ev.Int64("stock_unit_id", id)
		}
		ev.Msg("falha de armazenamento")
	}
	return err
}

func mergeStockUnit(existing *entity.StockUnit, in StockUnitInput) *entity.StockUnit {
	merged := *existing
	merged.FabricType = firstNonBlank(in.FabricType, existing.FabricType)
	merged.Color = firstNonBlank(in.Color, existing.Color)
	merged.Lot = firstNonBlank(in.Lot, existing.Lot)
	merged.Supplier = firstNonBlank(in.Supplier, existing.Supplier)
	merged.Unit = firstNonBlank(in.Unit, entity.DefaultUnit)
	merged.Location = firstNonBlank(in.Location, existing.Location)
	merged.Barcode = firstNonBlank(strings.TrimSpace(in.Barcode), existing.Barcode)
	merged.Notes = firstNonBlank(in.Notes, existing.Notes)
	if in.EntryDate != nil {
		merged.EntryDate = *in.EntryDate
	}
	return &merged
}

func firstNonBlank(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
