package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/materias-primas-api/internal/application/dto"
	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/internal/application/inventory/inventorytest"
	"github.com/jhoicas/materias-primas-api/internal/domain"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
)

var errDB = errors.New("conn reset by peer")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUseCase(t *testing.T) (*inventory.StockUnitUseCase, *inventorytest.Store, *inventorytest.RecordingNotifier) {
	t.Helper()
	store := inventorytest.NewStore()
	notifier := &inventorytest.RecordingNotifier{}
	uc := inventory.NewStockUnitUseCase(store, store, store, notifier, zerolog.Nop())
	return uc, store, notifier
}

func createUnit(t *testing.T, uc *inventory.StockUnitUseCase, total string) *entity.StockUnit {
	t.Helper()
	u, err := uc.Create(context.Background(), inventory.StockUnitInput{
		FabricType:    "Malha",
		Color:         "Azul",
		Lot:           "L-01",
		Supplier:      "Têxtil Sul",
		TotalQuantity: dec(total),
	})
	require.NoError(t, err)
	return u
}

// ledgerSum devolve total + soma dos deltas; deve ser igual ao disponível.
func ledgerSum(store *inventorytest.Store, u entity.StockUnit) decimal.Decimal {
	sum := u.TotalQuantity
	for _, m := range store.Movements(u.ID) {
		sum = sum.Add(m.Quantity)
	}
	return sum
}

func TestCreate_ForcaDisponivelIgualTotalEAplicaPadroes(t *testing.T) {
	uc, _, notifier := newUseCase(t)
	injected := dec("999")

	before := time.Now()
	u, err := uc.Create(context.Background(), inventory.StockUnitInput{
		FabricType:        "Malha",
		TotalQuantity:     dec("100"),
		AvailableQuantity: &injected,
		Barcode:           "  ABC123  ",
	})
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.True(t, u.AvailableQuantity.Equal(dec("100")), "disponível deve ser igual ao total")
	assert.Equal(t, entity.StatusInStock, u.Status)
	assert.Equal(t, entity.DefaultUnit, u.Unit)
	assert.Equal(t, "ABC123", u.Barcode)
	assert.False(t, u.EntryDate.Before(before))

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, inventory.EventUnitCreated, events[0].Name)
	payload, ok := events[0].Payload.(dto.StockUnitResponse)
	require.True(t, ok)
	assert.Equal(t, u.ID, payload.ID)
}

func TestCreate_QuantidadeNegativa(t *testing.T) {
	uc, store, _ := newUseCase(t)
	_, err := uc.Create(context.Background(), inventory.StockUnitInput{TotalQuantity: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.Calls["Create"])
}

func TestCreate_FalhaDeArmazenamento(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	store.Fail["Create"] = errDB

	u, err := uc.Create(context.Background(), inventory.StockUnitInput{TotalQuantity: dec("10")})
	assert.Nil(t, u)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, errDB)
	assert.Empty(t, notifier.Events())
}

func TestCut_CenarioCompleto(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	u := createUnit(t, uc, "100")

	u, err := uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("85"), ProductionOrder: "OP-1", Responsible: "Ana"})
	require.NoError(t, err)
	assert.True(t, u.AvailableQuantity.Equal(dec("15")))
	assert.Equal(t, entity.StatusLowStock, u.Status)

	u, err = uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("15")})
	require.NoError(t, err)
	assert.True(t, u.AvailableQuantity.IsZero())
	assert.Equal(t, entity.StatusOutOfStock, u.Status)

	_, err = uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, ok := store.Unit(u.ID)
	require.True(t, ok)
	assert.True(t, stored.AvailableQuantity.IsZero())
	assert.Len(t, store.Movements(u.ID), 2, "corte recusado não gera movimentação")
	assert.True(t, ledgerSum(store, stored).Equal(stored.AvailableQuantity))
}

func TestCut_RegistraMovimentacao(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	u := createUnit(t, uc, "50")
	notifier.Reset()

	_, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{
		Quantity:        dec("12.5"),
		ProductionOrder: " OP-77 ",
		Responsible:     "Carlos",
	})
	require.NoError(t, err)

	movs := store.Movements(u.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeCut, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec("-12.5")))
	assert.Equal(t, "OP-77", movs[0].ProductionOrder)
	assert.Equal(t, "Responsável: Carlos", movs[0].Notes)

	events := notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, inventory.EventUnitStatusChanged, events[0].Name)
	payload := events[0].Payload.(dto.StatusChangedPayload)
	assert.Equal(t, u.ID, payload.ID)
	assert.True(t, payload.AvailableQuantity.Equal(dec("37.5")))
}

func TestCut_SemResponsavelNaoGeraObservacao(t *testing.T) {
	uc, store, _ := newUseCase(t)
	u := createUnit(t, uc, "10")

	_, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("1")})
	require.NoError(t, err)
	assert.Empty(t, store.Movements(u.ID)[0].Notes)
}

func TestCut_EntradasInvalidas(t *testing.T) {
	uc, _, _ := newUseCase(t)
	u := createUnit(t, uc, "10")

	_, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("-3")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Cut(context.Background(), 404, inventory.CutInput{Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCut_MaisDeTresCasasDecimaisNaoGravaNada(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	u := createUnit(t, uc, "10")
	notifier.Reset()

	_, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("0.0005")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, _ := store.Unit(u.ID)
	assert.True(t, stored.AvailableQuantity.Equal(dec("10")))
	assert.Empty(t, store.Movements(u.ID))
	assert.Zero(t, store.Calls["UpdateStock"])
	assert.Empty(t, notifier.Events())

	// zeros à direita não contam como casas
	cut, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("0.5000")})
	require.NoError(t, err)
	assert.True(t, cut.AvailableQuantity.Equal(dec("9.5")))
	stored, _ = store.Unit(u.ID)
	assert.True(t, ledgerSum(store, stored).Equal(stored.AvailableQuantity))
}

func TestCreate_TotalComMaisDeTresCasasDecimais(t *testing.T) {
	uc, store, _ := newUseCase(t)
	_, err := uc.Create(context.Background(), inventory.StockUnitInput{TotalQuantity: dec("10.0005")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.Calls["Create"])
}

func TestCut_FalhaNaMovimentacaoDesfazSaldo(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	u := createUnit(t, uc, "40")
	notifier.Reset()
	store.Fail["Append"] = errDB

	_, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("10")})
	assert.ErrorIs(t, err, domain.ErrStorage)

	stored, _ := store.Unit(u.ID)
	assert.True(t, stored.AvailableQuantity.Equal(dec("40")), "saldo não pode ficar gravado sem movimentação")
	assert.Equal(t, entity.StatusInStock, stored.Status)
	assert.Empty(t, store.Movements(u.ID))
	assert.Empty(t, notifier.Events())
}

func TestCut_ConcorrenteNaoVendeAlemDoSaldo(t *testing.T) {
	uc, store, _ := newUseCase(t)
	u := createUnit(t, uc, "10")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Cut(context.Background(), u.ID, inventory.CutInput{Quantity: dec("1")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock):
				refused++
			default:
				t.Errorf("erro inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 15, refused)
	stored, _ := store.Unit(u.ID)
	assert.True(t, stored.AvailableQuantity.IsZero())
	assert.Len(t, store.Movements(u.ID), 10)
	assert.True(t, ledgerSum(store, stored).Equal(stored.AvailableQuantity))
}

func TestDelete_RemoveBobinaEMovimentacoes(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	ctx := context.Background()
	u := createUnit(t, uc, "30")
	for i := 0; i < 3; i++ {
		_, err := uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("2")})
		require.NoError(t, err)
	}
	require.Len(t, store.Movements(u.ID), 3)
	notifier.Reset()

	deleted, err := uc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.ID)
	assert.True(t, deleted.AvailableQuantity.Equal(dec("24")), "resposta traz o estado anterior à exclusão")

	assert.Empty(t, store.Movements(u.ID))
	_, err = uc.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.History(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []string{inventory.EventUnitDeleted}, notifier.Names())
}

func TestDelete_FalhaNoMeioNaoDeixaEstadoParcial(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	ctx := context.Background()
	u := createUnit(t, uc, "30")
	_, err := uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("5")})
	require.NoError(t, err)
	notifier.Reset()
	store.Fail["Delete"] = errDB

	_, err = uc.Delete(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, ok := store.Unit(u.ID)
	assert.True(t, ok)
	assert.Len(t, store.Movements(u.ID), 1, "movimentações excluídas devem voltar no rollback")
	assert.Empty(t, notifier.Events())
}

func TestDelete_NaoEncontrada(t *testing.T) {
	uc, store, _ := newUseCase(t)
	_, err := uc.Delete(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, store.Calls["DeleteByStockUnit"])
}

func TestUpdate_CamposVaziosMantemValorArmazenado(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	ctx := context.Background()
	entry := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	id := store.Seed(entity.StockUnit{
		FabricType:        "Malha",
		Color:             "Azul",
		Lot:               "L-01",
		Supplier:          "Têxtil Sul",
		TotalQuantity:     dec("100"),
		AvailableQuantity: dec("100"),
		Unit:              "kg",
		Location:          "A1",
		EntryDate:         entry,
		Barcode:           "XYZ",
		Notes:             "rolo novo",
		Status:            entity.StatusInStock,
	})

	u, err := uc.Update(ctx, id, inventory.StockUnitInput{
		Color:         "Verde",
		TotalQuantity: dec("500"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Malha", u.FabricType)
	assert.Equal(t, "Verde", u.Color)
	assert.Equal(t, "L-01", u.Lot)
	assert.Equal(t, "Têxtil Sul", u.Supplier)
	assert.Equal(t, "A1", u.Location)
	assert.Equal(t, "XYZ", u.Barcode)
	assert.Equal(t, "rolo novo", u.Notes)
	assert.Equal(t, entity.DefaultUnit, u.Unit, "unidade vazia volta para metros")
	assert.True(t, u.EntryDate.Equal(entry))
	assert.True(t, u.TotalQuantity.Equal(dec("100")), "quantidade total é imutável")
	assert.Empty(t, store.Movements(id))
	assert.Equal(t, []string{inventory.EventUnitUpdated}, notifier.Names())
}

func TestUpdate_AjusteDeSaldoGeraMovimentacao(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	u := createUnit(t, uc, "100")
	notifier.Reset()
	next := dec("10")

	updated, err := uc.Update(context.Background(), u.ID, inventory.StockUnitInput{AvailableQuantity: &next})
	require.NoError(t, err)
	assert.True(t, updated.AvailableQuantity.Equal(next))
	assert.Equal(t, entity.StatusLowStock, updated.Status)

	movs := store.Movements(u.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec("-90")))

	stored, _ := store.Unit(u.ID)
	assert.True(t, ledgerSum(store, stored).Equal(stored.AvailableQuantity))
	assert.Equal(t, []string{inventory.EventUnitUpdated, inventory.EventUnitStatusChanged}, notifier.Names())
}

func TestUpdate_SaldoForaDoIntervalo(t *testing.T) {
	uc, store, _ := newUseCase(t)
	u := createUnit(t, uc, "100")

	for _, v := range []string{"-1", "100.001"} {
		next := dec(v)
		_, err := uc.Update(context.Background(), u.ID, inventory.StockUnitInput{AvailableQuantity: &next, Color: "Rosa"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, v)
	}
	stored, _ := store.Unit(u.ID)
	assert.Equal(t, "Azul", stored.Color, "nenhuma alteração parcial")
	assert.Empty(t, store.Movements(u.ID))
}

func TestUpdate_SaldoComMaisDeTresCasasDecimais(t *testing.T) {
	uc, store, _ := newUseCase(t)
	u := createUnit(t, uc, "10")

	next := dec("9.9996")
	_, err := uc.Update(context.Background(), u.ID, inventory.StockUnitInput{AvailableQuantity: &next})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.Movements(u.ID))
	stored, _ := store.Unit(u.ID)
	assert.True(t, stored.AvailableQuantity.Equal(dec("10")))
}

func TestUpdate_CodigoDeBarrasDeOutraBobina(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	first, err := uc.Create(ctx, inventory.StockUnitInput{TotalQuantity: dec("5"), Barcode: "AAA"})
	require.NoError(t, err)
	second, err := uc.Create(ctx, inventory.StockUnitInput{TotalQuantity: dec("5"), Barcode: "BBB"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, second.ID, inventory.StockUnitInput{Barcode: "AAA"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	stored, _ := store.Unit(second.ID)
	assert.Equal(t, "BBB", stored.Barcode)

	// o próprio código não conflita
	updated, err := uc.Update(ctx, first.ID, inventory.StockUnitInput{Barcode: "AAA", Color: "Verde"})
	require.NoError(t, err)
	assert.Equal(t, "Verde", updated.Color)
}

func TestUpdate_NaoEncontrada(t *testing.T) {
	uc, _, notifier := newUseCase(t)
	_, err := uc.Update(context.Background(), 5, inventory.StockUnitInput{Color: "Preto"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, notifier.Events())
}

func TestRecomputeStatus_Idempotente(t *testing.T) {
	uc, store, notifier := newUseCase(t)
	ctx := context.Background()
	id := store.Seed(entity.StockUnit{
		TotalQuantity:     dec("100"),
		AvailableQuantity: dec("5"),
		Status:            entity.StatusInStock,
	})

	status, err := uc.RecomputeStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLowStock, status)

	status, err = uc.RecomputeStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusLowStock, status)

	assert.Equal(t, 1, store.Calls["UpdateStatus"])
	assert.Equal(t, []string{inventory.EventUnitStatusChanged}, notifier.Names())
}

func TestListByStatusBuckets(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	for _, avail := range []string{"0", "10", "50", "100"} {
		store.Seed(entity.StockUnit{TotalQuantity: dec("100"), AvailableQuantity: dec(avail)})
	}
	all, err := uc.FindAll(ctx)
	require.NoError(t, err)
	for _, u := range all {
		_, err := uc.RecomputeStatus(ctx, u.ID)
		require.NoError(t, err)
	}

	buckets, err := uc.ListByStatusBuckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets.OutOfStock, 1)
	assert.Len(t, buckets.LowStock, 1)
	assert.Len(t, buckets.InStock, 2)
}

func TestLeituras_FalhaDeArmazenamentoTipada(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	store.Fail["List"] = errDB
	store.Fail["GetByID"] = errDB
	store.Fail["ListByStatus"] = errDB

	list, err := uc.FindAll(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Empty(t, inventory.OrEmpty(zerolog.Nop(), "findAll", list, err))

	_, err = uc.FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "falha de armazenamento não se confunde com ausência")

	_, err = uc.ListByStatusBuckets(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestHistory_MaisRecentePrimeiro(t *testing.T) {
	uc, _, _ := newUseCase(t)
	ctx := context.Background()
	u := createUnit(t, uc, "100")
	_, err := uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("10")})
	require.NoError(t, err)
	_, err = uc.Cut(ctx, u.ID, inventory.CutInput{Quantity: dec("20")})
	require.NoError(t, err)

	history, err := uc.History(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Quantity.Equal(dec("-20")))
	assert.True(t, history[1].Quantity.Equal(dec("-10")))
}

func TestHistory_PropagaFalha(t *testing.T) {
	uc, store, _ := newUseCase(t)
	u := createUnit(t, uc, "10")
	store.Fail["ListByStockUnit"] = errDB

	_, err := uc.History(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestBarcodeExists(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	store.Seed(entity.StockUnit{Barcode: "ABC123", TotalQuantity: dec("1"), AvailableQuantity: dec("1")})

	exists, err := uc.BarcodeExists(ctx, "")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = uc.BarcodeExists(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, store.Calls["BarcodeExists"], "código vazio não consulta o banco")

	exists, err = uc.BarcodeExists(ctx, " ABC123 ")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = uc.BarcodeExists(ctx, "ABC")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindByBarcode(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	id := store.Seed(entity.StockUnit{Barcode: "789", TotalQuantity: dec("1"), AvailableQuantity: dec("1")})

	u, err := uc.FindByBarcode(ctx, " 789")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)

	_, err = uc.FindByBarcode(ctx, "000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.FindByBarcode(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDistinctLookups(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	seed := func(fabric, color string) {
		store.Seed(entity.StockUnit{FabricType: fabric, Color: color, TotalQuantity: dec("1"), AvailableQuantity: dec("1")})
	}
	seed("Malha", "Vermelho")
	seed("Linho", "azul")
	seed("Algodão", "Branco")
	seed("Malha", "Amarelo")
	seed("", "")

	types, err := uc.DistinctFabricTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Algodão", "Linho", "Malha"}, types)

	colors, err := uc.DistinctColors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amarelo", "azul", "Branco", "Vermelho"}, colors)

	malha, err := uc.DistinctColorsForFabricType(ctx, "Malha")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amarelo", "Vermelho"}, malha)

	none, err := uc.DistinctColorsForFabricType(ctx, " ")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNotifierNilUsaNop(t *testing.T) {
	store := inventorytest.NewStore()
	uc := inventory.NewStockUnitUseCase(store, store, store, nil, zerolog.Nop())
	_, err := uc.Create(context.Background(), inventory.StockUnitInput{TotalQuantity: dec("3")})
	assert.NoError(t, err)
}
