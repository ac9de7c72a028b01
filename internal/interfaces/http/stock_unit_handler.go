package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/materias-primas-api/internal/application/dto"
	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/internal/domain/entity"
)

// StockUnitHandler atende as requisições HTTP de matérias-primas.
type StockUnitHandler struct {
	uc  *inventory.StockUnitUseCase
	log zerolog.Logger
}

// NewStockUnitHandler constrói o handler.
func NewStockUnitHandler(uc *inventory.StockUnitUseCase, log zerolog.Logger) *StockUnitHandler {
	return &StockUnitHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar matérias-primas
// @Tags         materias-primas
// @Produce      json
// @Success      200  {array}   dto.StockUnitResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas [get]
func (h *StockUnitHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.FindAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockUnitList(list))
}

// GetByID godoc
// @Summary      Buscar matéria-prima por id
// @Tags         materias-primas
// @Produce      json
// @Param        id   path      int  true  "ID da matéria-prima"
// @Success      200  {object}  dto.StockUnitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/{id} [get]
func (h *StockUnitHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "id inválido")
	}
	unit, err := h.uc.FindByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockUnitResponse(unit))
}

// Create godoc
// @Summary      Cadastrar matéria-prima
// @Description  quantidade_disponivel é sempre igual a quantidade_total no cadastro; status é derivado.
// @Tags         materias-primas
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockUnitRequest  true  "Dados da bobina"
// @Success      201   {object}  dto.StockUnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/materias-primas [post]
func (h *StockUnitHandler) Create(c *fiber.Ctx) error {
	var req dto.StockUnitRequest
	if ok, err := parseAndValidate(c, &req); !ok {
		return err
	}
	in, err := toStockUnitInput(req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	unit, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToStockUnitResponse(unit))
}

// Update godoc
// @Summary      Editar matéria-prima
// @Description  Campos vazios mantêm o valor atual; quantidade_total é ignorada. Alterar quantidade_disponivel gera movimentação de ajuste.
// @Tags         materias-primas
// @Accept       json
// @Produce      json
// @Param        id    path      int                   true  "ID da matéria-prima"
// @Param        body  body      dto.StockUnitRequest  true  "Campos a alterar"
// @Success      200   {object}  dto.StockUnitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/materias-primas/{id} [put]
func (h *StockUnitHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "id inválido")
	}
	var req dto.StockUnitRequest
	if ok, err := parseAndValidate(c, &req); !ok {
		return err
	}
	in, err := toStockUnitInput(req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	unit, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockUnitResponse(unit))
}

// Delete godoc
// @Summary      Excluir matéria-prima e seu histórico
// @Tags         materias-primas
// @Produce      json
// @Param        id   path      int  true  "ID da matéria-prima"
// @Success      200  {object}  dto.StockUnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/{id} [delete]
func (h *StockUnitHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "id inválido")
	}
	unit, err := h.uc.Delete(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockUnitResponse(unit))
}

// Cut godoc
// @Summary      Registrar corte
// @Tags         materias-primas
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "ID da matéria-prima"
// @Param        body  body      dto.CutRequest  true  "quantidade, ordem_producao, responsavel"
// @Success      200   {object}  dto.StockUnitResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/materias-primas/{id}/corte [post]
func (h *StockUnitHandler) Cut(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "id inválido")
	}
	var req dto.CutRequest
	if ok, err := parseAndValidate(c, &req); !ok {
		return err
	}
	unit, err := h.uc.Cut(c.UserContext(), id, inventory.CutInput{
		Quantity:        req.Quantity,
		ProductionOrder: req.ProductionOrder,
		Responsible:     req.Responsible,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockUnitResponse(unit))
}

// RecomputeStatus godoc
// @Summary      Recalcular status
// @Tags         materias-primas
// @Produce      json
// @Param        id   path      int  true  "ID da matéria-prima"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/{id}/status [post]
func (h *StockUnitHandler) RecomputeStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "id inválido")
	}
	status, err := h.uc.RecomputeStatus(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "status": status})
}

// History godoc
// @Summary      Histórico de movimentações (mais recentes primeiro)
// @Tags         materias-primas
// @Produce      json
// @Param        id   path      int  true  "ID da matéria-prima"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/{id}/historico [get]
func (h *StockUnitHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "id inválido")
	}
	list, err := h.uc.History(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToMovementList(list))
}

// StockBuckets godoc
// @Summary      Painel de estoque por status
// @Description  Cada grupo degrada para lista vazia se a consulta falhar.
// @Tags         materias-primas
// @Produce      json
// @Success      200  {object}  dto.StockBucketsResponse
// @Router       /api/materias-primas/estoque [get]
func (h *StockUnitHandler) StockBuckets(c *fiber.Ctx) error {
	ctx := c.UserContext()
	bucket := func(status entity.StockStatus) []dto.StockUnitResponse {
		list, err := h.uc.ListByStatus(ctx, status)
		return dto.ToStockUnitList(inventory.OrEmpty(h.log, "listar "+string(status), list, err))
	}
	out := dto.StockBucketsResponse{
		OutOfStock: bucket(entity.StatusOutOfStock),
		LowStock:   bucket(entity.StatusLowStock),
		InStock:    bucket(entity.StatusInStock),
	}
	out.Totals = map[string]int{
		string(entity.StatusOutOfStock): len(out.OutOfStock),
		string(entity.StatusLowStock):   len(out.LowStock),
		string(entity.StatusInStock):    len(out.InStock),
	}
	return c.JSON(out)
}

// FabricTypes godoc
// @Summary      Tipos de tecido distintos
// @Tags         materias-primas
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/tipos-tecido [get]
func (h *StockUnitHandler) FabricTypes(c *fiber.Ctx) error {
	list, err := h.uc.DistinctFabricTypes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Colors godoc
// @Summary      Cores distintas
// @Tags         materias-primas
// @Produce      json
// @Param        tipo_tecido  query  string  false  "Filtrar pelo tipo de tecido"
// @Success      200  {array}   string
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/cores [get]
func (h *StockUnitHandler) Colors(c *fiber.Ctx) error {
	var (
		list []string
		err  error
	)
	if c.Context().QueryArgs().Has("tipo_tecido") {
		list, err = h.uc.DistinctColorsForFabricType(c.UserContext(), c.Query("tipo_tecido"))
	} else {
		list, err = h.uc.DistinctColors(c.UserContext())
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// BarcodeExists godoc
// @Summary      Verificar código de barras
// @Tags         materias-primas
// @Produce      json
// @Param        codigo  path  string  true  "Código de barras"
// @Success      200  {object}  map[string]bool
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/codigo-barras/{codigo}/existe [get]
func (h *StockUnitHandler) BarcodeExists(c *fiber.Ctx) error {
	exists, err := h.uc.BarcodeExists(c.UserContext(), paramCode(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"existe": exists})
}

// FindByBarcode godoc
// @Summary      Buscar matéria-prima pelo código de barras
// @Tags         materias-primas
// @Produce      json
// @Param        codigo  path  string  true  "Código de barras"
// @Success      200  {object}  dto.StockUnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/materias-primas/codigo-barras/{codigo} [get]
func (h *StockUnitHandler) FindByBarcode(c *fiber.Ctx) error {
	unit, err := h.uc.FindByBarcode(c.UserContext(), paramCode(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockUnitResponse(unit))
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}

// paramCode devolve o código de barras da rota já decodificado.
func paramCode(c *fiber.Ctx) string {
	raw := c.Params("codigo")
	if code, err := url.PathUnescape(raw); err == nil {
		return code
	}
	return raw
}

var entryDateLayouts = []string{time.RFC3339, "2006-01-02"}

// toStockUnitInput converte o body HTTP; data_entrada aceita RFC3339 ou AAAA-MM-DD.
func toStockUnitInput(req dto.StockUnitRequest) (inventory.StockUnitInput, error) {
	in := inventory.StockUnitInput{
		FabricType:        req.FabricType,
		Color:             req.Color,
		Lot:               req.Lot,
		Supplier:          req.Supplier,
		AvailableQuantity: req.AvailableQuantity,
		Unit:              req.Unit,
		Location:          req.Location,
		Barcode:           req.Barcode,
		Notes:             req.Notes,
		TotalQuantity:     decimal.Zero,
	}
	if req.TotalQuantity != nil {
		in.TotalQuantity = *req.TotalQuantity
	}
	if raw := strings.TrimSpace(req.EntryDate); raw != "" {
		for _, layout := range entryDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				in.EntryDate = &t
				return in, nil
			}
		}
		return in, fiber.NewError(fiber.StatusBadRequest, "data_entrada inválida")
	}
	return in, nil
}
