package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/pkg/metrics"
)

// RouterDeps dependências do router.
type RouterDeps struct {
	StockUnits *inventory.StockUnitUseCase
	Events     EventSubscriber // nil desativa o SSE
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
	AppName    string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	group := api.Group("/materias-primas")
	h := NewStockUnitHandler(deps.StockUnits, deps.Log)

	// rotas fixas antes de /:id
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Get("/estoque", h.StockBuckets)
	group.Get("/tipos-tecido", h.FabricTypes)
	group.Get("/cores", h.Colors)
	group.Get("/codigo-barras/:codigo/existe", h.BarcodeExists)
	group.Get("/codigo-barras/:codigo", h.FindByBarcode)
	if deps.Events != nil {
		group.Get("/events", NewEventsHandler(deps.Events, deps.Log).Stream)
	}

	group.Get("/:id", h.GetByID)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Get("/:id/historico", h.History)
	group.Post("/:id/corte", h.Cut)
	group.Post("/:id/status", h.RecomputeStatus)
}
