package http

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/materias-primas-api/internal/infrastructure/notify"
)

// EventSubscriber fonte das mensagens do stream SSE (notify.Bus em produção).
type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// EventsHandler publica os eventos de mudança como Server-Sent Events.
type EventsHandler struct {
	bus       EventSubscriber
	keepAlive time.Duration
	log       zerolog.Logger
}

// NewEventsHandler constrói o handler.
func NewEventsHandler(bus EventSubscriber, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{bus: bus, keepAlive: 15 * time.Second, log: log}
}

// Stream godoc
// @Summary      Stream de eventos (SSE)
// @Description  unit-created, unit-updated, unit-deleted e unit-status-changed, no formato text/event-stream.
// @Tags         materias-primas
// @Produce      text/event-stream
// @Success      200
// @Router       /api/materias-primas/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := h.bus.Subscribe(ctx)
	if err != nil {
		cancel()
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		fmt.Fprint(w, ": conectado\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", msg.UUID, msg.Metadata.Get(notify.MetadataEvent), msg.Payload)
				msg.Ack()
				if err := w.Flush(); err != nil {
					h.log.Debug().Err(err).Msg("cliente SSE desconectado")
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
