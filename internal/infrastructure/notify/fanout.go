package notify

import (
	"context"

	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/pkg/metrics"
)

// Fanout repassa cada evento para todos os destinos configurados.
type Fanout struct {
	targets []inventory.Notifier
	metrics *metrics.Metrics
}

// NewFanout ignora destinos nil. m pode ser nil.
func NewFanout(m *metrics.Metrics, targets ...inventory.Notifier) *Fanout {
	f := &Fanout{metrics: m}
	for _, t := range targets {
		if t != nil {
			f.targets = append(f.targets, t)
		}
	}
	return f
}

func (f *Fanout) Notify(ctx context.Context, event string, payload any) {
	if f.metrics != nil {
		f.metrics.EventsPublished.WithLabelValues(event).Inc()
	}
	for _, t := range f.targets {
		t.Notify(ctx, event, payload)
	}
}

// Len quantidade de destinos.
func (f *Fanout) Len() int { return len(f.targets) }
