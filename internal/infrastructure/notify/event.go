// Package notify implementa os destinos das notificações de mudança de matérias-primas:
// barramento em memória (watermill/gochannel, usado pelo SSE), Redis PUBLISH e Kafka.
// Todos são fire-and-forget: falhas de entrega só geram log e métrica.
package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
)

var (
	_ inventory.Notifier = (*Bus)(nil)
	_ inventory.Notifier = (*RedisNotifier)(nil)
	_ inventory.Notifier = (*KafkaNotifier)(nil)
	_ inventory.Notifier = (*Fanout)(nil)
)

// Envelope formato dos eventos publicados em todos os destinos.
type Envelope struct {
	ID        string    `json:"event_id"`
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// partitionKeyer é implementado pelos payloads que identificam uma bobina.
type partitionKeyer interface {
	PartitionKey() string
}

// NewEnvelope envolve payload com id e horário.
func NewEnvelope(event string, payload any) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Key devolve a chave de partição do payload, ou vazio.
func (e Envelope) Key() string {
	if k, ok := e.Payload.(partitionKeyer); ok {
		return k.PartitionKey()
	}
	return ""
}

// Marshal serializa o envelope em JSON.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
