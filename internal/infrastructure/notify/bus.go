package notify

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// Topic tópico único do barramento em memória.
const Topic = "materias-primas.events"

// Metadados gravados em cada mensagem do barramento.
const (
	MetadataEvent = "event"
	MetadataKey   = "key"
)

// Bus barramento em memória sobre watermill/gochannel. Cada assinante recebe todos os eventos
// publicados depois da assinatura; sem assinantes o evento é descartado.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    zerolog.Logger
}

// NewBus cria o barramento; buffer é o tamanho do canal de saída de cada assinante.
func NewBus(buffer int64, log zerolog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, NewWatermillLogger(log))
	return &Bus{pubsub: pubsub, log: log}
}

// Notify publica o evento no tópico do barramento.
func (b *Bus) Notify(_ context.Context, event string, payload any) {
	env := NewEnvelope(event, payload)
	body, err := env.Marshal()
	if err != nil {
		b.log.Error().Err(err).Str("event", event).Msg("serializar evento")
		return
	}
	msg := message.NewMessage(env.ID, body)
	msg.Metadata.Set(MetadataEvent, event)
	msg.Metadata.Set(MetadataKey, env.Key())
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		b.log.Warn().Err(err).Str("event", event).Msg("evento não publicado no barramento")
	}
}

// Subscribe devolve o canal de mensagens até ctx terminar. O consumidor deve dar Ack em cada uma.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

// Close encerra o barramento e fecha os canais dos assinantes.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// zerologAdapter adapta zerolog para watermill.LoggerAdapter.
type zerologAdapter struct {
	log zerolog.Logger
}

// NewWatermillLogger expõe o zerolog como logger do watermill.
func NewWatermillLogger(log zerolog.Logger) watermill.LoggerAdapter {
	return zerologAdapter{log: log.With().Str("component", "watermill").Logger()}
}

func (a zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error().Err(err).Fields(map[string]any(fields)).Msg(msg)
}

func (a zerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info().Fields(map[string]any(fields)).Msg(msg)
}

func (a zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug().Fields(map[string]any(fields)).Msg(msg)
}

func (a zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Trace().Fields(map[string]any(fields)).Msg(msg)
}

func (a zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zerologAdapter{log: a.log.With().Fields(map[string]any(fields)).Logger()}
}
