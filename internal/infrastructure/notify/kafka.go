package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jhoicas/materias-primas-api/pkg/metrics"
)

const kafkaEnqueueTimeout = time.Second

// NewKafkaConfig configuração do producer assíncrono: só erros voltam pelo canal,
// chave da mensagem define a partição (ordem por bobina).
func NewKafkaConfig(clientID string) *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = false
	config.Producer.Return.Errors = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	return config
}

// NewKafkaProducer cria o AsyncProducer para os brokers informados.
func NewKafkaProducer(brokers []string, clientID string) (sarama.AsyncProducer, error) {
	producer, err := sarama.NewAsyncProducer(brokers, NewKafkaConfig(clientID))
	if err != nil {
		return nil, fmt.Errorf("criar producer kafka: %w", err)
	}
	return producer, nil
}

// KafkaNotifier publica os eventos num tópico Kafka, chaveados pelo id da bobina.
type KafkaNotifier struct {
	producer sarama.AsyncProducer
	topic    string
	log      zerolog.Logger
	metrics  *metrics.Metrics
	done     chan struct{}
}

// NewKafkaNotifier assume o producer e passa a consumir o canal de erros dele. m pode ser nil.
func NewKafkaNotifier(producer sarama.AsyncProducer, topic string, log zerolog.Logger, m *metrics.Metrics) *KafkaNotifier {
	n := &KafkaNotifier{
		producer: producer,
		topic:    topic,
		log:      log,
		metrics:  m,
		done:     make(chan struct{}),
	}
	go n.drainErrors()
	return n
}

func (n *KafkaNotifier) Notify(ctx context.Context, event string, payload any) {
	env := NewEnvelope(event, payload)
	body, err := env.Marshal()
	if err != nil {
		n.log.Error().Err(err).Str("event", event).Msg("serializar evento")
		n.metrics.Dropped("kafka")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event)},
			{Key: []byte("event_id"), Value: []byte(env.ID)},
		},
	}
	if key := env.Key(); key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	timer := time.NewTimer(kafkaEnqueueTimeout)
	defer timer.Stop()
	select {
	case n.producer.Input() <- msg:
	case <-ctx.Done():
		n.log.Warn().Err(ctx.Err()).Str("event", event).Msg("evento não enfileirado no kafka")
		n.metrics.Dropped("kafka")
	case <-timer.C:
		n.log.Warn().Str("event", event).Msg("fila do producer kafka cheia, evento descartado")
		n.metrics.Dropped("kafka")
	}
}

func (n *KafkaNotifier) drainErrors() {
	defer close(n.done)
	for perr := range n.producer.Errors() {
		n.log.Error().Err(perr.Err).Str("topic", perr.Msg.Topic).Msg("falha ao entregar evento no kafka")
		n.metrics.Dropped("kafka")
	}
}

// Close esvazia o buffer do producer e espera o fim do consumo de erros.
func (n *KafkaNotifier) Close() error {
	n.producer.AsyncClose()
	<-n.done
	return nil
}
