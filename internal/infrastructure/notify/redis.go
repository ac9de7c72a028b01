package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/materias-primas-api/pkg/metrics"
)

const redisPublishTimeout = 2 * time.Second

// RedisPublisher subconjunto do cliente go-redis usado pelo notificador.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// NewRedisClient cria o cliente a partir da URL, com pool configurado, e verifica a conexão.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisNotifier publica os eventos num canal Redis para as outras instâncias e clientes.
// O PUBLISH roda fora da goroutine do chamador.
type RedisNotifier struct {
	client  RedisPublisher
	channel string
	log     zerolog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewRedisNotifier constrói o notificador. m pode ser nil.
func NewRedisNotifier(client RedisPublisher, channel string, log zerolog.Logger, m *metrics.Metrics) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, log: log, metrics: m}
}

func (n *RedisNotifier) Notify(ctx context.Context, event string, payload any) {
	body, err := NewEnvelope(event, payload).Marshal()
	if err != nil {
		n.log.Error().Err(err).Str("event", event).Msg("serializar evento")
		n.metrics.Dropped("redis")
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), redisPublishTimeout)
		defer cancel()
		if err := n.client.Publish(pubCtx, n.channel, body).Err(); err != nil {
			n.log.Warn().Err(err).Str("event", event).Str("channel", n.channel).Msg("evento não publicado no redis")
			n.metrics.Dropped("redis")
		}
	}()
}

// Close aguarda as publicações em andamento.
func (n *RedisNotifier) Close() error {
	n.wg.Wait()
	return nil
}
