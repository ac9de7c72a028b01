package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/materias-primas-api/internal/application/inventory"
	"github.com/jhoicas/materias-primas-api/internal/infrastructure/notify"
	"github.com/jhoicas/materias-primas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/materias-primas-api/internal/interfaces/http"
	"github.com/jhoicas/materias-primas-api/pkg/config"
	"github.com/jhoicas/materias-primas-api/pkg/logger"
	"github.com/jhoicas/materias-primas-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	// Quantidades saem como número JSON, não como string.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com PostgreSQL")
	}
	defer pool.Close()

	m := metrics.New("materias_primas")

	// Destinos das notificações: barramento em memória (SSE) sempre; Redis e Kafka quando configurados.
	bus := notify.NewBus(cfg.Events.Buffer, log.Component("events"))
	targets := []inventory.Notifier{bus}
	var closers []func() error

	if cfg.Events.RedisEnabled() {
		client, err := notify.NewRedisClient(ctx, cfg.Events.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexão com Redis")
		}
		redisNotifier := notify.NewRedisNotifier(client, cfg.Events.RedisChannel, log.Component("redis"), m)
		targets = append(targets, redisNotifier)
		closers = append(closers, redisNotifier.Close, client.Close)
	}
	if cfg.Events.KafkaEnabled() {
		producer, err := notify.NewKafkaProducer(cfg.Events.KafkaBrokers, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexão com Kafka")
		}
		kafkaNotifier := notify.NewKafkaNotifier(producer, cfg.Events.KafkaTopic, log.Component("kafka"), m)
		targets = append(targets, kafkaNotifier)
		closers = append(closers, kafkaNotifier.Close)
	}
	notifier := notify.NewFanout(m, targets...)
	log.Info().Int("targets", notifier.Len()).Msg("notificações configuradas")

	txRunner := postgres.NewTxRunner(pool)
	stockUnitUC := inventory.NewStockUnitUseCase(
		txRunner,
		postgres.NewStockUnitRepository(pool),
		postgres.NewMovementRepository(pool),
		notifier,
		log.Component("inventory"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httpRouter.ErrorHandler,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(recover.New())
	app.Use(httpRouter.Metrics(m))

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Matérias-primas API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUnits: stockUnitUC,
		Events:     bus,
		Metrics:    m,
		Log:        log.Component("http"),
		AppName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	// fecha o barramento antes para encerrar os streams SSE abertos
	if err := bus.Close(); err != nil {
		log.Error().Err(err).Msg("fechar barramento de eventos")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("fechar destino de eventos")
		}
	}

	log.Info().Msg("aplicação encerrada")
}
