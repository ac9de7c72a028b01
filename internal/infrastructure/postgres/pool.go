package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jhoicas/materias-primas-api/pkg/config"
	"github.com/rs/zerolog"
)

// NewPool cria o pool de conexões PostgreSQL a partir da configuração da aplicação.
// Cada conexão recebe statement_timeout = DB_QUERY_TIMEOUT_SECONDS e o codec NUMERIC -> decimal.Decimal.
func NewPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   queryLogger(log),
		LogLevel: traceLevel(log.GetLevel()),
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("criar pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

func poolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	if cfg.QueryTimeout > 0 {
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.QueryTimeout.Milliseconds(), 10)
	}

	// Registrar codec para NUMERIC -> shopspring/decimal (todas as conexões do pool).
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return poolConfig, nil
}

// queryLogger encaminha o trace do pgx para o zerolog.
func queryLogger(log zerolog.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		var ev *zerolog.Event
		switch level {
		case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
			ev = log.Debug()
		case tracelog.LogLevelInfo:
			ev = log.Info()
		case tracelog.LogLevelWarn:
			ev = log.Warn()
		default:
			ev = log.Error()
		}
		ev.Fields(data).Str("component", "pgx").Msg(msg)
	}
}

// traceLevel só registra SQL em debug; acima disso apenas erros do driver.
func traceLevel(l zerolog.Level) tracelog.LogLevel {
	if l <= zerolog.DebugLevel {
		return tracelog.LogLevelDebug
	}
	return tracelog.LogLevelError
}
