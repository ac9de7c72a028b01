package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/materias-primas-api/internal/infrastructure/postgres/migrations"
)

// RunMigrations executa o comando goose (up, down, status, version, redo...) com os scripts
// embutidos contra dsn.
func RunMigrations(ctx context.Context, dsn, command string, log zerolog.Logger, args ...string) error {
	return runMigrations(ctx, dsn, migrations.FS, command, log, args...)
}

func runMigrations(ctx context.Context, dsn string, files fs.FS, command string, log zerolog.Logger, args ...string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("abrir banco: %w", err)
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// gooseLogger adapta o zerolog para goose.Logger.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info().Str("component", "goose").Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Fatal().Str("component", "goose").Msgf(format, v...)
}
