package main

import (
	"context"
	"flag"
	"os"

	"github.com/jhoicas/materias-primas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/materias-primas-api/pkg/config"
	"github.com/jhoicas/materias-primas-api/pkg/logger"
)

// Uso: migrate [up|down|status|version|redo|reset] [args...]
func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := postgres.RunMigrations(context.Background(), cfg.DB.ConnectionString(), command, log.Zerolog(), args...); err != nil {
		log.Error().Err(err).Str("command", command).Msg("migração falhou")
		os.Exit(1)
	}
	log.Info().Str("command", command).Msg("migração concluída")
}
