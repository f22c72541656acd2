// migrate aplica o revierte las migraciones embebidas.
//
// Uso: go run ./cmd/migrate [up | down [n] | version]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/gasdepot-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gasdepot-api/pkg/config"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Component("migrate")

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-migrate")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	mg, err := postgres.NewMigrator(pool)
	if err != nil {
		log.Fatal().Err(err).Msg("preparar migraciones")
	}
	defer mg.Close()

	switch cmd {
	case "up":
		err = mg.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil {
				log.Fatal().Str("arg", os.Args[2]).Msg("número de pasos inválido")
			}
		}
		err = mg.Down(steps)
	case "version":
	default:
		log.Fatal().Str("cmd", cmd).Msg("uso: migrate [up | down [n] | version]")
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}

	version, dirty, err := mg.Version()
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Str("cmd", cmd).Uint("version", version).Bool("dirty", dirty).Msg("migraciones al día")
}
