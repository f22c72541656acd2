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

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/application/tank"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	inframetrics "github.com/jhoicas/gasdepot-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/gasdepot-api/internal/infrastructure/pdf"
	"github.com/jhoicas/gasdepot-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/gasdepot-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/gasdepot-api/internal/interfaces/http"
	"github.com/jhoicas/gasdepot-api/pkg/config"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sequence_backend", cfg.Sequence.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.MigrateOnStart {
		mg, err := postgres.NewMigrator(pool)
		if err != nil {
			log.Fatal().Err(err).Msg("preparar migraciones")
		}
		if err := mg.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		version, _, _ := mg.Version()
		_ = mg.Close()
		log.Info().Uint("version", version).Msg("migraciones aplicadas")
	}

	// Consecutivos MOV/ADJ/FILL/BULK: tabla reference_sequences o Redis INCR.
	var sequences repository.SequenceRepository
	if cfg.Sequence.Backend == config.SequenceBackendRedis {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		sequences = infraredis.NewSequenceRepository(client)
	}

	var metrics ports.Metrics = ports.NopMetrics{}
	var prom *inframetrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = inframetrics.New()
		metrics = prom
	}

	clock := ports.SystemClock{}
	txRunner := postgres.NewTxRunner(pool, sequences)
	reader := postgres.NewStore(pool).WithSequences(sequences)
	auditRepo := postgres.NewAuditEventRepository(pool, cfg.Audit.ChainLockKey)
	chain := appaudit.NewChain(auditRepo, clock, metrics, log, cfg.Audit.VerifyPageSize)

	movementUC := inventory.NewMovementUseCase(txRunner, reader, chain, metrics, clock, log)
	batchUC := inventory.NewRefillBatchUseCase(txRunner, reader, chain, metrics, clock, log)
	tankUC := tank.NewTankUseCase(txRunner, reader, chain, metrics, clock, log)

	// PDF: certificado de verificación de la cadena
	reportUC := appaudit.NewReportUseCase(chain, infrapdf.NewMarotoReportRenderer(), cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if prom != nil {
		app.Use(prom.Middleware())
		app.Get(cfg.Metrics.Path, prom.FiberHandler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "GasDepot API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementUC,
		Batches:   batchUC,
		Tanks:     tankUC,
		Chain:     chain,
		Reports:   reportUC,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
