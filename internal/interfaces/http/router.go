package http

import (
	"github.com/gofiber/fiber/v2"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/application/tank"
	"github.com/jhoicas/gasdepot-api/pkg/jwt"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *inventory.MovementUseCase
	Batches   *inventory.RefillBatchUseCase
	Tanks     *tank.TankUseCase
	Chain     *appaudit.Chain
	Reports   *appaudit.ReportUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	supervisors := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Inventario de cilindros
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Movements, log.Component("http_inventory"))
	inv.Post("/movements", invHandler.RecordMovement)
	inv.Get("/movements", invHandler.ListMovements)
	inv.Post("/adjustments", invHandler.CreateAdjustment)
	inv.Get("/adjustments/pending", invHandler.ListPendingVariances)
	inv.Post("/adjustments/:id/approve", supervisors, invHandler.ApproveVariance)
	inv.Get("/stock", invHandler.GetStockSummary)
	inv.Get("/alerts", invHandler.GetLowStockAlerts)

	// Lotes de recarga
	batches := api.Group("/refill-batches")
	batchHandler := NewBatchHandler(deps.Batches, log.Component("http_batches"))
	batches.Post("/", batchHandler.Create)
	batches.Get("/", batchHandler.List)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Post("/:id/start-inspection", batchHandler.StartInspection)
	batches.Post("/:id/complete-inspection", batchHandler.CompleteInspection)
	batches.Post("/:id/start-filling", batchHandler.StartFilling)
	batches.Post("/:id/complete-filling", batchHandler.CompleteFilling)
	batches.Post("/:id/complete-qc", batchHandler.CompleteQC)
	batches.Post("/:id/stock", batchHandler.StockBatch)

	// Tanques de granel (alerts antes de /:id)
	tanks := api.Group("/tanks")
	tankHandler := NewTankHandler(deps.Tanks, log.Component("http_tanks"))
	tanks.Post("/", tankHandler.Create)
	tanks.Get("/", tankHandler.List)
	tanks.Get("/alerts", tankHandler.Alerts)
	tanks.Get("/:id", tankHandler.GetByID)
	tanks.Put("/:id", tankHandler.Update)
	tanks.Post("/:id/movements", tankHandler.RecordMovement)
	tanks.Get("/:id/movements", tankHandler.ListMovements)
	tanks.Post("/:id/readings", tankHandler.RecordReading)
	tanks.Get("/:id/readings", tankHandler.ListReadings)

	// Auditoría
	audit := api.Group("/audit")
	auditHandler := NewAuditHandler(deps.Chain, deps.Reports, log.Component("http_audit"))
	audit.Get("/events", auditHandler.ListEvents)
	audit.Get("/entities/:type/:id", auditHandler.EntityHistory)
	audit.Get("/verify", auditHandler.Verify)
	audit.Get("/verify/report.pdf", supervisors, auditHandler.VerifyReport)
}
