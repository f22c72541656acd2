package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// InventoryHandler maneja movimientos de cilindros, ajustes y consultas de stock (protegido).
type InventoryHandler struct {
	responder
	uc *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.MovementUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{responder: responder{log: log}, uc: uc}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de cilindros
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "cylinder_size, movement_type, quantity (from_status solo para quarantine)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.RecordMovementFromRequest(c.Context(), GetCaller(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(m))
}

// ListMovements godoc
// @Summary      Listar movimientos de cilindros
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        cylinder_size    query  string  false  "9kg, 14kg, 19kg, 48kg"
// @Param        movement_type    query  string  false  "Tipo de movimiento"
// @Param        refill_batch_id  query  string  false  "Lote de recarga"
// @Param        from             query  string  false  "RFC3339"
// @Param        to               query  string  false  "RFC3339"
// @Param        limit            query  int     false  "Límite"  default(50)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	f := repository.MovementFilter{}
	f.Limit, f.Offset = pageParams(c, 50, 200)
	if v := c.Query("cylinder_size"); v != "" {
		size := entity.CylinderSize(v)
		if !size.Valid() {
			return h.fail(c, domain.ErrInvalidInput)
		}
		f.CylinderSize = &size
	}
	if v := c.Query("movement_type"); v != "" {
		mt := entity.MovementType(v)
		f.MovementType = &mt
	}
	if v := c.Query("refill_batch_id"); v != "" {
		f.RefillBatchID = &v
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return h.fail(c, err)
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return h.fail(c, err)
	}
	list, err := h.uc.ListMovements(c.Context(), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// CreateAdjustment godoc
// @Summary      Crear ajuste de conteo (queda pendiente de aprobación)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "cylinder_size, status, delta, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.CreateAdjustmentFromRequest(c.Context(), GetCaller(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(m))
}

// ListPendingVariances godoc
// @Summary      Ajustes pendientes de aprobación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/adjustments/pending [get]
func (h *InventoryHandler) ListPendingVariances(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	list, err := h.uc.ListPendingVariances(c.Context(), limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// ApproveVariance godoc
// @Summary      Aprobar o rechazar un ajuste (admin/supervisor)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del ajuste"
// @Param        body  body  dto.ApproveVarianceRequest  true  "approved"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments/{id}/approve [post]
func (h *InventoryHandler) ApproveVariance(c *fiber.Ctx) error {
	var in dto.ApproveVarianceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.ApproveVariance(c.Context(), c.Params("id"), in.Approved, GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MovementFromEntity(m))
}

// GetStockSummary godoc
// @Summary      Resumen de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        group_by  query  string  false  "size | status | total"  default(size)
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStockSummary(c *fiber.Ctx) error {
	out, err := h.uc.GetStockSummary(c.Context(), c.Query("group_by", "size"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// GetLowStockAlerts godoc
// @Summary      Tamaños con pocos cilindros llenos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  int  false  "Umbral de llenos"  default(20)
// @Success      200  {array}  dto.LowStockAlert
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) GetLowStockAlerts(c *fiber.Ctx) error {
	out, err := h.uc.GetLowStockAlerts(c.Context(), int64(c.QueryInt("threshold", 20)))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// queryTime lee un parámetro RFC3339 opcional.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}
