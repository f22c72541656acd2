package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// BatchHandler maneja el ciclo de vida de los lotes de recarga (protegido).
type BatchHandler struct {
	responder
	uc *inventory.RefillBatchUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *inventory.RefillBatchUseCase, log *logger.Logger) *BatchHandler {
	return &BatchHandler{responder: responder{log: log}, uc: uc}
}

// Create godoc
// @Summary      Crear lote de recarga
// @Tags         refill-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRefillBatchRequest  true  "cylinder_size, quantity"
// @Success      201   {object}  dto.RefillBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/refill-batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.CreateRefillBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.uc.CreateFromRequest(c.Context(), GetCaller(c), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RefillBatchFromEntity(b))
}

// List godoc
// @Summary      Listar lotes de recarga
// @Tags         refill-batches
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "created, inspecting, filling, qc, passed, failed, stocked"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.RefillBatchResponse
// @Router       /api/refill-batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	var status *entity.BatchStatus
	if v := c.Query("status"); v != "" {
		s := entity.BatchStatus(v)
		status = &s
	}
	list, err := h.uc.List(c.Context(), status, limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.RefillBatchesFromEntities(list))
}

// GetByID godoc
// @Summary      Obtener lote de recarga
// @Tags         refill-batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.RefillBatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	b, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.RefillBatchFromEntity(b))
}

// StartInspection godoc
// @Summary      Iniciar inspección (reserva los vacíos)
// @Tags         refill-batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.RefillBatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id}/start-inspection [post]
func (h *BatchHandler) StartInspection(c *fiber.Ctx) error {
	return h.step(c, h.uc.StartInspection)
}

// CompleteInspection godoc
// @Summary      Completar inspección
// @Tags         refill-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.BatchCountsRequest  true  "passed, failed"
// @Success      200   {object}  dto.RefillBatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id}/complete-inspection [post]
func (h *BatchHandler) CompleteInspection(c *fiber.Ctx) error {
	return h.counts(c, h.uc.CompleteInspection)
}

// StartFilling godoc
// @Summary      Iniciar llenado
// @Tags         refill-batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.RefillBatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id}/start-filling [post]
func (h *BatchHandler) StartFilling(c *fiber.Ctx) error {
	return h.step(c, h.uc.StartFilling)
}

// CompleteFilling godoc
// @Summary      Completar llenado
// @Tags         refill-batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.RefillBatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id}/complete-filling [post]
func (h *BatchHandler) CompleteFilling(c *fiber.Ctx) error {
	return h.step(c, h.uc.CompleteFilling)
}

// CompleteQC godoc
// @Summary      Completar control de calidad
// @Tags         refill-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.BatchCountsRequest  true  "passed, failed"
// @Success      200   {object}  dto.RefillBatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id}/complete-qc [post]
func (h *BatchHandler) CompleteQC(c *fiber.Ctx) error {
	return h.counts(c, h.uc.CompleteQC)
}

// StockBatch godoc
// @Summary      Ingresar lote a llenos
// @Tags         refill-batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.RefillBatchResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/refill-batches/{id}/stock [post]
func (h *BatchHandler) StockBatch(c *fiber.Ctx) error {
	return h.step(c, h.uc.StockBatch)
}

type batchStep func(ctx context.Context, id string, caller entity.Caller) (*entity.RefillBatch, error)

type batchCounts func(ctx context.Context, id string, passed, failed int64, caller entity.Caller) (*entity.RefillBatch, error)

func (h *BatchHandler) step(c *fiber.Ctx, fn batchStep) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	b, err := fn(c.Context(), c.Params("id"), GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.RefillBatchFromEntity(b))
}

func (h *BatchHandler) counts(c *fiber.Ctx, fn batchCounts) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.BatchCountsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := fn(c.Context(), c.Params("id"), in.Passed, in.Failed, GetCaller(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.RefillBatchFromEntity(b))
}
