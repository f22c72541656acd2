package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/application/tank"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// TankHandler maneja tanques de granel, sus movimientos y lecturas (protegido).
type TankHandler struct {
	responder
	uc *tank.TankUseCase
}

// NewTankHandler construye el handler.
func NewTankHandler(uc *tank.TankUseCase, log *logger.Logger) *TankHandler {
	return &TankHandler{responder: responder{log: log}, uc: uc}
}

// Create godoc
// @Summary      Crear tanque
// @Tags         tanks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTankRequest  true  "tank_code, name, capacity_litres, niveles"
// @Success      201   {object}  dto.TankResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tanks [post]
func (h *TankHandler) Create(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.CreateTankRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.uc.CreateTank(c.Context(), tank.CreateTankInput{
		TankCode:     in.TankCode,
		Name:         in.Name,
		Product:      in.Product,
		Capacity:     in.CapacityLitres,
		MinimumLevel: in.MinimumLevelLitres,
		MaximumLevel: in.MaximumLevelLitres,
		InitialLevel: in.CurrentLevelLitres,
		Caller:       GetCaller(c),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TankFromEntity(t))
}

// List godoc
// @Summary      Listar tanques
// @Tags         tanks
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TankResponse
// @Router       /api/tanks [get]
func (h *TankHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListTanks(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.TanksFromEntities(list))
}

// GetByID godoc
// @Summary      Obtener tanque
// @Tags         tanks
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del tanque"
// @Success      200  {object}  dto.TankResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tanks/{id} [get]
func (h *TankHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTank(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.TankFromEntity(t))
}

// Update godoc
// @Summary      Actualizar tanque
// @Tags         tanks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del tanque"
// @Param        body  body  dto.UpdateTankRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.TankResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tanks/{id} [put]
func (h *TankHandler) Update(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.UpdateTankRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input := tank.UpdateTankInput{
		Name:         in.Name,
		Capacity:     in.CapacityLitres,
		MinimumLevel: in.MinimumLevelLitres,
		MaximumLevel: in.MaximumLevelLitres,
		Caller:       GetCaller(c),
	}
	if in.Status != nil {
		s := entity.TankStatus(*in.Status)
		input.Status = &s
	}
	t, err := h.uc.UpdateTank(c.Context(), c.Params("id"), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.TankFromEntity(t))
}

// RecordMovement godoc
// @Summary      Registrar movimiento de granel
// @Tags         tanks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del tanque"
// @Param        body  body  dto.BulkMovementRequest  true  "movement_type, quantity_litres"
// @Success      201   {object}  dto.BulkMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tanks/{id}/movements [post]
func (h *TankHandler) RecordMovement(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.BulkMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.uc.RecordBulkMovement(c.Context(), tank.BulkMovementInput{
		TankID:       c.Params("id"),
		MovementType: entity.BulkMovementType(in.MovementType),
		Litres:       in.QuantityLitres,
		ReferenceDoc: in.ReferenceDoc,
		Notes:        in.Notes,
		Caller:       GetCaller(c),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BulkMovementFromEntity(m))
}

// ListMovements godoc
// @Summary      Movimientos de granel de un tanque
// @Tags         tanks
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del tanque"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.BulkMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tanks/{id}/movements [get]
func (h *TankHandler) ListMovements(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	from, err := queryTime(c, "from")
	if err != nil {
		return h.fail(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.uc.ListBulkMovements(c.Context(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.BulkMovementsFromEntities(list))
}

// RecordReading godoc
// @Summary      Registrar lectura de nivel
// @Tags         tanks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del tanque"
// @Param        body  body  dto.TankReadingRequest  true  "level_litres, temperatura y presión opcionales"
// @Success      201   {object}  dto.TankReadingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/tanks/{id}/readings [post]
func (h *TankHandler) RecordReading(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return unauthorized(c)
	}
	var in dto.TankReadingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := h.uc.RecordTankReading(c.Context(), tank.TankReadingInput{
		TankID:       c.Params("id"),
		LevelLitres:  in.LevelLitres,
		TemperatureC: in.TemperatureC,
		PressureBar:  in.PressureBar,
		ReadAt:       in.ReadAt,
		Caller:       GetCaller(c),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TankReadingFromEntity(r))
}

// ListReadings godoc
// @Summary      Lecturas de un tanque
// @Tags         tanks
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del tanque"
// @Success      200  {array}   dto.TankReadingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tanks/{id}/readings [get]
func (h *TankHandler) ListReadings(c *fiber.Ctx) error {
	limit, offset := pageParams(c, 50, 200)
	list, err := h.uc.ListReadings(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.TankReadingsFromEntities(list))
}

// Alerts godoc
// @Summary      Tanques fuera de su rango operativo
// @Tags         tanks
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TankAlertResponse
// @Router       /api/tanks/alerts [get]
func (h *TankHandler) Alerts(c *fiber.Ctx) error {
	alerts, err := h.uc.GetTankAlerts(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]dto.TankAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.TankAlertResponse{Tank: dto.TankFromEntity(a.Tank), Level: a.Level})
	}
	return c.JSON(out)
}
