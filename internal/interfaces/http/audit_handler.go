package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// AuditHandler consulta y verificación de la cadena de auditoría (protegido).
type AuditHandler struct {
	responder
	chain   *appaudit.Chain
	reports *appaudit.ReportUseCase
}

// NewAuditHandler construye el handler. reports puede ser nil (sin certificado PDF).
func NewAuditHandler(chain *appaudit.Chain, reports *appaudit.ReportUseCase, log *logger.Logger) *AuditHandler {
	return &AuditHandler{responder: responder{log: log}, chain: chain, reports: reports}
}

// ListEvents godoc
// @Summary      Listar eventos de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        event_type   query  string  false  "inventory, tank, ..."
// @Param        entity_type  query  string  false  "movement, refill_batch, tank"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        actor_id     query  string  false  "Usuario"
// @Param        action       query  string  false  "create, update, approve"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Param        page         query  int     false  "Página"  default(1)
// @Param        limit        query  int     false  "Límite"  default(50)
// @Success      200  {object}  dto.AuditEventPage
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/events [get]
func (h *AuditHandler) ListEvents(c *fiber.Ctx) error {
	f := repository.AuditFilter{
		EventType:  c.Query("event_type"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		ActorID:    c.Query("actor_id"),
		Action:     c.Query("action"),
	}
	var err error
	if f.From, err = queryTime(c, "from"); err != nil {
		return h.fail(c, err)
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return h.fail(c, err)
	}
	out, err := h.chain.GetEvents(c.Context(), f, c.QueryInt("page", 1), c.QueryInt("limit", 50))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// EntityHistory godoc
// @Summary      Historial de una entidad
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        type  path  string  true  "Tipo de entidad"
// @Param        id    path  string  true  "ID de la entidad"
// @Success      200  {array}   dto.AuditEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/entities/{type}/{id} [get]
func (h *AuditHandler) EntityHistory(c *fiber.Ctx) error {
	out, err := h.chain.GetEntityHistory(c.Context(), c.Params("type"), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Verificar integridad de la cadena
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        from_sequence  query  int  false  "Desde (incluido)"
// @Param        to_sequence    query  int  false  "Hasta (incluido); vacío = final"
// @Success      200  {object}  dto.ChainVerificationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit/verify [get]
func (h *AuditHandler) Verify(c *fiber.Ctx) error {
	r, err := sequenceRange(c)
	if err != nil {
		return h.fail(c, err)
	}
	v, err := h.chain.VerifyChainIntegrity(c.Context(), r)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(appaudit.VerificationToDTO(v))
}

// VerifyReport godoc
// @Summary      Certificado PDF de verificación (admin/supervisor)
// @Tags         audit
// @Security     Bearer
// @Produce      application/pdf
// @Param        from_sequence  query  int  false  "Desde (incluido)"
// @Param        to_sequence    query  int  false  "Hasta (incluido)"
// @Success      200  {file}    file
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit/verify/report.pdf [get]
func (h *AuditHandler) VerifyReport(c *fiber.Ctx) error {
	if h.reports == nil {
		return c.SendStatus(fiber.StatusNotImplemented)
	}
	r, err := sequenceRange(c)
	if err != nil {
		return h.fail(c, err)
	}
	doc, v, err := h.reports.VerificationReport(c.Context(), r, GetCaller(c).Actor)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="audit-verification-%s.pdf"`, v.VerifiedAt.Format("20060102-150405")))
	c.Set("X-Chain-Valid", strconv.FormatBool(v.Valid))
	return c.Send(doc)
}

func sequenceRange(c *fiber.Ctx) (*appaudit.Range, error) {
	from, to := c.Query("from_sequence"), c.Query("to_sequence")
	if from == "" && to == "" {
		return nil, nil
	}
	r := &appaudit.Range{}
	var err error
	if from != "" {
		if r.From, err = strconv.ParseInt(from, 10, 64); err != nil || r.From < 1 {
			return nil, fmt.Errorf("%w: from_sequence", domain.ErrInvalidInput)
		}
	}
	if to != "" {
		if r.To, err = strconv.ParseInt(to, 10, 64); err != nil || r.To < 1 {
			return nil, fmt.Errorf("%w: to_sequence", domain.ErrInvalidInput)
		}
	}
	return r, nil
}
