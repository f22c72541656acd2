package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	domainaudit "github.com/jhoicas/gasdepot-api/internal/domain/audit"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// Entry datos de una operación a registrar en la cadena.
type Entry struct {
	EventType     string
	EventSubtype  string
	Action        string
	Caller        entity.Caller
	EntityType    string
	EntityID      string
	EntityRef     string
	Summary       string
	PreviousState any
	NewState      any
}

// LogResult resultado de Log. Los errores de auditoría no se propagan como error de la
// operación de negocio; quedan aquí para quien quiera inspeccionarlos.
// SnapshotErr indica que el evento se encadenó con un marcador en lugar del estado.
type LogResult struct {
	Event       *entity.AuditEvent
	Err         error
	SnapshotErr error
}

// OK indica si el evento quedó encadenado.
func (r LogResult) OK() bool { return r.Err == nil && r.Event != nil }

// Range rango de secuencias a verificar (To = 0 significa hasta el final).
type Range struct {
	From int64
	To   int64
}

// Chain cadena de auditoría con escritor único.
type Chain struct {
	repo     repository.AuditEventRepository
	clock    ports.Clock
	metrics  ports.Metrics
	log      *logger.Logger
	pageSize int

	// mu serializa los Append de este proceso; el repositorio serializa entre procesos.
	mu sync.Mutex
}

// NewChain construye el servicio de auditoría.
func NewChain(repo repository.AuditEventRepository, clock ports.Clock, metrics ports.Metrics, log *logger.Logger, pageSize int) *Chain {
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Chain{
		repo:     repo,
		clock:    clock,
		metrics:  metrics,
		log:      log.Component("audit_chain"),
		pageSize: pageSize,
	}
}

// Log agrega un registro enlazado al último de la cadena. Ignora la cancelación de ctx:
// la operación de negocio ya se confirmó.
func (c *Chain) Log(ctx context.Context, entry Entry) LogResult {
	ctx = context.WithoutCancel(ctx)

	prevState, prevErr := domainaudit.Snapshot(entry.PreviousState)
	newState, newErr := domainaudit.Snapshot(entry.NewState)
	snapErr := errors.Join(prevErr, newErr)
	if snapErr != nil {
		c.log.Error().Err(snapErr).
			Str("event_subtype", entry.EventSubtype).
			Str("entity_id", entry.EntityID).
			Msg("estado no serializable; se audita con marcador")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ev, err := c.repo.Append(ctx, func(last *entity.AuditEvent) (*entity.AuditEvent, error) {
		e := &entity.AuditEvent{
			ID:            uuid.New().String(),
			EventType:     entry.EventType,
			EventSubtype:  entry.EventSubtype,
			Action:        entry.Action,
			ActorID:       entry.Caller.Actor.ID,
			ActorEmail:    entry.Caller.Actor.Email,
			ActorRole:     entry.Caller.Actor.Role,
			EntityType:    entry.EntityType,
			EntityID:      entry.EntityID,
			EntityRef:     entry.EntityRef,
			Summary:       entry.Summary,
			PreviousState: prevState,
			NewState:      newState,
			Metadata:      entry.Caller.Metadata,
			OccurredAt:    c.clock.Now(),
		}
		if err := domainaudit.Seal(e, last); err != nil {
			return nil, err
		}
		return e, nil
	})
	c.metrics.AuditAppended(err == nil)
	if err != nil {
		c.log.Error().Err(err).
			Str("event_type", entry.EventType).
			Str("event_subtype", entry.EventSubtype).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Msg("no se pudo registrar el evento de auditoría")
		return LogResult{Err: fmt.Errorf("audit append: %w", err), SnapshotErr: snapErr}
	}
	c.log.Debug().Int64("sequence", ev.SequenceNumber).Str("event_subtype", ev.EventSubtype).Msg("evento auditado")
	return LogResult{Event: ev, SnapshotErr: snapErr}
}

// Verification resultado de VerifyChainIntegrity.
type Verification struct {
	Valid               bool
	Checked             int64
	FirstBrokenSequence *int64
	Reason              string
	From                int64
	To                  int64
	LastHash            string
	VerifiedAt          time.Time
}

// VerifyChainIntegrity recorre la cadena (o el rango) por páginas, recalcula cada hash y
// comprueba el enlace con el registro anterior. Se detiene en el primer registro roto.
func (c *Chain) VerifyChainIntegrity(ctx context.Context, r *Range) (*Verification, error) {
	started := time.Now()
	from, to := int64(1), int64(0)
	if r != nil {
		if r.From > 0 {
			from = r.From
		}
		to = r.To
		if to > 0 && to < from {
			return nil, fmt.Errorf("%w: rango de secuencias invertido", domain.ErrInvalidInput)
		}
	}

	var anchor *entity.AuditEvent
	if from > 1 {
		var err error
		anchor, err = c.repo.GetBySequence(ctx, from-1)
		if err != nil {
			return nil, fmt.Errorf("anchor: %w", err)
		}
	}

	res := &Verification{Valid: true, From: from, To: to}
	v := domainaudit.NewVerifier(anchor)
	cursor := from
	for {
		page, err := c.repo.ListRange(ctx, cursor, to, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list range: %w", err)
		}
		for _, e := range page {
			b := v.Check(e)
			if b == nil && anchor == nil && v.Checked() == 1 && e.SequenceNumber != 1 {
				// sin ancla el primer registro debe ser el génesis
				b = &domainaudit.Break{SequenceNumber: e.SequenceNumber, Reason: domainaudit.ReasonSequenceGap}
			}
			if b != nil {
				seq := b.SequenceNumber
				res.Valid = false
				res.FirstBrokenSequence = &seq
				res.Reason = b.Reason
				break
			}
			res.LastHash = e.RecordHash
		}
		if !res.Valid || len(page) < c.pageSize {
			break
		}
		cursor = page[len(page)-1].SequenceNumber + 1
	}
	res.Checked = v.Checked()
	res.VerifiedAt = c.clock.Now()

	c.metrics.ChainVerified(res.Valid, res.Checked, time.Since(started))
	if res.Valid {
		c.log.Info().Int64("checked", res.Checked).Msg("cadena de auditoría verificada")
	} else {
		c.log.Warn().Int64("first_broken", *res.FirstBrokenSequence).Str("reason", res.Reason).
			Msg("cadena de auditoría rota")
	}
	return res, nil
}

// GetEvents lista eventos con filtros; page empieza en 1.
func (c *Chain) GetEvents(ctx context.Context, f repository.AuditFilter, page, limit int) (*dto.AuditEventPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit
	list, total, err := c.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.AuditEventPage{
		Items: dto.AuditEventsFromEntities(list),
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

// GetEntityHistory eventos de una entidad en orden de secuencia.
func (c *Chain) GetEntityHistory(ctx context.Context, entityType, entityID string) ([]dto.AuditEventResponse, error) {
	if entityType == "" || entityID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := c.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	return dto.AuditEventsFromEntities(list), nil
}

// VerificationToDTO convierte el resultado para la respuesta HTTP.
func VerificationToDTO(v *Verification) dto.ChainVerificationResponse {
	return dto.ChainVerificationResponse{
		Valid:               v.Valid,
		Checked:             v.Checked,
		FirstBrokenSequence: v.FirstBrokenSequence,
		Reason:              v.Reason,
		FromSequence:        v.From,
		ToSequence:          v.To,
		LastHash:            v.LastHash,
		VerifiedAt:          v.VerifiedAt,
	}
}
