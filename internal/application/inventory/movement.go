package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/inventory"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// MovementUseCase registra movimientos de cilindros y ajustes de forma transaccional
// y expone las lecturas del libro de stock.
type MovementUseCase struct {
	txRunner TxRunner
	reader   repository.Store
	audit    AuditLogger
	metrics  ports.Metrics
	clock    ports.Clock
	log      *logger.Logger
}

// NewMovementUseCase construye el caso de uso. reader se usa para consultas fuera de transacción.
func NewMovementUseCase(
	txRunner TxRunner,
	reader repository.Store,
	audit AuditLogger,
	metrics ports.Metrics,
	clock ports.Clock,
	log *logger.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner: txRunner,
		reader:   reader,
		audit:    audit,
		metrics:  metrics,
		clock:    clock,
		log:      log.Component("movements"),
	}
}

// RecordMovementInput entrada para registrar un movimiento de cilindros.
// FromStatus solo aplica a quarantine y ahí es obligatorio.
type RecordMovementInput struct {
	CylinderSize entity.CylinderSize
	MovementType entity.MovementType
	Quantity     int64
	FromStatus   *entity.CylinderStatus
	OrderID      *string
	RouteStopID  *string
	Notes        string
	Caller       entity.Caller
}

// RecordMovement deriva la transición del tipo, aplica los deltas por bucket y persiste el
// movimiento en una sola transacción. Si un bucket quedaría negativo no se escribe nada.
func (uc *MovementUseCase) RecordMovement(ctx context.Context, in RecordMovementInput) (*entity.Movement, error) {
	var m *entity.Movement
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		var err error
		m, err = recordMovementTx(ctx, store, uc.clock.Now(), movementSpec{
			size:        in.CylinderSize,
			typ:         in.MovementType,
			quantity:    in.Quantity,
			source:      in.FromStatus,
			orderID:     in.OrderID,
			routeStopID: in.RouteStopID,
			notes:       in.Notes,
			recordedBy:  in.Caller.Actor.ID,
		})
		return err
	})
	if err != nil {
		uc.reject("record_movement", err)
		return nil, err
	}

	uc.metrics.MovementRecorded(string(m.MovementType), m.Quantity)
	uc.log.Info().Str("reference", m.Reference).Str("type", string(m.MovementType)).
		Str("size", string(m.CylinderSize)).Int64("quantity", m.Quantity).Msg("movimiento registrado")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:    "inventory",
		EventSubtype: "movement_recorded",
		Action:       "create",
		Caller:       in.Caller,
		EntityType:   "movement",
		EntityID:     m.ID,
		EntityRef:    m.Reference,
		Summary:      fmt.Sprintf("%s %s x%d", m.MovementType, m.CylinderSize, m.Quantity),
		NewState:     dto.MovementFromEntity(m),
	})
	return m, nil
}

// AdjustmentInput entrada para un ajuste firmado sobre un bucket.
type AdjustmentInput struct {
	CylinderSize entity.CylinderSize
	Status       entity.CylinderStatus
	Delta        int64
	Reason       string
	Caller       entity.Caller
}

// CreateAdjustment registra un ajuste (ADJ-...) con la varianza pendiente de aprobación.
func (uc *MovementUseCase) CreateAdjustment(ctx context.Context, in AdjustmentInput) (*entity.Movement, error) {
	if !in.CylinderSize.Valid() || !in.Status.Valid() || in.Delta == 0 || in.Reason == "" {
		return nil, fmt.Errorf("%w: tamaño, estado, delta distinto de cero y motivo son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.clock.Now()
	var m *entity.Movement
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		qty := in.Delta
		if qty < 0 {
			qty = -qty
		}
		tr := inventory.AdjustmentTransition(in.Status, in.Delta)
		if err := applyDeltas(ctx, store.Stock(), in.CylinderSize, tr.Deltas(qty, nil)); err != nil {
			return err
		}
		seq, err := store.Sequences().Next(ctx, inventory.PrefixAdjustment, now)
		if err != nil {
			return fmt.Errorf("next adjustment reference: %w", err)
		}
		m = &entity.Movement{
			ID:           uuid.New().String(),
			Reference:    inventory.FormatReference(inventory.PrefixAdjustment, now, seq),
			CylinderSize: in.CylinderSize,
			MovementType: entity.MovementAdjustment,
			FromStatus:   tr.From,
			ToStatus:     tr.To,
			Quantity:     qty,
			Notes:        in.Reason,
			RecordedAt:   now,
			RecordedBy:   in.Caller.Actor.ID,
		}
		return store.Movements().Create(ctx, m)
	})
	if err != nil {
		uc.reject("create_adjustment", err)
		return nil, err
	}

	uc.metrics.MovementRecorded(string(entity.MovementAdjustment), m.Quantity)
	uc.log.Info().Str("reference", m.Reference).Int64("delta", in.Delta).Msg("ajuste registrado")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:    "inventory",
		EventSubtype: "adjustment_created",
		Action:       "create",
		Caller:       in.Caller,
		EntityType:   "movement",
		EntityID:     m.ID,
		EntityRef:    m.Reference,
		Summary:      fmt.Sprintf("ajuste %s/%s %+d: %s", m.CylinderSize, in.Status, in.Delta, in.Reason),
		NewState:     dto.MovementFromEntity(m),
	})
	return m, nil
}

// ApproveVariance aprueba o rechaza la varianza de un ajuste. No modifica el stock.
func (uc *MovementUseCase) ApproveVariance(ctx context.Context, movementID string, approved bool, caller entity.Caller) (*entity.Movement, error) {
	now := uc.clock.Now()
	var before entity.Movement
	var m *entity.Movement
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		var err error
		m, err = store.Movements().GetByIDForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NewNotFound("movement", movementID)
		}
		if !m.IsAdjustment() {
			return fmt.Errorf("%w: %s no es un ajuste", domain.ErrInvalidInput, m.Reference)
		}
		if m.VarianceApproved != nil {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyResolved, m.Reference)
		}
		before = *m
		by := caller.Actor.ID
		m.VarianceApproved = &approved
		m.VarianceApprovedBy = &by
		m.VarianceApprovedAt = &now
		return store.Movements().UpdateVariance(ctx, m)
	})
	if err != nil {
		uc.reject("approve_variance", err)
		return nil, err
	}

	subtype, verb := "variance_approved", "aprobada"
	if !approved {
		subtype, verb = "variance_rejected", "rechazada"
	}
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:     "inventory",
		EventSubtype:  subtype,
		Action:        "approve",
		Caller:        caller,
		EntityType:    "movement",
		EntityID:      m.ID,
		EntityRef:     m.Reference,
		Summary:       fmt.Sprintf("varianza %s en %s", verb, m.Reference),
		PreviousState: dto.MovementFromEntity(&before),
		NewState:      dto.MovementFromEntity(m),
	})
	return m, nil
}

// Agrupaciones del resumen de stock.
const (
	GroupBySize   = "size"
	GroupByStatus = "status"
	GroupByTotal  = "total"
)

// GetStockSummary proyecta los buckets por tamaño, por estado o en total.
func (uc *MovementUseCase) GetStockSummary(ctx context.Context, groupBy string) (*dto.StockSummaryResponse, error) {
	if groupBy == "" {
		groupBy = GroupBySize
	}
	if groupBy != GroupBySize && groupBy != GroupByStatus && groupBy != GroupByTotal {
		return nil, fmt.Errorf("%w: group_by %q", domain.ErrInvalidInput, groupBy)
	}
	buckets, err := uc.reader.Stock().List(ctx)
	if err != nil {
		return nil, err
	}

	qty := make(map[entity.CylinderSize]map[entity.CylinderStatus]int64, len(entity.CylinderSizes))
	var total int64
	for _, b := range buckets {
		if qty[b.CylinderSize] == nil {
			qty[b.CylinderSize] = make(map[entity.CylinderStatus]int64)
		}
		qty[b.CylinderSize][b.Status] += b.Quantity
		total += b.Quantity
	}

	out := &dto.StockSummaryResponse{GroupBy: groupBy, Total: total}
	switch groupBy {
	case GroupBySize:
		for _, size := range entity.CylinderSizes {
			g := dto.StockGroup{Key: string(size), Quantities: make(map[string]int64)}
			for _, status := range entity.CylinderStatuses {
				n := qty[size][status]
				g.Quantities[string(status)] = n
				g.Total += n
			}
			out.Groups = append(out.Groups, g)
		}
	case GroupByStatus:
		for _, status := range entity.CylinderStatuses {
			g := dto.StockGroup{Key: string(status), Quantities: make(map[string]int64)}
			for _, size := range entity.CylinderSizes {
				n := qty[size][status]
				g.Quantities[string(size)] = n
				g.Total += n
			}
			out.Groups = append(out.Groups, g)
		}
	case GroupByTotal:
		g := dto.StockGroup{Key: GroupByTotal, Quantities: make(map[string]int64), Total: total}
		for _, status := range entity.CylinderStatuses {
			for _, size := range entity.CylinderSizes {
				g.Quantities[string(status)] += qty[size][status]
			}
		}
		out.Groups = append(out.Groups, g)
	}
	return out, nil
}

// GetLowStockAlerts tamaños cuyo bucket de llenos está por debajo del umbral.
func (uc *MovementUseCase) GetLowStockAlerts(ctx context.Context, threshold int64) ([]dto.LowStockAlert, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: el umbral debe ser positivo", domain.ErrInvalidInput)
	}
	alerts := make([]dto.LowStockAlert, 0)
	for _, size := range entity.CylinderSizes {
		b, err := uc.reader.Stock().Get(ctx, size, entity.StatusFull)
		if err != nil {
			return nil, err
		}
		if b.Quantity < threshold {
			alerts = append(alerts, dto.LowStockAlert{
				CylinderSize: string(size),
				FullQuantity: b.Quantity,
				Threshold:    threshold,
				Shortfall:    threshold - b.Quantity,
			})
		}
	}
	return alerts, nil
}

// ListMovements lista movimientos con filtros.
func (uc *MovementUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return uc.reader.Movements().List(ctx, f)
}

// ListPendingVariances ajustes sin aprobar ni rechazar.
func (uc *MovementUseCase) ListPendingVariances(ctx context.Context, limit, offset int) ([]*entity.Movement, error) {
	return uc.ListMovements(ctx, repository.MovementFilter{PendingVariance: true, Limit: limit, Offset: offset})
}

func (uc *MovementUseCase) reject(op string, err error) {
	uc.metrics.OperationRejected(op, domain.Reason(err))
	uc.log.Warn().Err(err).Str("operation", op).Msg("operación rechazada")
}

// movementSpec datos de un movimiento emitido dentro de una transacción.
type movementSpec struct {
	size        entity.CylinderSize
	typ         entity.MovementType
	quantity    int64
	source      *entity.CylinderStatus
	batchID     *string
	phase       *entity.BatchPhase
	orderID     *string
	routeStopID *string
	notes       string
	recordedBy  string
}

// recordMovementTx valida, reserva la referencia MOV, aplica los deltas y persiste el movimiento.
// Lo usan tanto RecordMovement como las transiciones del lote de recarga.
func recordMovementTx(ctx context.Context, store repository.Store, now time.Time, s movementSpec) (*entity.Movement, error) {
	if !s.size.Valid() {
		return nil, fmt.Errorf("%w: tamaño de cilindro %q", domain.ErrInvalidInput, s.size)
	}
	if s.quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	// sin origen la cuarentena solo incrementa: reservado a los rechazados de un lote,
	// cuyos vacíos ya descontó la reserva
	if s.typ == entity.MovementQuarantine && s.source == nil && s.batchID == nil {
		return nil, fmt.Errorf("%w: quarantine requiere estado origen", domain.ErrInvalidInput)
	}
	tr, err := inventory.TransitionFor(s.typ, s.source)
	if err != nil {
		return nil, err
	}
	if err := applyDeltas(ctx, store.Stock(), s.size, tr.Deltas(s.quantity, s.phase)); err != nil {
		return nil, err
	}
	seq, err := store.Sequences().Next(ctx, inventory.PrefixMovement, now)
	if err != nil {
		return nil, fmt.Errorf("next movement reference: %w", err)
	}
	m := &entity.Movement{
		ID:            uuid.New().String(),
		Reference:     inventory.FormatReference(inventory.PrefixMovement, now, seq),
		CylinderSize:  s.size,
		MovementType:  s.typ,
		FromStatus:    tr.From,
		ToStatus:      tr.To,
		Quantity:      s.quantity,
		OrderID:       s.orderID,
		RefillBatchID: s.batchID,
		RouteStopID:   s.routeStopID,
		BatchPhase:    s.phase,
		Notes:         s.notes,
		RecordedAt:    now,
		RecordedBy:    s.recordedBy,
	}
	if err := store.Movements().Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// applyDeltas aplica primero los decrementos (con guarda de no-negatividad) y luego los incrementos.
func applyDeltas(ctx context.Context, stock repository.StockRepository, size entity.CylinderSize, deltas []inventory.BucketDelta) error {
	for _, d := range deltas {
		var err error
		if d.Delta < 0 {
			err = stock.Decrement(ctx, size, d.Status, -d.Delta)
		} else {
			err = stock.Increment(ctx, size, d.Status, d.Delta)
		}
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return fmt.Errorf("%w: %s/%s requiere %d", domain.ErrInsufficientStock, size, d.Status, -d.Delta)
			}
			return err
		}
	}
	return nil
}
