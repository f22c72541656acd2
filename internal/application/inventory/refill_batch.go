package inventory

import (
	"context"
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

// RefillBatchUseCase máquina de estados del lote de recarga:
// created → inspecting → filling → qc → passed → stocked, con salida a failed
// desde inspección o QC. Cada transición corre en una transacción con la fila del lote
// bloqueada y emite exactamente un evento de auditoría.
type RefillBatchUseCase struct {
	txRunner TxRunner
	reader   repository.Store
	audit    AuditLogger
	metrics  ports.Metrics
	clock    ports.Clock
	log      *logger.Logger
}

// NewRefillBatchUseCase construye el caso de uso.
func NewRefillBatchUseCase(
	txRunner TxRunner,
	reader repository.Store,
	audit AuditLogger,
	metrics ports.Metrics,
	clock ports.Clock,
	log *logger.Logger,
) *RefillBatchUseCase {
	return &RefillBatchUseCase{
		txRunner: txRunner,
		reader:   reader,
		audit:    audit,
		metrics:  metrics,
		clock:    clock,
		log:      log.Component("refill_batches"),
	}
}

// CreateBatchInput entrada para crear un lote.
type CreateBatchInput struct {
	CylinderSize entity.CylinderSize
	Quantity     int64
	Notes        string
	Caller       entity.Caller
}

// Create crea el lote si hay suficientes vacíos del tamaño (solo verifica, no reserva).
func (uc *RefillBatchUseCase) Create(ctx context.Context, in CreateBatchInput) (*entity.RefillBatch, error) {
	if !in.CylinderSize.Valid() || in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: tamaño válido y cantidad positiva son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.clock.Now()
	var b *entity.RefillBatch
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		empty, err := store.Stock().Get(ctx, in.CylinderSize, entity.StatusEmpty)
		if err != nil {
			return err
		}
		if empty.Quantity < in.Quantity {
			return fmt.Errorf("%w: %w: %d vacíos de %s, se requieren %d",
				domain.ErrValidationMismatch, domain.ErrInsufficientStock, empty.Quantity, in.CylinderSize, in.Quantity)
		}
		seq, err := store.Sequences().Next(ctx, inventory.PrefixBatch, now)
		if err != nil {
			return fmt.Errorf("next batch reference: %w", err)
		}
		b = &entity.RefillBatch{
			ID:              uuid.New().String(),
			BatchRef:        inventory.FormatReference(inventory.PrefixBatch, now, seq),
			CylinderSize:    in.CylinderSize,
			InitialQuantity: in.Quantity,
			Quantity:        in.Quantity,
			Status:          entity.BatchCreated,
			Notes:           in.Notes,
			CreatedAt:       now,
			CreatedBy:       in.Caller.Actor.ID,
			UpdatedAt:       now,
		}
		return store.Batches().Create(ctx, b)
	})
	if err != nil {
		uc.reject("create_batch", err)
		return nil, err
	}

	uc.metrics.BatchTransitioned(string(b.Status))
	uc.log.Info().Str("batch_ref", b.BatchRef).Int64("quantity", b.Quantity).Msg("lote creado")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:    "refill_batch",
		EventSubtype: "batch_created",
		Action:       "create",
		Caller:       in.Caller,
		EntityType:   "refill_batch",
		EntityID:     b.ID,
		EntityRef:    b.BatchRef,
		Summary:      fmt.Sprintf("lote %s de %d x %s", b.BatchRef, b.Quantity, b.CylinderSize),
		NewState:     dto.RefillBatchFromEntity(b),
	})
	return b, nil
}

// StartInspection reserva los vacíos del lote con un movimiento refill (fase reserve).
func (uc *RefillBatchUseCase) StartInspection(ctx context.Context, id string, caller entity.Caller) (*entity.RefillBatch, error) {
	return uc.transition(ctx, id, caller, "inspection_started", func(store repository.Store, b *entity.RefillBatch, now time.Time) error {
		if err := inventory.CheckTransition(b, entity.BatchInspecting); err != nil {
			return err
		}
		m, err := recordMovementTx(ctx, store, now, movementSpec{
			size:       b.CylinderSize,
			typ:        entity.MovementRefill,
			quantity:   b.Quantity,
			batchID:    &b.ID,
			phase:      phasePtr(entity.BatchPhaseReserve),
			notes:      "reserva de vacíos " + b.BatchRef,
			recordedBy: caller.Actor.ID,
		})
		if err != nil {
			return err
		}
		b.ReservationMovementID = &m.ID
		b.InspectionStarted = stamp(now, caller)
		b.Status = entity.BatchInspecting
		return nil
	})
}

// CompleteInspection registra aprobados/rechazados; los rechazados pasan a cuarentena.
// Sin aprobados el lote termina en failed.
func (uc *RefillBatchUseCase) CompleteInspection(ctx context.Context, id string, passed, failed int64, caller entity.Caller) (*entity.RefillBatch, error) {
	return uc.transition(ctx, id, caller, "inspection_completed", func(store repository.Store, b *entity.RefillBatch, now time.Time) error {
		if err := inventory.CheckStatus(b, entity.BatchInspecting, "inspection_completed"); err != nil {
			return err
		}
		if err := inventory.CheckTransition(b, inventory.OutcomeStatus(passed, entity.BatchFilling)); err != nil {
			return err
		}
		if err := inventory.CheckCounts(b.Quantity, passed, failed); err != nil {
			return err
		}
		if err := uc.quarantineFailed(ctx, store, b, failed, now, caller, "inspección"); err != nil {
			return err
		}
		b.Quantity = passed
		b.PassedCount = passed
		b.FailedCount = failed
		b.InspectionCompleted = stamp(now, caller)
		b.Status = inventory.OutcomeStatus(passed, entity.BatchFilling)
		return nil
	})
}

// StartFilling marca el inicio del llenado (una sola vez) sin cambiar de estado.
func (uc *RefillBatchUseCase) StartFilling(ctx context.Context, id string, caller entity.Caller) (*entity.RefillBatch, error) {
	return uc.transition(ctx, id, caller, "filling_started", func(_ repository.Store, b *entity.RefillBatch, now time.Time) error {
		if err := inventory.CheckStatus(b, entity.BatchFilling, "filling_started"); err != nil {
			return err
		}
		if b.FillingStarted.Done() {
			return domain.NewTransitionError("refill_batch", b.BatchRef, "filling_started", "filling_started")
		}
		b.FillingStarted = stamp(now, caller)
		return nil
	})
}

// CompleteFilling pasa el lote a control de calidad.
func (uc *RefillBatchUseCase) CompleteFilling(ctx context.Context, id string, caller entity.Caller) (*entity.RefillBatch, error) {
	return uc.transition(ctx, id, caller, "filling_completed", func(_ repository.Store, b *entity.RefillBatch, now time.Time) error {
		if err := inventory.CheckTransition(b, entity.BatchQC); err != nil {
			return err
		}
		b.FillingCompleted = stamp(now, caller)
		b.Status = entity.BatchQC
		return nil
	})
}

// CompleteQC registra el resultado del control de calidad; acumula rechazados.
func (uc *RefillBatchUseCase) CompleteQC(ctx context.Context, id string, passed, failed int64, caller entity.Caller) (*entity.RefillBatch, error) {
	return uc.transition(ctx, id, caller, "qc_completed", func(store repository.Store, b *entity.RefillBatch, now time.Time) error {
		if err := inventory.CheckStatus(b, entity.BatchQC, "qc_completed"); err != nil {
			return err
		}
		if err := inventory.CheckTransition(b, inventory.OutcomeStatus(passed, entity.BatchPassed)); err != nil {
			return err
		}
		if err := inventory.CheckCounts(b.Quantity, passed, failed); err != nil {
			return err
		}
		if err := uc.quarantineFailed(ctx, store, b, failed, now, caller, "QC"); err != nil {
			return err
		}
		b.Quantity = passed
		b.PassedCount = passed
		b.FailedCount += failed
		b.QCCompleted = stamp(now, caller)
		b.Status = inventory.OutcomeStatus(passed, entity.BatchPassed)
		return nil
	})
}

// StockBatch ingresa los aprobados al bucket de llenos (refill, fase stock).
func (uc *RefillBatchUseCase) StockBatch(ctx context.Context, id string, caller entity.Caller) (*entity.RefillBatch, error) {
	return uc.transition(ctx, id, caller, "batch_stocked", func(store repository.Store, b *entity.RefillBatch, now time.Time) error {
		if err := inventory.CheckTransition(b, entity.BatchStocked); err != nil {
			return err
		}
		m, err := recordMovementTx(ctx, store, now, movementSpec{
			size:       b.CylinderSize,
			typ:        entity.MovementRefill,
			quantity:   b.PassedCount,
			batchID:    &b.ID,
			phase:      phasePtr(entity.BatchPhaseStock),
			notes:      "ingreso de llenos " + b.BatchRef,
			recordedBy: caller.Actor.ID,
		})
		if err != nil {
			return err
		}
		b.StockMovementID = &m.ID
		b.Stocked = stamp(now, caller)
		b.Status = entity.BatchStocked
		return nil
	})
}

// Get obtiene un lote por ID.
func (uc *RefillBatchUseCase) Get(ctx context.Context, id string) (*entity.RefillBatch, error) {
	b, err := uc.reader.Batches().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NewNotFound("refill_batch", id)
	}
	return b, nil
}

// List lista lotes, opcionalmente por estado.
func (uc *RefillBatchUseCase) List(ctx context.Context, status *entity.BatchStatus, limit, offset int) ([]*entity.RefillBatch, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.reader.Batches().List(ctx, status, limit, offset)
}

// transition bloquea el lote, aplica fn, persiste y audita.
func (uc *RefillBatchUseCase) transition(
	ctx context.Context,
	id string,
	caller entity.Caller,
	subtype string,
	fn func(store repository.Store, b *entity.RefillBatch, now time.Time) error,
) (*entity.RefillBatch, error) {
	now := uc.clock.Now()
	var before entity.RefillBatch
	var b *entity.RefillBatch
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		var err error
		b, err = store.Batches().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NewNotFound("refill_batch", id)
		}
		before = *b
		if inventory.IsTerminal(b.Status) {
			return domain.NewTransitionError("refill_batch", b.BatchRef, string(b.Status), subtype)
		}
		if err := fn(store, b, now); err != nil {
			return err
		}
		b.UpdatedAt = now
		return store.Batches().Update(ctx, b)
	})
	if err != nil {
		uc.reject(subtype, err)
		return nil, err
	}

	uc.metrics.BatchTransitioned(string(b.Status))
	uc.log.Info().Str("batch_ref", b.BatchRef).Str("from", string(before.Status)).
		Str("to", string(b.Status)).Str("event", subtype).Msg("transición de lote")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:     "refill_batch",
		EventSubtype:  subtype,
		Action:        "transition",
		Caller:        caller,
		EntityType:    "refill_batch",
		EntityID:      b.ID,
		EntityRef:     b.BatchRef,
		Summary:       fmt.Sprintf("%s: %s -> %s", b.BatchRef, before.Status, b.Status),
		PreviousState: dto.RefillBatchFromEntity(&before),
		NewState:      dto.RefillBatchFromEntity(b),
	})
	return b, nil
}

// quarantineFailed mueve los rechazados del lote a cuarentena (solo incrementa).
func (uc *RefillBatchUseCase) quarantineFailed(ctx context.Context, store repository.Store, b *entity.RefillBatch, failed int64, now time.Time, caller entity.Caller, stage string) error {
	if failed == 0 {
		return nil
	}
	_, err := recordMovementTx(ctx, store, now, movementSpec{
		size:       b.CylinderSize,
		typ:        entity.MovementQuarantine,
		quantity:   failed,
		batchID:    &b.ID,
		notes:      fmt.Sprintf("rechazados en %s %s", stage, b.BatchRef),
		recordedBy: caller.Actor.ID,
	})
	return err
}

func (uc *RefillBatchUseCase) reject(op string, err error) {
	uc.metrics.OperationRejected(op, domain.Reason(err))
	uc.log.Warn().Err(err).Str("operation", op).Msg("operación de lote rechazada")
}

func stamp(now time.Time, caller entity.Caller) entity.StageStamp {
	at := now
	by := caller.Actor.ID
	return entity.StageStamp{At: &at, By: &by}
}

func phasePtr(p entity.BatchPhase) *entity.BatchPhase { return &p }
