package tank

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/inventory"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

// TankUseCase libro de litros de los tanques de granel.
type TankUseCase struct {
	txRunner TxRunner
	reader   repository.Store
	audit    AuditLogger
	metrics  ports.Metrics
	clock    ports.Clock
	log      *logger.Logger
}

// NewTankUseCase construye el caso de uso.
func NewTankUseCase(
	txRunner TxRunner,
	reader repository.Store,
	audit AuditLogger,
	metrics ports.Metrics,
	clock ports.Clock,
	log *logger.Logger,
) *TankUseCase {
	return &TankUseCase{
		txRunner: txRunner,
		reader:   reader,
		audit:    audit,
		metrics:  metrics,
		clock:    clock,
		log:      log.Component("tanks"),
	}
}

// CreateTankInput entrada para registrar un tanque. MaximumLevel cero toma la capacidad.
type CreateTankInput struct {
	TankCode     string
	Name         string
	Product      string
	Capacity     decimal.Decimal
	MinimumLevel decimal.Decimal
	MaximumLevel decimal.Decimal
	InitialLevel decimal.Decimal
	Caller       entity.Caller
}

// CreateTank registra un tanque nuevo (código único).
func (uc *TankUseCase) CreateTank(ctx context.Context, in CreateTankInput) (*entity.Tank, error) {
	code := strings.TrimSpace(in.TankCode)
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: código y nombre son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.clock.Now()
	t := &entity.Tank{
		ID:                 uuid.New().String(),
		TankCode:           code,
		Name:               strings.TrimSpace(in.Name),
		Product:            defaultString(in.Product, "lpg"),
		CapacityLitres:     in.Capacity,
		MinimumLevelLitres: in.MinimumLevel,
		MaximumLevelLitres: in.MaximumLevel,
		CurrentLevelLitres: in.InitialLevel,
		Status:             entity.TankActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if t.MaximumLevelLitres.IsZero() {
		t.MaximumLevelLitres = t.CapacityLitres
	}
	if err := inventory.CheckLimits(t); err != nil {
		return nil, err
	}

	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		existing, err := store.Tanks().GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: tanque %s", domain.ErrDuplicate, code)
		}
		return store.Tanks().Create(ctx, t)
	})
	if err != nil {
		uc.reject("create_tank", err)
		return nil, err
	}

	uc.log.Info().Str("tank", t.TankCode).Str("capacity", t.CapacityLitres.String()).Msg("tanque creado")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:    "tank",
		EventSubtype: "tank_created",
		Action:       "create",
		Caller:       in.Caller,
		EntityType:   "tank",
		EntityID:     t.ID,
		EntityRef:    t.TankCode,
		Summary:      fmt.Sprintf("tanque %s (%s L)", t.TankCode, t.CapacityLitres.StringFixed(2)),
		NewState:     dto.TankFromEntity(t),
	})
	return t, nil
}

// UpdateTankInput campos modificables (nil = sin cambio). El nivel solo cambia por
// movimientos o lecturas.
type UpdateTankInput struct {
	Name         *string
	Capacity     *decimal.Decimal
	MinimumLevel *decimal.Decimal
	MaximumLevel *decimal.Decimal
	Status       *entity.TankStatus
	Caller       entity.Caller
}

// UpdateTank modifica datos del tanque manteniendo nivel <= capacidad.
func (uc *TankUseCase) UpdateTank(ctx context.Context, id string, in UpdateTankInput) (*entity.Tank, error) {
	var before entity.Tank
	var t *entity.Tank
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		var err error
		t, err = uc.lockTank(ctx, store, id)
		if err != nil {
			return err
		}
		before = *t
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
			}
			t.Name = strings.TrimSpace(*in.Name)
		}
		if in.Capacity != nil {
			t.CapacityLitres = *in.Capacity
		}
		if in.MinimumLevel != nil {
			t.MinimumLevelLitres = *in.MinimumLevel
		}
		if in.MaximumLevel != nil {
			t.MaximumLevelLitres = *in.MaximumLevel
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return fmt.Errorf("%w: estado de tanque %q", domain.ErrInvalidInput, *in.Status)
			}
			if before.Status == entity.TankDecommissioned && *in.Status != entity.TankDecommissioned {
				return domain.NewTransitionError("tank", t.TankCode, string(before.Status), string(*in.Status))
			}
			t.Status = *in.Status
		}
		if err := inventory.CheckLimits(t); err != nil {
			return err
		}
		t.UpdatedAt = uc.clock.Now()
		return store.Tanks().Update(ctx, t)
	})
	if err != nil {
		uc.reject("update_tank", err)
		return nil, err
	}

	uc.audit.Log(ctx, appaudit.Entry{
		EventType:     "tank",
		EventSubtype:  "tank_updated",
		Action:        "update",
		Caller:        in.Caller,
		EntityType:    "tank",
		EntityID:      t.ID,
		EntityRef:     t.TankCode,
		Summary:       "tanque " + t.TankCode + " actualizado",
		PreviousState: dto.TankFromEntity(&before),
		NewState:      dto.TankFromEntity(t),
	})
	return t, nil
}

// BulkMovementInput entrada para un movimiento de litros.
type BulkMovementInput struct {
	TankID       string
	MovementType entity.BulkMovementType
	Litres       decimal.Decimal
	ReferenceDoc *string
	Notes        string
	Caller       entity.Caller
}

// RecordBulkMovement valida el nivel resultante antes de escribir y luego inserta el
// movimiento con la foto antes/después y actualiza el nivel en la misma transacción.
func (uc *TankUseCase) RecordBulkMovement(ctx context.Context, in BulkMovementInput) (*entity.BulkMovement, error) {
	now := uc.clock.Now()
	var m *entity.BulkMovement
	var t *entity.Tank
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		var err error
		t, err = uc.lockTank(ctx, store, in.TankID)
		if err != nil {
			return err
		}
		if t.Status == entity.TankDecommissioned {
			return domain.NewTransitionError("tank", t.TankCode, string(t.Status), "bulk_"+string(in.MovementType))
		}
		next, err := inventory.NextLevel(t, in.MovementType, in.Litres)
		if err != nil {
			return err
		}
		seq, err := store.Sequences().Next(ctx, inventory.PrefixBulk, now)
		if err != nil {
			return fmt.Errorf("next bulk reference: %w", err)
		}
		m = &entity.BulkMovement{
			ID:              uuid.New().String(),
			MovementRef:     inventory.FormatReference(inventory.PrefixBulk, now, seq),
			TankID:          t.ID,
			MovementType:    in.MovementType,
			QuantityLitres:  in.Litres,
			TankLevelBefore: t.CurrentLevelLitres,
			TankLevelAfter:  next,
			ReferenceDoc:    in.ReferenceDoc,
			Notes:           in.Notes,
			RecordedAt:      now,
			RecordedBy:      in.Caller.Actor.ID,
		}
		if err := store.BulkMovements().Create(ctx, m); err != nil {
			return err
		}
		t.CurrentLevelLitres = next
		t.UpdatedAt = now
		return store.Tanks().Update(ctx, t)
	})
	if err != nil {
		uc.reject("bulk_movement", err)
		return nil, err
	}

	litres, _ := m.QuantityLitres.Float64()
	uc.metrics.BulkMovementRecorded(string(m.MovementType), litres)
	uc.log.Info().Str("reference", m.MovementRef).Str("tank", t.TankCode).
		Str("type", string(m.MovementType)).Str("after", m.TankLevelAfter.String()).Msg("movimiento de granel")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:    "tank",
		EventSubtype: "bulk_movement_recorded",
		Action:       "create",
		Caller:       in.Caller,
		EntityType:   "tank",
		EntityID:     t.ID,
		EntityRef:    m.MovementRef,
		Summary: fmt.Sprintf("%s %s L en %s (%s -> %s)", m.MovementType, m.QuantityLitres.StringFixed(2),
			t.TankCode, m.TankLevelBefore.StringFixed(2), m.TankLevelAfter.StringFixed(2)),
		NewState: dto.BulkMovementFromEntity(m),
	})
	return m, nil
}

// TankReadingInput lectura física del nivel.
type TankReadingInput struct {
	TankID       string
	LevelLitres  decimal.Decimal
	TemperatureC *decimal.Decimal
	PressureBar  *decimal.Decimal
	ReadAt       *time.Time
	Caller       entity.Caller
}

// RecordTankReading guarda la lectura y sobrescribe el nivel del tanque con lo observado.
// No se concilia contra los movimientos; solo se exige 0 <= nivel <= capacidad.
func (uc *TankUseCase) RecordTankReading(ctx context.Context, in TankReadingInput) (*entity.TankReading, error) {
	now := uc.clock.Now()
	readAt := now
	if in.ReadAt != nil {
		readAt = in.ReadAt.UTC()
	}
	var r *entity.TankReading
	var t *entity.Tank
	err := uc.txRunner.Run(ctx, func(store repository.Store) error {
		var err error
		t, err = uc.lockTank(ctx, store, in.TankID)
		if err != nil {
			return err
		}
		if err := inventory.CheckLevel(t, in.LevelLitres); err != nil {
			return err
		}
		r = &entity.TankReading{
			ID:                  uuid.New().String(),
			TankID:              t.ID,
			LevelLitres:         in.LevelLitres,
			PreviousLevelLitres: t.CurrentLevelLitres,
			TemperatureC:        in.TemperatureC,
			PressureBar:         in.PressureBar,
			ReadAt:              readAt,
			RecordedBy:          in.Caller.Actor.ID,
		}
		if err := store.Readings().Create(ctx, r); err != nil {
			return err
		}
		t.CurrentLevelLitres = in.LevelLitres
		t.UpdatedAt = now
		return store.Tanks().Update(ctx, t)
	})
	if err != nil {
		uc.reject("tank_reading", err)
		return nil, err
	}

	drift := r.LevelLitres.Sub(r.PreviousLevelLitres)
	uc.log.Info().Str("tank", t.TankCode).Str("level", r.LevelLitres.String()).
		Str("drift", drift.String()).Msg("lectura de tanque")
	uc.audit.Log(ctx, appaudit.Entry{
		EventType:    "tank",
		EventSubtype: "reading_recorded",
		Action:       "update",
		Caller:       in.Caller,
		EntityType:   "tank",
		EntityID:     t.ID,
		EntityRef:    t.TankCode,
		Summary: fmt.Sprintf("lectura %s L en %s (diferencia %s L)",
			r.LevelLitres.StringFixed(2), t.TankCode, drift.StringFixed(2)),
		PreviousState: map[string]string{"current_level_litres": r.PreviousLevelLitres.StringFixed(2)},
		NewState:      dto.TankReadingFromEntity(r),
	})
	return r, nil
}

// GetTank obtiene un tanque por ID.
func (uc *TankUseCase) GetTank(ctx context.Context, id string) (*entity.Tank, error) {
	t, err := uc.reader.Tanks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NewNotFound("tank", id)
	}
	return t, nil
}

// ListTanks lista todos los tanques.
func (uc *TankUseCase) ListTanks(ctx context.Context) ([]*entity.Tank, error) {
	return uc.reader.Tanks().List(ctx)
}

// ListBulkMovements movimientos de un tanque en un rango de fechas.
func (uc *TankUseCase) ListBulkMovements(ctx context.Context, tankID string, from, to *time.Time, limit, offset int) ([]*entity.BulkMovement, error) {
	if _, err := uc.GetTank(ctx, tankID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.reader.BulkMovements().ListByTank(ctx, tankID, from, to, limit, offset)
}

// ListReadings lecturas de un tanque, la más reciente primero.
func (uc *TankUseCase) ListReadings(ctx context.Context, tankID string, limit, offset int) ([]*entity.TankReading, error) {
	if _, err := uc.GetTank(ctx, tankID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.reader.Readings().ListByTank(ctx, tankID, limit, offset)
}

// GetTankAlerts tanques activos fuera de [mínimo, máximo].
func (uc *TankUseCase) GetTankAlerts(ctx context.Context) ([]inventory.TankAlert, error) {
	tanks, err := uc.reader.Tanks().List(ctx)
	if err != nil {
		return nil, err
	}
	alerts := make([]inventory.TankAlert, 0)
	for _, t := range tanks {
		if t.Status != entity.TankActive {
			continue
		}
		if a := inventory.AlertFor(t); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts, nil
}

func (uc *TankUseCase) lockTank(ctx context.Context, store repository.Store, id string) (*entity.Tank, error) {
	t, err := store.Tanks().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NewNotFound("tank", id)
	}
	return t, nil
}

func (uc *TankUseCase) reject(op string, err error) {
	uc.metrics.OperationRejected(op, domain.Reason(err))
	uc.log.Warn().Err(err).Str("operation", op).Msg("operación de tanque rechazada")
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
