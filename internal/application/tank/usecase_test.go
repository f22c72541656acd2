package tank_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/application/tank"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/infrastructure/memory"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

func newUseCase(t *testing.T) (*tank.TankUseCase, *appaudit.Chain) {
	t.Helper()
	db := memory.NewDB()
	clock := ports.NewFixedClock(time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC))
	chain := appaudit.NewChain(memory.NewAuditLog(), clock, ports.NopMetrics{}, logger.Nop(), 100)
	return tank.NewTankUseCase(db, db.Reader(), chain, ports.NopMetrics{}, clock, logger.Nop()), chain
}

func caller() entity.Caller {
	return entity.Caller{Actor: entity.Actor{ID: "u-plant", Email: "planta@gasdepot.test", Role: "operator"}}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func createTank(t *testing.T, uc *tank.TankUseCase, code, capacity, level string) *entity.Tank {
	t.Helper()
	tk, err := uc.CreateTank(context.Background(), tank.CreateTankInput{
		TankCode:     code,
		Name:         "Tanque " + code,
		Capacity:     dec(capacity),
		MinimumLevel: dec("5000"),
		InitialLevel: dec(level),
		Caller:       caller(),
	})
	require.NoError(t, err)
	return tk
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta y modificación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateTank_ValoresPorDefecto(t *testing.T) {
	uc, _ := newUseCase(t)
	tk := createTank(t, uc, "TK-01", "50000", "20000")

	assert.Equal(t, entity.TankActive, tk.Status)
	assert.Equal(t, "lpg", tk.Product)
	assert.True(t, tk.MaximumLevelLitres.Equal(dec("50000")), "el máximo toma la capacidad")
	assert.True(t, tk.FillPercent().Equal(dec("40")))
}

func TestCreateTank_CodigoDuplicado(t *testing.T) {
	uc, _ := newUseCase(t)
	createTank(t, uc, "TK-01", "50000", "0")

	_, err := uc.CreateTank(context.Background(), tank.CreateTankInput{
		TankCode: "TK-01", Name: "otro", Capacity: dec("1000"), Caller: caller(),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateTank_LimitesInvalidos(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.CreateTank(ctx, tank.CreateTankInput{TankCode: "A", Name: "a", Capacity: dec("0"), Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateTank(ctx, tank.CreateTankInput{
		TankCode: "B", Name: "b", Capacity: dec("1000"), MinimumLevel: dec("900"), MaximumLevel: dec("800"), Caller: caller(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateTank(ctx, tank.CreateTankInput{
		TankCode: "C", Name: "c", Capacity: dec("1000"), InitialLevel: dec("1200"), Caller: caller(),
	})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)
}

func TestUpdateTank_CapacidadNoMenorAlNivel(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "30000")

	capacity := dec("20000")
	_, err := uc.UpdateTank(ctx, tk.ID, tank.UpdateTankInput{Capacity: &capacity, MaximumLevel: &capacity, Caller: caller()})
	assert.Error(t, err)

	name := "Tanque principal"
	updated, err := uc.UpdateTank(ctx, tk.ID, tank.UpdateTankInput{Name: &name, Caller: caller()})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestUpdateTank_DadoDeBajaNoVuelve(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "0")

	down := entity.TankDecommissioned
	_, err := uc.UpdateTank(ctx, tk.ID, tank.UpdateTankInput{Status: &down, Caller: caller()})
	require.NoError(t, err)

	up := entity.TankActive
	_, err = uc.UpdateTank(ctx, tk.ID, tank.UpdateTankInput{Status: &up, Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos de granel y lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordBulkMovement_DespachoMayorAlNivel(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "2000")

	_, err := uc.RecordBulkMovement(ctx, tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkDispense, Litres: dec("3000"), Caller: caller(),
	})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)

	got, err := uc.GetTank(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentLevelLitres.Equal(dec("2000")), "el nivel no cambia")

	list, err := uc.ListBulkMovements(ctx, tk.ID, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordBulkMovement_RecepcionExcedeCapacidad(t *testing.T) {
	uc, _ := newUseCase(t)
	tk := createTank(t, uc, "TK-01", "50000", "45000")

	_, err := uc.RecordBulkMovement(context.Background(), tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkReceive, Litres: dec("5000.01"), Caller: caller(),
	})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)
}

func TestRecordBulkMovement_FotoAntesDespues(t *testing.T) {
	uc, chain := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "10000")

	m, err := uc.RecordBulkMovement(ctx, tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkReceive, Litres: dec("12500.5"), Caller: caller(),
	})
	require.NoError(t, err)
	assert.Equal(t, "BULK-20261016-0001", m.MovementRef)
	assert.True(t, m.TankLevelBefore.Equal(dec("10000")))
	assert.True(t, m.TankLevelAfter.Equal(dec("22500.5")))

	m2, err := uc.RecordBulkMovement(ctx, tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkLoss, Litres: dec("0.5"), Caller: caller(),
	})
	require.NoError(t, err)
	assert.Equal(t, "BULK-20261016-0002", m2.MovementRef)
	assert.True(t, m2.TankLevelBefore.Equal(m.TankLevelAfter), "el antes coincide con el después anterior")

	got, err := uc.GetTank(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentLevelLitres.Equal(dec("22500")))

	history, err := chain.GetEntityHistory(ctx, "tank", tk.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "bulk_movement_recorded", history[1].EventSubtype)
}

func TestRecordBulkMovement_TanqueDadoDeBaja(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "100")
	down := entity.TankDecommissioned
	_, err := uc.UpdateTank(ctx, tk.ID, tank.UpdateTankInput{Status: &down, Caller: caller()})
	require.NoError(t, err)

	_, err = uc.RecordBulkMovement(ctx, tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkDispense, Litres: dec("10"), Caller: caller(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRecordBulkMovement_Errores(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "100")

	_, err := uc.RecordBulkMovement(ctx, tank.BulkMovementInput{TankID: "nope", MovementType: entity.BulkReceive, Litres: dec("1"), Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.RecordBulkMovement(ctx, tank.BulkMovementInput{TankID: tk.ID, MovementType: "evaporate", Litres: dec("1"), Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordBulkMovement(ctx, tank.BulkMovementInput{TankID: tk.ID, MovementType: entity.BulkReceive, Litres: dec("-1"), Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordTankReading_SobrescribeNivel(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	tk := createTank(t, uc, "TK-01", "50000", "20000")

	temp := dec("18.5")
	r, err := uc.RecordTankReading(ctx, tank.TankReadingInput{
		TankID: tk.ID, LevelLitres: dec("19650"), TemperatureC: &temp, Caller: caller(),
	})
	require.NoError(t, err)
	assert.True(t, r.PreviousLevelLitres.Equal(dec("20000")))

	got, err := uc.GetTank(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentLevelLitres.Equal(dec("19650")))

	_, err = uc.RecordTankReading(ctx, tank.TankReadingInput{TankID: tk.ID, LevelLitres: dec("50001"), Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)
	_, err = uc.RecordTankReading(ctx, tank.TankReadingInput{TankID: tk.ID, LevelLitres: dec("-1"), Caller: caller()})
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)

	readings, err := uc.ListReadings(ctx, tk.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestGetTankAlerts(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	createTank(t, uc, "TK-01", "50000", "2000")
	createTank(t, uc, "TK-02", "50000", "30000")
	high, err := uc.CreateTank(ctx, tank.CreateTankInput{
		TankCode: "TK-03", Name: "alto", Capacity: dec("10000"), MaximumLevel: dec("8500"), InitialLevel: dec("9000"), Caller: caller(),
	})
	require.NoError(t, err)

	alerts, err := uc.GetTankAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "TK-01", alerts[0].Tank.TankCode)
	assert.Equal(t, "low", alerts[0].Level)
	assert.Equal(t, high.ID, alerts[1].Tank.ID)
	assert.Equal(t, "high", alerts[1].Level)
}
