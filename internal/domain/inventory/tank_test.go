package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/inventory"
)

func newTank(capacity, level int64) *entity.Tank {
	return &entity.Tank{
		TankCode:           "T-01",
		CapacityLitres:     decimal.NewFromInt(capacity),
		MinimumLevelLitres: decimal.NewFromInt(capacity / 10),
		MaximumLevelLitres: decimal.NewFromInt(capacity * 9 / 10),
		CurrentLevelLitres: decimal.NewFromInt(level),
		Status:             entity.TankActive,
	}
}

func TestBulkDelta_Signos(t *testing.T) {
	l := decimal.NewFromInt(10)
	for _, typ := range []entity.BulkMovementType{entity.BulkReceive, entity.BulkTransferIn, entity.BulkAdjustment} {
		d, err := inventory.BulkDelta(typ, l)
		require.NoError(t, err)
		assert.True(t, d.Equal(l), "%s suma", typ)
	}
	for _, typ := range []entity.BulkMovementType{entity.BulkDispense, entity.BulkTransferOut, entity.BulkLoss} {
		d, err := inventory.BulkDelta(typ, l)
		require.NoError(t, err)
		assert.True(t, d.Equal(l.Neg()), "%s resta", typ)
	}
	_, err := inventory.BulkDelta(entity.BulkReceive, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = inventory.BulkDelta("evaporate", l)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNextLevel_LimitesDelTanque(t *testing.T) {
	tank := newTank(50000, 2000)

	_, err := inventory.NextLevel(tank, entity.BulkDispense, decimal.NewFromInt(3000))
	assert.ErrorIs(t, err, domain.ErrCapacityViolation, "no se puede despachar más de lo disponible")

	_, err = inventory.NextLevel(tank, entity.BulkReceive, decimal.NewFromInt(48001))
	assert.ErrorIs(t, err, domain.ErrCapacityViolation, "no se puede exceder la capacidad")

	next, err := inventory.NextLevel(tank, entity.BulkReceive, decimal.NewFromInt(48000))
	require.NoError(t, err)
	assert.True(t, next.Equal(decimal.NewFromInt(50000)), "llenar exactamente a capacidad es válido")

	next, err = inventory.NextLevel(tank, entity.BulkLoss, decimal.NewFromInt(2000))
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "vaciar exactamente es válido")
}

func TestCheckLevel(t *testing.T) {
	tank := newTank(1000, 500)
	assert.NoError(t, inventory.CheckLevel(tank, decimal.NewFromInt(1000)))
	assert.ErrorIs(t, inventory.CheckLevel(tank, decimal.NewFromInt(1001)), domain.ErrCapacityViolation)
	assert.ErrorIs(t, inventory.CheckLevel(tank, decimal.NewFromInt(-1)), domain.ErrCapacityViolation)
}

func TestCheckLimits(t *testing.T) {
	assert.NoError(t, inventory.CheckLimits(newTank(1000, 500)))

	bad := newTank(1000, 500)
	bad.MaximumLevelLitres = decimal.NewFromInt(1200)
	assert.ErrorIs(t, inventory.CheckLimits(bad), domain.ErrInvalidInput)

	over := newTank(1000, 1500)
	assert.ErrorIs(t, inventory.CheckLimits(over), domain.ErrCapacityViolation)
}

func TestAlertFor(t *testing.T) {
	assert.Nil(t, inventory.AlertFor(newTank(1000, 500)))
	assert.Equal(t, "low", inventory.AlertFor(newTank(1000, 50)).Level)
	assert.Equal(t, "high", inventory.AlertFor(newTank(1000, 950)).Level)
}
