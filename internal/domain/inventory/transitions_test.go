package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/inventory"
)

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTransitionFor_TablaCompleta(t *testing.T) {
	cases := []struct {
		typ  entity.MovementType
		from *entity.CylinderStatus
		to   *entity.CylinderStatus
	}{
		{entity.MovementPurchase, nil, ptr(entity.StatusFull)},
		{entity.MovementReceiveEmpty, nil, ptr(entity.StatusEmpty)},
		{entity.MovementRefill, ptr(entity.StatusEmpty), ptr(entity.StatusFull)},
		{entity.MovementIssue, ptr(entity.StatusFull), ptr(entity.StatusIssued)},
		{entity.MovementDeliver, ptr(entity.StatusIssued), ptr(entity.StatusAtCustomer)},
		{entity.MovementReturnUndelivered, ptr(entity.StatusIssued), ptr(entity.StatusFull)},
		{entity.MovementCollectEmpty, ptr(entity.StatusAtCustomer), ptr(entity.StatusEmpty)},
		{entity.MovementCollectFull, ptr(entity.StatusAtCustomer), ptr(entity.StatusFull)},
		{entity.MovementQuarantine, nil, ptr(entity.StatusQuarantine)},
		{entity.MovementReleaseQuarantine, ptr(entity.StatusQuarantine), ptr(entity.StatusEmpty)},
		{entity.MovementSendMaintenance, ptr(entity.StatusQuarantine), ptr(entity.StatusMaintenance)},
		{entity.MovementReturnMaintenance, ptr(entity.StatusMaintenance), ptr(entity.StatusEmpty)},
		{entity.MovementScrap, ptr(entity.StatusMaintenance), nil},
		{entity.MovementTransferOut, ptr(entity.StatusFull), nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			tr, err := inventory.TransitionFor(tc.typ, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.from, tr.From, "origen de %s", tc.typ)
			assert.Equal(t, tc.to, tr.To, "destino de %s", tc.typ)
		})
	}
}

func TestTransitionFor_TodosLosTiposEstanCubiertos(t *testing.T) {
	for _, typ := range entity.MovementTypes {
		_, err := inventory.TransitionFor(typ, nil)
		if typ == entity.MovementAdjustment {
			assert.ErrorIs(t, err, domain.ErrInvalidInput, "los ajustes no usan la tabla")
			continue
		}
		assert.NoError(t, err, "el tipo %s debe tener transición", typ)
	}
	assert.Len(t, entity.MovementTypes, 15)
}

func TestTransitionFor_TipoDesconocido(t *testing.T) {
	_, err := inventory.TransitionFor("teleport", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransitionFor_CuarentenaConOrigen(t *testing.T) {
	tr, err := inventory.TransitionFor(entity.MovementQuarantine, ptr(entity.StatusFull))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFull, *tr.From)
	assert.Equal(t, entity.StatusQuarantine, *tr.To)

	_, err = inventory.TransitionFor(entity.MovementQuarantine, ptr(entity.StatusQuarantine))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se puede poner en cuarentena desde cuarentena")

	_, err = inventory.TransitionFor(entity.MovementIssue, ptr(entity.StatusEmpty))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo quarantine acepta origen")
}

// ──────────────────────────────────────────────────────────────────────────────
// Deltas por bucket
// ──────────────────────────────────────────────────────────────────────────────

func TestDeltas_ConservanUnidadesEnMovimientosInternos(t *testing.T) {
	for _, typ := range entity.MovementTypes {
		tr, err := inventory.TransitionFor(typ, nil)
		if err != nil || tr.From == nil || tr.To == nil {
			continue
		}
		var sum int64
		for _, d := range tr.Deltas(7, nil) {
			sum += d.Delta
		}
		assert.Zero(t, sum, "%s debe conservar unidades", typ)
	}
}

func TestDeltas_DecrementoPrimero(t *testing.T) {
	tr, _ := inventory.TransitionFor(entity.MovementRefill, nil)
	d := tr.Deltas(5, nil)
	require.Len(t, d, 2)
	assert.Equal(t, inventory.BucketDelta{Status: entity.StatusEmpty, Delta: -5}, d[0])
	assert.Equal(t, inventory.BucketDelta{Status: entity.StatusFull, Delta: 5}, d[1])
}

func TestDeltas_FasesDeLote(t *testing.T) {
	tr, _ := inventory.TransitionFor(entity.MovementRefill, nil)

	reserve := tr.Deltas(50, ptr(entity.BatchPhaseReserve))
	assert.Equal(t, []inventory.BucketDelta{{Status: entity.StatusEmpty, Delta: -50}}, reserve)

	stock := tr.Deltas(48, ptr(entity.BatchPhaseStock))
	assert.Equal(t, []inventory.BucketDelta{{Status: entity.StatusFull, Delta: 48}}, stock)
}

func TestDeltas_ScrapYTransferOutSoloRestan(t *testing.T) {
	for _, typ := range []entity.MovementType{entity.MovementScrap, entity.MovementTransferOut} {
		tr, _ := inventory.TransitionFor(typ, nil)
		for _, d := range tr.Deltas(3, nil) {
			assert.Negative(t, d.Delta, "%s nunca incrementa", typ)
		}
	}
}

func TestAdjustmentTransition(t *testing.T) {
	up := inventory.AdjustmentTransition(entity.StatusEmpty, 4)
	assert.Nil(t, up.From)
	assert.Equal(t, entity.StatusEmpty, *up.To)

	down := inventory.AdjustmentTransition(entity.StatusEmpty, -4)
	assert.Equal(t, entity.StatusEmpty, *down.From)
	assert.Nil(t, down.To)
}
