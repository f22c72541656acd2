package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	domainaudit "github.com/jhoicas/gasdepot-api/internal/domain/audit"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/internal/infrastructure/memory"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

func newChain(pageSize int) (*appaudit.Chain, *memory.AuditLog, *ports.FixedClock) {
	log := memory.NewAuditLog()
	clock := ports.NewFixedClock(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	return appaudit.NewChain(log, clock, ports.NopMetrics{}, logger.Nop(), pageSize), log, clock
}

func entry(i int) appaudit.Entry {
	return appaudit.Entry{
		EventType:    "inventory",
		EventSubtype: "movement_recorded",
		Action:       "create",
		Caller:       entity.Caller{Actor: entity.Actor{ID: fmt.Sprintf("u-%d", i%3)}},
		EntityType:   "movement",
		EntityID:     fmt.Sprintf("m-%d", i),
		Summary:      fmt.Sprintf("movimiento %d", i),
		NewState:     map[string]any{"quantity": i, "size": "9kg"},
	}
}

func logN(t *testing.T, c *appaudit.Chain, clock *ports.FixedClock, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		res := c.Log(context.Background(), entry(i))
		require.True(t, res.OK(), "evento %d", i)
		clock.Advance(time.Second)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Log
// ──────────────────────────────────────────────────────────────────────────────

func TestLog_Encadena(t *testing.T) {
	c, _, clock := newChain(100)
	ctx := context.Background()

	first := c.Log(ctx, entry(0))
	clock.Advance(time.Millisecond)
	second := c.Log(ctx, entry(1))
	require.True(t, first.OK())
	require.True(t, second.OK())

	assert.Equal(t, int64(1), first.Event.SequenceNumber)
	assert.Nil(t, first.Event.PreviousHash)
	assert.Equal(t, int64(2), second.Event.SequenceNumber)
	require.NotNil(t, second.Event.PreviousHash)
	assert.Equal(t, first.Event.RecordHash, *second.Event.PreviousHash)
}

func TestLog_ConcurrenteMantieneLaCadena(t *testing.T) {
	c, log, _ := newChain(7)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Log(context.Background(), entry(i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, log.Len())
	v, err := c.VerifyChainIntegrity(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, int64(50), v.Checked, "recorre todas las páginas")
}

func TestLog_FalloDelRepositorioNoPanica(t *testing.T) {
	c, log, _ := newChain(100)
	log.FailWith(errors.New("conexión cerrada"))

	res := c.Log(context.Background(), entry(1))
	assert.False(t, res.OK())
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "conexión cerrada")

	log.FailWith(nil)
	res = c.Log(context.Background(), entry(2))
	require.True(t, res.OK())
	assert.Equal(t, int64(1), res.Event.SequenceNumber, "el fallo no consume secuencia")
}

func TestLog_IgnoraCancelacion(t *testing.T) {
	c, _, _ := newChain(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Log(ctx, entry(1))
	assert.True(t, res.OK())
}

func TestLog_CoordenadasNoFinitasNoImpidenAuditar(t *testing.T) {
	c, log, clock := newChain(100)
	ctx := context.Background()

	for i, lat := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 91} {
		e := entry(i)
		lon := -74.08
		e.Caller.Metadata = entity.AuditMetadata{DeviceID: "tablet-07", Latitude: &lat, Longitude: &lon}
		res := c.Log(ctx, e)
		require.True(t, res.OK(), "latitud %v: %v", lat, res.Err)
		assert.Nil(t, res.Event.Metadata.Latitude, "latitud %v se descarta", lat)
		require.NotNil(t, res.Event.Metadata.Longitude)
		assert.Equal(t, lon, *res.Event.Metadata.Longitude)
		clock.Advance(time.Second)
	}
	assert.Equal(t, 4, log.Len())

	v, err := c.VerifyChainIntegrity(ctx, nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, int64(4), v.Checked)
}

func TestLog_EstadoNoSerializableSeAuditaConMarcador(t *testing.T) {
	c, _, _ := newChain(100)
	ctx := context.Background()

	e := entry(1)
	e.NewState = map[string]any{"canal": make(chan int)}
	res := c.Log(ctx, e)

	require.True(t, res.OK(), "el evento entra en la cadena")
	require.Error(t, res.SnapshotErr)
	var state map[string]string
	require.NoError(t, json.Unmarshal(res.Event.NewState, &state))
	assert.Contains(t, state["snapshot_error"], "unsupported type")

	v, err := c.VerifyChainIntegrity(ctx, nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación
// ──────────────────────────────────────────────────────────────────────────────

func TestVerify_CadenaVacia(t *testing.T) {
	c, _, _ := newChain(100)
	v, err := c.VerifyChainIntegrity(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, int64(0), v.Checked)
}

func TestVerify_DetectaAlteracion(t *testing.T) {
	c, log, clock := newChain(4)
	logN(t, c, clock, 10)

	require.True(t, log.Tamper(6, func(e *entity.AuditEvent) { e.Summary = "movimiento reescrito" }))

	v, err := c.VerifyChainIntegrity(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	require.NotNil(t, v.FirstBrokenSequence)
	assert.Equal(t, int64(6), *v.FirstBrokenSequence)
	assert.Equal(t, domainaudit.ReasonHashMismatch, v.Reason)
	assert.Equal(t, int64(6), v.Checked)
}

func TestVerify_DetectaHueco(t *testing.T) {
	c, log, clock := newChain(100)
	logN(t, c, clock, 5)
	log.Delete(3)

	v, err := c.VerifyChainIntegrity(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, int64(4), *v.FirstBrokenSequence)
	assert.Equal(t, domainaudit.ReasonSequenceGap, v.Reason)
}

func TestVerify_GenesisEliminado(t *testing.T) {
	c, log, clock := newChain(100)
	logN(t, c, clock, 3)
	log.Delete(1)

	v, err := c.VerifyChainIntegrity(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, int64(2), *v.FirstBrokenSequence)
}

func TestVerify_Rango(t *testing.T) {
	c, log, clock := newChain(3)
	logN(t, c, clock, 12)
	log.Tamper(2, func(e *entity.AuditEvent) { e.ActorID = "intruso" })

	v, err := c.VerifyChainIntegrity(context.Background(), &appaudit.Range{From: 5, To: 9})
	require.NoError(t, err)
	assert.True(t, v.Valid, "la alteración está fuera del rango")
	assert.Equal(t, int64(5), v.Checked)

	_, err = c.VerifyChainIntegrity(context.Background(), &appaudit.Range{From: 9, To: 5})
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetEvents_PaginaYFiltra(t *testing.T) {
	c, _, clock := newChain(100)
	logN(t, c, clock, 7)

	page, err := c.GetEvents(context.Background(), repository.AuditFilter{}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(4), page.Items[0].SequenceNumber, "orden descendente")

	byActor, err := c.GetEvents(context.Background(), repository.AuditFilter{ActorID: "u-0"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, byActor.Total)
	assert.Equal(t, 50, byActor.Limit)
}

func TestGetEntityHistory_RequiereEntidad(t *testing.T) {
	c, _, _ := newChain(100)
	_, err := c.GetEntityHistory(context.Background(), "", "x")
	assert.Error(t, err)
}
