package audit_test

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gasdepot-api/internal/domain/audit"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// buildChain arma n eventos sellados y encadenados.
func buildChain(t *testing.T, n int) []*entity.AuditEvent {
	t.Helper()
	base := time.Date(2026, 10, 16, 8, 0, 0, 123456789, time.UTC)
	var chain []*entity.AuditEvent
	var last *entity.AuditEvent
	for i := 0; i < n; i++ {
		e := &entity.AuditEvent{
			ID:           fmt.Sprintf("00000000-0000-0000-0000-%012d", i+1),
			EventType:    "inventory",
			EventSubtype: "movement_recorded",
			Action:       "create",
			ActorID:      "u-1",
			EntityType:   "movement",
			EntityID:     fmt.Sprintf("m-%d", i),
			Summary:      "refill 9kg x5",
			NewState:     json.RawMessage(fmt.Sprintf(`{"quantity": %d, "size": "9kg"}`, i+1)),
			OccurredAt:   base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, audit.Seal(e, last))
		chain = append(chain, e)
		last = e
	}
	return chain
}

// ──────────────────────────────────────────────────────────────────────────────
// Sello y forma canónica
// ──────────────────────────────────────────────────────────────────────────────

func TestSeal_Encadena(t *testing.T) {
	chain := buildChain(t, 3)

	assert.Equal(t, int64(1), chain[0].SequenceNumber)
	assert.Nil(t, chain[0].PreviousHash, "el génesis no tiene hash previo")
	for i := 1; i < len(chain); i++ {
		require.NotNil(t, chain[i].PreviousHash)
		assert.Equal(t, chain[i-1].RecordHash, *chain[i].PreviousHash)
		assert.Equal(t, chain[i-1].SequenceNumber+1, chain[i].SequenceNumber)
	}
	assert.Len(t, chain[0].RecordHash, 64, "SHA-256 en hexadecimal")
}

func TestSeal_TruncaAMicrosegundos(t *testing.T) {
	chain := buildChain(t, 1)
	assert.Zero(t, chain[0].OccurredAt.Nanosecond()%1000)
}

func TestComputeHash_EstableTrasJSONB(t *testing.T) {
	chain := buildChain(t, 1)
	e := *chain[0]
	// JSONB reordena claves y agrega espacios al devolver el documento.
	e.NewState = json.RawMessage(`{"size": "9kg",   "quantity": 1}`)
	e.OccurredAt = e.OccurredAt.In(time.FixedZone("COT", -5*3600))

	h, err := audit.ComputeHash(&e)
	require.NoError(t, err)
	assert.Equal(t, chain[0].RecordHash, h)
}

func TestNormalizeJSON(t *testing.T) {
	out, err := audit.NormalizeJSON(json.RawMessage(`{"b":1,"a":{"d":2,"c":3}}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"c":3,"d":2},"b":1}`, string(out))

	out, err = audit.NormalizeJSON(json.RawMessage(" null "))
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = audit.NormalizeJSON(json.RawMessage(`{`))
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Verificación
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyAll_CadenaValida(t *testing.T) {
	chain := buildChain(t, 10)
	assert.Nil(t, audit.VerifyAll(nil, chain))
}

func TestVerifyAll_DetectaContenidoAlterado(t *testing.T) {
	chain := buildChain(t, 10)
	chain[4].Summary = "refill 9kg x500"

	b := audit.VerifyAll(nil, chain)
	require.NotNil(t, b)
	assert.Equal(t, int64(5), b.SequenceNumber, "debe reportar el primer registro roto")
	assert.Equal(t, audit.ReasonHashMismatch, b.Reason)
}

func TestVerifyAll_DetectaEnlaceRoto(t *testing.T) {
	chain := buildChain(t, 5)
	// Registro re-sellado sobre un padre falso: su hash es consistente pero no enlaza.
	fake := &entity.AuditEvent{SequenceNumber: 2, RecordHash: "deadbeef"}
	require.NoError(t, audit.Seal(chain[2], fake))

	b := audit.VerifyAll(nil, chain)
	require.NotNil(t, b)
	assert.Equal(t, int64(3), b.SequenceNumber)
	assert.Equal(t, audit.ReasonBrokenLink, b.Reason)
}

func TestVerifyAll_DetectaHueco(t *testing.T) {
	chain := buildChain(t, 5)
	withGap := append([]*entity.AuditEvent{}, chain[:2]...)
	withGap = append(withGap, chain[3:]...)

	b := audit.VerifyAll(nil, withGap)
	require.NotNil(t, b)
	assert.Equal(t, int64(4), b.SequenceNumber)
	assert.Equal(t, audit.ReasonSequenceGap, b.Reason)
}

func TestVerifyAll_RangoConAncla(t *testing.T) {
	chain := buildChain(t, 6)
	assert.Nil(t, audit.VerifyAll(chain[2], chain[3:]))

	chain[3].PreviousHash = nil
	b := audit.VerifyAll(chain[2], chain[3:])
	require.NotNil(t, b)
	assert.Equal(t, int64(4), b.SequenceNumber)
}

func TestVerifier_CuentaRevisados(t *testing.T) {
	chain := buildChain(t, 4)
	v := audit.NewVerifier(nil)
	for _, e := range chain {
		require.Nil(t, v.Check(e))
	}
	assert.Equal(t, int64(4), v.Checked())
}

func TestSanitizeMetadata_DescartaCoordenadasInvalidas(t *testing.T) {
	ok, nan, inf, fuera := 4.6097, math.NaN(), math.Inf(1), 181.0
	m := audit.SanitizeMetadata(entity.AuditMetadata{Latitude: &ok, Longitude: &fuera})
	require.NotNil(t, m.Latitude)
	assert.Equal(t, ok, *m.Latitude)
	assert.Nil(t, m.Longitude)

	m = audit.SanitizeMetadata(entity.AuditMetadata{Latitude: &nan, Longitude: &inf})
	assert.Nil(t, m.Latitude)
	assert.Nil(t, m.Longitude)
}

func TestCanonical_MetadataNoFinita(t *testing.T) {
	nan := math.NaN()
	e := &entity.AuditEvent{ID: "e-1", OccurredAt: time.Now(), Metadata: entity.AuditMetadata{Latitude: &nan}}
	b, err := audit.Canonical(e)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "latitude")
}

func TestSnapshot_ValorNoSerializable(t *testing.T) {
	raw, err := audit.Snapshot(map[string]any{"x": math.Inf(1)})
	require.Error(t, err)
	assert.Contains(t, string(raw), "snapshot_error")

	raw, err = audit.Snapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}
