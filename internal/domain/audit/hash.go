// Package audit: forma canónica, sello SHA-256 y verificación de la cadena de auditoría.
//
// Cada registro guarda el hash del anterior (previous_hash) y su propio hash
// (record_hash) calculado sobre su contenido canónico, su número de secuencia,
// el hash previo y la marca de tiempo.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// canonicalRecord fija el orden de los campos del contenido que se firma.
type canonicalRecord struct {
	SequenceNumber int64                `json:"sequence_number"`
	ID             string               `json:"id"`
	EventType      string               `json:"event_type"`
	EventSubtype   string               `json:"event_subtype"`
	Action         string               `json:"action"`
	ActorID        string               `json:"actor_id"`
	ActorEmail     string               `json:"actor_email"`
	ActorRole      string               `json:"actor_role"`
	EntityType     string               `json:"entity_type"`
	EntityID       string               `json:"entity_id"`
	EntityRef      string               `json:"entity_ref"`
	Summary        string               `json:"summary"`
	PreviousState  json.RawMessage      `json:"previous_state"`
	NewState       json.RawMessage      `json:"new_state"`
	Metadata       entity.AuditMetadata `json:"metadata"`
	OccurredAt     string               `json:"occurred_at"`
	PreviousHash   *string              `json:"previous_hash"`
}

// Canonical serializa el evento de forma determinista. Los snapshots JSON se normalizan
// (claves ordenadas, sin espacios) para que el hash no cambie tras pasar por JSONB.
func Canonical(e *entity.AuditEvent) ([]byte, error) {
	prev, err := NormalizeJSON(e.PreviousState)
	if err != nil {
		return nil, fmt.Errorf("audit: previous_state: %w", err)
	}
	next, err := NormalizeJSON(e.NewState)
	if err != nil {
		return nil, fmt.Errorf("audit: new_state: %w", err)
	}
	rec := canonicalRecord{
		SequenceNumber: e.SequenceNumber,
		ID:             e.ID,
		EventType:      e.EventType,
		EventSubtype:   e.EventSubtype,
		Action:         e.Action,
		ActorID:        e.ActorID,
		ActorEmail:     e.ActorEmail,
		ActorRole:      e.ActorRole,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		EntityRef:      e.EntityRef,
		Summary:        e.Summary,
		PreviousState:  nullIfEmpty(prev),
		NewState:       nullIfEmpty(next),
		Metadata:       SanitizeMetadata(e.Metadata),
		OccurredAt:     e.OccurredAt.UTC().Format(time.RFC3339Nano),
		PreviousHash:   e.PreviousHash,
	}
	return json.Marshal(rec)
}

// ComputeHash hex(SHA-256(Canonical(e))).
func ComputeHash(e *entity.AuditEvent) (string, error) {
	b, err := Canonical(e)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Seal encadena e al último evento (nil si la cadena está vacía): asigna secuencia,
// previous_hash, trunca la marca de tiempo a microsegundos (precisión de Postgres)
// y calcula record_hash.
func Seal(e *entity.AuditEvent, last *entity.AuditEvent) error {
	if last == nil {
		e.SequenceNumber = 1
		e.PreviousHash = nil
	} else {
		e.SequenceNumber = last.SequenceNumber + 1
		h := last.RecordHash
		e.PreviousHash = &h
	}
	e.OccurredAt = e.OccurredAt.UTC().Truncate(time.Microsecond)
	e.Metadata = SanitizeMetadata(e.Metadata)

	var err error
	if e.PreviousState, err = NormalizeJSON(e.PreviousState); err != nil {
		return fmt.Errorf("audit: previous_state: %w", err)
	}
	if e.NewState, err = NormalizeJSON(e.NewState); err != nil {
		return fmt.Errorf("audit: new_state: %w", err)
	}
	hash, err := ComputeHash(e)
	if err != nil {
		return err
	}
	e.RecordHash = hash
	return nil
}

// NormalizeJSON reescribe un documento JSON con claves ordenadas y números en float64.
// Vacío o "null" devuelve nil.
func NormalizeJSON(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Snapshot serializa un valor para previous_state/new_state. Si el valor no es
// serializable devuelve un marcador {"snapshot_error": ...} junto con el error, para que el
// evento quede en la cadena igualmente.
func Snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		marker, _ := json.Marshal(map[string]string{"snapshot_error": err.Error()})
		return marker, err
	}
	return b, nil
}

// SanitizeMetadata descarta coordenadas no finitas o fuera de rango (lat ±90, lon ±180).
func SanitizeMetadata(m entity.AuditMetadata) entity.AuditMetadata {
	m.Latitude = coordinate(m.Latitude, 90)
	m.Longitude = coordinate(m.Longitude, 180)
	return m
}

func coordinate(v *float64, limit float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || math.Abs(*v) > limit {
		return nil
	}
	return v
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
