package entity

import (
	"encoding/json"
	"time"
)

// Actor quien ejecuta una operación (tomado del token).
type Actor struct {
	ID    string
	Email string
	Role  string
}

// AuditMetadata contexto de la petición que originó el evento.
type AuditMetadata struct {
	IPAddress string   `json:"ip_address,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
	DeviceID  string   `json:"device_id,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// AuditEvent registro de la cadena de auditoría. Inmutable tras su inserción.
type AuditEvent struct {
	SequenceNumber int64
	ID             string
	EventType      string
	EventSubtype   string
	Action         string
	ActorID        string
	ActorEmail     string
	ActorRole      string
	EntityType     string
	EntityID       string
	EntityRef      string
	Summary        string
	PreviousState  json.RawMessage
	NewState       json.RawMessage
	Metadata       AuditMetadata
	OccurredAt     time.Time
	PreviousHash   *string
	RecordHash     string
}

// Caller actor y contexto de la petición que origina una operación.
type Caller struct {
	Actor    Actor
	Metadata AuditMetadata
}
