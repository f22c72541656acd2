package dto

import (
	"encoding/json"
	"time"
)

// AuditEventResponse registro de la cadena de auditoría.
type AuditEventResponse struct {
	SequenceNumber int64           `json:"sequence_number"`
	ID             string          `json:"id"`
	EventType      string          `json:"event_type"`
	EventSubtype   string          `json:"event_subtype"`
	Action         string          `json:"action"`
	ActorID        string          `json:"actor_id"`
	ActorEmail     string          `json:"actor_email,omitempty"`
	ActorRole      string          `json:"actor_role,omitempty"`
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id"`
	EntityRef      string          `json:"entity_ref,omitempty"`
	Summary        string          `json:"summary"`
	PreviousState  json.RawMessage `json:"previous_state,omitempty"`
	NewState       json.RawMessage `json:"new_state,omitempty"`
	IPAddress      string          `json:"ip_address,omitempty"`
	UserAgent      string          `json:"user_agent,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
	PreviousHash   *string         `json:"previous_hash"`
	RecordHash     string          `json:"record_hash"`
}

// AuditEventPage página de eventos.
type AuditEventPage struct {
	Items []AuditEventResponse `json:"items"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
	Total int                  `json:"total"`
}

// ChainVerificationResponse resultado de verificar la cadena.
type ChainVerificationResponse struct {
	Valid               bool      `json:"valid"`
	Checked             int64     `json:"checked"`
	FirstBrokenSequence *int64    `json:"first_broken_sequence,omitempty"`
	Reason              string    `json:"reason,omitempty"`
	FromSequence        int64     `json:"from_sequence"`
	ToSequence          int64     `json:"to_sequence,omitempty"`
	LastHash            string    `json:"last_hash,omitempty"`
	VerifiedAt          time.Time `json:"verified_at"`
}
