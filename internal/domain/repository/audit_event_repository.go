package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// AuditFilter criterios de consulta de eventos de auditoría.
type AuditFilter struct {
	EventType  string
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	From, To   *time.Time
	Limit      int
	Offset     int
}

// AuditEventRepository define el puerto de la cadena de auditoría.
type AuditEventRepository interface {
	// Append serializa la escritura: obtiene el último evento (nil si la cadena está vacía),
	// llama build para construir el siguiente y lo inserta, todo bajo un único escritor.
	Append(ctx context.Context, build func(last *entity.AuditEvent) (*entity.AuditEvent, error)) (*entity.AuditEvent, error)
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditEvent, int, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditEvent, error)
	// ListRange devuelve eventos con fromSeq <= seq (y seq <= toSeq si toSeq > 0) en orden ascendente.
	ListRange(ctx context.Context, fromSeq, toSeq int64, limit int) ([]*entity.AuditEvent, error)
	GetBySequence(ctx context.Context, seq int64) (*entity.AuditEvent, error)
}
