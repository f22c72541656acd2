package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

// AuditLog implementa repository.AuditEventRepository en memoria.
type AuditLog struct {
	mu      sync.Mutex
	events  []entity.AuditEvent
	failErr error
}

// NewAuditLog crea una cadena vacía.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// FailWith hace que los Append siguientes fallen con err (nil para restablecer).
func (a *AuditLog) FailWith(err error) {
	a.mu.Lock()
	a.failErr = err
	a.mu.Unlock()
}

// Tamper modifica en sitio el registro almacenado con esa secuencia.
func (a *AuditLog) Tamper(seq int64, fn func(e *entity.AuditEvent)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.events {
		if a.events[i].SequenceNumber == seq {
			fn(&a.events[i])
			return true
		}
	}
	return false
}

// Delete elimina el registro con esa secuencia (simula un hueco).
func (a *AuditLog) Delete(seq int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.events {
		if a.events[i].SequenceNumber == seq {
			a.events = append(a.events[:i], a.events[i+1:]...)
			return
		}
	}
}

// Len cantidad de registros.
func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func (a *AuditLog) Append(_ context.Context, build func(last *entity.AuditEvent) (*entity.AuditEvent, error)) (*entity.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failErr != nil {
		return nil, a.failErr
	}
	var last *entity.AuditEvent
	if n := len(a.events); n > 0 {
		l := a.events[n-1]
		last = &l
	}
	e, err := build(last)
	if err != nil {
		return nil, err
	}
	a.events = append(a.events, *e)
	return e, nil
}

func (a *AuditLog) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditEvent, int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var matched []*entity.AuditEvent
	for i := len(a.events) - 1; i >= 0; i-- {
		e := a.events[i]
		if f.EventType != "" && e.EventType != f.EventType {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if !inRange(e.OccurredAt, f.From, f.To) {
			continue
		}
		matched = append(matched, &e)
	}
	return paginate(matched, f.Limit, f.Offset), len(matched), nil
}

func (a *AuditLog) ListByEntity(_ context.Context, entityType, entityID string) ([]*entity.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*entity.AuditEvent, 0)
	for _, e := range a.events {
		if e.EntityType == entityType && e.EntityID == entityID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (a *AuditLog) ListRange(_ context.Context, fromSeq, toSeq int64, limit int) ([]*entity.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*entity.AuditEvent, 0)
	for _, e := range a.events {
		if e.SequenceNumber < fromSeq || (toSeq > 0 && e.SequenceNumber > toSeq) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *AuditLog) GetBySequence(_ context.Context, seq int64) (*entity.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.events {
		if e.SequenceNumber == seq {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}
