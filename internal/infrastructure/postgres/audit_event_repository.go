package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

var _ repository.AuditEventRepository = (*AuditEventRepo)(nil)

const auditColumns = `sequence_number, id, event_type, event_subtype, action, actor_id, actor_email, actor_role,
	entity_type, entity_id, entity_ref, summary, previous_state, new_state, metadata,
	occurred_at, previous_hash, record_hash`

// AuditEventRepo cadena de auditoría sobre PostgreSQL. Append abre su propia transacción
// y toma pg_advisory_xact_lock(lockKey): un solo escritor por cadena entre todas las instancias.
type AuditEventRepo struct {
	db      Beginner
	lockKey int64
}

// NewAuditEventRepository construye el adaptador sobre el pool.
func NewAuditEventRepository(db Beginner, lockKey int64) *AuditEventRepo {
	return &AuditEventRepo{db: db, lockKey: lockKey}
}

// Append lee el último registro bajo el lock, construye el siguiente con build y lo inserta.
func (r *AuditEventRepo) Append(ctx context.Context, build func(last *entity.AuditEvent) (*entity.AuditEvent, error)) (*entity.AuditEvent, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin audit transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, r.lockKey); err != nil {
		return nil, fmt.Errorf("audit chain lock: %w", err)
	}
	last, err := scanAuditEvent(tx.QueryRow(ctx,
		`SELECT `+auditColumns+` FROM audit_events ORDER BY sequence_number DESC LIMIT 1`))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("read chain tail: %w", err)
		}
		last = nil
	}

	e, err := build(last)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO audit_events (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = tx.Exec(ctx, query,
		e.SequenceNumber, e.ID, e.EventType, e.EventSubtype, e.Action, e.ActorID, e.ActorEmail, e.ActorRole,
		e.EntityType, e.EntityID, e.EntityRef, e.Summary, e.PreviousState, e.NewState, e.Metadata,
		e.OccurredAt, e.PreviousHash, e.RecordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert audit event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit audit event: %w", err)
	}
	return e, nil
}

// List eventos filtrados, el más reciente primero, con el total sin paginar.
func (r *AuditEventRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditEvent, int, error) {
	var w whereBuilder
	if f.EventType != "" {
		w.add("event_type = $%d", f.EventType)
	}
	if f.EntityType != "" {
		w.add("entity_type = $%d", f.EntityType)
	}
	if f.EntityID != "" {
		w.add("entity_id = $%d", f.EntityID)
	}
	if f.ActorID != "" {
		w.add("actor_id = $%d", f.ActorID)
	}
	if f.Action != "" {
		w.add("action = $%d", f.Action)
	}
	if f.From != nil {
		w.add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("occurred_at <= $%d", *f.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_events`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}
	query := `SELECT ` + auditColumns + ` FROM audit_events` + w.sql() +
		` ORDER BY sequence_number DESC` + w.page(f.Limit, f.Offset)
	list, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByEntity historial de una entidad en orden de secuencia.
func (r *AuditEventRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditEvent, error) {
	return r.query(ctx, `SELECT `+auditColumns+` FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2 ORDER BY sequence_number`, entityType, entityID)
}

// ListRange página ascendente desde fromSeq (hasta toSeq si es > 0).
func (r *AuditEventRepo) ListRange(ctx context.Context, fromSeq, toSeq int64, limit int) ([]*entity.AuditEvent, error) {
	if toSeq > 0 {
		return r.query(ctx, `SELECT `+auditColumns+` FROM audit_events
			WHERE sequence_number >= $1 AND sequence_number <= $2 ORDER BY sequence_number LIMIT $3`, fromSeq, toSeq, limit)
	}
	return r.query(ctx, `SELECT `+auditColumns+` FROM audit_events
		WHERE sequence_number >= $1 ORDER BY sequence_number LIMIT $2`, fromSeq, limit)
}

// GetBySequence un registro (nil si no existe).
func (r *AuditEventRepo) GetBySequence(ctx context.Context, seq int64) (*entity.AuditEvent, error) {
	e, err := scanAuditEvent(r.db.QueryRow(ctx, `SELECT `+auditColumns+` FROM audit_events WHERE sequence_number = $1`, seq))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit event: %w", err)
	}
	return e, nil
}

func (r *AuditEventRepo) query(ctx context.Context, query string, args ...any) ([]*entity.AuditEvent, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.AuditEvent, 0)
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanAuditEvent(row pgx.Row) (*entity.AuditEvent, error) {
	var e entity.AuditEvent
	var prev, next []byte
	err := row.Scan(
		&e.SequenceNumber, &e.ID, &e.EventType, &e.EventSubtype, &e.Action, &e.ActorID, &e.ActorEmail, &e.ActorRole,
		&e.EntityType, &e.EntityID, &e.EntityRef, &e.Summary, &prev, &next, &e.Metadata,
		&e.OccurredAt, &e.PreviousHash, &e.RecordHash,
	)
	if err != nil {
		return nil, err
	}
	e.PreviousState = prev
	e.NewState = next
	e.OccurredAt = e.OccurredAt.UTC()
	return &e, nil
}
