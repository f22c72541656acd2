package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, reference, cylinder_size, movement_type, from_status, to_status, quantity,
	order_id, refill_batch_id, route_stop_id, batch_phase, notes,
	variance_approved, variance_approved_by, variance_approved_at, recorded_at, recorded_by`

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento de cilindros.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `INSERT INTO cylinder_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Reference, m.CylinderSize, m.MovementType, m.FromStatus, m.ToStatus, m.Quantity,
		m.OrderID, m.RefillBatchID, m.RouteStopID, m.BatchPhase, m.Notes,
		m.VarianceApproved, m.VarianceApprovedBy, m.VarianceApprovedAt, m.RecordedAt, m.RecordedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: referencia %s", domain.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (nil si no existe).
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM cylinder_movements WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el movimiento y bloquea la fila (aprobación de varianza).
func (r *MovementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM cylinder_movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *MovementRepo) get(ctx context.Context, query, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// UpdateVariance persiste la resolución de la varianza; el resto del movimiento es inmutable.
func (r *MovementRepo) UpdateVariance(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE cylinder_movements
		SET variance_approved = $2, variance_approved_by = $3, variance_approved_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.VarianceApproved, m.VarianceApprovedBy, m.VarianceApprovedAt)
	if err != nil {
		return fmt.Errorf("update variance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("movement", m.ID)
	}
	return nil
}

// List movimientos con filtros, el más reciente primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var w whereBuilder
	if f.CylinderSize != nil {
		w.add("cylinder_size = $%d", *f.CylinderSize)
	}
	if f.MovementType != nil {
		w.add("movement_type = $%d", *f.MovementType)
	}
	if f.RefillBatchID != nil {
		w.add("refill_batch_id = $%d", *f.RefillBatchID)
	}
	if f.PendingVariance {
		w.raw("movement_type = 'adjustment' AND variance_approved IS NULL")
	}
	if f.From != nil {
		w.add("recorded_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("recorded_at <= $%d", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM cylinder_movements` + w.sql() +
		` ORDER BY recorded_at DESC, reference DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var from, to, phase *string
	err := row.Scan(
		&m.ID, &m.Reference, &m.CylinderSize, &m.MovementType, &from, &to, &m.Quantity,
		&m.OrderID, &m.RefillBatchID, &m.RouteStopID, &phase, &m.Notes,
		&m.VarianceApproved, &m.VarianceApprovedBy, &m.VarianceApprovedAt, &m.RecordedAt, &m.RecordedBy,
	)
	if err != nil {
		return nil, err
	}
	if from != nil {
		s := entity.CylinderStatus(*from)
		m.FromStatus = &s
	}
	if to != nil {
		s := entity.CylinderStatus(*to)
		m.ToStatus = &s
	}
	if phase != nil {
		p := entity.BatchPhase(*phase)
		m.BatchPhase = &p
	}
	return &m, nil
}
