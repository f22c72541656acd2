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

var _ repository.RefillBatchRepository = (*RefillBatchRepo)(nil)

const batchColumns = `id, batch_ref, cylinder_size, initial_quantity, quantity, status, passed_count, failed_count,
	inspection_started_at, inspection_started_by, inspection_completed_at, inspection_completed_by,
	filling_started_at, filling_started_by, filling_completed_at, filling_completed_by,
	qc_completed_at, qc_completed_by, stocked_at, stocked_by,
	reservation_movement_id, stock_movement_id, notes, created_at, created_by, updated_at`

// RefillBatchRepo implementación sobre PostgreSQL (usable con pool o tx).
type RefillBatchRepo struct {
	q Querier
}

// NewRefillBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRefillBatchRepository(q Querier) *RefillBatchRepo {
	return &RefillBatchRepo{q: q}
}

// Create persiste un lote nuevo.
func (r *RefillBatchRepo) Create(ctx context.Context, b *entity.RefillBatch) error {
	query := `INSERT INTO refill_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.q.Exec(ctx, query, batchArgs(b)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, b.BatchRef)
		}
		return fmt.Errorf("create refill batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote (nil si no existe).
func (r *RefillBatchRepo) GetByID(ctx context.Context, id string) (*entity.RefillBatch, error) {
	return r.get(ctx, `SELECT `+batchColumns+` FROM refill_batches WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *RefillBatchRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.RefillBatch, error) {
	return r.get(ctx, `SELECT `+batchColumns+` FROM refill_batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *RefillBatchRepo) get(ctx context.Context, query, id string) (*entity.RefillBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refill batch: %w", err)
	}
	return b, nil
}

// Update persiste estado, conteos y marcas de etapa. Referencia, tamaño y cantidad inicial no cambian.
func (r *RefillBatchRepo) Update(ctx context.Context, b *entity.RefillBatch) error {
	query := `
		UPDATE refill_batches SET
			quantity = $2, status = $3, passed_count = $4, failed_count = $5,
			inspection_started_at = $6, inspection_started_by = $7,
			inspection_completed_at = $8, inspection_completed_by = $9,
			filling_started_at = $10, filling_started_by = $11,
			filling_completed_at = $12, filling_completed_by = $13,
			qc_completed_at = $14, qc_completed_by = $15,
			stocked_at = $16, stocked_by = $17,
			reservation_movement_id = $18, stock_movement_id = $19,
			notes = $20, updated_at = $21
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		b.ID, b.Quantity, b.Status, b.PassedCount, b.FailedCount,
		b.InspectionStarted.At, b.InspectionStarted.By, b.InspectionCompleted.At, b.InspectionCompleted.By,
		b.FillingStarted.At, b.FillingStarted.By, b.FillingCompleted.At, b.FillingCompleted.By,
		b.QCCompleted.At, b.QCCompleted.By, b.Stocked.At, b.Stocked.By,
		b.ReservationMovementID, b.StockMovementID, b.Notes, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update refill batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("refill_batch", b.ID)
	}
	return nil
}

// List lotes, el más reciente primero.
func (r *RefillBatchRepo) List(ctx context.Context, status *entity.BatchStatus, limit, offset int) ([]*entity.RefillBatch, error) {
	var w whereBuilder
	if status != nil {
		w.add("status = $%d", *status)
	}
	query := `SELECT ` + batchColumns + ` FROM refill_batches` + w.sql() +
		` ORDER BY created_at DESC, batch_ref DESC` + w.page(limit, offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list refill batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.RefillBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refill batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func batchArgs(b *entity.RefillBatch) []any {
	return []any{
		b.ID, b.BatchRef, b.CylinderSize, b.InitialQuantity, b.Quantity, b.Status, b.PassedCount, b.FailedCount,
		b.InspectionStarted.At, b.InspectionStarted.By, b.InspectionCompleted.At, b.InspectionCompleted.By,
		b.FillingStarted.At, b.FillingStarted.By, b.FillingCompleted.At, b.FillingCompleted.By,
		b.QCCompleted.At, b.QCCompleted.By, b.Stocked.At, b.Stocked.By,
		b.ReservationMovementID, b.StockMovementID, b.Notes, b.CreatedAt, b.CreatedBy, b.UpdatedAt,
	}
}

func scanBatch(row pgx.Row) (*entity.RefillBatch, error) {
	var b entity.RefillBatch
	err := row.Scan(
		&b.ID, &b.BatchRef, &b.CylinderSize, &b.InitialQuantity, &b.Quantity, &b.Status, &b.PassedCount, &b.FailedCount,
		&b.InspectionStarted.At, &b.InspectionStarted.By, &b.InspectionCompleted.At, &b.InspectionCompleted.By,
		&b.FillingStarted.At, &b.FillingStarted.By, &b.FillingCompleted.At, &b.FillingCompleted.By,
		&b.QCCompleted.At, &b.QCCompleted.By, &b.Stocked.At, &b.Stocked.By,
		&b.ReservationMovementID, &b.StockMovementID, &b.Notes, &b.CreatedAt, &b.CreatedBy, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
