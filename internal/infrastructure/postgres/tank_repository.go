package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

var (
	_ repository.TankRepository         = (*TankRepo)(nil)
	_ repository.BulkMovementRepository = (*BulkMovementRepo)(nil)
	_ repository.TankReadingRepository  = (*TankReadingRepo)(nil)
)

const tankColumns = `id, tank_code, name, product, capacity_litres, minimum_level_litres, maximum_level_litres,
	current_level_litres, status, created_at, updated_at`

// TankRepo tanques de granel sobre PostgreSQL (usable con pool o tx).
type TankRepo struct {
	q Querier
}

// NewTankRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTankRepository(q Querier) *TankRepo {
	return &TankRepo{q: q}
}

// Create persiste un tanque; código duplicado devuelve domain.ErrDuplicate.
func (r *TankRepo) Create(ctx context.Context, t *entity.Tank) error {
	query := `INSERT INTO tanks (` + tankColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TankCode, t.Name, t.Product, t.CapacityLitres, t.MinimumLevelLitres, t.MaximumLevelLitres,
		t.CurrentLevelLitres, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tanque %s", domain.ErrDuplicate, t.TankCode)
		}
		return fmt.Errorf("create tank: %w", err)
	}
	return nil
}

func (r *TankRepo) GetByID(ctx context.Context, id string) (*entity.Tank, error) {
	return r.get(ctx, `SELECT `+tankColumns+` FROM tanks WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la fila del tanque: movimientos y lecturas del mismo tanque se serializan.
func (r *TankRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Tank, error) {
	return r.get(ctx, `SELECT `+tankColumns+` FROM tanks WHERE id = $1 FOR UPDATE`, id)
}

func (r *TankRepo) GetByCode(ctx context.Context, code string) (*entity.Tank, error) {
	return r.get(ctx, `SELECT `+tankColumns+` FROM tanks WHERE tank_code = $1`, code)
}

func (r *TankRepo) get(ctx context.Context, query string, arg any) (*entity.Tank, error) {
	t, err := scanTank(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tank: %w", err)
	}
	return t, nil
}

// Update persiste nombre, límites, nivel y estado.
func (r *TankRepo) Update(ctx context.Context, t *entity.Tank) error {
	query := `
		UPDATE tanks SET name = $2, capacity_litres = $3, minimum_level_litres = $4, maximum_level_litres = $5,
			current_level_litres = $6, status = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.Name, t.CapacityLitres, t.MinimumLevelLitres, t.MaximumLevelLitres,
		t.CurrentLevelLitres, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tank: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("tank", t.ID)
	}
	return nil
}

// List todos los tanques por código.
func (r *TankRepo) List(ctx context.Context) ([]*entity.Tank, error) {
	rows, err := r.q.Query(ctx, `SELECT `+tankColumns+` FROM tanks ORDER BY tank_code`)
	if err != nil {
		return nil, fmt.Errorf("list tanks: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tank
	for rows.Next() {
		t, err := scanTank(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tank: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTank(row pgx.Row) (*entity.Tank, error) {
	var t entity.Tank
	err := row.Scan(
		&t.ID, &t.TankCode, &t.Name, &t.Product, &t.CapacityLitres, &t.MinimumLevelLitres, &t.MaximumLevelLitres,
		&t.CurrentLevelLitres, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ── movimientos de granel ───────────────────────────────────────────────────

const bulkColumns = `id, movement_ref, tank_id, movement_type, quantity_litres, tank_level_before, tank_level_after,
	reference_doc, notes, recorded_at, recorded_by`

// BulkMovementRepo movimientos de litros (solo inserción).
type BulkMovementRepo struct {
	q Querier
}

// NewBulkMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBulkMovementRepository(q Querier) *BulkMovementRepo {
	return &BulkMovementRepo{q: q}
}

func (r *BulkMovementRepo) Create(ctx context.Context, m *entity.BulkMovement) error {
	query := `INSERT INTO bulk_movements (` + bulkColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.MovementRef, m.TankID, m.MovementType, m.QuantityLitres, m.TankLevelBefore, m.TankLevelAfter,
		m.ReferenceDoc, m.Notes, m.RecordedAt, m.RecordedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: referencia %s", domain.ErrDuplicate, m.MovementRef)
		}
		return fmt.Errorf("create bulk movement: %w", err)
	}
	return nil
}

// ListByTank movimientos de un tanque en un rango de fechas, el más reciente primero.
func (r *BulkMovementRepo) ListByTank(ctx context.Context, tankID string, from, to *time.Time, limit, offset int) ([]*entity.BulkMovement, error) {
	var w whereBuilder
	w.add("tank_id = $%d", tankID)
	if from != nil {
		w.add("recorded_at >= $%d", *from)
	}
	if to != nil {
		w.add("recorded_at <= $%d", *to)
	}
	query := `SELECT ` + bulkColumns + ` FROM bulk_movements` + w.sql() +
		` ORDER BY recorded_at DESC, movement_ref DESC` + w.page(limit, offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list bulk movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.BulkMovement
	for rows.Next() {
		var m entity.BulkMovement
		if err := rows.Scan(
			&m.ID, &m.MovementRef, &m.TankID, &m.MovementType, &m.QuantityLitres, &m.TankLevelBefore, &m.TankLevelAfter,
			&m.ReferenceDoc, &m.Notes, &m.RecordedAt, &m.RecordedBy,
		); err != nil {
			return nil, fmt.Errorf("scan bulk movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ── lecturas ────────────────────────────────────────────────────────────────

// TankReadingRepo lecturas físicas (solo inserción).
type TankReadingRepo struct {
	q Querier
}

// NewTankReadingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTankReadingRepository(q Querier) *TankReadingRepo {
	return &TankReadingRepo{q: q}
}

func (r *TankReadingRepo) Create(ctx context.Context, rd *entity.TankReading) error {
	query := `
		INSERT INTO tank_readings (id, tank_id, level_litres, previous_level_litres, temperature_c, pressure_bar, read_at, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		rd.ID, rd.TankID, rd.LevelLitres, rd.PreviousLevelLitres, rd.TemperatureC, rd.PressureBar, rd.ReadAt, rd.RecordedBy,
	)
	if err != nil {
		return fmt.Errorf("create tank reading: %w", err)
	}
	return nil
}

func (r *TankReadingRepo) ListByTank(ctx context.Context, tankID string, limit, offset int) ([]*entity.TankReading, error) {
	query := `
		SELECT id, tank_id, level_litres, previous_level_litres, temperature_c, pressure_bar, read_at, recorded_by
		FROM tank_readings WHERE tank_id = $1
		ORDER BY read_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tankID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tank readings: %w", err)
	}
	defer rows.Close()
	var list []*entity.TankReading
	for rows.Next() {
		var rd entity.TankReading
		if err := rows.Scan(
			&rd.ID, &rd.TankID, &rd.LevelLitres, &rd.PreviousLevelLitres, &rd.TemperatureC, &rd.PressureBar, &rd.ReadAt, &rd.RecordedBy,
		); err != nil {
			return nil, fmt.Errorf("scan tank reading: %w", err)
		}
		list = append(list, &rd)
	}
	return list, rows.Err()
}
