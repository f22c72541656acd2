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

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el bucket (tamaño, estado); si no existe devuelve cantidad 0.
func (r *StockRepo) Get(ctx context.Context, size entity.CylinderSize, status entity.CylinderStatus) (*entity.StockBucket, error) {
	query := `
		SELECT cylinder_size, status, quantity, updated_at
		FROM stock_buckets WHERE cylinder_size = $1 AND status = $2`
	var b entity.StockBucket
	err := r.q.QueryRow(ctx, query, size, status).Scan(&b.CylinderSize, &b.Status, &b.Quantity, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockBucket{CylinderSize: size, Status: status}, nil
		}
		return nil, fmt.Errorf("get stock bucket: %w", err)
	}
	return &b, nil
}

// List todos los buckets existentes.
func (r *StockRepo) List(ctx context.Context) ([]*entity.StockBucket, error) {
	rows, err := r.q.Query(ctx, `
		SELECT cylinder_size, status, quantity, updated_at
		FROM stock_buckets ORDER BY cylinder_size, status`)
	if err != nil {
		return nil, fmt.Errorf("list stock buckets: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBucket
	for rows.Next() {
		var b entity.StockBucket
		if err := rows.Scan(&b.CylinderSize, &b.Status, &b.Quantity, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock bucket: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Increment suma n al bucket, creándolo si no existe.
func (r *StockRepo) Increment(ctx context.Context, size entity.CylinderSize, status entity.CylinderStatus, n int64) error {
	query := `
		INSERT INTO stock_buckets (cylinder_size, status, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (cylinder_size, status)
		DO UPDATE SET quantity = stock_buckets.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, size, status, n); err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	return nil
}

// Decrement resta n solo si el bucket tiene al menos n. La guarda va en el WHERE, así dos
// transacciones concurrentes no pueden dejarlo negativo.
func (r *StockRepo) Decrement(ctx context.Context, size entity.CylinderSize, status entity.CylinderStatus, n int64) error {
	query := `
		UPDATE stock_buckets SET quantity = quantity - $3, updated_at = now()
		WHERE cylinder_size = $1 AND status = $2 AND quantity >= $3`
	tag, err := r.q.Exec(ctx, query, size, status, n)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}
