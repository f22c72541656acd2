package repository

import (
	"context"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock por (tamaño, estado).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve el bucket; si no existe, un bucket con cantidad 0.
	Get(ctx context.Context, size entity.CylinderSize, status entity.CylinderStatus) (*entity.StockBucket, error)
	List(ctx context.Context) ([]*entity.StockBucket, error)
	// Increment suma n de forma atómica (upsert).
	Increment(ctx context.Context, size entity.CylinderSize, status entity.CylinderStatus, n int64) error
	// Decrement resta n solo si el bucket tiene al menos n; si no, devuelve domain.ErrInsufficientStock.
	Decrement(ctx context.Context, size entity.CylinderSize, status entity.CylinderStatus, n int64) error
}
