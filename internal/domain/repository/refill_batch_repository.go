package repository

import (
	"context"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// RefillBatchRepository define el puerto de persistencia para lotes de recarga.
type RefillBatchRepository interface {
	Create(ctx context.Context, b *entity.RefillBatch) error
	GetByID(ctx context.Context, id string) (*entity.RefillBatch, error)
	// GetByIDForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.RefillBatch, error)
	Update(ctx context.Context, b *entity.RefillBatch) error
	List(ctx context.Context, status *entity.BatchStatus, limit, offset int) ([]*entity.RefillBatch, error)
}
