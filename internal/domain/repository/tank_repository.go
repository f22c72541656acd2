package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// TankRepository define el puerto de persistencia para tanques de granel.
type TankRepository interface {
	Create(ctx context.Context, t *entity.Tank) error
	GetByID(ctx context.Context, id string) (*entity.Tank, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Tank, error)
	GetByCode(ctx context.Context, code string) (*entity.Tank, error)
	Update(ctx context.Context, t *entity.Tank) error
	List(ctx context.Context) ([]*entity.Tank, error)
}

// BulkMovementRepository movimientos de litros (solo inserción).
type BulkMovementRepository interface {
	Create(ctx context.Context, m *entity.BulkMovement) error
	ListByTank(ctx context.Context, tankID string, from, to *time.Time, limit, offset int) ([]*entity.BulkMovement, error)
}

// TankReadingRepository lecturas físicas de nivel (solo inserción).
type TankReadingRepository interface {
	Create(ctx context.Context, r *entity.TankReading) error
	ListByTank(ctx context.Context, tankID string, limit, offset int) ([]*entity.TankReading, error)
}
