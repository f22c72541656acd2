package repository

import (
	"context"
	"time"

	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// MovementFilter criterios para listar movimientos de cilindros.
type MovementFilter struct {
	CylinderSize    *entity.CylinderSize
	MovementType    *entity.MovementType
	RefillBatchID   *string
	PendingVariance bool
	From, To        *time.Time
	Limit, Offset   int
}

// MovementRepository define el puerto de persistencia para movimientos de cilindros.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	// UpdateVariance persiste solo los campos de aprobación de varianza.
	UpdateVariance(ctx context.Context, m *entity.Movement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, error)
}
