package inventory

import (
	"context"

	"github.com/jhoicas/gasdepot-api/internal/application/dto"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
func (uc *MovementUseCase) RecordMovementFromRequest(ctx context.Context, caller entity.Caller, in dto.RecordMovementRequest) (*entity.Movement, error) {
	input := RecordMovementInput{
		CylinderSize: entity.CylinderSize(in.CylinderSize),
		MovementType: entity.MovementType(in.MovementType),
		Quantity:     in.Quantity,
		OrderID:      in.OrderID,
		RouteStopID:  in.RouteStopID,
		Notes:        in.Notes,
		Caller:       caller,
	}
	if in.FromStatus != nil {
		s := entity.CylinderStatus(*in.FromStatus)
		input.FromStatus = &s
	}
	return uc.RecordMovement(ctx, input)
}

// CreateAdjustmentFromRequest adapta el request HTTP al caso de uso CreateAdjustment.
func (uc *MovementUseCase) CreateAdjustmentFromRequest(ctx context.Context, caller entity.Caller, in dto.CreateAdjustmentRequest) (*entity.Movement, error) {
	return uc.CreateAdjustment(ctx, AdjustmentInput{
		CylinderSize: entity.CylinderSize(in.CylinderSize),
		Status:       entity.CylinderStatus(in.Status),
		Delta:        in.Delta,
		Reason:       in.Reason,
		Caller:       caller,
	})
}

// CreateFromRequest adapta el request HTTP al caso de uso Create.
func (uc *RefillBatchUseCase) CreateFromRequest(ctx context.Context, caller entity.Caller, in dto.CreateRefillBatchRequest) (*entity.RefillBatch, error) {
	return uc.Create(ctx, CreateBatchInput{
		CylinderSize: entity.CylinderSize(in.CylinderSize),
		Quantity:     in.Quantity,
		Notes:        in.Notes,
		Caller:       caller,
	})
}
