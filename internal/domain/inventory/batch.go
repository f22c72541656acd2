package inventory

import (
	"fmt"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// CanTransition reglas del lote de recarga. failed y stocked son terminales.
func CanTransition(from, to entity.BatchStatus) bool {
	switch from {
	case entity.BatchCreated:
		return to == entity.BatchInspecting
	case entity.BatchInspecting:
		return to == entity.BatchFilling || to == entity.BatchFailed
	case entity.BatchFilling:
		return to == entity.BatchQC
	case entity.BatchQC:
		return to == entity.BatchPassed || to == entity.BatchFailed
	case entity.BatchPassed:
		return to == entity.BatchStocked
	}
	return false
}

// IsTerminal indica un estado sin salidas.
func IsTerminal(s entity.BatchStatus) bool {
	return s == entity.BatchFailed || s == entity.BatchStocked
}

// CheckTransition devuelve *domain.TransitionError si el lote no puede pasar a `to`.
func CheckTransition(b *entity.RefillBatch, to entity.BatchStatus) error {
	if !CanTransition(b.Status, to) {
		return domain.NewTransitionError("refill_batch", b.BatchRef, string(b.Status), string(to))
	}
	return nil
}

// CheckStatus exige que el lote esté en `want` para una operación que no cambia de estado.
func CheckStatus(b *entity.RefillBatch, want entity.BatchStatus, requested string) error {
	if b.Status != want {
		return domain.NewTransitionError("refill_batch", b.BatchRef, string(b.Status), requested)
	}
	return nil
}

// CheckCounts aprobados + rechazados deben sumar la cantidad del lote.
func CheckCounts(quantity, passed, failed int64) error {
	if passed < 0 || failed < 0 {
		return fmt.Errorf("%w: conteos negativos", domain.ErrInvalidInput)
	}
	if passed+failed != quantity {
		return fmt.Errorf("%w: aprobados (%d) + rechazados (%d) != cantidad (%d)",
			domain.ErrValidationMismatch, passed, failed, quantity)
	}
	return nil
}

// OutcomeStatus estado siguiente tras una revisión: failed si no aprobó ninguno.
func OutcomeStatus(passed int64, onPass entity.BatchStatus) entity.BatchStatus {
	if passed == 0 {
		return entity.BatchFailed
	}
	return onPass
}
