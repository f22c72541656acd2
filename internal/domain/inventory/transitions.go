package inventory

import (
	"fmt"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
)

// Transition buckets origen y destino de un tipo de movimiento (nil = sin bucket).
type Transition struct {
	From *entity.CylinderStatus
	To   *entity.CylinderStatus
}

func st(s entity.CylinderStatus) *entity.CylinderStatus { return &s }

// TransitionFor deriva la transición de un tipo de movimiento. Solo quarantine acepta un
// origen indicado por el llamador (source); sin él, la cuarentena solo incrementa y el
// caso de uso la limita a los rechazados de un lote de recarga.
// adjustment no tiene transición fija: se registra con CreateAdjustment.
func TransitionFor(t entity.MovementType, source *entity.CylinderStatus) (Transition, error) {
	if source != nil && t != entity.MovementQuarantine {
		return Transition{}, fmt.Errorf("%w: el estado origen solo aplica a quarantine", domain.ErrInvalidInput)
	}
	switch t {
	case entity.MovementPurchase:
		return Transition{To: st(entity.StatusFull)}, nil
	case entity.MovementReceiveEmpty:
		return Transition{To: st(entity.StatusEmpty)}, nil
	case entity.MovementRefill:
		return Transition{From: st(entity.StatusEmpty), To: st(entity.StatusFull)}, nil
	case entity.MovementIssue:
		return Transition{From: st(entity.StatusFull), To: st(entity.StatusIssued)}, nil
	case entity.MovementDeliver:
		return Transition{From: st(entity.StatusIssued), To: st(entity.StatusAtCustomer)}, nil
	case entity.MovementReturnUndelivered:
		return Transition{From: st(entity.StatusIssued), To: st(entity.StatusFull)}, nil
	case entity.MovementCollectEmpty:
		return Transition{From: st(entity.StatusAtCustomer), To: st(entity.StatusEmpty)}, nil
	case entity.MovementCollectFull:
		return Transition{From: st(entity.StatusAtCustomer), To: st(entity.StatusFull)}, nil
	case entity.MovementQuarantine:
		if source != nil {
			if !source.Valid() || *source == entity.StatusQuarantine {
				return Transition{}, fmt.Errorf("%w: origen de cuarentena %q", domain.ErrInvalidInput, *source)
			}
			return Transition{From: st(*source), To: st(entity.StatusQuarantine)}, nil
		}
		return Transition{To: st(entity.StatusQuarantine)}, nil
	case entity.MovementReleaseQuarantine:
		return Transition{From: st(entity.StatusQuarantine), To: st(entity.StatusEmpty)}, nil
	case entity.MovementSendMaintenance:
		return Transition{From: st(entity.StatusQuarantine), To: st(entity.StatusMaintenance)}, nil
	case entity.MovementReturnMaintenance:
		return Transition{From: st(entity.StatusMaintenance), To: st(entity.StatusEmpty)}, nil
	case entity.MovementScrap:
		return Transition{From: st(entity.StatusMaintenance)}, nil
	case entity.MovementTransferOut:
		return Transition{From: st(entity.StatusFull)}, nil
	case entity.MovementAdjustment:
		return Transition{}, fmt.Errorf("%w: los ajustes se registran aparte", domain.ErrInvalidInput)
	}
	return Transition{}, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, t)
}

// BucketDelta cambio firmado sobre un bucket.
type BucketDelta struct {
	Status entity.CylinderStatus
	Delta  int64
}

// Deltas cambios a aplicar por qty unidades; los decrementos van primero.
// En movimientos de lote, la fase reserve aplica solo el origen y la fase stock solo el destino.
func (t Transition) Deltas(qty int64, phase *entity.BatchPhase) []BucketDelta {
	applyFrom, applyTo := t.From != nil, t.To != nil
	if phase != nil {
		switch *phase {
		case entity.BatchPhaseReserve:
			applyTo = false
		case entity.BatchPhaseStock:
			applyFrom = false
		}
	}
	var out []BucketDelta
	if applyFrom {
		out = append(out, BucketDelta{Status: *t.From, Delta: -qty})
	}
	if applyTo {
		out = append(out, BucketDelta{Status: *t.To, Delta: qty})
	}
	return out
}

// AdjustmentTransition un ajuste positivo entra al bucket; uno negativo sale de él.
func AdjustmentTransition(status entity.CylinderStatus, delta int64) Transition {
	if delta > 0 {
		return Transition{To: st(status)}
	}
	return Transition{From: st(status)}
}
