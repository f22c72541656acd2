package entity

import "time"

// MovementType clase de movimiento de cilindros; determina los buckets origen/destino.
type MovementType string

const (
	MovementPurchase          MovementType = "purchase"
	MovementReceiveEmpty      MovementType = "receive_empty"
	MovementRefill            MovementType = "refill"
	MovementIssue             MovementType = "issue"
	MovementDeliver           MovementType = "deliver"
	MovementReturnUndelivered MovementType = "return_undelivered"
	MovementCollectEmpty      MovementType = "collect_empty"
	MovementCollectFull       MovementType = "collect_full"
	MovementQuarantine        MovementType = "quarantine"
	MovementReleaseQuarantine MovementType = "release_quarantine"
	MovementSendMaintenance   MovementType = "send_maintenance"
	MovementReturnMaintenance MovementType = "return_maintenance"
	MovementScrap             MovementType = "scrap"
	MovementTransferOut       MovementType = "transfer_out"
	MovementAdjustment        MovementType = "adjustment"
)

// MovementTypes todos los tipos conocidos.
var MovementTypes = []MovementType{
	MovementPurchase, MovementReceiveEmpty, MovementRefill, MovementIssue, MovementDeliver,
	MovementReturnUndelivered, MovementCollectEmpty, MovementCollectFull, MovementQuarantine,
	MovementReleaseQuarantine, MovementSendMaintenance, MovementReturnMaintenance, MovementScrap,
	MovementTransferOut, MovementAdjustment,
}

// BatchPhase fase de un lote de recarga a la que pertenece un movimiento.
type BatchPhase string

const (
	BatchPhaseReserve BatchPhase = "reserve" // salida de vacíos al iniciar inspección
	BatchPhaseStock   BatchPhase = "stock"   // entrada de llenos al almacenar el lote
)

// Movement registro inmutable de un traslado de cilindros entre buckets.
// Solo los campos de varianza cambian después de insertado (ajustes).
type Movement struct {
	ID                 string
	Reference          string // MOV-YYYYMMDD-NNNN o ADJ-YYYYMMDD-NNNN
	CylinderSize       CylinderSize
	MovementType       MovementType
	FromStatus         *CylinderStatus
	ToStatus           *CylinderStatus
	Quantity           int64
	OrderID            *string
	RefillBatchID      *string
	RouteStopID        *string
	BatchPhase         *BatchPhase
	Notes              string
	VarianceApproved   *bool
	VarianceApprovedBy *string
	VarianceApprovedAt *time.Time
	RecordedAt         time.Time
	RecordedBy         string
}

// IsAdjustment indica si el movimiento es un ajuste de inventario.
func (m *Movement) IsAdjustment() bool {
	return m.MovementType == MovementAdjustment
}

// VariancePending indica un ajuste sin aprobar ni rechazar.
func (m *Movement) VariancePending() bool {
	return m.IsAdjustment() && m.VarianceApproved == nil
}
