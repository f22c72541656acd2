package entity

import "time"

// BatchStatus estado del lote de recarga.
type BatchStatus string

const (
	BatchCreated    BatchStatus = "created"
	BatchInspecting BatchStatus = "inspecting"
	BatchFilling    BatchStatus = "filling"
	BatchQC         BatchStatus = "qc"
	BatchPassed     BatchStatus = "passed"
	BatchFailed     BatchStatus = "failed"
	BatchStocked    BatchStatus = "stocked"
)

// StageStamp momento y responsable de una etapa del lote.
type StageStamp struct {
	At *time.Time
	By *string
}

// Done indica si la etapa ya fue registrada.
func (s StageStamp) Done() bool { return s.At != nil }

// RefillBatch lote de cilindros que pasa por inspección, llenado y control de calidad.
type RefillBatch struct {
	ID                    string
	BatchRef              string // FILL-YYYYMMDD-NNN
	CylinderSize          CylinderSize
	InitialQuantity       int64
	Quantity              int64 // se reduce a los aprobados en inspección y QC
	Status                BatchStatus
	PassedCount           int64
	FailedCount           int64
	InspectionStarted     StageStamp
	InspectionCompleted   StageStamp
	FillingStarted        StageStamp
	FillingCompleted      StageStamp
	QCCompleted           StageStamp
	Stocked               StageStamp
	ReservationMovementID *string
	StockMovementID       *string
	Notes                 string
	CreatedAt             time.Time
	CreatedBy             string
	UpdatedAt             time.Time
}
