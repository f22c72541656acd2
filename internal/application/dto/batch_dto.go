package dto

import "time"

// CreateRefillBatchRequest body para POST /api/refill-batches.
type CreateRefillBatchRequest struct {
	CylinderSize string `json:"cylinder_size"`
	Quantity     int64  `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
}

// BatchCountsRequest body para completar inspección o QC.
type BatchCountsRequest struct {
	Passed int64 `json:"passed"`
	Failed int64 `json:"failed"`
}

// StageResponse momento y responsable de una etapa.
type StageResponse struct {
	At *time.Time `json:"at,omitempty"`
	By *string    `json:"by,omitempty"`
}

// RefillBatchResponse lote de recarga.
type RefillBatchResponse struct {
	ID                    string         `json:"id"`
	BatchRef              string         `json:"batch_ref"`
	CylinderSize          string         `json:"cylinder_size"`
	InitialQuantity       int64          `json:"initial_quantity"`
	Quantity              int64          `json:"quantity"`
	Status                string         `json:"status"`
	PassedCount           int64          `json:"passed_count"`
	FailedCount           int64          `json:"failed_count"`
	InspectionStarted     *StageResponse `json:"inspection_started,omitempty"`
	InspectionCompleted   *StageResponse `json:"inspection_completed,omitempty"`
	FillingStarted        *StageResponse `json:"filling_started,omitempty"`
	FillingCompleted      *StageResponse `json:"filling_completed,omitempty"`
	QCCompleted           *StageResponse `json:"qc_completed,omitempty"`
	Stocked               *StageResponse `json:"stocked,omitempty"`
	ReservationMovementID *string        `json:"reservation_movement_id,omitempty"`
	StockMovementID       *string        `json:"stock_movement_id,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	CreatedBy             string         `json:"created_by"`
	UpdatedAt             time.Time      `json:"updated_at"`
}
