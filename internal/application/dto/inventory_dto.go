package dto

import "time"

// RecordMovementRequest body para POST /api/inventory/movements.
type RecordMovementRequest struct {
	CylinderSize string  `json:"cylinder_size"`
	MovementType string  `json:"movement_type"`
	Quantity     int64   `json:"quantity"`
	FromStatus   *string `json:"from_status,omitempty"` // solo quarantine
	OrderID      *string `json:"order_id,omitempty"`
	RouteStopID  *string `json:"route_stop_id,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// CreateAdjustmentRequest body para POST /api/inventory/adjustments.
type CreateAdjustmentRequest struct {
	CylinderSize string `json:"cylinder_size"`
	Status       string `json:"status"`
	Delta        int64  `json:"delta"`
	Reason       string `json:"reason"`
}

// ApproveVarianceRequest body para POST /api/inventory/adjustments/:id/approve.
type ApproveVarianceRequest struct {
	Approved bool `json:"approved"`
}

// MovementResponse movimiento de cilindros.
type MovementResponse struct {
	ID                 string     `json:"id"`
	Reference          string     `json:"reference"`
	CylinderSize       string     `json:"cylinder_size"`
	MovementType       string     `json:"movement_type"`
	FromStatus         *string    `json:"from_status"`
	ToStatus           *string    `json:"to_status"`
	Quantity           int64      `json:"quantity"`
	OrderID            *string    `json:"order_id,omitempty"`
	RefillBatchID      *string    `json:"refill_batch_id,omitempty"`
	RouteStopID        *string    `json:"route_stop_id,omitempty"`
	BatchPhase         *string    `json:"batch_phase,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	VarianceApproved   *bool      `json:"variance_approved,omitempty"`
	VarianceApprovedBy *string    `json:"variance_approved_by,omitempty"`
	VarianceApprovedAt *time.Time `json:"variance_approved_at,omitempty"`
	RecordedAt         time.Time  `json:"recorded_at"`
	RecordedBy         string     `json:"recorded_by"`
}

// StockGroup cantidades de un grupo (un tamaño, un estado o el total).
type StockGroup struct {
	Key        string           `json:"key"`
	Quantities map[string]int64 `json:"quantities"`
	Total      int64            `json:"total"`
}

// StockSummaryResponse resumen de stock agrupado.
type StockSummaryResponse struct {
	GroupBy string       `json:"group_by"`
	Groups  []StockGroup `json:"groups"`
	Total   int64        `json:"total"`
}

// LowStockAlert tamaño con cilindros llenos por debajo del umbral.
type LowStockAlert struct {
	CylinderSize string `json:"cylinder_size"`
	FullQuantity int64  `json:"full_quantity"`
	Threshold    int64  `json:"threshold"`
	Shortfall    int64  `json:"shortfall"`
}
