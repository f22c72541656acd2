package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTankRequest body para POST /api/tanks.
type CreateTankRequest struct {
	TankCode           string          `json:"tank_code"`
	Name               string          `json:"name"`
	Product            string          `json:"product"`
	CapacityLitres     decimal.Decimal `json:"capacity_litres"`
	MinimumLevelLitres decimal.Decimal `json:"minimum_level_litres"`
	MaximumLevelLitres decimal.Decimal `json:"maximum_level_litres"`
	CurrentLevelLitres decimal.Decimal `json:"current_level_litres"`
}

// UpdateTankRequest body para PUT /api/tanks/:id (campos opcionales).
type UpdateTankRequest struct {
	Name               *string          `json:"name,omitempty"`
	CapacityLitres     *decimal.Decimal `json:"capacity_litres,omitempty"`
	MinimumLevelLitres *decimal.Decimal `json:"minimum_level_litres,omitempty"`
	MaximumLevelLitres *decimal.Decimal `json:"maximum_level_litres,omitempty"`
	Status             *string          `json:"status,omitempty"`
}

// BulkMovementRequest body para POST /api/tanks/:id/movements.
type BulkMovementRequest struct {
	MovementType   string          `json:"movement_type"`
	QuantityLitres decimal.Decimal `json:"quantity_litres"`
	ReferenceDoc   *string         `json:"reference_doc,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// TankReadingRequest body para POST /api/tanks/:id/readings.
type TankReadingRequest struct {
	LevelLitres  decimal.Decimal  `json:"level_litres"`
	TemperatureC *decimal.Decimal `json:"temperature_c,omitempty"`
	PressureBar  *decimal.Decimal `json:"pressure_bar,omitempty"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
}

// TankResponse tanque de granel.
type TankResponse struct {
	ID                 string          `json:"id"`
	TankCode           string          `json:"tank_code"`
	Name               string          `json:"name"`
	Product            string          `json:"product"`
	CapacityLitres     decimal.Decimal `json:"capacity_litres"`
	MinimumLevelLitres decimal.Decimal `json:"minimum_level_litres"`
	MaximumLevelLitres decimal.Decimal `json:"maximum_level_litres"`
	CurrentLevelLitres decimal.Decimal `json:"current_level_litres"`
	FillPercent        decimal.Decimal `json:"fill_percent"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// BulkMovementResponse movimiento de granel.
type BulkMovementResponse struct {
	ID              string          `json:"id"`
	MovementRef     string          `json:"movement_ref"`
	TankID          string          `json:"tank_id"`
	MovementType    string          `json:"movement_type"`
	QuantityLitres  decimal.Decimal `json:"quantity_litres"`
	TankLevelBefore decimal.Decimal `json:"tank_level_before"`
	TankLevelAfter  decimal.Decimal `json:"tank_level_after"`
	ReferenceDoc    *string         `json:"reference_doc,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	RecordedAt      time.Time       `json:"recorded_at"`
	RecordedBy      string          `json:"recorded_by"`
}

// TankReadingResponse lectura de nivel.
type TankReadingResponse struct {
	ID                  string           `json:"id"`
	TankID              string           `json:"tank_id"`
	LevelLitres         decimal.Decimal  `json:"level_litres"`
	PreviousLevelLitres decimal.Decimal  `json:"previous_level_litres"`
	TemperatureC        *decimal.Decimal `json:"temperature_c,omitempty"`
	PressureBar         *decimal.Decimal `json:"pressure_bar,omitempty"`
	ReadAt              time.Time        `json:"read_at"`
	RecordedBy          string           `json:"recorded_by"`
}

// TankAlertResponse tanque fuera de su rango operativo.
type TankAlertResponse struct {
	Tank  TankResponse `json:"tank"`
	Level string       `json:"level"` // low | high
}
