package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TankStatus estado operativo de un tanque de granel.
type TankStatus string

const (
	TankActive         TankStatus = "active"
	TankMaintenance    TankStatus = "maintenance"
	TankDecommissioned TankStatus = "decommissioned"
)

// Valid indica si el estado es uno de los conocidos.
func (s TankStatus) Valid() bool {
	switch s {
	case TankActive, TankMaintenance, TankDecommissioned:
		return true
	}
	return false
}

// Tank tanque de almacenamiento a granel. 0 <= CurrentLevelLitres <= CapacityLitres.
type Tank struct {
	ID                 string
	TankCode           string
	Name               string
	Product            string
	CapacityLitres     decimal.Decimal
	MinimumLevelLitres decimal.Decimal
	MaximumLevelLitres decimal.Decimal
	CurrentLevelLitres decimal.Decimal
	Status             TankStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FillPercent nivel actual como porcentaje de la capacidad (2 decimales).
func (t *Tank) FillPercent() decimal.Decimal {
	if t.CapacityLitres.IsZero() {
		return decimal.Zero
	}
	return t.CurrentLevelLitres.Div(t.CapacityLitres).Mul(decimal.NewFromInt(100)).Round(2)
}

// BulkMovementType clase de movimiento de litros sobre un tanque.
type BulkMovementType string

const (
	BulkReceive     BulkMovementType = "receive"
	BulkDispense    BulkMovementType = "dispense"
	BulkTransferIn  BulkMovementType = "transfer_in"
	BulkTransferOut BulkMovementType = "transfer_out"
	BulkAdjustment  BulkMovementType = "adjustment"
	BulkLoss        BulkMovementType = "loss"
)

// BulkMovement movimiento de granel con foto del nivel antes y después.
type BulkMovement struct {
	ID              string
	MovementRef     string // BULK-YYYYMMDD-NNNN
	TankID          string
	MovementType    BulkMovementType
	QuantityLitres  decimal.Decimal
	TankLevelBefore decimal.Decimal
	TankLevelAfter  decimal.Decimal
	ReferenceDoc    *string
	Notes           string
	RecordedAt      time.Time
	RecordedBy      string
}

// TankReading lectura física del nivel; sobrescribe el nivel del tanque.
type TankReading struct {
	ID                  string
	TankID              string
	LevelLitres         decimal.Decimal
	PreviousLevelLitres decimal.Decimal
	TemperatureC        *decimal.Decimal
	PressureBar         *decimal.Decimal
	ReadAt              time.Time
	RecordedBy          string
}
