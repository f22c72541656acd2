package entity

import "time"

// CylinderSize tamaño nominal del cilindro.
type CylinderSize string

const (
	CylinderSize9kg  CylinderSize = "9kg"
	CylinderSize14kg CylinderSize = "14kg"
	CylinderSize19kg CylinderSize = "19kg"
	CylinderSize48kg CylinderSize = "48kg"
)

// CylinderSizes en orden de presentación.
var CylinderSizes = []CylinderSize{CylinderSize9kg, CylinderSize14kg, CylinderSize19kg, CylinderSize48kg}

// Valid indica si el tamaño es uno de los conocidos.
func (s CylinderSize) Valid() bool {
	switch s {
	case CylinderSize9kg, CylinderSize14kg, CylinderSize19kg, CylinderSize48kg:
		return true
	}
	return false
}

// CylinderStatus estado físico/logístico de un cilindro (define el bucket de stock).
type CylinderStatus string

const (
	StatusFull        CylinderStatus = "full"
	StatusEmpty       CylinderStatus = "empty"
	StatusIssued      CylinderStatus = "issued"
	StatusAtCustomer  CylinderStatus = "at_customer"
	StatusQuarantine  CylinderStatus = "quarantine"
	StatusMaintenance CylinderStatus = "maintenance"
)

// CylinderStatuses en orden de presentación.
var CylinderStatuses = []CylinderStatus{
	StatusFull, StatusEmpty, StatusIssued, StatusAtCustomer, StatusQuarantine, StatusMaintenance,
}

// Valid indica si el estado es uno de los conocidos.
func (s CylinderStatus) Valid() bool {
	switch s {
	case StatusFull, StatusEmpty, StatusIssued, StatusAtCustomer, StatusQuarantine, StatusMaintenance:
		return true
	}
	return false
}

// StockBucket cantidad de cilindros de un tamaño en un estado. Quantity nunca es negativa.
type StockBucket struct {
	CylinderSize CylinderSize
	Status       CylinderStatus
	Quantity     int64
	UpdatedAt    time.Time
}
