package ports

import "time"

// Metrics puerto de observabilidad de los casos de uso.
type Metrics interface {
	MovementRecorded(movementType string, quantity int64)
	OperationRejected(operation, reason string)
	BatchTransitioned(status string)
	BulkMovementRecorded(movementType string, litres float64)
	AuditAppended(ok bool)
	ChainVerified(valid bool, checked int64, elapsed time.Duration)
}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(string, int64)           {}
func (NopMetrics) OperationRejected(string, string)         {}
func (NopMetrics) BatchTransitioned(string)                 {}
func (NopMetrics) BulkMovementRecorded(string, float64)     {}
func (NopMetrics) AuditAppended(bool)                       {}
func (NopMetrics) ChainVerified(bool, int64, time.Duration) {}
