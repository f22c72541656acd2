package repository

// Store agrupa los repositorios del inventario físico atados a un mismo Querier (pool o tx).
type Store interface {
	Stock() StockRepository
	Movements() MovementRepository
	Batches() RefillBatchRepository
	Tanks() TankRepository
	BulkMovements() BulkMovementRepository
	Readings() TankReadingRepository
	Sequences() SequenceRepository
}
