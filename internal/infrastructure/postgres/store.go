package postgres

import "github.com/jhoicas/gasdepot-api/internal/domain/repository"

var _ repository.Store = (*Store)(nil)

// Store agrupa los repositorios atados a un mismo Querier (pool o tx).
type Store struct {
	q         Querier
	sequences repository.SequenceRepository
}

// NewStore construye el Store. Pasar pool o tx (Querier).
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// WithSequences reemplaza el contador de referencias (p. ej. Redis).
func (s *Store) WithSequences(seq repository.SequenceRepository) *Store {
	return &Store{q: s.q, sequences: seq}
}

func (s *Store) Stock() repository.StockRepository                { return NewStockRepository(s.q) }
func (s *Store) Movements() repository.MovementRepository         { return NewMovementRepository(s.q) }
func (s *Store) Batches() repository.RefillBatchRepository        { return NewRefillBatchRepository(s.q) }
func (s *Store) Tanks() repository.TankRepository                 { return NewTankRepository(s.q) }
func (s *Store) BulkMovements() repository.BulkMovementRepository { return NewBulkMovementRepository(s.q) }
func (s *Store) Readings() repository.TankReadingRepository       { return NewTankReadingRepository(s.q) }

func (s *Store) Sequences() repository.SequenceRepository {
	if s.sequences != nil {
		return s.sequences
	}
	return NewSequenceRepository(s.q)
}
