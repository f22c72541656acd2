// Package memory implementa los repositorios del inventario en memoria. Lo usan los tests
// de casos de uso y de handlers; cada transacción trabaja sobre una copia del estado que
// solo se publica si fn no devuelve error.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

type bucketKey struct {
	size   entity.CylinderSize
	status entity.CylinderStatus
}

type state struct {
	stock     map[bucketKey]entity.StockBucket
	movements []entity.Movement
	batches   []entity.RefillBatch
	tanks     []entity.Tank
	bulk      []entity.BulkMovement
	readings  []entity.TankReading
	sequences map[string]int64
}

func newState() *state {
	return &state{
		stock:     make(map[bucketKey]entity.StockBucket),
		sequences: make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		stock:     make(map[bucketKey]entity.StockBucket, len(s.stock)),
		movements: append([]entity.Movement(nil), s.movements...),
		batches:   append([]entity.RefillBatch(nil), s.batches...),
		tanks:     append([]entity.Tank(nil), s.tanks...),
		bulk:      append([]entity.BulkMovement(nil), s.bulk...),
		readings:  append([]entity.TankReading(nil), s.readings...),
		sequences: make(map[string]int64, len(s.sequences)),
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// DB base de datos en memoria con transacciones serializadas.
type DB struct {
	mu sync.RWMutex
	st *state
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{st: newState()}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn termina sin error.
func (db *DB) Run(ctx context.Context, fn func(store repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	work := db.st.clone()
	if err := fn(&Store{st: work}); err != nil {
		return err
	}
	db.st = work
	return nil
}

// Reader Store de solo lectura sobre el estado confirmado.
func (db *DB) Reader() repository.Store {
	return &Store{db: db}
}

// SetStock fija la cantidad de un bucket (datos iniciales de tests).
func (db *DB) SetStock(size entity.CylinderSize, status entity.CylinderStatus, qty int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.stock[bucketKey{size, status}] = entity.StockBucket{CylinderSize: size, Status: status, Quantity: qty, UpdatedAt: time.Now().UTC()}
}

// Store implementa repository.Store. Con db != nil cada llamada toma el lock de la base;
// dentro de Run opera directamente sobre la copia de la transacción.
type Store struct {
	db *DB
	st *state
}

func (s *Store) read(fn func(st *state) error) error {
	if s.db == nil {
		return fn(s.st)
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return fn(s.db.st)
}

func (s *Store) write(fn func(st *state) error) error {
	if s.db == nil {
		return fn(s.st)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.st)
}

func (s *Store) Stock() repository.StockRepository                { return stockRepo{s} }
func (s *Store) Movements() repository.MovementRepository         { return movementRepo{s} }
func (s *Store) Batches() repository.RefillBatchRepository        { return batchRepo{s} }
func (s *Store) Tanks() repository.TankRepository                 { return tankRepo{s} }
func (s *Store) BulkMovements() repository.BulkMovementRepository { return bulkRepo{s} }
func (s *Store) Readings() repository.TankReadingRepository       { return readingRepo{s} }
func (s *Store) Sequences() repository.SequenceRepository         { return sequenceRepo{s} }

// ── stock ───────────────────────────────────────────────────────────────────

type stockRepo struct{ s *Store }

func (r stockRepo) Get(_ context.Context, size entity.CylinderSize, status entity.CylinderStatus) (*entity.StockBucket, error) {
	var out entity.StockBucket
	err := r.s.read(func(st *state) error {
		b, ok := st.stock[bucketKey{size, status}]
		if !ok {
			b = entity.StockBucket{CylinderSize: size, Status: status}
		}
		out = b
		return nil
	})
	return &out, err
}

func (r stockRepo) List(_ context.Context) ([]*entity.StockBucket, error) {
	var out []*entity.StockBucket
	err := r.s.read(func(st *state) error {
		for _, size := range entity.CylinderSizes {
			for _, status := range entity.CylinderStatuses {
				if b, ok := st.stock[bucketKey{size, status}]; ok {
					b := b
					out = append(out, &b)
				}
			}
		}
		return nil
	})
	return out, err
}

func (r stockRepo) Increment(_ context.Context, size entity.CylinderSize, status entity.CylinderStatus, n int64) error {
	return r.s.write(func(st *state) error {
		k := bucketKey{size, status}
		b := st.stock[k]
		b.CylinderSize, b.Status = size, status
		b.Quantity += n
		b.UpdatedAt = time.Now().UTC()
		st.stock[k] = b
		return nil
	})
}

func (r stockRepo) Decrement(_ context.Context, size entity.CylinderSize, status entity.CylinderStatus, n int64) error {
	return r.s.write(func(st *state) error {
		k := bucketKey{size, status}
		b, ok := st.stock[k]
		if !ok || b.Quantity < n {
			return domain.ErrInsufficientStock
		}
		b.Quantity -= n
		b.UpdatedAt = time.Now().UTC()
		st.stock[k] = b
		return nil
	})
}

// ── movements ───────────────────────────────────────────────────────────────

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.s.write(func(st *state) error {
		for _, x := range st.movements {
			if x.Reference == m.Reference {
				return fmt.Errorf("%w: referencia %s", domain.ErrDuplicate, m.Reference)
			}
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.s.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				m := m
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r movementRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r movementRepo) UpdateVariance(_ context.Context, m *entity.Movement) error {
	return r.s.write(func(st *state) error {
		for i := range st.movements {
			if st.movements[i].ID == m.ID {
				st.movements[i].VarianceApproved = m.VarianceApproved
				st.movements[i].VarianceApprovedBy = m.VarianceApprovedBy
				st.movements[i].VarianceApprovedAt = m.VarianceApprovedAt
				return nil
			}
		}
		return domain.NewNotFound("movement", m.ID)
	})
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var matched []*entity.Movement
	err := r.s.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.CylinderSize != nil && m.CylinderSize != *f.CylinderSize {
				continue
			}
			if f.MovementType != nil && m.MovementType != *f.MovementType {
				continue
			}
			if f.RefillBatchID != nil && (m.RefillBatchID == nil || *m.RefillBatchID != *f.RefillBatchID) {
				continue
			}
			if f.PendingVariance && !m.VariancePending() {
				continue
			}
			if !inRange(m.RecordedAt, f.From, f.To) {
				continue
			}
			matched = append(matched, &m)
		}
		return nil
	})
	return paginate(matched, f.Limit, f.Offset), err
}

// ── refill batches ──────────────────────────────────────────────────────────

type batchRepo struct{ s *Store }

func (r batchRepo) Create(_ context.Context, b *entity.RefillBatch) error {
	return r.s.write(func(st *state) error {
		for _, x := range st.batches {
			if x.BatchRef == b.BatchRef {
				return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, b.BatchRef)
			}
		}
		st.batches = append(st.batches, *b)
		return nil
	})
}

func (r batchRepo) GetByID(_ context.Context, id string) (*entity.RefillBatch, error) {
	var out *entity.RefillBatch
	err := r.s.read(func(st *state) error {
		for _, b := range st.batches {
			if b.ID == id {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r batchRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.RefillBatch, error) {
	return r.GetByID(ctx, id)
}

func (r batchRepo) Update(_ context.Context, b *entity.RefillBatch) error {
	return r.s.write(func(st *state) error {
		for i := range st.batches {
			if st.batches[i].ID == b.ID {
				st.batches[i] = *b
				return nil
			}
		}
		return domain.NewNotFound("refill_batch", b.ID)
	})
}

func (r batchRepo) List(_ context.Context, status *entity.BatchStatus, limit, offset int) ([]*entity.RefillBatch, error) {
	var matched []*entity.RefillBatch
	err := r.s.read(func(st *state) error {
		for i := len(st.batches) - 1; i >= 0; i-- {
			b := st.batches[i]
			if status != nil && b.Status != *status {
				continue
			}
			matched = append(matched, &b)
		}
		return nil
	})
	return paginate(matched, limit, offset), err
}

// ── tanks ───────────────────────────────────────────────────────────────────

type tankRepo struct{ s *Store }

func (r tankRepo) Create(_ context.Context, t *entity.Tank) error {
	return r.s.write(func(st *state) error {
		for _, x := range st.tanks {
			if x.TankCode == t.TankCode {
				return fmt.Errorf("%w: tanque %s", domain.ErrDuplicate, t.TankCode)
			}
		}
		st.tanks = append(st.tanks, *t)
		return nil
	})
}

func (r tankRepo) find(match func(t *entity.Tank) bool) (*entity.Tank, error) {
	var out *entity.Tank
	err := r.s.read(func(st *state) error {
		for _, t := range st.tanks {
			if match(&t) {
				t := t
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r tankRepo) GetByID(_ context.Context, id string) (*entity.Tank, error) {
	return r.find(func(t *entity.Tank) bool { return t.ID == id })
}

func (r tankRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Tank, error) {
	return r.GetByID(ctx, id)
}

func (r tankRepo) GetByCode(_ context.Context, code string) (*entity.Tank, error) {
	return r.find(func(t *entity.Tank) bool { return t.TankCode == code })
}

func (r tankRepo) Update(_ context.Context, t *entity.Tank) error {
	return r.s.write(func(st *state) error {
		for i := range st.tanks {
			if st.tanks[i].ID == t.ID {
				st.tanks[i] = *t
				return nil
			}
		}
		return domain.NewNotFound("tank", t.ID)
	})
}

func (r tankRepo) List(_ context.Context) ([]*entity.Tank, error) {
	var out []*entity.Tank
	err := r.s.read(func(st *state) error {
		for _, t := range st.tanks {
			t := t
			out = append(out, &t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TankCode < out[j].TankCode })
	return out, err
}

type bulkRepo struct{ s *Store }

func (r bulkRepo) Create(_ context.Context, m *entity.BulkMovement) error {
	return r.s.write(func(st *state) error {
		st.bulk = append(st.bulk, *m)
		return nil
	})
}

func (r bulkRepo) ListByTank(_ context.Context, tankID string, from, to *time.Time, limit, offset int) ([]*entity.BulkMovement, error) {
	var matched []*entity.BulkMovement
	err := r.s.read(func(st *state) error {
		for i := len(st.bulk) - 1; i >= 0; i-- {
			m := st.bulk[i]
			if m.TankID != tankID || !inRange(m.RecordedAt, from, to) {
				continue
			}
			matched = append(matched, &m)
		}
		return nil
	})
	return paginate(matched, limit, offset), err
}

type readingRepo struct{ s *Store }

func (r readingRepo) Create(_ context.Context, rd *entity.TankReading) error {
	return r.s.write(func(st *state) error {
		st.readings = append(st.readings, *rd)
		return nil
	})
}

func (r readingRepo) ListByTank(_ context.Context, tankID string, limit, offset int) ([]*entity.TankReading, error) {
	var matched []*entity.TankReading
	err := r.s.read(func(st *state) error {
		for i := len(st.readings) - 1; i >= 0; i-- {
			rd := st.readings[i]
			if rd.TankID == tankID {
				matched = append(matched, &rd)
			}
		}
		return nil
	})
	return paginate(matched, limit, offset), err
}

// ── sequences ───────────────────────────────────────────────────────────────

type sequenceRepo struct{ s *Store }

func (r sequenceRepo) Next(_ context.Context, prefix string, day time.Time) (int64, error) {
	var n int64
	err := r.s.write(func(st *state) error {
		k := prefix + ":" + day.UTC().Format("20060102")
		st.sequences[k]++
		n = st.sequences[k]
		return nil
	})
	return n, err
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
