package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador por (prefijo, día) en reference_sequences. Dentro de una tx el número
// queda reservado hasta el commit; un rollback lo libera.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo del día (UTC).
func (r *SequenceRepo) Next(ctx context.Context, prefix string, day time.Time) (int64, error) {
	d := day.UTC()
	query := `
		INSERT INTO reference_sequences (prefix, day, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day)
		DO UPDATE SET last_value = reference_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return n, nil
}
