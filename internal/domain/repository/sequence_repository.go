package repository

import (
	"context"
	"time"
)

// SequenceRepository contador atómico por prefijo y día para números de referencia.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (empieza en 1 cada día).
	Next(ctx context.Context, prefix string, day time.Time) (int64, error)
}
