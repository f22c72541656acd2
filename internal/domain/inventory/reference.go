package inventory

import (
	"fmt"
	"time"
)

// Prefijos de números de referencia.
const (
	PrefixMovement   = "MOV"
	PrefixAdjustment = "ADJ"
	PrefixBatch      = "FILL"
	PrefixBulk       = "BULK"
)

// FormatReference arma PREFIJO-YYYYMMDD-NNNN (3 dígitos para lotes).
func FormatReference(prefix string, day time.Time, seq int64) string {
	width := 4
	if prefix == PrefixBatch {
		width = 3
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, day.UTC().Format("20060102"), width, seq)
}
