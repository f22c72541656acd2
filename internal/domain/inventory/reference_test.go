package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gasdepot-api/internal/domain/inventory"
)

func TestFormatReference(t *testing.T) {
	day := time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "MOV-20261016-0001", inventory.FormatReference(inventory.PrefixMovement, day, 1))
	assert.Equal(t, "ADJ-20261016-0042", inventory.FormatReference(inventory.PrefixAdjustment, day, 42))
	assert.Equal(t, "FILL-20261016-007", inventory.FormatReference(inventory.PrefixBatch, day, 7))
	assert.Equal(t, "BULK-20261016-1234", inventory.FormatReference(inventory.PrefixBulk, day, 1234))
	assert.Equal(t, "MOV-20261016-10000", inventory.FormatReference(inventory.PrefixMovement, day, 10000),
		"el consecutivo crece más allá del ancho mínimo")
}
