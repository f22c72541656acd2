package redis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/gasdepot-api/internal/infrastructure/redis"
)

func TestSequenceKey_UsaDiaUTC(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	// 21:00 en Bogotá ya es el día siguiente en UTC
	day := time.Date(2026, 10, 16, 21, 0, 0, 0, bogota)
	assert.Equal(t, "seq:MOV:20261017", redis.SequenceKey("MOV", day))
	assert.Equal(t, "seq:FILL:20261016", redis.SequenceKey("FILL", day.Add(-6*time.Hour)))
}
