package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/infrastructure/memory"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

type fixture struct {
	db        *memory.DB
	auditLog  *memory.AuditLog
	chain     *appaudit.Chain
	clock     *ports.FixedClock
	movements *inventory.MovementUseCase
	batches   *inventory.RefillBatchUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	auditLog := memory.NewAuditLog()
	clock := ports.NewFixedClock(time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC))
	log := logger.Nop()
	chain := appaudit.NewChain(auditLog, clock, ports.NopMetrics{}, log, 100)
	return &fixture{
		db:        db,
		auditLog:  auditLog,
		chain:     chain,
		clock:     clock,
		movements: inventory.NewMovementUseCase(db, db.Reader(), chain, ports.NopMetrics{}, clock, log),
		batches:   inventory.NewRefillBatchUseCase(db, db.Reader(), chain, ports.NopMetrics{}, clock, log),
	}
}

func (f *fixture) qty(t *testing.T, size entity.CylinderSize, status entity.CylinderStatus) int64 {
	t.Helper()
	b, err := f.db.Reader().Stock().Get(context.Background(), size, status)
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) total(t *testing.T, size entity.CylinderSize) int64 {
	t.Helper()
	var n int64
	for _, s := range entity.CylinderStatuses {
		n += f.qty(t, size, s)
	}
	return n
}

func operator() entity.Caller {
	return entity.Caller{
		Actor:    entity.Actor{ID: "u-op", Email: "operador@gasdepot.test", Role: "operator"},
		Metadata: entity.AuditMetadata{IPAddress: "10.0.0.7", UserAgent: "test"},
	}
}

func supervisor() entity.Caller {
	return entity.Caller{Actor: entity.Actor{ID: "u-sup", Email: "supervisor@gasdepot.test", Role: "supervisor"}}
}

func ptr[T any](v T) *T { return &v }
