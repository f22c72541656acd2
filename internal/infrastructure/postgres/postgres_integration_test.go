//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	appaudit "github.com/jhoicas/gasdepot-api/internal/application/audit"
	"github.com/jhoicas/gasdepot-api/internal/application/inventory"
	"github.com/jhoicas/gasdepot-api/internal/application/ports"
	"github.com/jhoicas/gasdepot-api/internal/application/tank"
	"github.com/jhoicas/gasdepot-api/internal/domain"
	"github.com/jhoicas/gasdepot-api/internal/domain/entity"
	"github.com/jhoicas/gasdepot-api/internal/infrastructure/postgres"
	"github.com/jhoicas/gasdepot-api/pkg/config"
	"github.com/jhoicas/gasdepot-api/pkg/logger"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	txRunner  *postgres.TxRunner
	audit     *postgres.AuditEventRepo
	chain     *appaudit.Chain
	clock     *ports.FixedClock
}

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "gas",
			"POSTGRES_PASSWORD": "gas",
			"POSTGRES_DB":       "gasdepot",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(ctx, "5432")
	s.Require().NoError(err)

	s.pool, err = postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL: fmt.Sprintf("postgres://gas:gas@%s:%s/gasdepot?sslmode=disable", host, port.Port()),
		MaxConns:    10,
	}, "gasdepot-test")
	s.Require().NoError(err)

	mg, err := postgres.NewMigrator(s.pool)
	s.Require().NoError(err)
	s.Require().NoError(mg.Up())
	s.Require().NoError(mg.Up(), "segunda ejecución sin cambios")
	s.Require().NoError(mg.Close())

	s.txRunner = postgres.NewTxRunner(s.pool, nil)
	s.audit = postgres.NewAuditEventRepository(s.pool, 4242)
	s.clock = ports.NewFixedClock(time.Date(2026, 10, 16, 10, 0, 0, 987654321, time.UTC))
	s.chain = appaudit.NewChain(s.audit, s.clock, ports.NopMetrics{}, logger.Nop(), 5)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `
		ALTER TABLE audit_events DISABLE TRIGGER trg_audit_events_immutable;
		TRUNCATE audit_events, cylinder_movements, refill_batches, stock_buckets, reference_sequences,
			bulk_movements, tank_readings, tanks;
		ALTER TABLE audit_events ENABLE TRIGGER trg_audit_events_immutable;`)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) caller() entity.Caller {
	return entity.Caller{Actor: entity.Actor{ID: "u-int", Role: "operator"}}
}

func (s *PostgresIntegrationSuite) movements() *inventory.MovementUseCase {
	return inventory.NewMovementUseCase(s.txRunner, postgres.NewStore(s.pool), s.chain, ports.NopMetrics{}, s.clock, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func (s *PostgresIntegrationSuite) TestDecrementoNoDejaNegativo() {
	ctx := context.Background()
	repo := postgres.NewStockRepository(s.pool)
	s.Require().NoError(repo.Increment(ctx, entity.CylinderSize9kg, entity.StatusFull, 3))

	err := repo.Decrement(ctx, entity.CylinderSize9kg, entity.StatusFull, 4)
	s.ErrorIs(err, domain.ErrInsufficientStock)

	b, err := repo.Get(ctx, entity.CylinderSize9kg, entity.StatusFull)
	s.Require().NoError(err)
	s.Equal(int64(3), b.Quantity)
}

func (s *PostgresIntegrationSuite) TestMovimientosConcurrentesNoSobregiran() {
	ctx := context.Background()
	s.Require().NoError(postgres.NewStockRepository(s.pool).Increment(ctx, entity.CylinderSize14kg, entity.StatusFull, 10))
	uc := s.movements()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordMovement(ctx, inventory.RecordMovementInput{
				CylinderSize: entity.CylinderSize14kg, MovementType: entity.MovementIssue, Quantity: 1, Caller: s.caller(),
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(10, ok, "solo caben 10 despachos")
	full, err := postgres.NewStockRepository(s.pool).Get(ctx, entity.CylinderSize14kg, entity.StatusFull)
	s.Require().NoError(err)
	s.Equal(int64(0), full.Quantity)
	issued, err := postgres.NewStockRepository(s.pool).Get(ctx, entity.CylinderSize14kg, entity.StatusIssued)
	s.Require().NoError(err)
	s.Equal(int64(10), issued.Quantity)
}

func (s *PostgresIntegrationSuite) TestReferenciasSinDuplicados() {
	ctx := context.Background()
	repo := postgres.NewSequenceRepository(s.pool)
	day := time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC)

	seen := make(map[int64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.Next(ctx, "MOV", day)
			s.NoError(err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	s.Len(seen, 25)
	for i := int64(1); i <= 25; i++ {
		s.True(seen[i], "falta el consecutivo %d", i)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes y tanques
// ──────────────────────────────────────────────────────────────────────────────

func (s *PostgresIntegrationSuite) TestLoteFlujoCompleto() {
	ctx := context.Background()
	s.Require().NoError(postgres.NewStockRepository(s.pool).Increment(ctx, entity.CylinderSize9kg, entity.StatusEmpty, 60))
	uc := inventory.NewRefillBatchUseCase(s.txRunner, postgres.NewStore(s.pool), s.chain, ports.NopMetrics{}, s.clock, logger.Nop())

	b, err := uc.Create(ctx, inventory.CreateBatchInput{CylinderSize: entity.CylinderSize9kg, Quantity: 50, Caller: s.caller()})
	s.Require().NoError(err)
	_, err = uc.StartInspection(ctx, b.ID, s.caller())
	s.Require().NoError(err)
	_, err = uc.CompleteInspection(ctx, b.ID, 48, 2, s.caller())
	s.Require().NoError(err)
	_, err = uc.CompleteFilling(ctx, b.ID, s.caller())
	s.Require().NoError(err)
	_, err = uc.CompleteQC(ctx, b.ID, 48, 0, s.caller())
	s.Require().NoError(err)
	b, err = uc.StockBatch(ctx, b.ID, s.caller())
	s.Require().NoError(err)
	s.Equal(entity.BatchStocked, b.Status)

	got, err := uc.Get(ctx, b.ID)
	s.Require().NoError(err)
	s.True(got.Stocked.Done())
	s.Equal(int64(2), got.FailedCount)

	full, err := postgres.NewStockRepository(s.pool).Get(ctx, entity.CylinderSize9kg, entity.StatusFull)
	s.Require().NoError(err)
	s.Equal(int64(48), full.Quantity)
}

func (s *PostgresIntegrationSuite) TestTanqueLitrosDecimales() {
	ctx := context.Background()
	uc := tank.NewTankUseCase(s.txRunner, postgres.NewStore(s.pool), s.chain, ports.NopMetrics{}, s.clock, logger.Nop())

	tk, err := uc.CreateTank(ctx, tank.CreateTankInput{
		TankCode: "TK-INT", Name: "Integración", Capacity: decimal.RequireFromString("50000"),
		InitialLevel: decimal.RequireFromString("2000"), Caller: s.caller(),
	})
	s.Require().NoError(err)

	_, err = uc.RecordBulkMovement(ctx, tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkDispense, Litres: decimal.RequireFromString("3000"), Caller: s.caller(),
	})
	s.ErrorIs(err, domain.ErrCapacityViolation)

	m, err := uc.RecordBulkMovement(ctx, tank.BulkMovementInput{
		TankID: tk.ID, MovementType: entity.BulkReceive, Litres: decimal.RequireFromString("1234.56"), Caller: s.caller(),
	})
	s.Require().NoError(err)
	s.True(m.TankLevelAfter.Equal(decimal.RequireFromString("3234.56")))

	got, err := uc.GetTank(ctx, tk.ID)
	s.Require().NoError(err)
	s.True(got.CurrentLevelLitres.Equal(decimal.RequireFromString("3234.56")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cadena de auditoría
// ──────────────────────────────────────────────────────────────────────────────

func (s *PostgresIntegrationSuite) TestCadenaSobreviveJSONBYTimestamptz() {
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		res := s.chain.Log(ctx, appaudit.Entry{
			EventType: "inventory", EventSubtype: "movement_recorded", Action: "create",
			Caller:     entity.Caller{Actor: entity.Actor{ID: "u-int"}, Metadata: entity.AuditMetadata{IPAddress: "10.1.1.1"}},
			EntityType: "movement", EntityID: fmt.Sprintf("m-%d", i),
			NewState: map[string]any{"zeta": i, "alfa": "9kg", "ratio": 0.25},
		})
		s.Require().True(res.OK(), "evento %d: %v", i, res.Err)
		s.clock.Advance(1500 * time.Nanosecond)
	}

	v, err := s.chain.VerifyChainIntegrity(ctx, nil)
	s.Require().NoError(err)
	s.True(v.Valid, "los hashes se recalculan igual tras leer de Postgres")
	s.Equal(int64(12), v.Checked)
}

func (s *PostgresIntegrationSuite) TestCadenaConcurrenteSinHuecos() {
	ctx := context.Background()
	// dos cadenas sobre el mismo repositorio simulan dos instancias de la API
	other := appaudit.NewChain(postgres.NewAuditEventRepository(s.pool, 4242), s.clock, ports.NopMetrics{}, logger.Nop(), 5)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		c := s.chain
		if i%2 == 0 {
			c = other
		}
		go func(i int) {
			defer wg.Done()
			c.Log(ctx, appaudit.Entry{EventType: "tank", EventSubtype: "reading_recorded", Action: "update", EntityType: "tank", EntityID: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	v, err := s.chain.VerifyChainIntegrity(ctx, nil)
	s.Require().NoError(err)
	s.True(v.Valid)
	s.Equal(int64(30), v.Checked)
}

func (s *PostgresIntegrationSuite) TestCadenaDetectaAlteracionDirecta() {
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		s.Require().True(s.chain.Log(ctx, appaudit.Entry{
			EventType: "inventory", EventSubtype: "adjustment_created", Action: "create", EntityType: "movement", EntityID: fmt.Sprint(i),
		}).OK())
	}

	_, err := s.pool.Exec(ctx, `UPDATE audit_events SET summary = 'x' WHERE sequence_number = 4`)
	s.Error(err, "el trigger impide modificar registros")

	_, err = s.pool.Exec(ctx, `
		ALTER TABLE audit_events DISABLE TRIGGER trg_audit_events_immutable;
		UPDATE audit_events SET summary = 'reescrito' WHERE sequence_number = 4;
		ALTER TABLE audit_events ENABLE TRIGGER trg_audit_events_immutable;`)
	s.Require().NoError(err)

	v, err := s.chain.VerifyChainIntegrity(ctx, nil)
	s.Require().NoError(err)
	s.False(v.Valid)
	s.Require().NotNil(v.FirstBrokenSequence)
	s.Equal(int64(4), *v.FirstBrokenSequence)
}
