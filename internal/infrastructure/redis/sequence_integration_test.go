//go:build integration

package redis_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/gasdepot-api/internal/infrastructure/redis"
	"github.com/jhoicas/gasdepot-api/pkg/config"
)

func TestSequenceRepo_Redis(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redis.NewClient(ctx, config.RedisConfig{Addr: host + ":" + port.Port()})
	require.NoError(t, err)
	defer client.Close()

	repo := redis.NewSequenceRepository(client)
	day := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	// ──────────────────────────────────────────────────────────────────────
	// Concurrencia: sin duplicados ni huecos
	// ──────────────────────────────────────────────────────────────────────
	var mu sync.Mutex
	seen := map[int64]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.Next(ctx, "BULK", day)
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 40)
	assert.True(t, seen[1] && seen[40])

	// ──────────────────────────────────────────────────────────────────────
	// Reinicio diario y expiración
	// ──────────────────────────────────────────────────────────────────────
	n, err := repo.Next(ctx, "BULK", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "cada día empieza en 1")

	ttl, err := client.TTL(ctx, redis.SequenceKey("BULK", day)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 47*time.Hour)
}
