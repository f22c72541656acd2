package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/gasdepot-api/internal/domain/repository"
	"github.com/jhoicas/gasdepot-api/pkg/config"
)

// sequenceTTL conserva el contador un día más que su fecha.
const sequenceTTL = 48 * time.Hour

// incrScript incrementa y fija la expiración en un solo paso.
const incrScript = `
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`

// NewClient abre el cliente y comprueba la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// SequenceRepo consecutivos diarios sobre INCR; clave seq:<prefijo>:<yyyymmdd>.
type SequenceRepo struct {
	client goredis.Scripter
	script *goredis.Script
}

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// NewSequenceRepository crea el repositorio de consecutivos en Redis.
func NewSequenceRepository(client goredis.Scripter) *SequenceRepo {
	return &SequenceRepo{client: client, script: goredis.NewScript(incrScript)}
}

// Next incrementa el contador del día (UTC) y devuelve el nuevo valor.
func (r *SequenceRepo) Next(ctx context.Context, prefix string, day time.Time) (int64, error) {
	key := SequenceKey(prefix, day)
	n, err := r.script.Run(ctx, r.client, []string{key}, sequenceTTL.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis sequence %s: %w", key, err)
	}
	return n, nil
}

// SequenceKey clave del contador para el prefijo y el día.
func SequenceKey(prefix string, day time.Time) string {
	return fmt.Sprintf("seq:%s:%s", prefix, day.UTC().Format("20060102"))
}
