package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "gasdepot", cfg.DB.DBName)
	assert.Equal(t, SequenceBackendPostgres, cfg.Sequence.Backend)
	assert.Equal(t, 500, cfg.Audit.VerifyPageSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("SEQUENCE_BACKEND", "Redis")
	v.Set("REDIS_ADDR", "cache:6379")
	v.Set("DB_PORT", "6543")
	v.Set("MIGRATE_ON_START", "true")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, SequenceBackendRedis, cfg.Sequence.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, cfg.DB.MigrateOnStart)
}

func TestFromViper_BackendInvalido(t *testing.T) {
	v := viper.New()
	v.Set("SEQUENCE_BACKEND", "etcd")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_ProductionExigeSecret(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	_, err := fromViper(v)
	assert.Error(t, err, "production sin JWT_SECRET debe fallar")
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "gas", Password: "p@ss:word", DBName: "gasdepot", SSLMode: "disable"}
	assert.Equal(t, "postgres://gas:p%40ss%3Aword@db:5432/gasdepot?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
