package config_test

import (
	"testing"

	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SinJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestLoad_DefaultsYEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("MOV_TIPO_SALIDA_RESERVA", "Despacho")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 60, cfg.JWT.Expiration)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, "Despacho", cfg.Movements.ReservationExit)
	assert.Equal(t, "Entrada por Compra", cfg.Movements.PurchaseEntry)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 1440, cfg.Redis.IdempotencyTTL)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w", DBName: "almacen", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw@db:5432/almacen?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
