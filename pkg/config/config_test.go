package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.App.StorageDriver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 720, cfg.Redis.SessionTTLMin)
	require.NotNil(t, cfg.Commission.Pct)
	assert.True(t, cfg.Commission.Pct.Equal(decimal.NewFromInt(3)))
	assert.True(t, cfg.Commission.FlatAmount.IsZero())
	assert.False(t, cfg.Sell.NoWaitDefault)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Bootstrap.Enabled())
}

func TestFromViper_ComisionPlanaSinPorcentaje(t *testing.T) {
	v := viper.New()
	v.Set("COMMISSION_PCT", "")
	v.Set("COMMISSION_FLAT_AMOUNT", "2500")
	v.Set("SELL_NOWAIT_DEFAULT", "true")
	v.Set("REDIS_ADDR", "localhost:6379")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Nil(t, cfg.Commission.Pct)
	assert.True(t, cfg.Commission.FlatAmount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, cfg.Sell.NoWaitDefault)
	assert.True(t, cfg.Redis.Enabled())
}

func TestFromViper_PorcentajeInvalido(t *testing.T) {
	v := viper.New()
	v.Set("COMMISSION_PCT", "tres")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/stock?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}

func TestFromViper_BootstrapDelModoMemoria(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("BOOTSTRAP_OWNER_EMAIL", "dueno@demo.co")
	v.Set("BOOTSTRAP_OWNER_PASSWORD", "clave-123")
	v.Set("BOOTSTRAP_SUBDOMAIN", "demo")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.App.StorageDriver)
	assert.True(t, cfg.Bootstrap.Enabled())
	assert.Equal(t, "Tienda Demo", cfg.Bootstrap.BusinessName)
	assert.Equal(t, "demo", cfg.Bootstrap.Subdomain)
	assert.Equal(t, "Genérico", cfg.Bootstrap.ProductModel)
}
