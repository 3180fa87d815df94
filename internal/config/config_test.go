package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.APIPort)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.LoginChallengeTTL)
	assert.Equal(t, 30*time.Second, cfg.ChainCacheTTL)
	assert.Equal(t, 365*24*time.Hour, cfg.KYCValidity)
	assert.Equal(t, int64(1), cfg.NetworkID.Int64())
	assert.False(t, cfg.ChainEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("API_PORT", "9100")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("KYC_VALIDITY_DAYS", "30")
	t.Setenv("MEMORY_STORE", "true")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("ADMIN_WALLETS", " 0xCB57BBBB54cdf60fa666fd741be78f794d4608d67109 ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.APIPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.KYCValidity)
	assert.True(t, cfg.MemoryStore)
	assert.Equal(t, []string{"cb57bbbb54cdf60fa666fd741be78f794d4608d67109"}, cfg.AdminWallets)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecret:         "secret",
			PostgresHost:      "localhost",
			PostgresDB:        "fracta",
			AccessTokenTTL:    time.Minute,
			LoginChallengeTTL: time.Minute,
			ChainCacheTTL:     time.Second,
			KYCValidity:       time.Hour,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, errMsg: "JWT_SECRET"},
		{name: "missing postgres host", mutate: func(c *Config) { c.PostgresHost = "" }, errMsg: "POSTGRES_HOST"},
		{name: "memory store needs no postgres", mutate: func(c *Config) { c.PostgresHost = ""; c.MemoryStore = true }},
		{name: "non-positive token ttl", mutate: func(c *Config) { c.AccessTokenTTL = 0 }, errMsg: "ACCESS_TOKEN_EXPIRE_MINUTES"},
		{name: "bad contract address", mutate: func(c *Config) { c.PropertyTokenAddress = "not-an-address" }, errMsg: "PROPERTY_TOKEN_ADDRESS"},
		{name: "bad admin wallet", mutate: func(c *Config) { c.AdminWallets = []string{"0x12"} }, errMsg: "ADMIN_WALLETS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
