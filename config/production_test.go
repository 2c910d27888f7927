package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBcryptHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3K1bZ6h5z5l3/9aRk8YQ1y6"

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("JWT_SECRET_KEY", "test-secret-key-for-jwt-signing-32-chars")
	t.Setenv("WFP_MERCHANT_ACCOUNT", "test_merch_n1")
	t.Setenv("WFP_DOMAIN", "shop.example.com")
	t.Setenv("WFP_SECRET_KEY", "flk3409refn54t54t*FNJRET")
	t.Setenv("WFP_CALLBACK_URL", "https://api.example.com/api/v1/payments/wayforpay/callback")
	t.Setenv("WFP_PAYMENT_PAGE_URL", "https://api.example.com/pay")
	t.Setenv("BOT_USERNAME", "topup-bot")
	t.Setenv("BOT_PASSWORD_HASH", testBcryptHash)
}

func TestLoadProductionConfig(t *testing.T) {
	setValidEnv(t)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "UAH", cfg.WayForPay.Currency)
	assert.Equal(t, "Top-up balance", cfg.WayForPay.ProductName)
	assert.Equal(t, "https://secure.wayforpay.com/pay", cfg.WayForPay.PayURL)
	assert.True(t, decimal.RequireFromString("0.1").Equal(cfg.Referral.BonusRate))
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadProductionConfig_Overrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("REFERRAL_BONUS_RATE", "0.05")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CACHE_DIALOG_TTL", "5m")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("0.05").Equal(cfg.Referral.BonusRate))
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "5m0s", cfg.Cache.DialogTTL.String())
}

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing merchant", env: map[string]string{"WFP_MERCHANT_ACCOUNT": ""}, wantErr: "WFP_MERCHANT_ACCOUNT is required"},
		{name: "short jwt secret", env: map[string]string{"JWT_SECRET_KEY": "short"}, wantErr: "JWT_SECRET_KEY must be at least 32 characters long"},
		{name: "unknown storage", env: map[string]string{"STORAGE_DRIVER": "sqlite"}, wantErr: "STORAGE_DRIVER must be one of"},
		{name: "postgres needs password", env: map[string]string{"STORAGE_DRIVER": "postgres", "DB_PASSWORD": ""}, wantErr: "DB_PASSWORD is required"},
		{name: "bonus above one", env: map[string]string{"REFERRAL_BONUS_RATE": "1.5"}, wantErr: "REFERRAL_BONUS_RATE must be between 0 and 1"},
		{name: "plain bot password", env: map[string]string{"BOT_PASSWORD_HASH": "secret"}, wantErr: "BOT_PASSWORD_HASH must be a bcrypt hash"},
		{name: "relative callback url", env: map[string]string{"WFP_CALLBACK_URL": "/callback"}, wantErr: "WFP_CALLBACK_URL must be an absolute http(s) URL"},
		{name: "unknown log output", env: map[string]string{"LOG_OUTPUT": "syslog"}, wantErr: "LOG_OUTPUT must be one of"},
		{name: "foreign currency", env: map[string]string{"WFP_CURRENCY": "USD"}, wantErr: "WFP_CURRENCY must be UAH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			// An empty value falls back to the default, so unset explicitly
			for k, v := range tt.env {
				if v == "" {
					os.Unsetenv(k)
				}
			}

			_, err := LoadProductionConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateProductionConfig_CollectsAllErrors(t *testing.T) {
	err := ValidateProductionConfig(&ProductionConfig{Storage: StorageConfig{Driver: "memory"}, Logging: LoggingConfig{Output: "stdout"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WFP_MERCHANT_ACCOUNT is required")
	assert.Contains(t, err.Error(), "BOT_USERNAME is required")
	assert.Contains(t, err.Error(), "SERVER_PORT must be between 1 and 65535")
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOPUP_TEST_FROM_FILE=file\nTOPUP_TEST_PRESET=file\n"), 0o600))

	t.Setenv("TOPUP_TEST_PRESET", "env")
	t.Setenv("TOPUP_TEST_FROM_FILE", "")
	os.Unsetenv("TOPUP_TEST_FROM_FILE")
	t.Cleanup(func() { os.Unsetenv("TOPUP_TEST_FROM_FILE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "file", os.Getenv("TOPUP_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("TOPUP_TEST_PRESET"))

	assert.NoError(t, loadEnvFile(filepath.Join(dir, "missing.env")))
}
