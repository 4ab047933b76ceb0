package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func setValidEnv(t *testing.T) {
	t.Helper()
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)

	t.Setenv("OPENSEA_API_KEY", "test-api-key")
	t.Setenv("RPC_URL", "https://sepolia.example.org/v3/abc")
	t.Setenv("WALLET_ADDRESS", crypto.PubkeyToAddress(key.PublicKey).Hex())
	t.Setenv("PRIVATE_KEY", testKey)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Trader.IntervalSeconds)
	assert.Equal(t, "0.2", cfg.Trader.ProfitThreshold.String())
	assert.Equal(t, "0.25", cfg.Trader.SpendingLimitFraction.String())
	assert.Equal(t, "cursor", cfg.API.Pagination)
	assert.Equal(t, uint64(200_000), cfg.Chain.GasLimit)
	assert.Equal(t, "test-api-key", cfg.API.Key)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	setValidEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trader:
  interval_seconds: 30
  profit_threshold: 0.5
  desired_traits:
    Background: Gold
api:
  pagination: offset
  page_size: 25
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Trader.IntervalSeconds)
	assert.Equal(t, "0.5", cfg.Trader.ProfitThreshold.String())
	assert.Equal(t, map[string]string{"Background": "Gold"}, cfg.Trader.DesiredTraits)
	assert.Equal(t, "offset", cfg.API.Pagination)
	assert.Equal(t, 25, cfg.API.PageSize)
}

func TestLoad_FailsFastOnMissingAPIKey(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OPENSEA_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENSEA_API_KEY")
}

func TestLoad_FailsFastOnMalformedAddress(t *testing.T) {
	setValidEnv(t)
	t.Setenv("WALLET_ADDRESS", "not-an-address")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WALLET_ADDRESS")
}

func TestLoad_FailsFastOnMismatchedKey(t *testing.T) {
	setValidEnv(t)
	// address válido pero de otro wallet
	t.Setenv("WALLET_ADDRESS", "0x745461ae3ee10F26e314735b6AF8ee41cD313E2d")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestLoad_FailsFastOnBadFraction(t *testing.T) {
	setValidEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trader:
  spending_limit_fraction: 1.5
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spending_limit_fraction")
}

func TestLoad_FailsFastOnBadPagination(t *testing.T) {
	setValidEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  pagination: scroll
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagination")
}
