package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseline(t *testing.T) {
	t.Helper()
	t.Setenv("PRIVATE_KEY", "5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTVqvbTLvyTJ")
	t.Setenv("DAILY_CAPITAL_USD", "100")
	t.Setenv("TAKE_PROFIT_MULTIPLE", "1.5")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseline(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.DailyCapitalUsd)
	assert.Equal(t, 5, cfg.MaxCyclesPerDay)
	assert.Equal(t, 0.1, cfg.InvestFraction)
	assert.Equal(t, 1.0, cfg.BuyFeePercent)
	assert.Equal(t, 1.0, cfg.SellFeePercent)
	assert.Equal(t, 10.0, cfg.MaxMcapLiqRatio)
	assert.Equal(t, 100, cfg.SlippageBps)
	assert.Equal(t, 10*time.Second, cfg.TradeSleep)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "trades.jsonl", cfg.RecordsFile)
}

func TestLoad_FullSurface(t *testing.T) {
	setBaseline(t)
	t.Setenv("DAILY_CAPITAL_USD", "250")
	t.Setenv("MAX_CYCLES_PER_DAY", "3")
	t.Setenv("INVEST_FRACTION", "0.25")
	t.Setenv("TARGET_MULTIPLIER", "2")
	t.Setenv("BUY_FEE_PERCENT", "0.5")
	t.Setenv("SELL_FEE_PERCENT", "0.75")
	t.Setenv("MAX_MCAP_LIQ_RATIO", "8")
	t.Setenv("TAKE_PROFIT_MULTIPLE", "2.5")
	t.Setenv("STOP_LOSS_MULTIPLE", "0.5")
	t.Setenv("SLIPPAGE_BPS", "250")
	t.Setenv("REFERRAL_FEE_BPS", "50")
	t.Setenv("REFERRAL_ACCOUNT", "RefAccount111")
	t.Setenv("PRIVATE_PAYER_KEY", "payer-key")
	t.Setenv("TRADE_SLEEP_SEC", "2.5")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/sniper")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.DailyCapitalUsd)
	assert.Equal(t, 3, cfg.MaxCyclesPerDay)
	assert.Equal(t, 0.25, cfg.InvestFraction)
	assert.Equal(t, 2.0, cfg.TargetMultiplier)
	assert.Equal(t, 2.5, cfg.TakeProfitMultiple)
	assert.Equal(t, 0.5, cfg.StopLossMultiple)
	assert.Equal(t, 50, cfg.ReferralFeeBps)
	assert.Equal(t, "RefAccount111", cfg.ReferralAccount)
	assert.Equal(t, "payer-key", cfg.PrivatePayerKey)
	assert.Equal(t, 2500*time.Millisecond, cfg.TradeSleep)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "postgres://localhost/sniper", cfg.PostgresDSN)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric capital", "DAILY_CAPITAL_USD", "lots"},
		{"zero capital", "DAILY_CAPITAL_USD", "0"},
		{"fraction above one", "INVEST_FRACTION", "1.5"},
		{"take profit at one", "TAKE_PROFIT_MULTIPLE", "1.0"},
		{"stop loss at one", "STOP_LOSS_MULTIPLE", "1.0"},
		{"fee at hundred", "BUY_FEE_PERCENT", "100"},
		{"negative sleep", "TRADE_SLEEP_SEC", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseline(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_ReferralRequiresAccount(t *testing.T) {
	setBaseline(t)
	t.Setenv("REFERRAL_FEE_BPS", "50")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_PrivateKeyOptionalInDryRun(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("DRY_RUN", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
}
