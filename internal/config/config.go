// Package config loads and validates the engine configuration from the
// environment, with an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrInvalid is returned when the configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full engine configuration, loaded once at startup.
type Config struct {
	// Capital
	DailyCapitalUsd  float64
	MaxCyclesPerDay  int
	InvestFraction   float64
	TargetMultiplier float64 // 0 disables the target stop

	// Fees
	BuyFeePercent    float64
	SellFeePercent   float64
	CongestionTipSol float64

	// Filters and exits
	MaxMcapLiqRatio    float64
	TakeProfitMultiple float64
	StopLossMultiple   float64 // 0 disables stop-loss

	// Swap
	SlippageBps     int
	ReferralFeeBps  int
	ReferralAccount string

	// Keys. PrivatePayerKey is the optional alternate payer.
	PrivateKey      string
	PrivatePayerKey string

	// Endpoints
	RPCURL      string
	SignalWSURL string
	OrderURL    string
	ExecuteURL  string

	// Persistence. PostgresDSN empty selects the JSONL file store.
	PostgresDSN string
	RecordsFile string

	// Runtime
	TradeSleep  time.Duration
	DryRun      bool
	MetricsAddr string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over file values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var pe parseErrors
	cfg := &Config{
		DailyCapitalUsd:  pe.float("DAILY_CAPITAL_USD", 100),
		MaxCyclesPerDay:  pe.int("MAX_CYCLES_PER_DAY", 5),
		InvestFraction:   pe.float("INVEST_FRACTION", 0.1),
		TargetMultiplier: pe.float("TARGET_MULTIPLIER", 0),

		BuyFeePercent:    pe.float("BUY_FEE_PERCENT", 1),
		SellFeePercent:   pe.float("SELL_FEE_PERCENT", 1),
		CongestionTipSol: pe.float("CONGESTION_TIP_SOL", 0.2),

		MaxMcapLiqRatio:    pe.float("MAX_MCAP_LIQ_RATIO", 10),
		TakeProfitMultiple: pe.float("TAKE_PROFIT_MULTIPLE", 1.5),
		StopLossMultiple:   pe.float("STOP_LOSS_MULTIPLE", 0),

		SlippageBps:     pe.int("SLIPPAGE_BPS", 100),
		ReferralFeeBps:  pe.int("REFERRAL_FEE_BPS", 0),
		ReferralAccount: getenv("REFERRAL_ACCOUNT", ""),

		PrivateKey:      getenv("PRIVATE_KEY", ""),
		PrivatePayerKey: getenv("PRIVATE_PAYER_KEY", ""),

		RPCURL:      getenv("RPC_URL", "https://api.mainnet-beta.solana.com"),
		SignalWSURL: getenv("SIGNAL_WS_URL", ""),
		OrderURL:    getenv("ORDER_URL", ""),
		ExecuteURL:  getenv("EXECUTE_URL", ""),

		PostgresDSN: getenv("POSTGRES_DSN", ""),
		RecordsFile: getenv("RECORDS_FILE", "trades.jsonl"),

		TradeSleep:  time.Duration(pe.float("TRADE_SLEEP_SEC", 10) * float64(time.Second)),
		DryRun:      pe.bool("DRY_RUN", false),
		MetricsAddr: getenv("METRICS_ADDR", ":9090"),
	}
	if len(pe) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(pe, "; "))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.DailyCapitalUsd <= 0 {
		add("DAILY_CAPITAL_USD must be positive, got %v", c.DailyCapitalUsd)
	}
	if c.InvestFraction <= 0 || c.InvestFraction > 1 {
		add("INVEST_FRACTION must be in (0, 1], got %v", c.InvestFraction)
	}
	if c.MaxCyclesPerDay <= 0 {
		add("MAX_CYCLES_PER_DAY must be positive, got %d", c.MaxCyclesPerDay)
	}
	if c.TargetMultiplier < 0 {
		add("TARGET_MULTIPLIER must not be negative, got %v", c.TargetMultiplier)
	}
	if c.BuyFeePercent < 0 || c.BuyFeePercent >= 100 {
		add("BUY_FEE_PERCENT must be in [0, 100), got %v", c.BuyFeePercent)
	}
	if c.SellFeePercent < 0 || c.SellFeePercent >= 100 {
		add("SELL_FEE_PERCENT must be in [0, 100), got %v", c.SellFeePercent)
	}
	if c.TakeProfitMultiple <= 1 {
		add("TAKE_PROFIT_MULTIPLE must exceed 1, got %v", c.TakeProfitMultiple)
	}
	if c.StopLossMultiple < 0 || c.StopLossMultiple >= 1 {
		add("STOP_LOSS_MULTIPLE must be in [0, 1), got %v", c.StopLossMultiple)
	}
	if c.SlippageBps < 0 || c.SlippageBps > 10000 {
		add("SLIPPAGE_BPS must be in [0, 10000], got %d", c.SlippageBps)
	}
	if c.ReferralFeeBps < 0 {
		add("REFERRAL_FEE_BPS must not be negative, got %d", c.ReferralFeeBps)
	}
	if c.ReferralFeeBps > 0 && c.ReferralAccount == "" {
		add("REFERRAL_FEE_BPS set without REFERRAL_ACCOUNT")
	}
	if c.TradeSleep <= 0 {
		add("TRADE_SLEEP_SEC must be positive, got %v", c.TradeSleep)
	}
	if !c.DryRun && c.PrivateKey == "" {
		add("PRIVATE_KEY is required unless DRY_RUN is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseErrors collects malformed values so one Load reports them all.
type parseErrors []string

func (pe *parseErrors) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*pe = append(*pe, fmt.Sprintf("%s: %q is not a number", key, raw))
		return fallback
	}
	return v
}

func (pe *parseErrors) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*pe = append(*pe, fmt.Sprintf("%s: %q is not an integer", key, raw))
		return fallback
	}
	return v
}

func (pe *parseErrors) bool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*pe = append(*pe, fmt.Sprintf("%s: %q is not a boolean", key, raw))
		return fallback
	}
	return v
}
