package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RunConfig holds configuration values for the scenario run command,
// loaded from flags, env, or config file.
type RunConfig struct {
	PriceX             string
	PriceY             string
	OracleDecimals     uint8
	LiquidityParameter string
	DepositA           string
	DepositB           string
	SwapAmount         string
	SettlementWindow   time.Duration
	Out                string
	MaxRetries         int
	RetryBackoff       time.Duration
	LogLevel           string
}

// LoadRun merges config file, environment variables, and flags into RunConfig.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v := newViper()

	v.SetDefault("price-x", "100000000")
	v.SetDefault("price-y", "100000000")
	v.SetDefault("oracle-decimals", 8)
	v.SetDefault("deposit-a", "1000000000000000000000")
	v.SetDefault("deposit-b", "1000000000000000000000")
	v.SetDefault("swap-amount", "10000000000000000000")
	v.SetDefault("settlement-window", time.Hour)
	v.SetDefault("out", "./data/events.jsonl")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if err := bind(v, cfgFile, flags); err != nil {
		return RunConfig{}, err
	}

	cfg := RunConfig{
		PriceX:             v.GetString("price-x"),
		PriceY:             v.GetString("price-y"),
		OracleDecimals:     uint8(v.GetUint("oracle-decimals")),
		LiquidityParameter: v.GetString("liquidity-parameter"),
		DepositA:           v.GetString("deposit-a"),
		DepositB:           v.GetString("deposit-b"),
		SwapAmount:         v.GetString("swap-amount"),
		SettlementWindow:   v.GetDuration("settlement-window"),
		Out:                v.GetString("out"),
		MaxRetries:         v.GetInt("max-retries"),
		RetryBackoff:       v.GetDuration("retry-backoff"),
		LogLevel:           v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func bind(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
