package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crosspool/internal/config"
	"crosspool/internal/sim"
	"crosspool/internal/storage"
)

func runScenario(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRun(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	priceX, err := parseBig("price-x", cfg.PriceX)
	if err != nil {
		return err
	}
	priceY, err := parseBig("price-y", cfg.PriceY)
	if err != nil {
		return err
	}
	depositA, err := parseBig("deposit-a", cfg.DepositA)
	if err != nil {
		return err
	}
	depositB, err := parseBig("deposit-b", cfg.DepositB)
	if err != nil {
		return err
	}
	swapAmount, err := parseBig("swap-amount", cfg.SwapAmount)
	if err != nil {
		return err
	}

	var liquidityParameter *big.Int
	if cfg.LiquidityParameter != "" {
		liquidityParameter, err = parseBig("liquidity-parameter", cfg.LiquidityParameter)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := storage.NewJsonlSink(cfg.Out)

	runner := sim.NewRunner(sim.RunConfig{
		PriceX:             priceX,
		PriceY:             priceY,
		OracleDecimals:     cfg.OracleDecimals,
		LiquidityParameter: liquidityParameter,
		DepositA:           depositA,
		DepositB:           depositB,
		SwapAmountIn:       swapAmount,
		SettlementWindow:   cfg.SettlementWindow,
		MaxRetries:         cfg.MaxRetries,
		RetryBackoff:       cfg.RetryBackoff,
	}, sink, logger)

	logger.Info("scenario start",
		zap.String("price_x", cfg.PriceX),
		zap.String("price_y", cfg.PriceY),
		zap.Uint8("oracle_decimals", cfg.OracleDecimals),
		zap.String("deposit_a", cfg.DepositA),
		zap.String("deposit_b", cfg.DepositB),
		zap.String("swap_amount", cfg.SwapAmount),
		zap.Duration("settlement_window", cfg.SettlementWindow),
		zap.String("out", cfg.Out),
	)

	return runner.Run(ctx)
}

func parseBig(name, value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", name, value)
	}
	return parsed, nil
}
