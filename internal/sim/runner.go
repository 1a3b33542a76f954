package sim

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/oracle"
	"crosspool/internal/pricing"
	"crosspool/internal/registry"
	"crosspool/internal/settlement"
	"crosspool/internal/storage"
	"crosspool/internal/token"
)

// Well-known addresses for the simulated network.
var (
	hubAddr    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	routerAddr = common.HexToAddress("0x1000000000000000000000000000000000000002")
	escrowAddr = common.HexToAddress("0x1000000000000000000000000000000000000003")
	poolAAddr  = common.HexToAddress("0x2000000000000000000000000000000000000001")
	poolBAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	assetXAddr = common.HexToAddress("0x3000000000000000000000000000000000000001")
	assetYAddr = common.HexToAddress("0x3000000000000000000000000000000000000002")
	lpAddr     = common.HexToAddress("0x4000000000000000000000000000000000000001")
	traderAddr = common.HexToAddress("0x4000000000000000000000000000000000000002")
)

// RunConfig holds the scripted scenario parameters.
type RunConfig struct {
	// Raw feed answers for the two assets, at OracleDecimals precision.
	PriceX         *big.Int
	PriceY         *big.Int
	OracleDecimals uint8

	LiquidityParameter *big.Int
	DepositA           *big.Int
	DepositB           *big.Int
	SwapAmountIn       *big.Int

	SettlementWindow time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
}

// Runner stands up a two-pool network and drives a full lifecycle:
// liquidity provision on both pools, a two-leg cross-pool swap with
// settlement resolution, and a partial redemption. Emitted events are
// flushed to the sink.
type Runner struct {
	cfg       RunConfig
	sink      storage.Sink
	collector *storage.Collector
	logger    *zap.Logger
}

func NewRunner(cfg RunConfig, sink storage.Sink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		sink:      sink,
		collector: storage.NewCollector(),
		logger:    logger,
	}
}

// Run executes the scenario.
func (r *Runner) Run(ctx context.Context) error {
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if r.cfg.PriceX == nil || r.cfg.PriceY == nil {
		return fmt.Errorf("both feed prices are required")
	}
	if r.cfg.DepositA == nil || r.cfg.DepositA.Sign() <= 0 {
		return fmt.Errorf("deposit-a must be positive")
	}
	if r.cfg.DepositB == nil || r.cfg.DepositB.Sign() <= 0 {
		return fmt.Errorf("deposit-b must be positive")
	}
	if r.cfg.SwapAmountIn == nil || r.cfg.SwapAmountIn.Sign() <= 0 {
		return fmt.Errorf("swap-amount must be positive")
	}
	if r.cfg.SettlementWindow <= 0 {
		r.cfg.SettlementWindow = time.Hour
	}

	assetX := token.NewLedger(assetXAddr, 18)
	assetY := token.NewLedger(assetYAddr, 18)
	feedX := oracle.NewStaticFeed(r.cfg.PriceX, r.cfg.OracleDecimals)
	feedY := oracle.NewStaticFeed(r.cfg.PriceY, r.cfg.OracleDecimals)
	policyX := pricing.NewAnchored(feedX)
	policyY := pricing.NewAnchored(feedY)

	engine := settlement.NewEngine(escrowAddr, r.cfg.SettlementWindow, r.logger)
	hub := registry.NewHub(hubAddr, routerAddr, engine, r.logger)

	poolA, err := hub.CreatePool(registry.PoolSpec{
		Address:            poolAAddr,
		BaseAsset:          assetX,
		Feed:               feedX,
		Policy:             policyX,
		LiquidityParameter: r.cfg.LiquidityParameter,
		Events:             r.collector,
	})
	if err != nil {
		return fmt.Errorf("create pool A: %w", err)
	}
	poolB, err := hub.CreatePool(registry.PoolSpec{
		Address:            poolBAddr,
		BaseAsset:          assetY,
		Feed:               feedY,
		Policy:             policyY,
		LiquidityParameter: r.cfg.LiquidityParameter,
		Events:             r.collector,
	})
	if err != nil {
		return fmt.Errorf("create pool B: %w", err)
	}

	// Liquidity provision: the LP's deposits land in the pools first,
	// then the router mints shares against the observed delta.
	assetX.Mint(lpAddr, r.cfg.DepositA)
	assetY.Mint(lpAddr, r.cfg.DepositB)
	if err := assetX.Transfer(lpAddr, poolAAddr, r.cfg.DepositA); err != nil {
		return fmt.Errorf("deposit into pool A: %w", err)
	}
	if err := assetY.Transfer(lpAddr, poolBAddr, r.cfg.DepositB); err != nil {
		return fmt.Errorf("deposit into pool B: %w", err)
	}

	sharesA, err := poolA.Mint(routerAddr, lpAddr)
	if err != nil {
		return fmt.Errorf("mint pool A: %w", err)
	}
	sharesB, err := poolB.Mint(routerAddr, lpAddr)
	if err != nil {
		return fmt.Errorf("mint pool B: %w", err)
	}
	r.logger.Info("liquidity provisioned",
		zap.String("shares_a", sharesA.String()),
		zap.String("shares_b", sharesB.String()),
	)
	if err := r.flush(ctx); err != nil {
		return err
	}

	// Cross-pool swap: the trader pays asset X into pool A and receives
	// asset Y escrowed out of pool B.
	assetX.Mint(traderAddr, r.cfg.SwapAmountIn)

	value, err := policyX.QuoteIn(r.cfg.SwapAmountIn, poolA.State())
	if err != nil {
		return fmt.Errorf("quote swap value: %w", err)
	}

	maxAmount, err := poolB.SwapOut(routerAddr, traderAddr, assetXAddr, r.cfg.SwapAmountIn, value, traderAddr)
	if err != nil {
		return fmt.Errorf("swap leg 1: %w", err)
	}
	r.logger.Info("outbound leg escrowed",
		zap.String("value", value.String()),
		zap.String("max_amount", maxAmount.String()),
	)

	// Settlement resolves the full escrowed amount to the trader.
	if err := engine.Resolve(traderAddr, poolBAddr, assetYAddr, maxAmount); err != nil {
		return fmt.Errorf("resolve settlement: %w", err)
	}

	// The trader's input lands in pool A, then the inbound leg credits
	// it against the recorded reserve.
	if err := assetX.Transfer(traderAddr, poolAAddr, r.cfg.SwapAmountIn); err != nil {
		return fmt.Errorf("deposit swap input: %w", err)
	}
	amount, inValue, err := poolA.SwapIn(routerAddr, traderAddr)
	if err != nil {
		return fmt.Errorf("swap leg 2: %w", err)
	}
	r.logger.Info("inbound leg credited",
		zap.String("amount", amount.String()),
		zap.String("value", inValue.String()),
	)
	if err := r.flush(ctx); err != nil {
		return err
	}

	// Partial redemption: the LP burns half its pool A shares.
	half := new(big.Int).Quo(sharesA, big.NewInt(2))
	if half.Sign() > 0 {
		if err := poolA.TransferShares(lpAddr, poolAAddr, half); err != nil {
			return fmt.Errorf("move shares: %w", err)
		}
		redeemed, err := poolA.Burn(routerAddr, lpAddr)
		if err != nil {
			return fmt.Errorf("burn pool A: %w", err)
		}
		r.logger.Info("liquidity redeemed", zap.String("amount", redeemed.String()))
	}
	if err := r.flush(ctx); err != nil {
		return err
	}

	r.logger.Info("scenario complete",
		zap.String("pool_a_reserve", poolA.ReserveBalance().String()),
		zap.String("pool_a_target", poolA.TargetAmount().String()),
		zap.String("pool_b_reserve", poolB.ReserveBalance().String()),
		zap.String("pool_b_target", poolB.TargetAmount().String()),
	)

	return nil
}

func (r *Runner) flush(ctx context.Context) error {
	events := r.collector.Drain()
	if len(events) == 0 {
		return nil
	}
	return storage.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(context.Context) error {
		if err := r.sink.PutEventBatch(events); err != nil {
			r.logger.Warn("flush events failed", zap.Error(err), zap.Int("batch", len(events)))
			return err
		}
		return nil
	})
}
