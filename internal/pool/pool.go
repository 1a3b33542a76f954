package pool

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/model"
	"crosspool/internal/oracle"
	"crosspool/internal/pricing"
	"crosspool/internal/settlement"
	"crosspool/internal/token"
)

// Registry is the registry/factory surface the pool consumes: it reports
// the current router, resolves sibling pools by asset, and names the
// settlement escrow address.
type Registry interface {
	CurrentRouter() common.Address
	SettlementAddress() common.Address
	ResolvePool(asset common.Address) (Sibling, bool)
}

// Sibling is the read surface of another pool in the network, used when
// snapshotting state into a pending settlement.
type Sibling interface {
	Address() common.Address
	State() pricing.State
}

// Settlement is the settlement collaborator surface: the pool registers
// outbound escrows and queries whether one is still outstanding.
type Settlement interface {
	HasPending(sender, pool common.Address) bool
	Register(rec settlement.Record) error
	Window() time.Duration
}

// EventSink receives observable pool events.
type EventSink interface {
	Record(event model.PoolEvent)
}

type nopSink struct{}

func (nopSink) Record(model.PoolEvent) {}

// Config wires a pool's identity and collaborators.
type Config struct {
	Address            common.Address
	BaseAsset          token.Asset
	Feed               oracle.Feed
	Policy             pricing.Policy
	Registry           Registry
	Settlement         Settlement
	Factory            common.Address
	LiquidityParameter *big.Int
	Events             EventSink
	Logger             *zap.Logger
	Clock              func() time.Time
}

// Pool is a single-asset liquidity pool participating in a multi-pool
// network. It custodies one reserve asset, issues proportional share
// claims on it, and coordinates two-leg cross-pool swaps whose settlement
// is deferred to an external escrow process.
type Pool struct {
	address        common.Address
	base           token.Asset
	baseDecimals   uint8
	oracleDecimals uint8

	feed       oracle.Feed
	policy     pricing.Policy
	registry   Registry
	settlement Settlement

	events EventSink
	logger *zap.Logger
	clock  func() time.Time

	// locked is the reentrancy flag: exactly one mutating call may be
	// in flight at a time, and a reentrant call fails instead of
	// deadlocking.
	locked atomic.Bool

	mu                 sync.RWMutex
	factory            common.Address
	reserveBalance     *big.Int
	targetAmount       *big.Int
	liquidityParameter *big.Int
	tradeEnabled       bool
	depositEnabled     bool
	withdrawEnabled    bool
	shares             *shareLedger
}

// New constructs and initializes a pool. Initialization happens exactly
// once: there is no re-init surface after construction.
func New(cfg Config) (*Pool, error) {
	if cfg.BaseAsset == nil {
		return nil, fmt.Errorf("base asset is required")
	}
	if cfg.Feed == nil {
		return nil, fmt.Errorf("price feed is required")
	}
	if cfg.Policy == nil {
		return nil, fmt.Errorf("pricing policy is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Settlement == nil {
		return nil, fmt.Errorf("settlement is required")
	}
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("pool address is required")
	}
	if cfg.Feed.Decimals() > 18 {
		return nil, fmt.Errorf("feed decimals %d exceed 18", cfg.Feed.Decimals())
	}

	events := cfg.Events
	if events == nil {
		events = nopSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	liquidityParameter := new(big.Int)
	if cfg.LiquidityParameter != nil {
		liquidityParameter.Set(cfg.LiquidityParameter)
	}

	return &Pool{
		address:            cfg.Address,
		base:               cfg.BaseAsset,
		baseDecimals:       cfg.BaseAsset.Decimals(),
		oracleDecimals:     cfg.Feed.Decimals(),
		feed:               cfg.Feed,
		policy:             cfg.Policy,
		registry:           cfg.Registry,
		settlement:         cfg.Settlement,
		events:             events,
		logger:             logger,
		clock:              clock,
		factory:            cfg.Factory,
		reserveBalance:     new(big.Int),
		targetAmount:       new(big.Int),
		liquidityParameter: liquidityParameter,
		tradeEnabled:       true,
		depositEnabled:     true,
		withdrawEnabled:    true,
		shares:             newShareLedger(),
	}, nil
}

// Address returns the pool's own address.
func (p *Pool) Address() common.Address {
	return p.address
}

// BaseAsset returns the address of the pool's reserve asset.
func (p *Pool) BaseAsset() common.Address {
	return p.base.Address()
}

// ReserveBalance returns the pool's recorded reserve balance.
func (p *Pool) ReserveBalance() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.reserveBalance)
}

// TargetAmount returns the reserve amount backing the share supply.
func (p *Pool) TargetAmount() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.targetAmount)
}

// LiquidityParameter returns the pricing curve shape parameter.
func (p *Pool) LiquidityParameter() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.liquidityParameter)
}

// State returns a copy of the pool state a pricing policy evaluates
// against. It also serves sibling snapshots during outbound swaps.
func (p *Pool) State() pricing.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return pricing.State{
		TargetAmount:       new(big.Int).Set(p.targetAmount),
		ReserveBalance:     new(big.Int).Set(p.reserveBalance),
		LiquidityParameter: new(big.Int).Set(p.liquidityParameter),
	}
}

// CurrentPrice reads the latest feed round and normalizes the answer to
// 18-decimal fixed point. Feed failures propagate unchanged.
func (p *Pool) CurrentPrice() (*big.Int, error) {
	round, err := p.feed.LatestRoundData()
	if err != nil {
		return nil, err
	}
	return oracle.Normalize(round.Answer, p.oracleDecimals)
}

func (p *Pool) emit(event model.PoolEvent) {
	event.PoolAddress = p.address.Hex()
	event.Timestamp = uint64(p.clock().UTC().Unix())
	p.events.Record(event)
}
