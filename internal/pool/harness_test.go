package pool

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"crosspool/internal/model"
	"crosspool/internal/oracle"
	"crosspool/internal/pricing"
	"crosspool/internal/settlement"
	"crosspool/internal/token"
)

var (
	routerAddr  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	factoryAddr = common.HexToAddress("0x1000000000000000000000000000000000000002")
	escrowAddr  = common.HexToAddress("0x1000000000000000000000000000000000000003")
	poolAAddr   = common.HexToAddress("0x2000000000000000000000000000000000000001")
	poolBAddr   = common.HexToAddress("0x2000000000000000000000000000000000000002")
	assetXAddr  = common.HexToAddress("0x3000000000000000000000000000000000000001")
	assetYAddr  = common.HexToAddress("0x3000000000000000000000000000000000000002")
	lpAddr      = common.HexToAddress("0x4000000000000000000000000000000000000001")
	traderAddr  = common.HexToAddress("0x4000000000000000000000000000000000000002")
)

// testRegistry is a minimal Registry for wiring pools in tests.
type testRegistry struct {
	router     common.Address
	settlement common.Address
	pools      map[common.Address]Sibling
}

func newTestRegistry() *testRegistry {
	return &testRegistry{
		router:     routerAddr,
		settlement: escrowAddr,
		pools:      make(map[common.Address]Sibling),
	}
}

func (r *testRegistry) CurrentRouter() common.Address     { return r.router }
func (r *testRegistry) SettlementAddress() common.Address { return r.settlement }

func (r *testRegistry) ResolvePool(asset common.Address) (Sibling, bool) {
	sibling, ok := r.pools[asset]
	return sibling, ok
}

// captureSink buffers emitted events for assertions.
type captureSink struct {
	events []model.PoolEvent
}

func (c *captureSink) Record(event model.PoolEvent) {
	c.events = append(c.events, event)
}

type world struct {
	registry *testRegistry
	engine   *settlement.Engine
	assetX   *token.Ledger
	assetY   *token.Ledger
	poolA    *Pool // holds asset X
	poolB    *Pool // holds asset Y
	events   *captureSink
}

// newWorld stands up two pools with 1.0 price feeds and no quote
// damping, so amounts and values are 1:1 unless a test changes the feed.
func newWorld(t *testing.T) *world {
	t.Helper()

	registry := newTestRegistry()
	engine := settlement.NewEngine(escrowAddr, time.Hour, nil)
	assetX := token.NewLedger(assetXAddr, 18)
	assetY := token.NewLedger(assetYAddr, 18)
	engine.TrackAsset(assetX)
	engine.TrackAsset(assetY)

	events := &captureSink{}

	feedX := oracle.NewStaticFeed(big.NewInt(100000000), 8)
	feedY := oracle.NewStaticFeed(big.NewInt(100000000), 8)

	poolA, err := New(Config{
		Address:    poolAAddr,
		BaseAsset:  assetX,
		Feed:       feedX,
		Policy:     pricing.NewAnchored(feedX),
		Registry:   registry,
		Settlement: engine,
		Factory:    factoryAddr,
		Events:     events,
	})
	if err != nil {
		t.Fatalf("new pool A: %v", err)
	}

	poolB, err := New(Config{
		Address:    poolBAddr,
		BaseAsset:  assetY,
		Feed:       feedY,
		Policy:     pricing.NewAnchored(feedY),
		Registry:   registry,
		Settlement: engine,
		Factory:    factoryAddr,
		Events:     events,
	})
	if err != nil {
		t.Fatalf("new pool B: %v", err)
	}

	registry.pools[assetXAddr] = poolA
	registry.pools[assetYAddr] = poolB

	return &world{
		registry: registry,
		engine:   engine,
		assetX:   assetX,
		assetY:   assetY,
		poolA:    poolA,
		poolB:    poolB,
		events:   events,
	}
}

// seedLiquidity deposits amount into the pool and mints shares to lp.
func seedLiquidity(t *testing.T, p *Pool, asset *token.Ledger, amount int64) *big.Int {
	t.Helper()

	asset.Mint(p.Address(), big.NewInt(amount))
	shares, err := p.Mint(routerAddr, lpAddr)
	if err != nil {
		t.Fatalf("seed mint: %v", err)
	}
	return shares
}
