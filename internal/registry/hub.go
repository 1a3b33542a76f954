package registry

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/oracle"
	"crosspool/internal/pool"
	"crosspool/internal/pricing"
	"crosspool/internal/settlement"
	"crosspool/internal/token"
)

// Hub is the registry/factory for a pool network: it reports the current
// router, resolves pools by reserve asset, and creates pools wired to
// itself. It satisfies the pool.Registry surface.
type Hub struct {
	address    common.Address
	settlement *settlement.Engine
	logger     *zap.Logger

	mu     sync.RWMutex
	router common.Address
	pools  map[common.Address]*pool.Pool
}

// NewHub creates a registry at the given address with an initial router.
func NewHub(address, router common.Address, engine *settlement.Engine, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		address:    address,
		settlement: engine,
		logger:     logger,
		router:     router,
		pools:      make(map[common.Address]*pool.Pool),
	}
}

// Address returns the hub's own address; pools created by the hub use it
// as their factory identity.
func (h *Hub) Address() common.Address {
	return h.address
}

// CurrentRouter returns the address allowed to call trading and
// liquidity operations.
func (h *Hub) CurrentRouter() common.Address {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.router
}

// SetRouter re-points the router.
func (h *Hub) SetRouter(router common.Address) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.router = router
}

// SettlementAddress returns the escrow address of the settlement engine.
func (h *Hub) SettlementAddress() common.Address {
	return h.settlement.Address()
}

// ResolvePool returns the pool handling the given reserve asset.
func (h *Hub) ResolvePool(asset common.Address) (pool.Sibling, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.pools[asset]
	if !ok {
		return nil, false
	}
	return p, true
}

// PoolFor returns the concrete pool for an asset, for callers that need
// the full mutating surface rather than the sibling read surface.
func (h *Hub) PoolFor(asset common.Address) (*pool.Pool, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.pools[asset]
	return p, ok
}

// PoolSpec describes a pool the hub should create.
type PoolSpec struct {
	Address            common.Address
	BaseAsset          token.Asset
	Feed               oracle.Feed
	Policy             pricing.Policy
	LiquidityParameter *big.Int
	Events             pool.EventSink
}

// CreatePool constructs a pool wired to this hub and registers it under
// its reserve asset. At most one pool per asset.
func (h *Hub) CreatePool(spec PoolSpec) (*pool.Pool, error) {
	if spec.BaseAsset == nil {
		return nil, fmt.Errorf("base asset is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	assetAddr := spec.BaseAsset.Address()
	if _, ok := h.pools[assetAddr]; ok {
		return nil, fmt.Errorf("pool for asset %s already exists", assetAddr.Hex())
	}

	p, err := pool.New(pool.Config{
		Address:            spec.Address,
		BaseAsset:          spec.BaseAsset,
		Feed:               spec.Feed,
		Policy:             spec.Policy,
		Registry:           h,
		Settlement:         h.settlement,
		Factory:            h.address,
		LiquidityParameter: spec.LiquidityParameter,
		Events:             spec.Events,
		Logger:             h.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	h.pools[assetAddr] = p
	h.settlement.TrackAsset(spec.BaseAsset)

	h.logger.Info("pool created",
		zap.String("pool", spec.Address.Hex()),
		zap.String("asset", assetAddr.Hex()),
	)
	return p, nil
}
