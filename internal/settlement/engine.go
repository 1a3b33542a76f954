package settlement

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/token"
)

var (
	// ErrAlreadyPending is returned when a settlement is registered for
	// a (sender, pool) pair that already has one outstanding.
	ErrAlreadyPending = errors.New("settlement: already pending for sender and pool")

	// ErrNotFound is returned when no pending settlement exists for the
	// given (sender, pool) pair.
	ErrNotFound = errors.New("settlement: no pending record")

	// ErrNotExpired is returned when an expiry is attempted before the
	// record's deadline.
	ErrNotExpired = errors.New("settlement: deadline not reached")

	// ErrSettledTooMuch is returned when a resolution exceeds the
	// escrowed maximum.
	ErrSettledTooMuch = errors.New("settlement: settled amount exceeds escrow")
)

type pendingKey struct {
	sender common.Address
	pool   common.Address
}

// Engine escrows outbound swap proceeds and resolves them later. It
// enforces at most one pending settlement per (sender, pool) pair.
type Engine struct {
	address common.Address
	window  time.Duration
	logger  *zap.Logger
	clock   func() time.Time

	mu      sync.Mutex
	pending map[pendingKey]Record
	assets  map[common.Address]token.Asset
}

// NewEngine creates a settlement engine holding escrow at the given
// address, with the given settlement window.
func NewEngine(address common.Address, window time.Duration, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		address: address,
		window:  window,
		logger:  logger,
		clock:   time.Now,
		pending: make(map[pendingKey]Record),
		assets:  make(map[common.Address]token.Asset),
	}
}

// WithClock overrides the engine clock for deterministic tests.
func (e *Engine) WithClock(clock func() time.Time) {
	if clock != nil {
		e.clock = clock
	}
}

// TrackAsset registers an asset the engine may hold in escrow, so that
// resolution can move the funds.
func (e *Engine) TrackAsset(asset token.Asset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assets[asset.Address()] = asset
}

// Address returns the escrow address pools transfer into.
func (e *Engine) Address() common.Address {
	return e.address
}

// Window returns the settlement window pools use to stamp deadlines.
func (e *Engine) Window() time.Duration {
	return e.window
}

// HasPending reports whether a settlement is outstanding for the pair.
func (e *Engine) HasPending(sender, pool common.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.pending[pendingKey{sender: sender, pool: pool}]
	return ok
}

// Pending returns the outstanding record for the pair, if any.
func (e *Engine) Pending(sender, pool common.Address) (Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.pending[pendingKey{sender: sender, pool: pool}]
	return rec, ok
}

// Register records a new pending settlement. The caller must already
// have transferred the escrowed amount to the engine's address.
func (e *Engine) Register(rec Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := pendingKey{sender: rec.Sender, pool: rec.DestPool}
	if _, ok := e.pending[key]; ok {
		return ErrAlreadyPending
	}
	e.pending[key] = rec

	e.logger.Info("settlement registered",
		zap.String("sender", rec.Sender.Hex()),
		zap.String("dest_pool", rec.DestPool.Hex()),
		zap.String("max_amount", rec.MaxAmount.String()),
		zap.Time("deadline", rec.Deadline),
	)
	return nil
}

// Resolve settles a pending record: pays settled to the receiver and
// refunds the remaining escrow to the destination pool.
func (e *Engine) Resolve(sender, destPool common.Address, destAsset common.Address, settled *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := pendingKey{sender: sender, pool: destPool}
	rec, ok := e.pending[key]
	if !ok {
		return ErrNotFound
	}
	if settled == nil || settled.Sign() < 0 {
		return fmt.Errorf("settled amount must be non-negative")
	}
	if settled.Cmp(rec.MaxAmount) > 0 {
		return ErrSettledTooMuch
	}

	asset, ok := e.assets[destAsset]
	if !ok {
		return fmt.Errorf("untracked asset %s", destAsset.Hex())
	}

	if settled.Sign() > 0 {
		if err := token.SafeTransfer(asset, e.address, rec.Receiver, settled); err != nil {
			return fmt.Errorf("pay receiver: %w", err)
		}
	}

	excess := new(big.Int).Sub(rec.MaxAmount, settled)
	if excess.Sign() > 0 {
		if err := token.SafeTransfer(asset, e.address, rec.DestPool, excess); err != nil {
			return fmt.Errorf("refund pool: %w", err)
		}
	}

	delete(e.pending, key)

	e.logger.Info("settlement resolved",
		zap.String("sender", sender.Hex()),
		zap.String("dest_pool", destPool.Hex()),
		zap.String("settled", settled.String()),
		zap.String("excess", excess.String()),
	)
	return nil
}

// Expire refunds the full escrow to the destination pool once the
// record's deadline has passed.
func (e *Engine) Expire(sender, destPool common.Address, destAsset common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := pendingKey{sender: sender, pool: destPool}
	rec, ok := e.pending[key]
	if !ok {
		return ErrNotFound
	}
	if e.clock().Before(rec.Deadline) {
		return ErrNotExpired
	}

	asset, ok := e.assets[destAsset]
	if !ok {
		return fmt.Errorf("untracked asset %s", destAsset.Hex())
	}

	if err := token.SafeTransfer(asset, e.address, rec.DestPool, rec.MaxAmount); err != nil {
		return fmt.Errorf("refund pool: %w", err)
	}

	delete(e.pending, key)

	e.logger.Info("settlement expired",
		zap.String("sender", sender.Hex()),
		zap.String("dest_pool", destPool.Hex()),
		zap.String("refunded", rec.MaxAmount.String()),
	)
	return nil
}
