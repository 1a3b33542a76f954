package pool

import "errors"

// Sentinel errors for the pool's externally reachable operations. Each
// distinct failure condition gets its own error so callers and operators
// can tell misuse classes apart.
var (
	// Authorization.
	ErrUnauthorized = errors.New("pool: caller is not the router")
	ErrNotFactory   = errors.New("pool: caller is not the factory")

	// Feature gates.
	ErrTradeDisabled    = errors.New("pool: trading disabled")
	ErrDepositDisabled  = errors.New("pool: deposits disabled")
	ErrWithdrawDisabled = errors.New("pool: withdrawals disabled")

	// Concurrency.
	ErrReentrantCall = errors.New("pool: reentrant call")

	// Invariant violations.
	ErrInsufficientLiquidity  = errors.New("pool: insufficient liquidity")
	ErrInsufficientReserve    = errors.New("pool: redemption exceeds reserve")
	ErrInsufficientSwapAmount = errors.New("pool: swap amount not positive")

	// Topology.
	ErrSelfSwap      = errors.New("pool: cannot swap with itself")
	ErrNoSiblingPool = errors.New("pool: no pool for source asset")

	// Protocol state.
	ErrSettlementPending = errors.New("pool: settlement already pending for sender")
)
