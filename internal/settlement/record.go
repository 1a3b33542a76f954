package settlement

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"crosspool/internal/pricing"
)

// Record is a pending settlement: an outbound swap leg awaiting
// resolution, keyed by (sender, destination pool). The pool state fields
// are point-in-time snapshots taken before the swap; they can go stale
// before resolution, which is the settlement process's concern.
type Record struct {
	Sender common.Address

	SourcePool  common.Address
	AmountIn    *big.Int
	SourceState pricing.State

	DestPool  common.Address
	MaxAmount *big.Int
	DestState pricing.State

	Receiver common.Address
	Deadline time.Time
}
