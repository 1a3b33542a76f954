package pricing

import (
	"errors"
	"fmt"
	"math/big"

	"crosspool/internal/oracle"
)

// bpsDenominator scales the liquidity parameter, which is expressed in
// basis points of damping per unit of trade size relative to the target.
var bpsDenominator = big.NewInt(10000)

// oneE18 is the fixed-point unit shared with normalized oracle prices.
var oneE18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ErrEmptyPool is returned when a quote is requested against a pool with
// no target backing.
var ErrEmptyPool = errors.New("pricing: pool has no target amount")

// State is the point-in-time pool state a quote is evaluated against.
type State struct {
	TargetAmount       *big.Int
	ReserveBalance     *big.Int
	LiquidityParameter *big.Int
}

// Clone returns a deep copy of the state, for snapshotting.
func (s State) Clone() State {
	clone := State{}
	if s.TargetAmount != nil {
		clone.TargetAmount = new(big.Int).Set(s.TargetAmount)
	}
	if s.ReserveBalance != nil {
		clone.ReserveBalance = new(big.Int).Set(s.ReserveBalance)
	}
	if s.LiquidityParameter != nil {
		clone.LiquidityParameter = new(big.Int).Set(s.LiquidityParameter)
	}
	return clone
}

// Policy converts between input amounts and destination values. The exact
// curve is a replaceable detail; implementations must be monotonic in
// their input and anchored near the oracle price for small trades.
type Policy interface {
	// QuoteOut converts a destination value into an amount of the pool's
	// base asset.
	QuoteOut(value *big.Int, state State) (*big.Int, error)

	// QuoteIn converts an amount of the pool's base asset into a
	// destination value.
	QuoteIn(amount *big.Int, state State) (*big.Int, error)
}

// Anchored is a reference policy: quotes at the feed's normalized price,
// damped by trade size relative to the pool's target amount. The damping
// keeps quotes monotonic and bounded while staying at the oracle price
// for small trades.
type Anchored struct {
	feed oracle.Feed
}

// NewAnchored creates a policy anchored to the given price feed. The
// feed's answer is read as the base asset's price in the common value
// unit, normalized to 18 decimals.
func NewAnchored(feed oracle.Feed) *Anchored {
	return &Anchored{feed: feed}
}

func (a *Anchored) QuoteOut(value *big.Int, state State) (*big.Int, error) {
	if value == nil || value.Sign() <= 0 {
		return new(big.Int), nil
	}

	price, err := a.currentPrice()
	if err != nil {
		return nil, err
	}

	// raw = value / price, in base asset units.
	raw := new(big.Int).Mul(value, oneE18)
	raw.Quo(raw, price)

	return damp(raw, raw, state)
}

func (a *Anchored) QuoteIn(amount *big.Int, state State) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return new(big.Int), nil
	}

	price, err := a.currentPrice()
	if err != nil {
		return nil, err
	}

	// raw = amount * price, in the common value unit.
	raw := new(big.Int).Mul(amount, price)
	raw.Quo(raw, oneE18)

	return damp(raw, amount, state)
}

func (a *Anchored) currentPrice() (*big.Int, error) {
	round, err := a.feed.LatestRoundData()
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return oracle.Normalize(round.Answer, a.feed.Decimals())
}

// damp scales raw by target / (target + k*size/10000), where size is the
// trade size in base asset units and k the liquidity parameter in basis
// points. k == 0 disables damping.
func damp(raw, size *big.Int, state State) (*big.Int, error) {
	if state.TargetAmount == nil || state.TargetAmount.Sign() <= 0 {
		return nil, ErrEmptyPool
	}

	k := state.LiquidityParameter
	if k == nil || k.Sign() == 0 {
		return new(big.Int).Set(raw), nil
	}

	scaledTarget := new(big.Int).Mul(state.TargetAmount, bpsDenominator)
	denom := new(big.Int).Mul(k, size)
	denom.Add(denom, scaledTarget)

	out := new(big.Int).Mul(raw, scaledTarget)
	out.Quo(out, denom)
	return out, nil
}
