package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// priceDecimals is the fixed-point precision all prices are normalized to.
const priceDecimals = 18

var (
	// ErrNonPositivePrice is returned when a feed reports a zero or
	// negative answer.
	ErrNonPositivePrice = errors.New("oracle: non-positive price")

	// ErrDecimalsTooLarge is returned for feeds whose native precision
	// exceeds the normalized precision.
	ErrDecimalsTooLarge = errors.New("oracle: feed decimals exceed 18")
)

// RoundData is the latest reading reported by a price feed.
type RoundData struct {
	RoundID   uint64
	Answer    *big.Int
	UpdatedAt time.Time
}

// Feed is the external price feed surface the pool consumes.
type Feed interface {
	LatestRoundData() (RoundData, error)
	Decimals() uint8
}

// Normalize rescales a raw feed answer from its native precision to an
// 18-decimal fixed-point value. Feeds reporting more than 18 decimals
// are rejected.
func Normalize(answer *big.Int, decimals uint8) (*big.Int, error) {
	if decimals > priceDecimals {
		return nil, fmt.Errorf("%w: got %d", ErrDecimalsTooLarge, decimals)
	}
	if answer == nil || answer.Sign() <= 0 {
		return nil, ErrNonPositivePrice
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(priceDecimals-decimals)), nil)
	return new(big.Int).Mul(answer, scale), nil
}

// StaticFeed is an in-memory feed with a settable answer, used by
// scenarios and tests.
type StaticFeed struct {
	decimals uint8

	mu      sync.RWMutex
	roundID uint64
	answer  *big.Int
	err     error
	updated time.Time
}

// NewStaticFeed creates a feed reporting answer at the given precision.
func NewStaticFeed(answer *big.Int, decimals uint8) *StaticFeed {
	return &StaticFeed{
		decimals: decimals,
		roundID:  1,
		answer:   new(big.Int).Set(answer),
		updated:  time.Now().UTC(),
	}
}

func (f *StaticFeed) Decimals() uint8 {
	return f.decimals
}

// LatestRoundData returns the current answer or the configured failure.
func (f *StaticFeed) LatestRoundData() (RoundData, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.err != nil {
		return RoundData{}, f.err
	}
	return RoundData{
		RoundID:   f.roundID,
		Answer:    new(big.Int).Set(f.answer),
		UpdatedAt: f.updated,
	}, nil
}

// SetAnswer advances the feed to a new round with the given answer.
func (f *StaticFeed) SetAnswer(answer *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.roundID++
	f.answer = new(big.Int).Set(answer)
	f.err = nil
	f.updated = time.Now().UTC()
}

// Fail makes subsequent reads return err, simulating a broken feed.
func (f *StaticFeed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}
