package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
)

func TestNormalizeRescales(t *testing.T) {
	// A feed reporting 3.0 with 8 decimals normalizes to 3e18.
	got, err := Normalize(big.NewInt(300000000), 8)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	want, _ := new(big.Int).SetString("3000000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Fatalf("normalized price = %s, want %s", got, want)
	}
}

func TestNormalizeIdentityAt18(t *testing.T) {
	answer, _ := new(big.Int).SetString("1234500000000000000", 10)
	got, err := Normalize(answer, 18)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if got.Cmp(answer) != 0 {
		t.Fatalf("normalized price = %s, want %s", got, answer)
	}
}

func TestNormalizeRejectsNonPositive(t *testing.T) {
	if _, err := Normalize(big.NewInt(0), 8); !errors.Is(err, ErrNonPositivePrice) {
		t.Fatalf("expected ErrNonPositivePrice for zero, got %v", err)
	}
	if _, err := Normalize(big.NewInt(-1), 8); !errors.Is(err, ErrNonPositivePrice) {
		t.Fatalf("expected ErrNonPositivePrice for negative, got %v", err)
	}
}

func TestNormalizeRejectsLargeDecimals(t *testing.T) {
	if _, err := Normalize(big.NewInt(1), 19); !errors.Is(err, ErrDecimalsTooLarge) {
		t.Fatalf("expected ErrDecimalsTooLarge, got %v", err)
	}
}

func TestStaticFeedRounds(t *testing.T) {
	feed := NewStaticFeed(big.NewInt(100), 8)

	first, err := feed.LatestRoundData()
	if err != nil {
		t.Fatalf("latest round: %v", err)
	}

	feed.SetAnswer(big.NewInt(200))
	second, err := feed.LatestRoundData()
	if err != nil {
		t.Fatalf("latest round: %v", err)
	}

	if second.RoundID <= first.RoundID {
		t.Fatalf("round id did not advance: %d -> %d", first.RoundID, second.RoundID)
	}
	if second.Answer.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("answer = %s, want 200", second.Answer)
	}
}

func TestStaticFeedFailure(t *testing.T) {
	feed := NewStaticFeed(big.NewInt(100), 8)
	feedErr := fmt.Errorf("stale round")
	feed.Fail(feedErr)

	if _, err := feed.LatestRoundData(); !errors.Is(err, feedErr) {
		t.Fatalf("expected feed error to propagate, got %v", err)
	}
}
