package token

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	assetAddr = common.HexToAddress("0x0000000000000000000000000000000000000a55")
	alice     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob       = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestLedgerTransfer(t *testing.T) {
	ledger := NewLedger(assetAddr, 18)
	ledger.Mint(alice, big.NewInt(1000))

	if err := ledger.Transfer(alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if got := ledger.BalanceOf(alice); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("alice balance = %s, want 600", got)
	}
	if got := ledger.BalanceOf(bob); got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("bob balance = %s, want 400", got)
	}
}

func TestLedgerTransferInsufficient(t *testing.T) {
	ledger := NewLedger(assetAddr, 18)
	ledger.Mint(alice, big.NewInt(10))

	if err := ledger.Transfer(alice, bob, big.NewInt(11)); err == nil {
		t.Fatalf("expected error for insufficient balance")
	}
	if got := ledger.BalanceOf(alice); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("failed transfer mutated balance: %s", got)
	}
}

// reportingAsset wraps a Ledger and reports success with a boolean.
type reportingAsset struct {
	*Ledger
	report bool
	err    error
}

func (r *reportingAsset) TransferReported(from, to common.Address, amount *big.Int) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if !r.report {
		return false, nil
	}
	return true, r.Ledger.Transfer(from, to, amount)
}

func TestSafeTransferPlainAsset(t *testing.T) {
	ledger := NewLedger(assetAddr, 18)
	ledger.Mint(alice, big.NewInt(100))

	if err := SafeTransfer(ledger, alice, bob, big.NewInt(100)); err != nil {
		t.Fatalf("safe transfer failed: %v", err)
	}
	if got := ledger.BalanceOf(bob); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("bob balance = %s, want 100", got)
	}
}

func TestSafeTransferReportingAsset(t *testing.T) {
	ledger := NewLedger(assetAddr, 18)
	ledger.Mint(alice, big.NewInt(100))

	asset := &reportingAsset{Ledger: ledger, report: true}
	if err := SafeTransfer(asset, alice, bob, big.NewInt(60)); err != nil {
		t.Fatalf("safe transfer failed: %v", err)
	}
	if got := ledger.BalanceOf(bob); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("bob balance = %s, want 60", got)
	}
}

func TestSafeTransferFalseReport(t *testing.T) {
	ledger := NewLedger(assetAddr, 18)
	ledger.Mint(alice, big.NewInt(100))

	asset := &reportingAsset{Ledger: ledger, report: false}
	err := SafeTransfer(asset, alice, bob, big.NewInt(60))
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
}

func TestSafeTransferAssetError(t *testing.T) {
	ledger := NewLedger(assetAddr, 18)
	asset := &reportingAsset{Ledger: ledger, err: fmt.Errorf("paused")}

	err := SafeTransfer(asset, alice, bob, big.NewInt(1))
	if !errors.Is(err, ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}
}
