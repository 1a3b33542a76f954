package pool

import (
	"errors"
	"math/big"
	"testing"
)

func TestMintBootstrap(t *testing.T) {
	w := newWorld(t)

	shares := seedLiquidity(t, w.poolA, w.assetX, 1000)
	if shares.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("bootstrap shares = %s, want 1000", shares)
	}
	if got := w.poolA.TargetAmount(); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("target = %s, want 1000", got)
	}
	if got := w.poolA.ReserveBalance(); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("reserve = %s, want 1000", got)
	}
	if got := w.poolA.ShareBalanceOf(lpAddr); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("lp shares = %s, want 1000", got)
	}
}

func TestMintBootstrapCarriesTarget(t *testing.T) {
	w := newWorld(t)

	// A drained pool keeps a nonzero target from a prior epoch; the
	// first minter of the new epoch absorbs it.
	w.poolA.targetAmount = big.NewInt(500)

	w.assetX.Mint(poolAAddr, big.NewInt(1000))
	shares, err := w.poolA.Mint(routerAddr, lpAddr)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if shares.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("shares = %s, want 1500", shares)
	}
}

func TestMintProportional(t *testing.T) {
	w := newWorld(t)
	seedLiquidity(t, w.poolA, w.assetX, 1000)

	// Second deposit of 500 against target 1000 and supply 1000 mints
	// 500 shares.
	w.assetX.Mint(poolAAddr, big.NewInt(500))
	shares, err := w.poolA.Mint(routerAddr, traderAddr)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if shares.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("shares = %s, want 500", shares)
	}
	if got := w.poolA.ShareSupply(); got.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("supply = %s, want 1500", got)
	}
	if got := w.poolA.TargetAmount(); got.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("target = %s, want 1500", got)
	}
}

func TestMintNothingDeposited(t *testing.T) {
	w := newWorld(t)

	_, err := w.poolA.Mint(routerAddr, lpAddr)
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestMintRequiresRouter(t *testing.T) {
	w := newWorld(t)
	w.assetX.Mint(poolAAddr, big.NewInt(1000))

	_, err := w.poolA.Mint(traderAddr, lpAddr)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMintDepositGate(t *testing.T) {
	w := newWorld(t)
	if err := w.poolA.SetDepositEnabled(factoryAddr, false); err != nil {
		t.Fatalf("disable deposits: %v", err)
	}

	w.assetX.Mint(poolAAddr, big.NewInt(1000))
	_, err := w.poolA.Mint(routerAddr, lpAddr)
	if !errors.Is(err, ErrDepositDisabled) {
		t.Fatalf("expected ErrDepositDisabled, got %v", err)
	}
}

func TestBurnRoundTrip(t *testing.T) {
	w := newWorld(t)
	shares := seedLiquidity(t, w.poolA, w.assetX, 1000)

	// Burn all shares straight back: the minter gets exactly the
	// deposit out and the pool returns to empty.
	if err := w.poolA.TransferShares(lpAddr, poolAAddr, shares); err != nil {
		t.Fatalf("move shares: %v", err)
	}
	amount, err := w.poolA.Burn(routerAddr, lpAddr)
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if amount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("redeemed = %s, want 1000", amount)
	}
	if got := w.assetX.BalanceOf(lpAddr); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("lp balance = %s, want 1000", got)
	}
	if got := w.poolA.ShareSupply(); got.Sign() != 0 {
		t.Fatalf("supply = %s, want 0", got)
	}
	if got := w.poolA.TargetAmount(); got.Sign() != 0 {
		t.Fatalf("target = %s, want 0", got)
	}
}

func TestBurnProportional(t *testing.T) {
	w := newWorld(t)

	// target=10000, supply=5000, pool holds 1000 shares:
	// redemption = 1000 * 10000 / 5000 = 2000.
	w.assetX.Mint(poolAAddr, big.NewInt(10000))
	w.poolA.reserveBalance = big.NewInt(10000)
	w.poolA.targetAmount = big.NewInt(10000)
	w.poolA.shares.mint(lpAddr, big.NewInt(4000))
	w.poolA.shares.mint(poolAAddr, big.NewInt(1000))

	amount, err := w.poolA.Burn(routerAddr, lpAddr)
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if amount.Cmp(big.NewInt(2000)) != 0 {
		t.Fatalf("redeemed = %s, want 2000", amount)
	}
	if got := w.poolA.ReserveBalance(); got.Cmp(big.NewInt(8000)) != 0 {
		t.Fatalf("reserve = %s, want 8000", got)
	}
	if got := w.poolA.TargetAmount(); got.Cmp(big.NewInt(8000)) != 0 {
		t.Fatalf("target = %s, want 8000", got)
	}
}

func TestBurnWithoutHeldShares(t *testing.T) {
	w := newWorld(t)
	seedLiquidity(t, w.poolA, w.assetX, 1000)

	_, err := w.poolA.Burn(routerAddr, lpAddr)
	if !errors.Is(err, ErrInsufficientLiquidity) {
		t.Fatalf("expected ErrInsufficientLiquidity, got %v", err)
	}
}

func TestBurnExceedsReserve(t *testing.T) {
	w := newWorld(t)
	shares := seedLiquidity(t, w.poolA, w.assetX, 1000)

	// Simulate reserve drained below the redemption value by an
	// outstanding escrow.
	w.poolA.reserveBalance = big.NewInt(400)

	if err := w.poolA.TransferShares(lpAddr, poolAAddr, shares); err != nil {
		t.Fatalf("move shares: %v", err)
	}
	_, err := w.poolA.Burn(routerAddr, lpAddr)
	if !errors.Is(err, ErrInsufficientReserve) {
		t.Fatalf("expected ErrInsufficientReserve, got %v", err)
	}
}

func TestBurnWithdrawGate(t *testing.T) {
	w := newWorld(t)
	shares := seedLiquidity(t, w.poolA, w.assetX, 1000)
	if err := w.poolA.TransferShares(lpAddr, poolAAddr, shares); err != nil {
		t.Fatalf("move shares: %v", err)
	}

	if err := w.poolA.SetWithdrawEnabled(factoryAddr, false); err != nil {
		t.Fatalf("disable withdrawals: %v", err)
	}
	_, err := w.poolA.Burn(routerAddr, lpAddr)
	if !errors.Is(err, ErrWithdrawDisabled) {
		t.Fatalf("expected ErrWithdrawDisabled, got %v", err)
	}
}

func TestLockReleasedOnFailure(t *testing.T) {
	w := newWorld(t)

	// A failing mint must leave the pool unlocked so the next call can
	// proceed.
	if _, err := w.poolA.Mint(routerAddr, lpAddr); err == nil {
		t.Fatalf("expected mint failure")
	}
	if w.poolA.locked.Load() {
		t.Fatalf("lock still held after failed mint")
	}

	// And a subsequent valid call succeeds.
	seedLiquidity(t, w.poolA, w.assetX, 1000)
}

func TestShareProportionality(t *testing.T) {
	w := newWorld(t)

	// Two providers deposit 3000 and 1000; their share of supply must
	// match their share of net deposits, and target equals the sum.
	w.assetX.Mint(poolAAddr, big.NewInt(3000))
	sharesA, err := w.poolA.Mint(routerAddr, lpAddr)
	if err != nil {
		t.Fatalf("mint lp: %v", err)
	}
	w.assetX.Mint(poolAAddr, big.NewInt(1000))
	sharesB, err := w.poolA.Mint(routerAddr, traderAddr)
	if err != nil {
		t.Fatalf("mint trader: %v", err)
	}

	supply := w.poolA.ShareSupply()
	if supply.Cmp(new(big.Int).Add(sharesA, sharesB)) != 0 {
		t.Fatalf("supply %s != minted sum", supply)
	}
	if got := w.poolA.TargetAmount(); got.Cmp(big.NewInt(4000)) != 0 {
		t.Fatalf("target = %s, want 4000", got)
	}

	// 3:1 deposit ratio means a 3:1 share ratio.
	ratio := new(big.Int).Quo(sharesA, sharesB)
	if ratio.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("share ratio = %s, want 3", ratio)
	}
}
