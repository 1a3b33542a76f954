package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/model"
	"crosspool/internal/token"
)

// Mint issues shares against reserve asset the caller has already
// transferred to the pool. The deposited amount is inferred by diffing
// the observed balance against the recorded reserve, so a caller cannot
// claim more than actually arrived. Router-only, deposit-gated.
func (p *Pool) Mint(caller, recipient common.Address) (*big.Int, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	if err := p.requireRouter(caller); err != nil {
		return nil, err
	}
	if err := p.requireDepositEnabled(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	observed := p.base.BalanceOf(p.address)
	deposited := new(big.Int).Sub(observed, p.reserveBalance)

	minted := new(big.Int)
	if p.shares.supply.Sign() == 0 {
		// Bootstrap: a fresh or fully drained pool may carry a nonzero
		// target from a prior epoch; the first minter absorbs it.
		minted.Add(deposited, p.targetAmount)
	} else {
		if p.targetAmount.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}
		minted.Mul(deposited, p.shares.supply)
		minted.Quo(minted, p.targetAmount)
	}

	if minted.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}

	p.shares.mint(recipient, minted)
	p.reserveBalance.Add(p.reserveBalance, deposited)
	p.targetAmount.Add(p.targetAmount, deposited)

	p.logger.Info("liquidity minted",
		zap.String("pool", p.address.Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("deposited", deposited.String()),
		zap.String("shares", minted.String()),
	)
	p.emit(model.PoolEvent{
		Type:   model.EventLiquidityMinted,
		Actor:  recipient.Hex(),
		Asset:  p.base.Address().Hex(),
		Amount: deposited.String(),
		Shares: minted.String(),
	})

	return minted, nil
}

// Burn redeems the shares held by the pool itself (transferred in by the
// caller beforehand, mirroring the deposit pattern) for a proportional
// slice of the reserve. Router-only, withdraw-gated.
func (p *Pool) Burn(caller, recipient common.Address) (*big.Int, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	if err := p.requireRouter(caller); err != nil {
		return nil, err
	}
	if err := p.requireWithdrawEnabled(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held := p.shares.balanceOf(p.address)
	if held.Sign() <= 0 || p.shares.supply.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	amount := new(big.Int).Mul(held, p.targetAmount)
	amount.Quo(amount, p.shares.supply)
	if amount.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	if amount.Cmp(p.reserveBalance) > 0 {
		return nil, ErrInsufficientReserve
	}

	// The transfer runs before any bookkeeping so a failed transfer
	// leaves the pool untouched.
	if err := token.SafeTransfer(p.base, p.address, recipient, amount); err != nil {
		return nil, err
	}

	if err := p.shares.burn(p.address, held); err != nil {
		return nil, err
	}
	p.reserveBalance.Sub(p.reserveBalance, amount)
	p.targetAmount.Sub(p.targetAmount, amount)

	p.logger.Info("liquidity burned",
		zap.String("pool", p.address.Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("amount", amount.String()),
		zap.String("shares", held.String()),
	)
	p.emit(model.PoolEvent{
		Type:         model.EventLiquidityBurned,
		Actor:        caller.Hex(),
		Counterparty: recipient.Hex(),
		Asset:        p.base.Address().Hex(),
		Amount:       amount.String(),
		Shares:       held.String(),
	})

	return amount, nil
}
