package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/model"
	"crosspool/internal/token"
)

// SetFactory re-points the factory, e.g. during a migration.
func (p *Pool) SetFactory(caller, factory common.Address) error {
	return p.adminSet(caller, func() {
		p.factory = factory
	})
}

// SetTradeEnabled toggles the trading gate.
func (p *Pool) SetTradeEnabled(caller common.Address, enabled bool) error {
	return p.adminSet(caller, func() {
		p.tradeEnabled = enabled
	})
}

// SetDepositEnabled toggles the deposit gate.
func (p *Pool) SetDepositEnabled(caller common.Address, enabled bool) error {
	return p.adminSet(caller, func() {
		p.depositEnabled = enabled
	})
}

// SetWithdrawEnabled toggles the withdraw gate.
func (p *Pool) SetWithdrawEnabled(caller common.Address, enabled bool) error {
	return p.adminSet(caller, func() {
		p.withdrawEnabled = enabled
	})
}

// SetLiquidityParameter updates the pricing curve shape parameter.
func (p *Pool) SetLiquidityParameter(caller common.Address, value *big.Int) error {
	return p.adminSet(caller, func() {
		if value == nil {
			p.liquidityParameter = new(big.Int)
			return
		}
		p.liquidityParameter = new(big.Int).Set(value)
	})
}

func (p *Pool) adminSet(caller common.Address, apply func()) error {
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	if err := p.requireFactory(caller); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	apply()
	return nil
}

// EmergencyWithdraw transfers any held asset to an arbitrary address
// with no ledger adjustment. Break-glass recovery for stuck or foreign
// assets; it deliberately bypasses the reserve invariants, so operators
// must only point it at genuinely extraneous balances. Factory-only.
func (p *Pool) EmergencyWithdraw(caller common.Address, asset token.Asset, amount *big.Int, to common.Address) error {
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	if err := p.requireFactory(caller); err != nil {
		return err
	}

	if err := token.SafeTransfer(asset, p.address, to, amount); err != nil {
		return err
	}

	p.logger.Warn("emergency withdrawal",
		zap.String("pool", p.address.Hex()),
		zap.String("asset", asset.Address().Hex()),
		zap.String("amount", amount.String()),
		zap.String("to", to.Hex()),
	)
	p.emit(model.PoolEvent{
		Type:         model.EventEmergencyWithdrawal,
		Actor:        caller.Hex(),
		Counterparty: to.Hex(),
		Asset:        asset.Address().Hex(),
		Amount:       amount.String(),
	})

	return nil
}
