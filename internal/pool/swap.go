package pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"crosspool/internal/model"
	"crosspool/internal/pricing"
	"crosspool/internal/settlement"
	"crosspool/internal/token"
)

// SwapOut is the outbound leg of a cross-pool swap, executed on the pool
// holding the asset the user wants out. It quotes the escrow ceiling,
// snapshots both pools, moves the quoted amount into escrow, registers
// the pending settlement, and pre-debits the reserve so the escrowed
// funds cannot back a second swap while settlement is unresolved.
// Router-only, trade-gated. Returns the escrowed maximum.
func (p *Pool) SwapOut(caller, sender, sourceAsset common.Address, amountIn, value *big.Int, receiver common.Address) (*big.Int, error) {
	if err := p.acquire(); err != nil {
		return nil, err
	}
	defer p.release()

	if err := p.requireRouter(caller); err != nil {
		return nil, err
	}
	if err := p.requireTradeEnabled(); err != nil {
		return nil, err
	}

	if sourceAsset == p.base.Address() {
		return nil, ErrSelfSwap
	}
	sibling, ok := p.registry.ResolvePool(sourceAsset)
	if !ok {
		return nil, ErrNoSiblingPool
	}
	if p.settlement.HasPending(sender, p.address) {
		return nil, ErrSettlementPending
	}

	destState := p.State()
	maxAmount, err := p.policy.QuoteOut(value, destState)
	if err != nil {
		return nil, fmt.Errorf("quote out: %w", err)
	}
	if maxAmount.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	if maxAmount.Cmp(destState.ReserveBalance) > 0 {
		// The pre-debit below must never drive the reserve negative.
		return nil, ErrInsufficientReserve
	}

	rec := settlement.Record{
		Sender:      sender,
		SourcePool:  sibling.Address(),
		AmountIn:    new(big.Int).Set(amountIn),
		SourceState: sibling.State(),
		DestPool:    p.address,
		MaxAmount:   new(big.Int).Set(maxAmount),
		DestState:   destState,
		Receiver:    receiver,
		Deadline:    p.clock().Add(p.settlement.Window()),
	}

	escrow := p.registry.SettlementAddress()
	if err := token.SafeTransfer(p.base, p.address, escrow, maxAmount); err != nil {
		return nil, err
	}
	if err := p.settlement.Register(rec); err != nil {
		return nil, fmt.Errorf("register settlement: %w", err)
	}

	p.mu.Lock()
	p.reserveBalance.Sub(p.reserveBalance, maxAmount)
	p.mu.Unlock()

	p.logger.Info("swap outbound escrowed",
		zap.String("pool", p.address.Hex()),
		zap.String("sender", sender.Hex()),
		zap.String("source_pool", rec.SourcePool.Hex()),
		zap.String("amount_in", amountIn.String()),
		zap.String("max_amount", maxAmount.String()),
		zap.Time("deadline", rec.Deadline),
	)
	p.emit(model.PoolEvent{
		Type:         model.EventSwapOut,
		Actor:        sender.Hex(),
		Counterparty: receiver.Hex(),
		Asset:        p.base.Address().Hex(),
		Amount:       maxAmount.String(),
		Value:        value.String(),
	})

	return maxAmount, nil
}

// SwapIn is the inbound leg, executed on the source pool after the
// settlement process has cleared the pending record. The received amount
// is inferred by diffing the observed balance against the recorded
// reserve; the recorded reserve then absorbs the delta. Router-only,
// trade-gated. Returns the received amount and its destination value.
func (p *Pool) SwapIn(caller, sender common.Address) (*big.Int, *big.Int, error) {
	if err := p.acquire(); err != nil {
		return nil, nil, err
	}
	defer p.release()

	if err := p.requireRouter(caller); err != nil {
		return nil, nil, err
	}
	if err := p.requireTradeEnabled(); err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	observed := p.base.BalanceOf(p.address)
	amount := new(big.Int).Sub(observed, p.reserveBalance)
	if amount.Sign() <= 0 {
		return nil, nil, ErrInsufficientSwapAmount
	}

	if p.settlement.HasPending(sender, p.address) {
		return nil, nil, ErrSettlementPending
	}

	state := pricing.State{
		TargetAmount:       new(big.Int).Set(p.targetAmount),
		ReserveBalance:     new(big.Int).Set(p.reserveBalance),
		LiquidityParameter: new(big.Int).Set(p.liquidityParameter),
	}
	value, err := p.policy.QuoteIn(amount, state)
	if err != nil {
		return nil, nil, fmt.Errorf("quote in: %w", err)
	}

	p.reserveBalance.Set(observed)

	p.logger.Info("swap inbound credited",
		zap.String("pool", p.address.Hex()),
		zap.String("sender", sender.Hex()),
		zap.String("amount", amount.String()),
		zap.String("value", value.String()),
	)
	p.emit(model.PoolEvent{
		Type:   model.EventSwapIn,
		Actor:  sender.Hex(),
		Asset:  p.base.Address().Hex(),
		Amount: amount.String(),
		Value:  value.String(),
	})

	return amount, value, nil
}
