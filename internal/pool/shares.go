package pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// shareLedger is the pool's proportional-claim accounting: total supply
// plus per-holder balances. Approval bookkeeping is out of scope; the
// ledger supports just enough transfer for the deposit-shares-then-burn
// pattern.
type shareLedger struct {
	supply   *big.Int
	balances map[common.Address]*big.Int
}

func newShareLedger() *shareLedger {
	return &shareLedger{
		supply:   new(big.Int),
		balances: make(map[common.Address]*big.Int),
	}
}

func (s *shareLedger) balanceOf(holder common.Address) *big.Int {
	bal, ok := s.balances[holder]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

func (s *shareLedger) mint(holder common.Address, amount *big.Int) {
	bal, ok := s.balances[holder]
	if !ok {
		bal = new(big.Int)
		s.balances[holder] = bal
	}
	bal.Add(bal, amount)
	s.supply.Add(s.supply, amount)
}

func (s *shareLedger) burn(holder common.Address, amount *big.Int) error {
	bal, ok := s.balances[holder]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("burn exceeds share balance")
	}
	bal.Sub(bal, amount)
	s.supply.Sub(s.supply, amount)
	return nil
}

func (s *shareLedger) transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid share amount")
	}
	bal, ok := s.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("transfer exceeds share balance")
	}
	bal.Sub(bal, amount)

	dest, ok := s.balances[to]
	if !ok {
		dest = new(big.Int)
		s.balances[to] = dest
	}
	dest.Add(dest, amount)
	return nil
}

// ShareSupply returns the total share supply.
func (p *Pool) ShareSupply() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.shares.supply)
}

// ShareBalanceOf returns holder's share balance.
func (p *Pool) ShareBalanceOf(holder common.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.shares.balanceOf(holder)
}

// TransferShares moves shares between holders. Standard fungible-claim
// transfer; used by the router to place shares in the pool before Burn.
func (p *Pool) TransferShares(from, to common.Address, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shares.transfer(from, to, amount)
}
