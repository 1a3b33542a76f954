package token

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is an in-memory fungible asset used to back scenarios and tests.
type Ledger struct {
	address  common.Address
	decimals uint8

	mu       sync.RWMutex
	balances map[common.Address]*big.Int
}

// NewLedger creates an empty in-memory asset.
func NewLedger(address common.Address, decimals uint8) *Ledger {
	return &Ledger{
		address:  address,
		decimals: decimals,
		balances: make(map[common.Address]*big.Int),
	}
}

func (l *Ledger) Address() common.Address {
	return l.address
}

func (l *Ledger) Decimals() uint8 {
	return l.decimals
}

// BalanceOf returns the current balance of owner.
func (l *Ledger) BalanceOf(owner common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bal, ok := l.balances[owner]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

// Mint credits newly issued units to owner. Used to seed scenarios.
func (l *Ledger) Mint(owner common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(owner, amount)
}

// Transfer moves amount from one owner to another.
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance: have %s, need %s", l.balanceString(from), amount)
	}

	bal.Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

func (l *Ledger) credit(owner common.Address, amount *big.Int) {
	bal, ok := l.balances[owner]
	if !ok {
		bal = new(big.Int)
		l.balances[owner] = bal
	}
	bal.Add(bal, amount)
}

func (l *Ledger) balanceString(owner common.Address) string {
	bal, ok := l.balances[owner]
	if !ok {
		return "0"
	}
	return bal.String()
}
