package pool

import "github.com/ethereum/go-ethereum/common"

// Guard evaluation order is fixed: lock, then role, then feature gate.
// The order only decides which error fires first on a misuse; invariant
// correctness does not depend on it.

// acquire takes the reentrancy lock. A call arriving while the lock is
// held fails immediately rather than waiting.
func (p *Pool) acquire() error {
	if !p.locked.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

// release frees the reentrancy lock. Deferred on every guarded entry
// point so no exit path leaves the pool locked.
func (p *Pool) release() {
	p.locked.Store(false)
}

func (p *Pool) requireRouter(caller common.Address) error {
	if caller != p.registry.CurrentRouter() {
		return ErrUnauthorized
	}
	return nil
}

func (p *Pool) requireFactory(caller common.Address) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if caller != p.factory {
		return ErrNotFactory
	}
	return nil
}

func (p *Pool) requireTradeEnabled() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.tradeEnabled {
		return ErrTradeDisabled
	}
	return nil
}

func (p *Pool) requireDepositEnabled() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.depositEnabled {
		return ErrDepositDisabled
	}
	return nil
}

func (p *Pool) requireWithdrawEnabled() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.withdrawEnabled {
		return ErrWithdrawDisabled
	}
	return nil
}
