// Package ledger expresses token custody for swap execution: transfers into
// the router vault, fee collection, refunds, and emergency withdrawal. It is
// the minimum custody surface the engine needs, not a token implementation.
package ledger

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// Ledger tracks token balances per owner.
type Ledger interface {
	BalanceOf(token types.Token, owner types.Address) *uint256.Int
	// Transfer moves amount between owners, failing with
	// ErrInsufficientBalance when the source cannot cover it.
	Transfer(token types.Token, from, to types.Address, amount *uint256.Int) error
	// Mint credits an owner out of thin air (tests and simulation seeding).
	Mint(token types.Token, to types.Address, amount *uint256.Int)
}

type balanceKey struct {
	token types.Token
	owner types.Address
}

// MemoryLedger is an in-process Ledger.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[balanceKey]*uint256.Int
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[balanceKey]*uint256.Int)}
}

func (l *MemoryLedger) BalanceOf(token types.Token, owner types.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.balances[balanceKey{token, owner}]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

func (l *MemoryLedger) Mint(token types.Token, to types.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{token, to}
	if b, ok := l.balances[key]; ok {
		b.Add(b, amount)
		return
	}
	l.balances[key] = amount.Clone()
}

func (l *MemoryLedger) Transfer(token types.Token, from, to types.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.balances[balanceKey{token, from}]
	if !ok || src.Lt(amount) {
		return fmt.Errorf("transfer %s from %s: %w", token, from, types.ErrInsufficientBalance)
	}
	src.Sub(src, amount)

	dstKey := balanceKey{token, to}
	if dst, ok := l.balances[dstKey]; ok {
		dst.Add(dst, amount)
	} else {
		l.balances[dstKey] = amount.Clone()
	}
	return nil
}
