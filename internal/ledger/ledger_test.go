package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xswap/router/pkg/types"
)

func TestMemoryLedger_MintAndTransfer(t *testing.T) {
	l := NewMemoryLedger()

	l.Mint("0xusdc", "alice", uint256.NewInt(1000))
	l.Mint("0xusdc", "alice", uint256.NewInt(500))
	assert.Equal(t, uint256.NewInt(1500), l.BalanceOf("0xusdc", "alice"))

	require.NoError(t, l.Transfer("0xusdc", "alice", "bob", uint256.NewInt(600)))
	assert.Equal(t, uint256.NewInt(900), l.BalanceOf("0xusdc", "alice"))
	assert.Equal(t, uint256.NewInt(600), l.BalanceOf("0xusdc", "bob"))
}

func TestMemoryLedger_InsufficientBalance(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("0xusdc", "alice", uint256.NewInt(10))

	err := l.Transfer("0xusdc", "alice", "bob", uint256.NewInt(11))
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	assert.Equal(t, uint256.NewInt(10), l.BalanceOf("0xusdc", "alice"))

	err = l.Transfer("0xusdc", "carol", "bob", uint256.NewInt(1))
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func TestMemoryLedger_ZeroTransferIsNoop(t *testing.T) {
	l := NewMemoryLedger()
	assert.NoError(t, l.Transfer("0xusdc", "alice", "bob", uint256.NewInt(0)))
	assert.NoError(t, l.Transfer("0xusdc", "alice", "bob", nil))
}

func TestMemoryLedger_BalancesAreIsolatedCopies(t *testing.T) {
	l := NewMemoryLedger()
	l.Mint("0xusdc", "alice", uint256.NewInt(100))

	b := l.BalanceOf("0xusdc", "alice")
	b.SetUint64(0)
	assert.Equal(t, uint256.NewInt(100), l.BalanceOf("0xusdc", "alice"))
}
