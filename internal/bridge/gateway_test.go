package bridge

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xswap/router/pkg/types"
)

const (
	tokenUSDC types.Token = "0xusdc"
	tokenWETH types.Token = "0xweth"
)

func testGateway() *MemoryGateway {
	g := NewMemoryGateway(func() int64 { return 1000 })
	g.AddRoute(Route{
		TokenIn:       tokenUSDC,
		TokenOut:      tokenWETH,
		DestChain:     42161,
		FeeBps:        30,
		FlatFee:       uint256.NewInt(5),
		MinAmount:     uint256.NewInt(100),
		MaxAmount:     uint256.NewInt(1000000),
		EstimatedTime: 420,
		QuoteTTL:      60,
	})
	return g
}

func TestGateway_GetQuote(t *testing.T) {
	g := testGateway()

	q, err := g.GetQuote(tokenUSDC, tokenWETH, uint256.NewInt(10000), 42161)
	require.NoError(t, err)

	// fee = 10000 * 30/10000 + 5 = 35
	assert.Equal(t, uint256.NewInt(35), q.BridgeFee)
	assert.Equal(t, uint256.NewInt(9965), q.OutputAmount)
	assert.Equal(t, uint32(420), q.EstimatedTime)
	assert.Equal(t, int64(1060), q.ValidUntil)
	assert.NotEmpty(t, q.BridgeData)
}

func TestGateway_GetQuoteNoRoute(t *testing.T) {
	g := testGateway()

	_, err := g.GetQuote(tokenUSDC, tokenWETH, uint256.NewInt(10000), 10)
	assert.ErrorIs(t, err, types.ErrNoRoute)

	_, err = g.GetQuote(tokenWETH, tokenUSDC, uint256.NewInt(10000), 42161)
	assert.ErrorIs(t, err, types.ErrNoRoute)
}

func TestGateway_BridgeLifecycle(t *testing.T) {
	g := testGateway()

	q, err := g.GetQuote(tokenUSDC, tokenWETH, uint256.NewInt(10000), 42161)
	require.NoError(t, err)

	txID, err := g.Bridge(tokenUSDC, uint256.NewInt(10000), 42161, "0xrecipient", q.BridgeData, nil)
	require.NoError(t, err)

	tx, ok := g.Transaction(txID)
	require.True(t, ok)
	assert.Equal(t, TxCompleted, tx.Status)

	// Completed transactions cannot be cancelled.
	assert.Error(t, g.CancelBridge(txID))

	// Failed transactions can be retried.
	g.MarkFailed(txID)
	require.NoError(t, g.RetryBridge(txID))
	tx, _ = g.Transaction(txID)
	assert.Equal(t, TxCompleted, tx.Status)
	assert.Equal(t, 2, tx.Attempts)

	assert.ErrorIs(t, g.RetryBridge("nope"), types.ErrUnknownTransaction)
}

func TestGateway_BridgeAmountLimits(t *testing.T) {
	g := testGateway()
	q, err := g.GetQuote(tokenUSDC, tokenWETH, uint256.NewInt(10000), 42161)
	require.NoError(t, err)

	_, err = g.Bridge(tokenUSDC, uint256.NewInt(50), 42161, "0xr", q.BridgeData, nil)
	assert.ErrorIs(t, err, types.ErrAmountOutOfRange)

	_, err = g.Bridge(tokenUSDC, uint256.NewInt(2000000), 42161, "0xr", q.BridgeData, nil)
	assert.ErrorIs(t, err, types.ErrAmountOutOfRange)
}

func TestGateway_ExpiredQuoteRejected(t *testing.T) {
	clock := int64(1000)
	g := NewMemoryGateway(func() int64 { return clock })
	g.AddRoute(Route{
		TokenIn:       tokenUSDC,
		TokenOut:      tokenWETH,
		DestChain:     42161,
		EstimatedTime: 420,
		QuoteTTL:      60,
	})

	q, err := g.GetQuote(tokenUSDC, tokenWETH, uint256.NewInt(10000), 42161)
	require.NoError(t, err)

	// Still valid exactly at the deadline.
	clock = 1060
	_, err = g.Bridge(tokenUSDC, uint256.NewInt(10000), 42161, "0xr", q.BridgeData, nil)
	assert.NoError(t, err)

	clock = 1061
	_, err = g.Bridge(tokenUSDC, uint256.NewInt(10000), 42161, "0xr", q.BridgeData, nil)
	assert.ErrorIs(t, err, types.ErrQuoteExpired)
}

func TestGateway_FailNextBridge(t *testing.T) {
	g := testGateway()
	q, err := g.GetQuote(tokenUSDC, tokenWETH, uint256.NewInt(10000), 42161)
	require.NoError(t, err)

	g.FailNextBridge()
	_, err = g.Bridge(tokenUSDC, uint256.NewInt(10000), 42161, "0xr", q.BridgeData, nil)
	assert.ErrorIs(t, err, types.ErrBridgeFailed)

	// One-shot: the next call succeeds.
	_, err = g.Bridge(tokenUSDC, uint256.NewInt(10000), 42161, "0xr", q.BridgeData, nil)
	assert.NoError(t, err)
}

func TestGateway_IsChainSupported(t *testing.T) {
	g := testGateway()
	assert.True(t, g.IsChainSupported(42161))
	assert.False(t, g.IsChainSupported(1))
}
