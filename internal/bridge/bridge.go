// Package bridge defines the cross-chain bridge collaborator. The engine only
// ever sees complete results or errors; a quote failure removes the venue from
// contention, a bridge-call failure triggers compensation upstream.
package bridge

import (
	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// Bridge is the consumed bridging collaborator contract.
type Bridge interface {
	// GetQuote estimates output, fee, and time for a route. Fails with
	// ErrNoRoute when the route is unsupported.
	GetQuote(tokenIn, tokenOut types.Token, amountIn *uint256.Int, destChain types.ChainID) (types.BridgeQuote, error)

	// Bridge initiates a transfer and returns a transaction id. Fails on an
	// invalid route, an amount outside route limits, or insufficient native
	// payment. Retries are explicit and caller-invoked, never automatic.
	Bridge(tokenIn types.Token, amountIn *uint256.Int, destChain types.ChainID, recipient types.Address, bridgeData []byte, nativePayment *uint256.Int) (string, error)

	// RetryBridge re-submits a previously failed transaction.
	RetryBridge(txID string) error

	// CancelBridge abandons a pending or failed transaction.
	CancelBridge(txID string) error

	// IsChainSupported reports whether a destination chain is reachable.
	IsChainSupported(chain types.ChainID) bool
}
