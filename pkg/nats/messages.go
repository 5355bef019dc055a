package nats

import "github.com/xswap/router/pkg/types"

// Control-surface payloads. Amounts travel as decimal strings so requesters
// need no 256-bit integer support.

// SimulateRequest asks for a dry-run selection pass.
type SimulateRequest struct {
	TokenIn           types.Token   `json:"token_in"`
	TokenOut          types.Token   `json:"token_out"`
	AmountIn          string        `json:"amount_in"`
	MinAmountOut      string        `json:"min_amount_out,omitempty"`
	Recipient         types.Address `json:"recipient"`
	Deadline          int64         `json:"deadline"`
	MaxGasPrice       string        `json:"max_gas_price,omitempty"`
	MinImprovementBps uint32        `json:"min_improvement_bps,omitempty"`
	ForceLocal        bool          `json:"force_local,omitempty"`
}

// QuoteInfo is one venue's quote in a response.
type QuoteInfo struct {
	VenueIndex     uint32 `json:"venue_index"`
	OutputAmount   string `json:"output_amount"`
	TotalCost      string `json:"total_cost"`
	NetOutput      string `json:"net_output"`
	ExecutionTime  uint32 `json:"execution_time"`
	RequiresBridge bool   `json:"requires_bridge"`
	Confidence     uint8  `json:"confidence"`
}

// SimulateResponse carries the winning quote plus the full scan.
type SimulateResponse struct {
	Best   QuoteInfo   `json:"best"`
	Quotes []QuoteInfo `json:"quotes"`
}

// SwapRequest asks for execution. Sender identifies the custody account.
type SwapRequest struct {
	Sender types.Address `json:"sender"`
	SimulateRequest
}

// SwapResponse reports an executed swap.
type SwapResponse struct {
	SwapID     string    `json:"swap_id"`
	Quote      QuoteInfo `json:"quote"`
	CrossChain bool      `json:"cross_chain"`
	BridgeTxID string    `json:"bridge_tx_id,omitempty"`
}

// VenueInfo is one registry entry in a VenuesResponse.
type VenueInfo struct {
	Index       uint32        `json:"index"`
	ChainID     types.ChainID `json:"chain_id"`
	Address     types.Address `json:"address"`
	Name        string        `json:"name"`
	Active      bool          `json:"active"`
	GasEstimate uint64        `json:"gas_estimate"`
	Reliability uint8         `json:"reliability"`
	LastUpdate  int64         `json:"last_update"`
}

// VenuesResponse is the registry snapshot.
type VenuesResponse struct {
	Venues []VenueInfo `json:"venues"`
}

// ErrorResponse is returned when a control request fails.
type ErrorResponse struct {
	Error string `json:"error"`
}
