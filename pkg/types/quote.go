package types

import "github.com/holiman/uint256"

// SwapRequest describes one swap to route. Immutable once submitted; a request
// past its deadline is rejected outright.
type SwapRequest struct {
	TokenIn  Token   `json:"token_in"`
	TokenOut Token   `json:"token_out"`
	AmountIn *uint256.Int `json:"amount_in"`
	// MinAmountOut is the lowest acceptable net output.
	MinAmountOut *uint256.Int `json:"min_amount_out"`
	Recipient    Address      `json:"recipient"`
	Deadline     int64        `json:"deadline"` // unix seconds, must be in the future
	// FeedIn/FeedOut override the configured feeds when set.
	FeedIn  FeedID `json:"feed_in,omitempty"`
	FeedOut FeedID `json:"feed_out,omitempty"`
	// MaxGasPrice caps execution gas cost; nil or zero uses the ambient price.
	MaxGasPrice *uint256.Int `json:"max_gas_price,omitempty"`
	// MinImprovementBps overrides the engine's cross-chain profitability
	// threshold when nonzero. Capped at 1000 by policy.
	MinImprovementBps uint32 `json:"min_improvement_bps,omitempty"`
	// ForceLocal suppresses cross-chain routing regardless of profitability.
	ForceLocal bool `json:"force_local,omitempty"`
}

// ExecutionQuote is the costed outcome of executing a swap on one venue.
// Produced fresh per request per venue and never persisted. A zero OutputAmount
// encodes "this venue cannot be priced right now" rather than a failure.
type ExecutionQuote struct {
	OutputAmount   *uint256.Int `json:"output_amount"`
	TotalCost      *uint256.Int `json:"total_cost"`
	NetOutput      *uint256.Int `json:"net_output"` // OutputAmount - TotalCost, floored at 0
	VenueIndex     uint32       `json:"venue_index"`
	ExecutionTime  uint32       `json:"execution_time"` // seconds
	RequiresBridge bool         `json:"requires_bridge"`
	BridgeData     []byte       `json:"bridge_data,omitempty"`
	Confidence     uint8        `json:"confidence"` // 0-100
}

// Usable reports whether the quote carries a positive net output.
func (q ExecutionQuote) Usable() bool {
	return q.NetOutput != nil && !q.NetOutput.IsZero()
}

// BridgeQuote is a remote-execution estimate from the bridge collaborator,
// valid until ValidUntil.
type BridgeQuote struct {
	OutputAmount  *uint256.Int `json:"output_amount"`
	BridgeFee     *uint256.Int `json:"bridge_fee"`
	EstimatedTime uint32       `json:"estimated_time"` // seconds
	BridgeData    []byte       `json:"bridge_data,omitempty"`
	MinAmount     *uint256.Int `json:"min_amount"`
	MaxAmount     *uint256.Int `json:"max_amount"`
	ValidUntil    int64        `json:"valid_until"`
}

// ComparisonData is the scoring-input projection of an ExecutionQuote plus
// venue metadata. Scoring compares candidates against a reference entry
// (typically the local venue), which quote building does not need.
type ComparisonData struct {
	VenueIndex            uint32       `json:"venue_index"`
	OutputAmount          *uint256.Int `json:"output_amount"`
	TotalCost             *uint256.Int `json:"total_cost"`
	NetOutput             *uint256.Int `json:"net_output"`
	ExecutionTime         uint32       `json:"execution_time"`
	RequiresBridge        bool         `json:"requires_bridge"`
	Confidence            uint8        `json:"confidence"`
	Reliability           uint8        `json:"reliability"`
	LiquidityScore        uint32       `json:"liquidity_score"`         // clamped to 100 when scoring
	HistoricalPerformance uint32       `json:"historical_performance"` // clamped to 100 when scoring
}

// Comparison projects a quote and its venue into scoring input. Liquidity and
// historical performance are caller-supplied; the engine does not maintain a
// performance ledger.
func Comparison(q ExecutionQuote, v Venue, liquidity, historical uint32) ComparisonData {
	return ComparisonData{
		VenueIndex:            q.VenueIndex,
		OutputAmount:          q.OutputAmount,
		TotalCost:             q.TotalCost,
		NetOutput:             q.NetOutput,
		ExecutionTime:         q.ExecutionTime,
		RequiresBridge:        q.RequiresBridge,
		Confidence:            q.Confidence,
		Reliability:           v.Reliability,
		LiquidityScore:        liquidity,
		HistoricalPerformance: historical,
	}
}
