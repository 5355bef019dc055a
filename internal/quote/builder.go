// Package quote builds per-venue execution quotes: oracle-priced output,
// gas and protocol fee costing, and bridge negotiation for remote venues.
// Pricing failures degrade to a zero-output quote instead of aborting the
// venue scan.
package quote

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/xswap/router/internal/bridge"
	"github.com/xswap/router/internal/oracle"
	"github.com/xswap/router/internal/pricing"
	"github.com/xswap/router/pkg/types"
)

// Execution-time defaults in seconds, before any bridge-quote override.
const (
	LocalExecutionTime  = 15
	RemoteExecutionTime = 300
)

// ChainContext supplies the ambient execution environment: current time and
// gas price. Fixing it makes quoting deterministic under test.
type ChainContext interface {
	Now() int64
	GasPrice() *uint256.Int
}

// FixedChain is a static ChainContext.
type FixedChain struct {
	Time int64
	Gas  *uint256.Int
}

func (c FixedChain) Now() int64             { return c.Time }
func (c FixedChain) GasPrice() *uint256.Int { return c.Gas }

// LiveChain is a wall-clock ChainContext with a configured gas price.
type LiveChain struct {
	Gas *uint256.Int
}

func (c LiveChain) Now() int64             { return time.Now().Unix() }
func (c LiveChain) GasPrice() *uint256.Int { return c.Gas }

// PricingSpec is the resolved feed binding for one request: which feeds to
// read and how stale each may be.
type PricingSpec struct {
	FeedIn          types.FeedID
	FeedOut         types.FeedID
	MaxStalenessIn  uint32
	MaxStalenessOut uint32
}

// Params are the engine-level costing parameters.
type Params struct {
	ProtocolFeeBps uint32
	MaxGasCostBps  uint32
}

// Builder produces ExecutionQuotes for venues.
type Builder struct {
	oracle     *oracle.Adapter
	bridge     bridge.Bridge
	chain      ChainContext
	localChain types.ChainID
	log        *logrus.Entry
}

// NewBuilder creates a quote builder. localChain identifies venues that do not
// require bridging.
func NewBuilder(adapter *oracle.Adapter, br bridge.Bridge, chain ChainContext, localChain types.ChainID) *Builder {
	return &Builder{
		oracle:     adapter,
		bridge:     br,
		chain:      chain,
		localChain: localChain,
		log:        logrus.WithField("component", "quote-builder"),
	}
}

// SetOracle swaps the price adapter. Callers must not have a quote in flight.
func (b *Builder) SetOracle(adapter *oracle.Adapter) { b.oracle = adapter }

// SetBridge swaps the bridge collaborator. Callers must not have a quote in
// flight.
func (b *Builder) SetBridge(br bridge.Bridge) { b.bridge = br }

// BuildQuote produces the execution quote for one venue. A zero OutputAmount
// means "cannot be priced right now"; it is never an error.
func (b *Builder) BuildQuote(req *types.SwapRequest, venue types.Venue, venueIndex uint32, spec PricingSpec, params Params) types.ExecutionQuote {
	q := types.ExecutionQuote{
		OutputAmount:   new(uint256.Int),
		TotalCost:      new(uint256.Int),
		NetOutput:      new(uint256.Int),
		VenueIndex:     venueIndex,
		RequiresBridge: venue.ChainID != b.localChain,
		ExecutionTime:  LocalExecutionTime,
	}
	if q.RequiresBridge {
		q.ExecutionTime = RemoteExecutionTime
	}

	now := b.chain.Now()
	priceIn, err := b.oracle.ValidPrice(spec.FeedIn, spec.MaxStalenessIn, now)
	if err != nil {
		b.log.WithField("venue", venueIndex).Debugf("input price degraded: %v", err)
		return q
	}
	priceOut, err := b.oracle.ValidPrice(spec.FeedOut, spec.MaxStalenessOut, now)
	if err != nil {
		b.log.WithField("venue", venueIndex).Debugf("output price degraded: %v", err)
		return q
	}

	output, confidence, err := pricing.ConvertWithConfidence(priceIn, priceOut, req.AmountIn)
	if err != nil {
		b.log.WithField("venue", venueIndex).Debugf("conversion degraded: %v", err)
		return q
	}
	q.Confidence = confidence
	if output.IsZero() {
		return q
	}
	q.OutputAmount = output

	q.TotalCost = b.executionCost(req, venue, params)
	q.NetOutput = netOutput(q.OutputAmount, q.TotalCost)

	if q.RequiresBridge && !q.NetOutput.IsZero() {
		b.applyBridgeQuote(req, venue, &q)
	}
	return q
}

// executionCost is min(gas*price, amountIn*maxGasCostBps/10000) plus the
// protocol fee.
func (b *Builder) executionCost(req *types.SwapRequest, venue types.Venue, params Params) *uint256.Int {
	gasPrice := b.chain.GasPrice()
	if req.MaxGasPrice != nil && !req.MaxGasPrice.IsZero() {
		gasPrice = req.MaxGasPrice
	}

	gasCost := new(uint256.Int).Mul(uint256.NewInt(venue.GasEstimate), gasPrice)

	gasCap := new(uint256.Int).Mul(req.AmountIn, uint256.NewInt(uint64(params.MaxGasCostBps)))
	gasCap.Div(gasCap, uint256.NewInt(types.MaxBps))
	if gasCost.Gt(gasCap) {
		gasCost = gasCap
	}

	protocolFee := new(uint256.Int).Mul(req.AmountIn, uint256.NewInt(uint64(params.ProtocolFeeBps)))
	protocolFee.Div(protocolFee, uint256.NewInt(types.MaxBps))

	return gasCost.Add(gasCost, protocolFee)
}

// applyBridgeQuote folds the bridge's fee, time estimate, and opaque data into
// the quote. A failed negotiation zeroes the net output, excluding the venue
// without aborting the scan.
func (b *Builder) applyBridgeQuote(req *types.SwapRequest, venue types.Venue, q *types.ExecutionQuote) {
	bq, err := b.bridge.GetQuote(req.TokenIn, req.TokenOut, req.AmountIn, venue.ChainID)
	if err != nil {
		b.log.WithField("venue", q.VenueIndex).Debugf("bridge quote failed: %v", err)
		q.NetOutput = new(uint256.Int)
		return
	}

	q.TotalCost = new(uint256.Int).Add(q.TotalCost, bq.BridgeFee)
	q.ExecutionTime = bq.EstimatedTime
	q.BridgeData = bq.BridgeData
	q.NetOutput = netOutput(q.OutputAmount, q.TotalCost)
}

func netOutput(output, cost *uint256.Int) *uint256.Int {
	if output.Gt(cost) {
		return new(uint256.Int).Sub(output, cost)
	}
	return new(uint256.Int)
}
