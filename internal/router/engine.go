// Package router contains the decision pipeline: the venue registry, the
// best-venue selector, and the engine that ties pricing, quoting, bridging,
// and custody together behind admin, query, and execution surfaces.
package router

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/xswap/router/internal/bridge"
	"github.com/xswap/router/internal/ledger"
	"github.com/xswap/router/internal/oracle"
	"github.com/xswap/router/internal/quote"
	"github.com/xswap/router/internal/scoring"
	"github.com/xswap/router/internal/stats"
	"github.com/xswap/router/pkg/types"
)

// Parameter bounds enforced on the admin surface.
const (
	MaxProtocolFeeBps    = 100  // 1%
	MaxGasCostCapBps     = 1000 // 10%
	MaxImprovementBps    = 1000 // 10%
	MinLocalOutputBps    = 5000
	DefaultStalenessSecs = 300
)

// Params are the engine's tunable economics.
type Params struct {
	ProtocolFeeBps uint32
	MaxGasCostBps  uint32
	// MinImprovementBps is the default cross-chain profitability threshold.
	MinImprovementBps uint32
	// LocalOutputBps approximates the local venue's output as a fraction of
	// input for the profitability gate. Configurable rather than a baked-in
	// constant.
	LocalOutputBps uint32
	// DefaultStaleness replaces a zero max-staleness on feed configuration.
	DefaultStaleness uint32
}

// DefaultParams are the shipped defaults.
func DefaultParams() Params {
	return Params{
		ProtocolFeeBps:    30,
		MaxGasCostBps:     100,
		MinImprovementBps: 50,
		LocalOutputBps:    9500,
		DefaultStaleness:  DefaultStalenessSecs,
	}
}

// SwapResult is the outcome of one executed swap.
type SwapResult struct {
	SwapID     string               `json:"swap_id"`
	Quote      types.ExecutionQuote `json:"quote"`
	CrossChain bool                 `json:"cross_chain"`
	BridgeTxID string               `json:"bridge_tx_id,omitempty"`
}

// Engine is the venue-selection and execution engine. All mutating entry
// points run under the reentrancy lock; reads within one invocation see a
// consistent registry and config snapshot.
type Engine struct {
	mu     sync.Mutex
	locked bool
	paused bool

	owner        types.Address
	pendingOwner types.Address

	cfgMu   sync.RWMutex
	configs map[types.Token]types.TokenPriceConfig
	params  Params

	registry *Registry
	builder  *quote.Builder
	bridge   bridge.Bridge
	ledger   ledger.Ledger
	chain    quote.ChainContext
	events   EventPublisher
	tracker  *stats.Tracker

	// vault is the engine's own custody identity; feeRecipient collects the
	// protocol fee.
	vault        types.Address
	feeRecipient types.Address

	log *logrus.Entry
}

// Config wires an Engine.
type Config struct {
	Owner        types.Address
	Vault        types.Address
	FeeRecipient types.Address
	LocalVenue   types.Venue
	Params       Params
	Builder      *quote.Builder
	Bridge       bridge.Bridge
	Ledger       ledger.Ledger
	Chain        quote.ChainContext
	Events       EventPublisher
}

// NewEngine creates an engine with the local venue registered at index 0.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Owner.IsZero() || cfg.Vault.IsZero() || cfg.FeeRecipient.IsZero() {
		return nil, types.ErrZeroAddress
	}
	if cfg.Events == nil {
		cfg.Events = NopPublisher{}
	}
	if cfg.Params == (Params{}) {
		cfg.Params = DefaultParams()
	}

	return &Engine{
		owner:        cfg.Owner,
		configs:      make(map[types.Token]types.TokenPriceConfig),
		params:       cfg.Params,
		registry:     NewRegistry(cfg.LocalVenue),
		builder:      cfg.Builder,
		bridge:       cfg.Bridge,
		ledger:       cfg.Ledger,
		chain:        cfg.Chain,
		events:       cfg.Events,
		tracker:      stats.NewTracker(),
		vault:        cfg.Vault,
		feeRecipient: cfg.FeeRecipient,
		log:          logrus.WithField("component", "router-engine"),
	}, nil
}

// --- guards -----------------------------------------------------------------

func (e *Engine) requireOwner(caller types.Address) error {
	if caller != e.owner {
		return types.ErrUnauthorized
	}
	return nil
}

// enter takes the reentrancy lock for an externally triggered operation.
// External calls (oracle, bridge) made while the lock is held cannot re-enter.
func (e *Engine) enter() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return types.ErrPaused
	}
	if e.locked {
		return types.ErrReentrancy
	}
	e.locked = true
	return nil
}

func (e *Engine) exit() {
	e.mu.Lock()
	e.locked = false
	e.mu.Unlock()
}

// --- admin surface ----------------------------------------------------------

// TransferOwnership starts a two-step ownership handover.
func (e *Engine) TransferOwnership(caller, newOwner types.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return types.ErrZeroAddress
	}
	e.mu.Lock()
	e.pendingOwner = newOwner
	e.mu.Unlock()
	e.log.WithField("pending_owner", newOwner).Info("ownership transfer initiated")
	return nil
}

// AcceptOwnership completes the handover; only the pending owner may call it.
func (e *Engine) AcceptOwnership(caller types.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingOwner.IsZero() || caller != e.pendingOwner {
		return types.ErrNotPending
	}
	e.owner = caller
	e.pendingOwner = types.ZeroAddress
	e.log.WithField("owner", caller).Info("ownership transferred")
	return nil
}

// Pause halts externally triggered operations.
func (e *Engine) Pause(caller types.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.mu.Lock()
	e.paused = true
	e.mu.Unlock()
	e.log.Warn("engine paused")
	return nil
}

// Unpause resumes operation.
func (e *Engine) Unpause(caller types.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.mu.Lock()
	e.paused = false
	e.mu.Unlock()
	e.log.Info("engine unpaused")
	return nil
}

// AddVenue appends a venue to the registry and returns its index.
func (e *Engine) AddVenue(caller types.Address, v types.Venue) (uint32, error) {
	if err := e.requireOwner(caller); err != nil {
		return 0, err
	}
	if v.Address.IsZero() {
		return 0, types.ErrZeroAddress
	}
	v.LastUpdate = e.chain.Now()
	index := e.registry.Add(v)
	e.events.VenueUpdated(index, v)
	e.log.WithFields(logrus.Fields{"index": index, "chain": v.ChainID, "name": v.Name}).Info("venue added")
	return index, nil
}

// SetVenueActive flips a venue's active flag. Venues are never deleted.
func (e *Engine) SetVenueActive(caller types.Address, index uint32, active bool) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if err := e.registry.SetActive(index, active, e.chain.Now()); err != nil {
		return err
	}
	v, _ := e.registry.Get(index)
	e.events.VenueUpdated(index, v)
	return nil
}

// ConfigurePriceFeed binds a token to an oracle feed. A zero maxStaleness
// stores the configured default instead, never 0.
func (e *Engine) ConfigurePriceFeed(caller types.Address, token types.Token, feed types.FeedID, maxStaleness uint32) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if token.IsZero() || feed == "" {
		return types.ErrZeroAddress
	}

	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	if maxStaleness == 0 {
		maxStaleness = e.params.DefaultStaleness
	}
	e.configs[token] = types.TokenPriceConfig{
		FeedID:       feed,
		MaxStaleness: maxStaleness,
		ConfiguredAt: e.chain.Now(),
		Active:       true,
	}
	return nil
}

// SetProtocolFeeBps updates the protocol fee, bounded at 1%.
func (e *Engine) SetProtocolFeeBps(caller types.Address, bps uint32) error {
	return e.setParam(caller, bps, MaxProtocolFeeBps, func(p *Params) { p.ProtocolFeeBps = bps })
}

// SetMaxGasCostBps updates the gas cost cap, bounded at 10%.
func (e *Engine) SetMaxGasCostBps(caller types.Address, bps uint32) error {
	return e.setParam(caller, bps, MaxGasCostCapBps, func(p *Params) { p.MaxGasCostBps = bps })
}

// SetMinImprovementBps updates the cross-chain profitability threshold,
// bounded at 10%.
func (e *Engine) SetMinImprovementBps(caller types.Address, bps uint32) error {
	return e.setParam(caller, bps, MaxImprovementBps, func(p *Params) { p.MinImprovementBps = bps })
}

// SetLocalOutputBps updates the assumed local output fraction, within
// [5000, 10000].
func (e *Engine) SetLocalOutputBps(caller types.Address, bps uint32) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps < MinLocalOutputBps || bps > types.MaxBps {
		return types.ErrInvalidParameter
	}
	e.cfgMu.Lock()
	e.params.LocalOutputBps = bps
	e.cfgMu.Unlock()
	return nil
}

func (e *Engine) setParam(caller types.Address, bps, cap uint32, apply func(*Params)) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if bps > cap {
		return types.ErrInvalidParameter
	}
	e.cfgMu.Lock()
	apply(&e.params)
	e.cfgMu.Unlock()
	return nil
}

// SetOracle replaces the price adapter. Allowed while paused so a broken
// oracle can be swapped out; rejected while a swap is in flight.
func (e *Engine) SetOracle(caller types.Address, adapter *oracle.Adapter) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if adapter == nil {
		return types.ErrInvalidParameter
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked {
		return types.ErrReentrancy
	}
	e.builder.SetOracle(adapter)
	e.log.Info("oracle adapter replaced")
	return nil
}

// SetBridge replaces the bridge collaborator under the same rules as SetOracle.
func (e *Engine) SetBridge(caller types.Address, br bridge.Bridge) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if br == nil {
		return types.ErrInvalidParameter
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locked {
		return types.ErrReentrancy
	}
	e.bridge = br
	e.builder.SetBridge(br)
	e.log.Info("bridge collaborator replaced")
	return nil
}

// EmergencyWithdraw moves the vault's full balance of a token to a recipient.
func (e *Engine) EmergencyWithdraw(caller types.Address, token types.Token, to types.Address) error {
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if to.IsZero() {
		return types.ErrZeroAddress
	}
	balance := e.ledger.BalanceOf(token, e.vault)
	if balance.IsZero() {
		return nil
	}
	e.log.WithFields(logrus.Fields{"token": token, "to": to}).Warn("emergency withdraw")
	return e.ledger.Transfer(token, e.vault, to, balance)
}

// --- query surface ----------------------------------------------------------

// VenueCount returns the registry size, active or not.
func (e *Engine) VenueCount() uint32 { return e.registry.Count() }

// Venue returns the venue at an index.
func (e *Engine) Venue(index uint32) (types.Venue, error) { return e.registry.Get(index) }

// ActiveVenues returns the indices of all active venues.
func (e *Engine) ActiveVenues() []uint32 { return e.registry.ActiveIndices() }

// PriceConfig returns the price configuration for a token.
func (e *Engine) PriceConfig(token types.Token) (types.TokenPriceConfig, bool) {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	cfg, ok := e.configs[token]
	return cfg, ok
}

// IsChainSupported reports whether the bridge can reach a chain.
func (e *Engine) IsChainSupported(chain types.ChainID) bool {
	return e.bridge.IsChainSupported(chain)
}

// Stats returns a snapshot of selection statistics.
func (e *Engine) Stats() stats.Snapshot { return e.tracker.Snapshot() }

// --- selection --------------------------------------------------------------

// quoteSource adapts the quote builder to the selector, resolving each
// request's feed binding from the token configs. An unconfigured token yields
// zero quotes, not an error.
type quoteSource struct {
	engine *Engine
	req    *types.SwapRequest
	spec   quote.PricingSpec
	ok     bool
	params quote.Params
}

func (e *Engine) newQuoteSource(req *types.SwapRequest) *quoteSource {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()

	src := &quoteSource{
		engine: e,
		req:    req,
		params: quote.Params{ProtocolFeeBps: e.params.ProtocolFeeBps, MaxGasCostBps: e.params.MaxGasCostBps},
	}

	cfgIn, okIn := e.configs[req.TokenIn]
	cfgOut, okOut := e.configs[req.TokenOut]
	if !okIn || !okOut || !cfgIn.Active || !cfgOut.Active {
		return src
	}

	src.ok = true
	src.spec = quote.PricingSpec{
		FeedIn:          cfgIn.FeedID,
		FeedOut:         cfgOut.FeedID,
		MaxStalenessIn:  cfgIn.MaxStaleness,
		MaxStalenessOut: cfgOut.MaxStaleness,
	}
	if req.FeedIn != "" {
		src.spec.FeedIn = req.FeedIn
	}
	if req.FeedOut != "" {
		src.spec.FeedOut = req.FeedOut
	}
	return src
}

func (s *quoteSource) Quote(req *types.SwapRequest, venue types.Venue, venueIndex uint32) types.ExecutionQuote {
	if !s.ok {
		q := types.ExecutionQuote{
			OutputAmount:   new(uint256.Int),
			TotalCost:      new(uint256.Int),
			NetOutput:      new(uint256.Int),
			VenueIndex:     venueIndex,
			RequiresBridge: venueIndex != 0,
			ExecutionTime:  quote.LocalExecutionTime,
		}
		if q.RequiresBridge {
			q.ExecutionTime = quote.RemoteExecutionTime
		}
		return q
	}
	return s.engine.builder.BuildQuote(req, venue, venueIndex, s.spec, s.params)
}

func (e *Engine) validateRequest(req *types.SwapRequest) error {
	if req == nil || req.AmountIn == nil || req.AmountIn.IsZero() {
		return types.ErrZeroAmount
	}
	if req.Recipient.IsZero() {
		return types.ErrZeroAddress
	}
	if req.Deadline <= e.chain.Now() {
		return types.ErrExpiredDeadline
	}
	return nil
}

// Simulate runs a full selection pass without committing state. Data
// unavailability never surfaces as an error; affected venues simply carry
// zero-output quotes.
func (e *Engine) Simulate(req *types.SwapRequest) (types.ExecutionQuote, []types.ExecutionQuote, error) {
	if err := e.validateRequest(req); err != nil {
		return types.ExecutionQuote{}, nil, err
	}
	best, quotes := SelectBest(req, e.registry.Snapshot(), e.newQuoteSource(req))
	e.tracker.RecordScan(len(quotes), countDegraded(quotes))
	return best, quotes, nil
}

// Rank scores every active venue against the local reference quote under the
// given risk profile. Liquidity and historical performance are caller-supplied
// per venue index; the engine keeps no performance ledger.
func (e *Engine) Rank(req *types.SwapRequest, profile scoring.RiskProfile, liquidity, historical map[uint32]uint32) ([]types.ComparisonData, []int, error) {
	_, quotes, err := e.Simulate(req)
	if err != nil {
		return nil, nil, err
	}

	venues := e.registry.Snapshot()
	data := make([]types.ComparisonData, 0, len(quotes))
	var reference types.ComparisonData
	for _, q := range quotes {
		v := venues[q.VenueIndex]
		d := types.Comparison(q, v, liquidity[q.VenueIndex], historical[q.VenueIndex])
		data = append(data, d)
		if q.VenueIndex == 0 {
			reference = d
		}
	}

	order := scoring.Rank(data, scoring.ProfileWeights(profile), reference)
	return data, order, nil
}

// --- execution surface ------------------------------------------------------

// ExecuteSwap routes and executes one swap. The whole operation runs under
// the reentrancy lock; a bridge failure after custody transfer is compensated
// by refunding the sender and the collected fee before reporting failure.
func (e *Engine) ExecuteSwap(caller types.Address, req *types.SwapRequest) (*SwapResult, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.exit()

	if caller.IsZero() {
		return nil, types.ErrZeroAddress
	}
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}
	if err := e.requireConfigured(req.TokenIn, req.TokenOut); err != nil {
		return nil, err
	}

	best, quotes := SelectBest(req, e.registry.Snapshot(), e.newQuoteSource(req))
	e.tracker.RecordScan(len(quotes), countDegraded(quotes))
	if !best.Usable() {
		return nil, types.ErrNoUsableVenue
	}

	swapID := swapID(caller, e.chain.Now(), req)
	crossChain := false
	var improvementBps uint32
	if best.VenueIndex != 0 && !req.ForceLocal {
		crossChain, improvementBps = e.profitGate(req, best)
	}

	chosen := best
	if !crossChain && best.VenueIndex != 0 {
		local, ok := localQuote(quotes)
		if !ok || !local.Usable() {
			return nil, types.ErrNoUsableVenue
		}
		chosen = local
	}
	if req.MinAmountOut != nil && chosen.NetOutput.Lt(req.MinAmountOut) {
		return nil, types.ErrInsufficientOutput
	}

	result := &SwapResult{SwapID: swapID, Quote: chosen, CrossChain: crossChain}
	venue, _ := e.registry.Get(chosen.VenueIndex)

	ev := SwapEvent{
		SwapID:     swapID,
		Sender:     caller,
		Recipient:  req.Recipient,
		TokenIn:    req.TokenIn,
		TokenOut:   req.TokenOut,
		AmountIn:   req.AmountIn,
		NetOutput:  chosen.NetOutput,
		VenueIndex: chosen.VenueIndex,
		DestChain:  venue.ChainID,
		Confidence: chosen.Confidence,
		Timestamp:  e.chain.Now(),
	}

	if !crossChain {
		e.events.SwapOptimized(ev)
		e.tracker.RecordSelection(chosen.VenueIndex, req.AmountIn, false)
		e.log.WithFields(logrus.Fields{"swap": swapID, "venue": chosen.VenueIndex}).Info("local swap optimized")
		return result, nil
	}

	txID, err := e.executeCrossChain(caller, req, chosen, venue)
	if err != nil {
		return nil, err
	}
	result.BridgeTxID = txID
	ev.BridgeTxID = txID

	e.events.CrossChainExecuted(ev)
	e.tracker.RecordSelection(chosen.VenueIndex, req.AmountIn, true)
	e.tracker.RecordImprovement(improvementBps)
	e.log.WithFields(logrus.Fields{"swap": swapID, "venue": chosen.VenueIndex, "tx": txID}).Info("cross-chain swap executed")
	return result, nil
}

// executeCrossChain transfers custody, collects the protocol fee, and calls
// the bridge. On bridge failure both transfers are unwound before the error
// propagates.
func (e *Engine) executeCrossChain(caller types.Address, req *types.SwapRequest, q types.ExecutionQuote, venue types.Venue) (string, error) {
	fee := new(uint256.Int).Mul(req.AmountIn, uint256.NewInt(uint64(e.protocolFeeBps())))
	fee.Div(fee, uint256.NewInt(types.MaxBps))

	if err := e.ledger.Transfer(req.TokenIn, caller, e.vault, req.AmountIn); err != nil {
		return "", fmt.Errorf("custody transfer: %w", err)
	}
	if err := e.ledger.Transfer(req.TokenIn, e.vault, e.feeRecipient, fee); err != nil {
		// Custody succeeded but fee collection did not; hand the tokens back.
		_ = e.ledger.Transfer(req.TokenIn, e.vault, caller, req.AmountIn)
		return "", fmt.Errorf("fee collection: %w", err)
	}

	bridgeAmount := new(uint256.Int).Sub(req.AmountIn, fee)
	txID, err := e.bridge.Bridge(req.TokenIn, bridgeAmount, venue.ChainID, req.Recipient, q.BridgeData, nil)
	if err != nil {
		// Compensate: restore the fee to the vault, then the full amount to
		// the sender.
		_ = e.ledger.Transfer(req.TokenIn, e.feeRecipient, e.vault, fee)
		_ = e.ledger.Transfer(req.TokenIn, e.vault, caller, req.AmountIn)
		e.log.WithField("venue", q.VenueIndex).Warnf("bridge failed, refunded sender: %v", err)
		return "", fmt.Errorf("%w: %v", types.ErrBridgeFailed, err)
	}
	return txID, nil
}

// profitGate compares the cross-chain net output to an assumed local output
// and requires the improvement to clear the threshold in basis points. The
// achieved improvement is returned for statistics.
func (e *Engine) profitGate(req *types.SwapRequest, best types.ExecutionQuote) (bool, uint32) {
	e.cfgMu.RLock()
	localBps := e.params.LocalOutputBps
	threshold := e.params.MinImprovementBps
	e.cfgMu.RUnlock()

	if req.MinImprovementBps > 0 {
		threshold = req.MinImprovementBps
		if threshold > MaxImprovementBps {
			threshold = MaxImprovementBps
		}
	}

	localOutput := new(uint256.Int).Mul(req.AmountIn, uint256.NewInt(uint64(localBps)))
	localOutput.Div(localOutput, uint256.NewInt(types.MaxBps))
	if localOutput.IsZero() {
		return true, 0
	}
	if !best.NetOutput.Gt(localOutput) {
		return false, 0
	}

	improvement := new(uint256.Int).Sub(best.NetOutput, localOutput)
	improvementBps := improvement.Mul(improvement, uint256.NewInt(types.MaxBps))
	improvementBps.Div(improvementBps, localOutput)
	if improvementBps.CmpUint64(uint64(threshold)) < 0 {
		return false, 0
	}
	bps := uint64(^uint32(0))
	if improvementBps.IsUint64() && improvementBps.Uint64() < bps {
		bps = improvementBps.Uint64()
	}
	return true, uint32(bps)
}

func (e *Engine) requireConfigured(tokens ...types.Token) error {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	for _, tok := range tokens {
		cfg, ok := e.configs[tok]
		if !ok || !cfg.Active {
			return fmt.Errorf("token %s: %w", tok, types.ErrTokenNotConfigured)
		}
	}
	return nil
}

func (e *Engine) protocolFeeBps() uint32 {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.params.ProtocolFeeBps
}

func localQuote(quotes []types.ExecutionQuote) (types.ExecutionQuote, bool) {
	for _, q := range quotes {
		if q.VenueIndex == 0 {
			return q, true
		}
	}
	return types.ExecutionQuote{}, false
}

func countDegraded(quotes []types.ExecutionQuote) int {
	n := 0
	for _, q := range quotes {
		if !q.Usable() {
			n++
		}
	}
	return n
}

// swapID derives the deterministic swap identifier from the sender, time, and
// request economics.
func swapID(sender types.Address, now int64, req *types.SwapRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%s|%s", sender, now, req.TokenIn, req.TokenOut, req.AmountIn.Dec())
	return hex.EncodeToString(h.Sum(nil))
}
