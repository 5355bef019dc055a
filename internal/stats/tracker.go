// Package stats accumulates selection statistics: which venues win, how much
// volume they carry, and how often the scan degrades venues to zero-output
// quotes. It is diagnostic only; routing decisions never read it.
package stats

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// VenueStats aggregates one venue's selections.
type VenueStats struct {
	Selections int64           `json:"selections"`
	Volume     decimal.Decimal `json:"volume"`
}

// Snapshot is a point-in-time copy of the tracker.
type Snapshot struct {
	TotalScans      int64           `json:"total_scans"`
	TotalSelections int64           `json:"total_selections"`
	CrossChain      int64           `json:"cross_chain"`
	DegradedQuotes  int64           `json:"degraded_quotes"`
	TotalVolume     decimal.Decimal `json:"total_volume"`
	// AvgImprovementBps averages the profitability improvement of cross-chain
	// selections over the assumed local output. Zero until one is recorded.
	AvgImprovementBps decimal.Decimal       `json:"avg_improvement_bps"`
	Venues            map[uint32]VenueStats `json:"venues"`
}

// Tracker accumulates routing statistics.
type Tracker struct {
	mu         sync.Mutex
	scans      int64
	selections int64
	crossChain int64
	degraded   int64
	volume     decimal.Decimal
	venues     map[uint32]*VenueStats

	improvements   int64
	improvementSum decimal.Decimal
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		volume:         decimal.Zero,
		improvementSum: decimal.Zero,
		venues:         make(map[uint32]*VenueStats),
	}
}

// RecordScan notes one selection pass over quoted venues, degraded of which
// produced zero-output quotes.
func (t *Tracker) RecordScan(quoted, degraded int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scans++
	t.degraded += int64(degraded)
}

// RecordSelection notes one executed routing decision.
func (t *Tracker) RecordSelection(venueIndex uint32, amountIn *uint256.Int, crossChain bool) {
	amount := decimal.NewFromBigInt(amountIn.ToBig(), 0)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.selections++
	if crossChain {
		t.crossChain++
	}
	t.volume = t.volume.Add(amount)

	vs, ok := t.venues[venueIndex]
	if !ok {
		vs = &VenueStats{Volume: decimal.Zero}
		t.venues[venueIndex] = vs
	}
	vs.Selections++
	vs.Volume = vs.Volume.Add(amount)
}

// RecordImprovement notes the basis-point improvement a cross-chain selection
// achieved over the assumed local output.
func (t *Tracker) RecordImprovement(bps uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.improvements++
	t.improvementSum = t.improvementSum.Add(decimal.NewFromInt(int64(bps)))
}

// Snapshot copies the current totals.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	venues := make(map[uint32]VenueStats, len(t.venues))
	for idx, vs := range t.venues {
		venues[idx] = *vs
	}
	avg := decimal.Zero
	if t.improvements > 0 {
		avg = t.improvementSum.Div(decimal.NewFromInt(t.improvements))
	}
	return Snapshot{
		TotalScans:        t.scans,
		TotalSelections:   t.selections,
		CrossChain:        t.crossChain,
		DegradedQuotes:    t.degraded,
		TotalVolume:       t.volume,
		AvgImprovementBps: avg,
		Venues:            venues,
	}
}
