package router

import (
	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// QuoteSource produces the execution quote for one venue. The engine wires it
// to the quote builder; tests substitute canned quotes.
type QuoteSource interface {
	Quote(req *types.SwapRequest, venue types.Venue, venueIndex uint32) types.ExecutionQuote
}

// SelectBest scans the venue snapshot, quoting every active venue, and returns
// the single best quote plus the full quote set for inspection. Inactive
// venues are skipped entirely. The result is deterministic for a given
// snapshot and collaborator responses.
//
// A quote beats the running best when the best has zero net output and the
// candidate is positive, or when both are positive and the candidate's
// netOutput*confidence product is strictly greater. Ties keep the first-seen
// quote.
func SelectBest(req *types.SwapRequest, venues []types.Venue, src QuoteSource) (types.ExecutionQuote, []types.ExecutionQuote) {
	best := types.ExecutionQuote{
		OutputAmount: new(uint256.Int),
		TotalCost:    new(uint256.Int),
		NetOutput:    new(uint256.Int),
	}
	quotes := make([]types.ExecutionQuote, 0, len(venues))

	for i, venue := range venues {
		if !venue.Active {
			continue
		}
		q := src.Quote(req, venue, uint32(i))
		quotes = append(quotes, q)
		if betterThan(q, best) {
			best = q
		}
	}
	return best, quotes
}

// betterThan implements the net-output x confidence comparator. The product
// tie-break favors high-confidence, high-output jointly rather than
// lexicographically.
func betterThan(candidate, best types.ExecutionQuote) bool {
	if !candidate.Usable() {
		return false
	}
	if !best.Usable() {
		return true
	}
	return confidenceProduct(candidate).Gt(confidenceProduct(best))
}

func confidenceProduct(q types.ExecutionQuote) *uint256.Int {
	product, overflow := new(uint256.Int).MulOverflow(q.NetOutput, uint256.NewInt(uint64(q.Confidence)))
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return product
}
