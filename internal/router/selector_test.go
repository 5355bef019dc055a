package router

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/xswap/router/pkg/types"
)

// cannedQuotes serves fixed quotes keyed by venue index.
type cannedQuotes map[uint32]types.ExecutionQuote

func (c cannedQuotes) Quote(_ *types.SwapRequest, _ types.Venue, venueIndex uint32) types.ExecutionQuote {
	q := c[venueIndex]
	q.VenueIndex = venueIndex
	return q
}

func canned(output, cost uint64, confidence uint8) types.ExecutionQuote {
	net := new(uint256.Int)
	o := uint256.NewInt(output)
	cs := uint256.NewInt(cost)
	if o.Gt(cs) {
		net.Sub(o, cs)
	}
	return types.ExecutionQuote{OutputAmount: o, TotalCost: cs, NetOutput: net, Confidence: confidence}
}

func activeVenues(n int) []types.Venue {
	venues := make([]types.Venue, n)
	for i := range venues {
		venues[i] = types.Venue{ChainID: types.ChainID(i + 1), Address: "0xv", Active: true}
	}
	return venues
}

func TestSelectBest_ConfidenceProductBreaksNetOutputTie(t *testing.T) {
	// Local nets 1900; remote A and B both net 1940, but B carries lower
	// confidence, so the product comparator picks A.
	quotes := cannedQuotes{
		0: canned(1950, 50, 90),
		1: canned(1970, 30, 90), // A
		2: canned(1960, 20, 70), // B
	}

	best, all := SelectBest(&types.SwapRequest{}, activeVenues(3), quotes)
	assert.Equal(t, uint32(1), best.VenueIndex)
	assert.Len(t, all, 3)
}

func TestSelectBest_PositiveBeatsZero(t *testing.T) {
	quotes := cannedQuotes{
		0: canned(0, 0, 0),
		1: canned(100, 10, 50),
	}
	best, _ := SelectBest(&types.SwapRequest{}, activeVenues(2), quotes)
	assert.Equal(t, uint32(1), best.VenueIndex)
}

func TestSelectBest_SkipsInactiveVenues(t *testing.T) {
	venues := activeVenues(3)
	venues[1].Active = false

	quotes := cannedQuotes{
		0: canned(100, 10, 90),
		1: canned(100000, 0, 95), // would win, but the venue is inactive
		2: canned(200, 10, 90),
	}

	best, all := SelectBest(&types.SwapRequest{}, venues, quotes)
	assert.Equal(t, uint32(2), best.VenueIndex)
	assert.Len(t, all, 2)
}

func TestSelectBest_FirstSeenWinsExactTies(t *testing.T) {
	quotes := cannedQuotes{
		0: canned(1000, 0, 90),
		1: canned(1000, 0, 90),
	}
	best, _ := SelectBest(&types.SwapRequest{}, activeVenues(2), quotes)
	assert.Equal(t, uint32(0), best.VenueIndex)
}

func TestSelectBest_AllZeroQuotes(t *testing.T) {
	quotes := cannedQuotes{
		0: canned(0, 0, 0),
		1: canned(0, 0, 0),
	}
	best, all := SelectBest(&types.SwapRequest{}, activeVenues(2), quotes)
	assert.False(t, best.Usable())
	assert.Len(t, all, 2)
}

func TestSelectBest_Deterministic(t *testing.T) {
	quotes := cannedQuotes{
		0: canned(1950, 50, 90),
		1: canned(1970, 30, 90),
		2: canned(1960, 20, 70),
	}
	venues := activeVenues(3)

	first, _ := SelectBest(&types.SwapRequest{}, venues, quotes)
	for i := 0; i < 10; i++ {
		again, _ := SelectBest(&types.SwapRequest{}, venues, quotes)
		assert.Equal(t, first.VenueIndex, again.VenueIndex)
	}
}
