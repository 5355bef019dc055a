package scoring

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xswap/router/pkg/types"
)

func comparison(net, cost uint64, execTime uint32, bridge bool) types.ComparisonData {
	return types.ComparisonData{
		OutputAmount:          uint256.NewInt(net + cost),
		TotalCost:             uint256.NewInt(cost),
		NetOutput:             uint256.NewInt(net),
		ExecutionTime:         execTime,
		RequiresBridge:        bridge,
		Confidence:            90,
		Reliability:           90,
		LiquidityScore:        80,
		HistoricalPerformance: 80,
	}
}

func TestWeights_Presets(t *testing.T) {
	assert.NoError(t, ConservativeWeights.Validate())
	assert.NoError(t, BalancedWeights.Validate())
	assert.NoError(t, AggressiveWeights.Validate())

	assert.Equal(t, ConservativeWeights, ProfileWeights(ProfileConservative))
	assert.Equal(t, BalancedWeights, ProfileWeights(ProfileBalanced))
	assert.Equal(t, AggressiveWeights, ProfileWeights(ProfileAggressive))

	bad := Weights{Output: 50, Cost: 49}
	assert.ErrorIs(t, bad.Validate(), types.ErrInvalidWeights)
}

func TestRatioBands(t *testing.T) {
	cases := []struct {
		ratio uint64
		want  uint32
	}{
		{79, 100}, {80, 90}, {89, 90}, {90, 80}, {94, 80},
		{95, 70}, {100, 70}, {101, 50}, {105, 50}, {106, 30}, {110, 30}, {111, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ratioBand(tc.ratio), "ratio %d", tc.ratio)
	}
}

func TestTimeBands(t *testing.T) {
	cases := []struct {
		ratio uint64
		want  uint32
	}{
		{49, 100}, {50, 90}, {74, 90}, {75, 80}, {89, 80},
		{90, 70}, {100, 70}, {101, 50}, {120, 50}, {121, 30}, {150, 30}, {151, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, timeBand(tc.ratio), "ratio %d", tc.ratio)
	}
}

func TestScore_ParityWithReference(t *testing.T) {
	ref := comparison(1900, 50, 15, false)

	// Scoring the reference against itself: output/cost/time all land in the
	// parity band (70), the raw factors contribute their own values.
	score := Score(ref, BalancedWeights, ref)
	// 30*70 + 15*70 + 10*70 + 15*90 + 15*90 + 10*80 + 5*80 = 7750 -> 77
	assert.Equal(t, uint32(77), score)
}

func TestScore_BridgePenalty(t *testing.T) {
	ref := comparison(1900, 50, 15, false)

	fast := comparison(1900, 50, 15, true)
	slow := comparison(1900, 50, 700, true)
	glacial := comparison(1900, 50, 2000, true)

	base := Score(comparison(1900, 50, 15, false), BalancedWeights, ref)
	assert.Equal(t, base-5, Score(fast, BalancedWeights, ref))

	// Slower bridges land in worse time bands too, so compare against their
	// own penalty-free twins.
	slowNoBridge := slow
	slowNoBridge.RequiresBridge = false
	assert.Equal(t, Score(slowNoBridge, BalancedWeights, ref)-15, Score(slow, BalancedWeights, ref))

	glacialNoBridge := glacial
	glacialNoBridge.RequiresBridge = false
	assert.Equal(t, Score(glacialNoBridge, BalancedWeights, ref)-30, Score(glacial, BalancedWeights, ref))
}

func TestScore_HigherOutputScoresHigher(t *testing.T) {
	ref := comparison(1000, 100, 15, false)
	better := comparison(1500, 100, 15, false)
	worse := comparison(700, 100, 15, false)

	assert.Greater(t, Score(better, BalancedWeights, ref), Score(ref, BalancedWeights, ref))
	assert.Less(t, Score(worse, BalancedWeights, ref), Score(ref, BalancedWeights, ref))
	assert.True(t, Compare(better, worse, BalancedWeights, ref))
}

func TestScore_ZeroNetOutput(t *testing.T) {
	ref := comparison(1000, 100, 15, false)
	dead := comparison(0, 0, 15, false)
	assert.Less(t, Score(dead, BalancedWeights, ref), Score(ref, BalancedWeights, ref))
}

func TestRank_PermutationSortedDescending(t *testing.T) {
	ref := comparison(1000, 100, 15, false)
	venues := []types.ComparisonData{
		comparison(700, 150, 400, true),
		comparison(1500, 80, 15, false),
		comparison(1000, 100, 15, false),
		comparison(0, 0, 15, false),
	}

	order := Rank(venues, BalancedWeights, ref)
	require.Len(t, order, len(venues))

	seen := make(map[int]bool)
	for _, idx := range order {
		assert.False(t, seen[idx])
		seen[idx] = true
	}
	for i := 1; i < len(order); i++ {
		prev := Score(venues[order[i-1]], BalancedWeights, ref)
		cur := Score(venues[order[i]], BalancedWeights, ref)
		assert.GreaterOrEqual(t, prev, cur, "scores must be non-increasing")
	}
	assert.Equal(t, 1, order[0])
}

func TestRank_TiesBreakByAscendingIndex(t *testing.T) {
	ref := comparison(1000, 100, 15, false)
	same := comparison(1000, 100, 15, false)
	venues := []types.ComparisonData{same, same, same}

	order := Rank(venues, BalancedWeights, ref)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRiskAdjustedScore(t *testing.T) {
	data := comparison(950, 50, 400, true)
	data.LiquidityScore = 40

	// efficiency = 950*100/1000 = 95; base = (95*40 + 90*30 + 90*30)/100 = 92
	// penalties = 20 (bridge) + 15 (slow) + 10 (low liquidity) = 45
	assert.Equal(t, uint32(92-45), RiskAdjustedScore(data, 0))
	assert.Equal(t, uint32(92), RiskAdjustedScore(data, 100))
	// tolerance 50 halves the penalty: 45*50/100 = 22
	assert.Equal(t, uint32(92-22), RiskAdjustedScore(data, 50))
}

func TestRiskAdjustedScore_FloorsAtZero(t *testing.T) {
	data := comparison(0, 0, 400, true)
	data.OutputAmount = new(uint256.Int)
	data.Reliability = 0
	data.Confidence = 0
	data.LiquidityScore = 0
	assert.Equal(t, uint32(0), RiskAdjustedScore(data, 0))
}

func TestFilterValid_Idempotent(t *testing.T) {
	venues := []types.ComparisonData{
		comparison(1900, 50, 15, false),
		comparison(500, 50, 15, false),   // below min net output
		comparison(1900, 50, 900, true),  // too slow
		func() types.ComparisonData {
			v := comparison(1900, 50, 15, false)
			v.Reliability = 40 // unreliable
			return v
		}(),
	}

	once := FilterValid(venues, uint256.NewInt(1000), 600, 80)
	require.Len(t, once, 1)

	twice := FilterValid(once, uint256.NewInt(1000), 600, 80)
	assert.Equal(t, once, twice)
}

func TestDiversificationBenefit(t *testing.T) {
	a := comparison(1000, 100, 100, false)
	b := comparison(1000, 100, 100, false)

	// Identical venues: zero dispersion, maximum benefit.
	benefit, err := DiversificationBenefit([]types.ComparisonData{a, b}, []uint32{60, 40})
	require.NoError(t, err)
	assert.Equal(t, uint32(100), benefit)

	// Wildly different execution times tank the benefit.
	c := comparison(1000, 100, 2000, true)
	benefit, err = DiversificationBenefit([]types.ComparisonData{a, c}, []uint32{50, 50})
	require.NoError(t, err)
	assert.Less(t, benefit, uint32(100))
}

func TestDiversificationBenefit_Validation(t *testing.T) {
	a := comparison(1000, 100, 100, false)

	_, err := DiversificationBenefit([]types.ComparisonData{a}, []uint32{50, 50})
	assert.ErrorIs(t, err, types.ErrLengthMismatch)

	_, err = DiversificationBenefit([]types.ComparisonData{a}, []uint32{99})
	assert.ErrorIs(t, err, types.ErrInvalidSplit)

	_, err = DiversificationBenefit(nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidSplit)
}
