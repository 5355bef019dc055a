// Package scoring ranks venues on a normalized 0-100 scale from seven
// weighted sub-scores. Output, cost, and time are banded step functions
// relative to a reference venue (typically the local one); the remaining four
// are raw 0-100 inputs. All thresholds are exact; the bands are monotonic but
// deliberately not smooth.
package scoring

import (
	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// ratioBand maps a percent ratio (candidate relative to reference, where
// higher is worse) to a band score.
func ratioBand(ratio uint64) uint32 {
	switch {
	case ratio < 80:
		return 100
	case ratio < 90:
		return 90
	case ratio < 95:
		return 80
	case ratio <= 100:
		return 70
	case ratio <= 105:
		return 50
	case ratio <= 110:
		return 30
	default:
		return 10
	}
}

func timeBand(ratio uint64) uint32 {
	switch {
	case ratio < 50:
		return 100
	case ratio < 75:
		return 90
	case ratio < 90:
		return 80
	case ratio <= 100:
		return 70
	case ratio <= 120:
		return 50
	case ratio <= 150:
		return 30
	default:
		return 10
	}
}

// percentRatio returns value*100/ref as a saturated uint64.
func percentRatio(value, ref *uint256.Int) uint64 {
	r := new(uint256.Int).Mul(value, uint256.NewInt(100))
	r.Div(r, ref)
	if !r.IsUint64() {
		return ^uint64(0)
	}
	return r.Uint64()
}

// outputScore: higher output is better, so the ratio is reference over
// candidate.
func outputScore(data, ref types.ComparisonData) uint32 {
	if data.NetOutput == nil || data.NetOutput.IsZero() {
		return 0
	}
	if ref.NetOutput == nil || ref.NetOutput.IsZero() {
		return 100
	}
	return ratioBand(percentRatio(ref.NetOutput, data.NetOutput))
}

// costScore: lower cost is better, so the ratio is candidate over reference.
func costScore(data, ref types.ComparisonData) uint32 {
	refZero := ref.TotalCost == nil || ref.TotalCost.IsZero()
	dataZero := data.TotalCost == nil || data.TotalCost.IsZero()
	if refZero {
		if dataZero {
			return 70
		}
		return 10
	}
	return ratioBand(percentRatio(data.TotalCost, ref.TotalCost))
}

func timeScore(data, ref types.ComparisonData) uint32 {
	if ref.ExecutionTime == 0 {
		if data.ExecutionTime == 0 {
			return 70
		}
		return 10
	}
	return timeBand(uint64(data.ExecutionTime) * 100 / uint64(ref.ExecutionTime))
}

func clamp100(v uint32) uint32 {
	if v > 100 {
		return 100
	}
	return v
}

// bridgePenalty grows with execution time: base 5, +10 beyond 600s, +15
// beyond 1800s.
func bridgePenalty(data types.ComparisonData) uint32 {
	if !data.RequiresBridge {
		return 0
	}
	penalty := uint32(5)
	if data.ExecutionTime > 600 {
		penalty += 10
	}
	if data.ExecutionTime > 1800 {
		penalty += 15
	}
	return penalty
}

// Score computes the weighted 0-100 score of a venue against a reference.
func Score(data types.ComparisonData, weights Weights, ref types.ComparisonData) uint32 {
	sum := weights.Output*outputScore(data, ref) +
		weights.Cost*costScore(data, ref) +
		weights.Time*timeScore(data, ref) +
		weights.Reliability*uint32(data.Reliability) +
		weights.Confidence*uint32(data.Confidence) +
		weights.Liquidity*clamp100(data.LiquidityScore) +
		weights.Historical*clamp100(data.HistoricalPerformance)

	score := sum / 100
	penalty := bridgePenalty(data)
	if penalty >= score {
		return 0
	}
	return score - penalty
}

// Compare reports whether a scores strictly higher than b.
func Compare(a, b types.ComparisonData, weights Weights, ref types.ComparisonData) bool {
	return Score(a, weights, ref) > Score(b, weights, ref)
}

// Rank orders venue positions by descending score. Exact ties break by
// ascending position so rankings stay deterministic.
func Rank(venues []types.ComparisonData, weights Weights, ref types.ComparisonData) []int {
	scores := make([]uint32, len(venues))
	order := make([]int, len(venues))
	for i, v := range venues {
		scores[i] = Score(v, weights, ref)
		order[i] = i
	}

	// Exchange sort; the input sets are small.
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			si, sj := scores[order[i]], scores[order[j]]
			if sj > si || (sj == si && order[j] < order[i]) {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	return order
}

// RiskAdjustedScore blends retained-output efficiency, reliability, and
// confidence 40/30/30, then subtracts venue risk scaled down by the caller's
// risk tolerance (0 = fully risk-averse, 100 = penalties ignored).
func RiskAdjustedScore(data types.ComparisonData, riskTolerance uint32) uint32 {
	riskTolerance = clamp100(riskTolerance)

	var efficiency uint32
	if data.OutputAmount != nil && !data.OutputAmount.IsZero() && data.NetOutput != nil {
		efficiency = clamp100(uint32(percentRatio(data.NetOutput, data.OutputAmount)))
	}

	base := (efficiency*40 + uint32(data.Reliability)*30 + uint32(data.Confidence)*30) / 100

	var penalty uint32
	if data.RequiresBridge {
		penalty += 20
	}
	if data.ExecutionTime > 300 {
		penalty += 15
	}
	if data.LiquidityScore < 50 {
		penalty += 10
	}
	penalty = penalty * (100 - riskTolerance) / 100

	if penalty >= base {
		return 0
	}
	return base - penalty
}

// FilterValid keeps the venues meeting all three thresholds simultaneously.
func FilterValid(venues []types.ComparisonData, minNetOutput *uint256.Int, maxExecutionTime uint32, minReliability uint8) []types.ComparisonData {
	out := make([]types.ComparisonData, 0, len(venues))
	for _, v := range venues {
		if v.NetOutput == nil || v.NetOutput.Lt(minNetOutput) {
			continue
		}
		if v.ExecutionTime > maxExecutionTime {
			continue
		}
		if v.Reliability < minReliability {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DiversificationBenefit scores a proposed split across venues: the variances
// of execution time and reliability are summed and inverted, so lower
// cross-venue dispersion scores higher. Ratios must sum to exactly 100.
func DiversificationBenefit(venues []types.ComparisonData, splitRatios []uint32) (uint32, error) {
	if len(venues) != len(splitRatios) {
		return 0, types.ErrLengthMismatch
	}
	if len(venues) == 0 {
		return 0, types.ErrInvalidSplit
	}
	var ratioSum uint32
	for _, r := range splitRatios {
		ratioSum += r
	}
	if ratioSum != 100 {
		return 0, types.ErrInvalidSplit
	}

	times := make([]int64, len(venues))
	reliabilities := make([]int64, len(venues))
	for i, v := range venues {
		times[i] = int64(v.ExecutionTime)
		reliabilities[i] = int64(v.Reliability)
	}

	totalVariance := variance(times) + variance(reliabilities)
	if totalVariance == 0 {
		return 100, nil
	}
	benefit := 10000 / totalVariance
	if benefit > 100 {
		benefit = 100
	}
	return uint32(benefit), nil
}

// variance is the integer population variance.
func variance(values []int64) int64 {
	n := int64(len(values))
	var sum int64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var acc int64
	for _, v := range values {
		d := v - mean
		acc += d * d
	}
	return acc / n
}
