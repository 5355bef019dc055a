// Package pricing implements the fixed-point price conversion core. All
// arithmetic is on 256-bit unsigned integers with truncating division; the
// operation order (multiply-then-divide, two sequential divisions in Convert)
// is load-bearing for rounding and must not be "simplified".
package pricing

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// Precision is the global fixed-point scale (1e18).
var Precision = uint256.NewInt(1e18)

var (
	hundred     = uint256.NewInt(100)
	tenThousand = uint256.NewInt(types.MaxBps)
)

// pow10 returns 10^n, reporting failure instead of wrapping. 10^77 overflows
// 256 bits.
func pow10(n int) (*uint256.Int, error) {
	if n > 76 {
		return nil, types.ErrOverflow
	}
	ten := uint256.NewInt(10)
	out := uint256.NewInt(1)
	for i := 0; i < n; i++ {
		out.Mul(out, ten)
	}
	return out, nil
}

// Normalize rescales an exponent-scaled price into Precision fixed point. It
// fails with ErrInvalidPriceData on a non-positive mantissa and with
// ErrOverflow when the positive-exponent multiply would wrap.
func Normalize(p types.Price) (*uint256.Int, error) {
	if p.Mantissa <= 0 {
		return nil, types.ErrInvalidPriceData
	}
	mantissa := uint256.NewInt(uint64(p.Mantissa))

	shift := 18 + int(p.Expo)
	if shift >= 0 {
		mult, err := pow10(shift)
		if err != nil {
			return nil, fmt.Errorf("normalize expo %d: %w", p.Expo, err)
		}
		norm, overflow := new(uint256.Int).MulOverflow(mantissa, mult)
		if overflow {
			return nil, fmt.Errorf("normalize expo %d: %w", p.Expo, types.ErrOverflow)
		}
		return norm, nil
	}

	div, err := pow10(-shift)
	if err != nil {
		return nil, fmt.Errorf("normalize expo %d: %w", p.Expo, err)
	}
	return new(uint256.Int).Div(mantissa, div), nil
}

// Convert converts amountIn of the input token into the output token:
//
//	floor(floor(amountIn * norm(priceIn) / Precision) * Precision / norm(priceOut))
//
// The two sequential truncating divisions match the reference rounding; a
// single combined division truncates differently.
func Convert(priceIn, priceOut types.Price, amountIn *uint256.Int) (*uint256.Int, error) {
	normIn, err := Normalize(priceIn)
	if err != nil {
		return nil, err
	}
	normOut, err := Normalize(priceOut)
	if err != nil {
		return nil, err
	}
	if normOut.IsZero() {
		return nil, types.ErrInvalidPriceData
	}

	value, overflow := new(uint256.Int).MulOverflow(amountIn, normIn)
	if overflow {
		return nil, types.ErrOverflow
	}
	value.Div(value, Precision)

	value, overflow = value.MulOverflow(value, Precision)
	if overflow {
		return nil, types.ErrOverflow
	}
	return value.Div(value, normOut), nil
}

// confidenceBps returns the price's confidence interval relative to the price
// itself, in basis points. Conf and Mantissa share an exponent, so the ratio
// is exponent-free.
func confidenceBps(p types.Price) *uint256.Int {
	if p.Mantissa <= 0 {
		return uint256.NewInt(types.MaxBps)
	}
	bps := new(uint256.Int).Mul(uint256.NewInt(p.Conf), tenThousand)
	return bps.Div(bps, uint256.NewInt(uint64(p.Mantissa)))
}

// ConfidenceScore maps the average relative confidence of the two prices to a
// discrete 0-100 band. Wider intervals score lower.
func ConfidenceScore(priceIn, priceOut types.Price) uint8 {
	avg := new(uint256.Int).Add(confidenceBps(priceIn), confidenceBps(priceOut))
	avg.Div(avg, uint256.NewInt(2))

	switch {
	case avg.CmpUint64(1000) >= 0:
		return 10
	case avg.CmpUint64(500) >= 0:
		return 30
	case avg.CmpUint64(200) >= 0:
		return 50
	case avg.CmpUint64(100) >= 0:
		return 70
	case avg.CmpUint64(50) >= 0:
		return 85
	default:
		return 95
	}
}

// ConvertWithConfidence converts and then haircuts the output when confidence
// is below 50: the output is discounted by (100-confidence)/2 percent.
func ConvertWithConfidence(priceIn, priceOut types.Price, amountIn *uint256.Int) (*uint256.Int, uint8, error) {
	out, err := Convert(priceIn, priceOut, amountIn)
	if err != nil {
		return nil, 0, err
	}
	confidence := ConfidenceScore(priceIn, priceOut)
	if confidence < 50 {
		discount := uint64(100-confidence) / 2
		out.Mul(out, uint256.NewInt(100-discount))
		out.Div(out, hundred)
	}
	return out, confidence, nil
}

// ApplySlippage discounts an amount by slippageBps.
func ApplySlippage(amount *uint256.Int, slippageBps uint32) (*uint256.Int, error) {
	if slippageBps > types.MaxBps {
		return nil, types.ErrInvalidSlippage
	}
	out := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(types.MaxBps-slippageBps)))
	return out.Div(out, tenThousand), nil
}

// PriceImpactBps estimates the impact of a trade against a liquidity depth,
// capped at 10000. Zero depth means maximum impact.
func PriceImpactBps(tradeSize, liquidityDepth *uint256.Int) uint32 {
	if liquidityDepth == nil || liquidityDepth.IsZero() {
		return types.MaxBps
	}
	impact := new(uint256.Int).Mul(tradeSize, tenThousand)
	impact.Div(impact, liquidityDepth)
	if impact.CmpUint64(types.MaxBps) >= 0 {
		return types.MaxBps
	}
	return uint32(impact.Uint64())
}

// TWAP computes a time-weighted average over the samples whose timestamp falls
// inside [now-window, now]. More recent samples weigh more, linearly:
// weight = timestamp - (now - window) + 1.
func TWAP(prices []*uint256.Int, timestamps []int64, now, window int64) (*uint256.Int, error) {
	if len(prices) != len(timestamps) {
		return nil, types.ErrLengthMismatch
	}

	start := now - window
	weightedSum := new(uint256.Int)
	totalWeight := new(uint256.Int)

	for i, ts := range timestamps {
		if ts < start {
			continue
		}
		weight := uint256.NewInt(uint64(ts - start + 1))
		term, overflow := new(uint256.Int).MulOverflow(prices[i], weight)
		if overflow {
			return nil, types.ErrOverflow
		}
		weightedSum.Add(weightedSum, term)
		totalWeight.Add(totalWeight, weight)
	}

	if totalWeight.IsZero() {
		return nil, types.ErrNoSamples
	}
	return weightedSum.Div(weightedSum, totalWeight), nil
}
