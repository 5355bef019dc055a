package pricing

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xswap/router/pkg/types"
)

func price(mantissa int64, conf uint64, expo int32) types.Price {
	return types.Price{Mantissa: mantissa, Conf: conf, Expo: expo, PublishTime: 1700000000}
}

func TestNormalize(t *testing.T) {
	// 50000 USD with 8 decimals of exponent: 5e12 * 10^-8
	norm, err := Normalize(price(5000000000000, 0, -8))
	require.NoError(t, err)
	want := new(uint256.Int).Mul(uint256.NewInt(50000), Precision)
	assert.Equal(t, want, norm)

	// Positive exponent
	norm, err = Normalize(price(3, 0, 2))
	require.NoError(t, err)
	want = new(uint256.Int).Mul(uint256.NewInt(300), Precision)
	assert.Equal(t, want, norm)

	// Non-positive mantissa is invalid
	_, err = Normalize(price(0, 0, 0))
	assert.ErrorIs(t, err, types.ErrInvalidPriceData)
	_, err = Normalize(types.Price{Mantissa: -5, Expo: 0})
	assert.ErrorIs(t, err, types.ErrInvalidPriceData)
}

func TestNormalize_OverflowFailsInsteadOfWrapping(t *testing.T) {
	_, err := Normalize(price(1<<62, 0, 70))
	assert.ErrorIs(t, err, types.ErrOverflow)

	// exponent alone beyond 10^76 can never be scaled
	_, err = Normalize(price(1, 0, 100))
	assert.ErrorIs(t, err, types.ErrOverflow)
}

func TestConvert_Identity(t *testing.T) {
	p := price(123456, 0, -4)
	amount := new(uint256.Int).Mul(uint256.NewInt(1), Precision)

	out, err := Convert(p, p, amount)
	require.NoError(t, err)
	assert.Equal(t, amount, out)
}

func TestConvert_Monotonicity(t *testing.T) {
	amount := new(uint256.Int).Mul(uint256.NewInt(10), Precision)
	out1, err := Convert(price(2000, 0, 0), price(50000, 0, 0), amount)
	require.NoError(t, err)
	out2, err := Convert(price(2100, 0, 0), price(50000, 0, 0), amount)
	require.NoError(t, err)
	assert.True(t, out2.Gt(out1), "higher input price must raise output")

	out3, err := Convert(price(2000, 0, 0), price(55000, 0, 0), amount)
	require.NoError(t, err)
	assert.True(t, out3.Lt(out1), "higher output price must lower output")
}

func TestConvert_TwoStepRounding(t *testing.T) {
	// amountIn = 1 base unit, priceIn = 0.5, priceOut = 0.001.
	// First division truncates 0.5 to 0, so the result is 0. The combined
	// single-division formula would yield 500; the two-step order is the
	// contract.
	out, err := Convert(price(5, 0, -1), price(1, 0, -3), uint256.NewInt(1))
	require.NoError(t, err)
	assert.True(t, out.IsZero())
}

func TestConvert_ZeroOutputPrice(t *testing.T) {
	// Output price normalizes to zero (mantissa too small for the negative
	// exponent).
	_, err := Convert(price(1, 0, 0), price(1, 0, -40), uint256.NewInt(1000))
	assert.ErrorIs(t, err, types.ErrInvalidPriceData)
}

func TestConfidenceScore_Bands(t *testing.T) {
	cases := []struct {
		conf uint64 // against mantissa 10000 -> conf == bps
		want uint8
	}{
		{1000, 10},
		{500, 30},
		{200, 50},
		{100, 70},
		{50, 85},
		{49, 95},
		{0, 95},
	}
	for _, tc := range cases {
		p := price(10000, tc.conf, -2)
		assert.Equal(t, tc.want, ConfidenceScore(p, p), "conf %d", tc.conf)
	}
}

func TestConfidenceScore_Averages(t *testing.T) {
	// 1000 bps and 0 bps average to 500 bps -> 30.
	wide := price(10000, 1000, -2)
	tight := price(10000, 0, -2)
	assert.Equal(t, uint8(30), ConfidenceScore(wide, tight))
}

func TestConvertWithConfidence_Haircut(t *testing.T) {
	// 500 bps average confidence -> score 30 -> discount (100-30)/2 = 35%.
	wide := price(10000, 500, -2)
	amount := uint256.NewInt(1000)

	out, confidence, err := ConvertWithConfidence(wide, wide, amount)
	require.NoError(t, err)
	assert.Equal(t, uint8(30), confidence)
	assert.Equal(t, uint256.NewInt(650), out)
}

func TestConvertWithConfidence_NoHaircutAtOrAbove50(t *testing.T) {
	p := price(10000, 200, -2) // 200 bps -> score 50
	out, confidence, err := ConvertWithConfidence(p, p, uint256.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, uint8(50), confidence)
	assert.Equal(t, uint256.NewInt(1000), out)
}

func TestApplySlippage(t *testing.T) {
	x := uint256.NewInt(123456)

	out, err := ApplySlippage(x, 0)
	require.NoError(t, err)
	assert.Equal(t, x, out)

	out, err = ApplySlippage(x, 10000)
	require.NoError(t, err)
	assert.True(t, out.IsZero())

	out, err = ApplySlippage(uint256.NewInt(10000), 250)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(9750), out)

	_, err = ApplySlippage(x, 10001)
	assert.ErrorIs(t, err, types.ErrInvalidSlippage)
}

func TestPriceImpactBps(t *testing.T) {
	assert.Equal(t, uint32(500), PriceImpactBps(uint256.NewInt(500), uint256.NewInt(10000)))
	assert.Equal(t, uint32(10000), PriceImpactBps(uint256.NewInt(20000), uint256.NewInt(10000)))
	assert.Equal(t, uint32(10000), PriceImpactBps(uint256.NewInt(1), uint256.NewInt(0)))
	assert.Equal(t, uint32(0), PriceImpactBps(uint256.NewInt(0), uint256.NewInt(10000)))
}

func TestTWAP(t *testing.T) {
	prices := []*uint256.Int{uint256.NewInt(100), uint256.NewInt(200)}
	timestamps := []int64{90, 100}

	// start = 80, weights 11 and 21: (100*11 + 200*21) / 32 = 165
	out, err := TWAP(prices, timestamps, 100, 20)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(165), out)
}

func TestTWAP_ExcludesSamplesOutsideWindow(t *testing.T) {
	prices := []*uint256.Int{uint256.NewInt(1000), uint256.NewInt(200)}
	timestamps := []int64{50, 100}

	// Only the second sample is inside [80, 100].
	out, err := TWAP(prices, timestamps, 100, 20)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(200), out)
}

func TestTWAP_Errors(t *testing.T) {
	_, err := TWAP([]*uint256.Int{uint256.NewInt(1)}, nil, 100, 20)
	assert.ErrorIs(t, err, types.ErrLengthMismatch)

	_, err = TWAP([]*uint256.Int{uint256.NewInt(1)}, []int64{10}, 100, 20)
	assert.ErrorIs(t, err, types.ErrNoSamples)
}
