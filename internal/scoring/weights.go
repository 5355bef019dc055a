package scoring

import "github.com/xswap/router/pkg/types"

// Weights are the seven venue scoring weights. They must sum to exactly 100.
type Weights struct {
	Output      uint32 `json:"output"`
	Cost        uint32 `json:"cost"`
	Time        uint32 `json:"time"`
	Reliability uint32 `json:"reliability"`
	Confidence  uint32 `json:"confidence"`
	Liquidity   uint32 `json:"liquidity"`
	Historical  uint32 `json:"historical"`
}

// Validate fails unless the weights sum to 100.
func (w Weights) Validate() error {
	sum := w.Output + w.Cost + w.Time + w.Reliability + w.Confidence + w.Liquidity + w.Historical
	if sum != 100 {
		return types.ErrInvalidWeights
	}
	return nil
}

// RiskProfile selects a weight preset.
type RiskProfile uint8

const (
	ProfileConservative RiskProfile = iota
	ProfileBalanced
	ProfileAggressive
)

func (p RiskProfile) String() string {
	switch p {
	case ProfileConservative:
		return "conservative"
	case ProfileAggressive:
		return "aggressive"
	default:
		return "balanced"
	}
}

var (
	// ConservativeWeights favor reliability and confidence over raw output.
	ConservativeWeights = Weights{Output: 20, Cost: 10, Time: 10, Reliability: 20, Confidence: 20, Liquidity: 10, Historical: 10}

	// BalancedWeights are the default profile.
	BalancedWeights = Weights{Output: 30, Cost: 15, Time: 10, Reliability: 15, Confidence: 15, Liquidity: 10, Historical: 5}

	// AggressiveWeights chase output and cost, tolerating venue risk.
	AggressiveWeights = Weights{Output: 45, Cost: 20, Time: 10, Reliability: 5, Confidence: 10, Liquidity: 5, Historical: 5}
)

// ProfileWeights returns the preset for a risk profile. Unknown profiles fall
// back to balanced.
func ProfileWeights(p RiskProfile) Weights {
	switch p {
	case ProfileConservative:
		return ConservativeWeights
	case ProfileAggressive:
		return AggressiveWeights
	default:
		return BalancedWeights
	}
}
