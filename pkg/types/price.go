package types

// Price is an exponent-scaled fixed-point price sample as published by the
// oracle collaborator. The real value is Mantissa * 10^Expo; Conf is the
// confidence interval in the same exponent domain.
type Price struct {
	Mantissa    int64  `json:"mantissa"`
	Conf        uint64 `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

// Age returns the sample age in seconds relative to now. Future-dated samples
// report zero age.
func (p Price) Age(now int64) int64 {
	if p.PublishTime >= now {
		return 0
	}
	return now - p.PublishTime
}

// TokenPriceConfig binds a token to its oracle feed. A token must carry an
// active config before it can be priced.
type TokenPriceConfig struct {
	FeedID       FeedID `json:"feed_id"`
	MaxStaleness uint32 `json:"max_staleness"` // seconds
	ConfiguredAt int64  `json:"configured_at"`
	Active       bool   `json:"active"`
}

// PriceUpdate is the payload carried by an oracle update blob.
type PriceUpdate struct {
	FeedID FeedID `json:"feed_id"`
	Price  Price  `json:"price"`
}
