// Package oracle wraps the external price feed with validation: staleness,
// positivity, and an optional read-through cache. A single failed lookup
// propagates immediately; callers downgrade it to "no usable price".
package oracle

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xswap/router/pkg/cache"
	"github.com/xswap/router/pkg/types"
)

// Adapter validates prices coming off a PriceFeed.
type Adapter struct {
	feed   PriceFeed
	prices *cache.PriceCache
	log    *logrus.Entry
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithCache enables a read-through lookup cache. Validation still runs on
// cached samples, so staleness is never masked.
func WithCache(ttl time.Duration) Option {
	return func(a *Adapter) {
		a.prices = cache.NewPriceCache(ttl)
	}
}

// NewAdapter wraps a feed.
func NewAdapter(feed PriceFeed, opts ...Option) *Adapter {
	a := &Adapter{
		feed: feed,
		log:  logrus.WithField("component", "oracle-adapter"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Price returns the latest sample for a feed without age or sign checks.
func (a *Adapter) Price(id types.FeedID) (types.Price, error) {
	if a.prices != nil {
		if p, ok := a.prices.Get(id); ok {
			return p, nil
		}
	}

	p, err := a.feed.GetPrice(id)
	if err != nil {
		a.log.WithField("feed", id).Debugf("price lookup failed: %v", err)
		return types.Price{}, err
	}
	if a.prices != nil {
		a.prices.Put(id, p)
	}
	return p, nil
}

// ValidPrice returns the latest sample for a feed after validating it against
// maxAge at the given time.
func (a *Adapter) ValidPrice(id types.FeedID, maxAge uint32, now int64) (types.Price, error) {
	p, err := a.Price(id)
	if err != nil {
		return types.Price{}, err
	}
	if err := Validate(p, maxAge, now); err != nil {
		return types.Price{}, fmt.Errorf("feed %s: %w", id, err)
	}
	return p, nil
}

// Validate checks a sample against the staleness bound and positivity
// invariant.
func Validate(p types.Price, maxAge uint32, now int64) error {
	if p.Mantissa <= 0 {
		return types.ErrInvalidPriceData
	}
	if now-p.PublishTime > int64(maxAge) {
		return types.ErrStalePriceData
	}
	return nil
}
