package oracle

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/xswap/router/pkg/types"
)

// PriceFeed is the price oracle collaborator. A lookup either returns a
// complete sample or fails; there is no partial result and no retry.
type PriceFeed interface {
	// GetPrice returns the latest sample for a feed, or ErrPriceUnavailable.
	GetPrice(id types.FeedID) (types.Price, error)
	// UpdatePriceFeeds pushes fresh samples. Fails with
	// ErrInsufficientPayment when payment does not cover the update fee.
	UpdatePriceFeeds(updates [][]byte, payment *uint256.Int) error
	// GetUpdateFee returns the fee required to push the given updates.
	GetUpdateFee(updates [][]byte) *uint256.Int
}

// MemoryFeed is an in-process PriceFeed used by tests and the simulator.
// Update blobs are JSON-encoded PriceUpdate payloads.
type MemoryFeed struct {
	mu           sync.RWMutex
	prices       map[types.FeedID]types.Price
	perUpdateFee *uint256.Int
}

// NewMemoryFeed creates an empty feed charging perUpdateFee per update blob.
func NewMemoryFeed(perUpdateFee *uint256.Int) *MemoryFeed {
	if perUpdateFee == nil {
		perUpdateFee = new(uint256.Int)
	}
	return &MemoryFeed{
		prices:       make(map[types.FeedID]types.Price),
		perUpdateFee: perUpdateFee.Clone(),
	}
}

// SetPrice stores a sample directly, bypassing fee accounting.
func (f *MemoryFeed) SetPrice(id types.FeedID, p types.Price) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[id] = p
}

func (f *MemoryFeed) GetPrice(id types.FeedID) (types.Price, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.prices[id]
	if !ok {
		return types.Price{}, fmt.Errorf("feed %s: %w", id, types.ErrPriceUnavailable)
	}
	return p, nil
}

func (f *MemoryFeed) GetUpdateFee(updates [][]byte) *uint256.Int {
	return new(uint256.Int).Mul(f.perUpdateFee, uint256.NewInt(uint64(len(updates))))
}

func (f *MemoryFeed) UpdatePriceFeeds(updates [][]byte, payment *uint256.Int) error {
	fee := f.GetUpdateFee(updates)
	if payment == nil || payment.Lt(fee) {
		return types.ErrInsufficientPayment
	}

	parsed := make([]types.PriceUpdate, 0, len(updates))
	for _, blob := range updates {
		var u types.PriceUpdate
		if err := json.Unmarshal(blob, &u); err != nil {
			return fmt.Errorf("decode price update: %w", err)
		}
		parsed = append(parsed, u)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range parsed {
		f.prices[u.FeedID] = u.Price
	}
	return nil
}
