package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xswap/router/pkg/types"
)

func TestPriceCache_PutGet(t *testing.T) {
	c := NewPriceCache(time.Minute)

	p := types.Price{Mantissa: 5000000000000, Conf: 1000000000, Expo: -8, PublishTime: 1700000000}
	c.Put("eth-usd", p)

	got, ok := c.Get("eth-usd")
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = c.Get("btc-usd")
	assert.False(t, ok)
}

func TestPriceCache_Expiry(t *testing.T) {
	c := NewPriceCache(10 * time.Millisecond)

	c.Put("eth-usd", types.Price{Mantissa: 1, Expo: 0})
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("eth-usd")
	assert.False(t, ok)
}

func TestPriceCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewPriceCache(0)

	c.Put("eth-usd", types.Price{Mantissa: 1, Expo: 0})
	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get("eth-usd")
	assert.True(t, ok)
}

func TestPriceCache_DeleteAndClear(t *testing.T) {
	c := NewPriceCache(time.Minute)

	c.Put("a", types.Price{Mantissa: 1})
	c.Put("b", types.Price{Mantissa: 2})

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}
