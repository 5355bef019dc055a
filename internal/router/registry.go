package router

import (
	"sync"

	"github.com/xswap/router/pkg/types"
)

// Registry is the append-only venue arena. Index 0 is the local venue, created
// once and never removed; deactivation is the only removal mechanism, so
// indices handed out to external callers stay stable forever.
type Registry struct {
	mu     sync.RWMutex
	venues []types.Venue
}

// NewRegistry creates a registry seeded with the local venue at index 0.
func NewRegistry(local types.Venue) *Registry {
	local.Active = true
	return &Registry{venues: []types.Venue{local}}
}

// Add appends a venue and returns its index.
func (r *Registry) Add(v types.Venue) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venues = append(r.venues, v)
	return uint32(len(r.venues) - 1)
}

// Get returns the venue at an index.
func (r *Registry) Get(index uint32) (types.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(index) >= len(r.venues) {
		return types.Venue{}, types.ErrVenueNotFound
	}
	return r.venues[index], nil
}

// SetActive flips a venue's active flag and refreshes its update time.
func (r *Registry) SetActive(index uint32, active bool, now int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(index) >= len(r.venues) {
		return types.ErrVenueNotFound
	}
	r.venues[index].Active = active
	r.venues[index].LastUpdate = now
	return nil
}

// Count returns the number of registered venues, active or not.
func (r *Registry) Count() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint32(len(r.venues))
}

// Snapshot returns a stable copy of all venues for one selection pass.
func (r *Registry) Snapshot() []types.Venue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Venue, len(r.venues))
	copy(out, r.venues)
	return out
}

// ActiveIndices returns the indices of active venues in ascending order.
func (r *Registry) ActiveIndices() []uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]uint32, 0, len(r.venues))
	for i, v := range r.venues {
		if v.Active {
			out = append(out, uint32(i))
		}
	}
	return out
}
