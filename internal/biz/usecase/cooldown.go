package usecase

import (
	"sync"
	"time"
)

// LastSpokeRegistry tracks when the bot last spoke unprompted in each channel
type LastSpokeRegistry struct {
	mu   sync.RWMutex
	last map[string]time.Time
}

// NewLastSpokeRegistry creates an empty registry
func NewLastSpokeRegistry() *LastSpokeRegistry {
	return &LastSpokeRegistry{last: make(map[string]time.Time)}
}

// Get returns the last unprompted message time for a channel
func (r *LastSpokeRegistry) Get(channelID string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.last[channelID]
	return t, ok
}

// Set records an unprompted message in a channel
func (r *LastSpokeRegistry) Set(channelID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[channelID] = at
}

// InCooldown checks if fewer than cooldown has elapsed since the channel's last unprompted message
func (r *LastSpokeRegistry) InCooldown(channelID string, now time.Time, cooldown time.Duration) bool {
	last, ok := r.Get(channelID)
	return ok && now.Sub(last) < cooldown
}

// Snapshot returns a copy of the registry
func (r *LastSpokeRegistry) Snapshot() map[string]time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]time.Time, len(r.last))
	for k, v := range r.last {
		out[k] = v
	}
	return out
}
