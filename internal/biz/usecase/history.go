package usecase

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
)

const (
	// MaxHistoryTurns is the per-channel history bound
	MaxHistoryTurns = 50

	previewChars     = 50
	previewSeparator = " | "
)

// HistoryStore keeps a bounded, ordered log of turns per channel.
// Unknown channels are treated as empty history.
type HistoryStore struct {
	maxTurns int

	mu       sync.RWMutex
	channels map[string]*channelHistory
}

type channelHistory struct {
	mu      sync.Mutex
	turns   []domain.Turn
	dropped bool // Removed by Clear; writers must fetch the live entry
}

// NewHistoryStore creates a history store holding at most maxTurns per channel
func NewHistoryStore(maxTurns int) *HistoryStore {
	if maxTurns <= 0 {
		maxTurns = MaxHistoryTurns
	}
	return &HistoryStore{
		maxTurns: maxTurns,
		channels: make(map[string]*channelHistory),
	}
}

// Append adds a turn, evicting the oldest turns beyond the bound
func (s *HistoryStore) Append(channelID string, turn domain.Turn) {
	for {
		h := s.channel(channelID, true)

		h.mu.Lock()
		if h.dropped {
			h.mu.Unlock()
			continue
		}

		h.turns = append(h.turns, turn)
		if over := len(h.turns) - s.maxTurns; over > 0 {
			copy(h.turns, h.turns[over:])
			h.turns = h.turns[:s.maxTurns]
		}
		h.mu.Unlock()
		return
	}
}

// Recent returns the last n turns in chronological order
func (s *HistoryStore) Recent(channelID string, n int) []domain.Turn {
	h := s.channel(channelID, false)
	if h == nil || n <= 0 {
		return []domain.Turn{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := len(h.turns) - n
	if start < 0 {
		start = 0
	}
	result := make([]domain.Turn, len(h.turns)-start)
	copy(result, h.turns[start:])
	return result
}

// Preview summarizes the last n turns as "role: content..." joined by " | "
func (s *HistoryStore) Preview(channelID string, n int) string {
	turns := s.Recent(channelID, n)
	parts := make([]string, 0, len(turns))
	for _, t := range turns {
		parts = append(parts, fmt.Sprintf("%s: %s...", t.Role, truncateRunes(t.Content, previewChars)))
	}
	return strings.Join(parts, previewSeparator)
}

// Len returns the number of turns stored for a channel
func (s *HistoryStore) Len(channelID string) int {
	h := s.channel(channelID, false)
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Channels returns the IDs of channels with recorded history, sorted
func (s *HistoryStore) Channels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops a channel's history, returning the number of turns removed
func (s *HistoryStore) Clear(channelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.channels[channelID]
	if !ok {
		return 0
	}
	delete(s.channels, channelID)

	// Lock order: store, then channel
	h.mu.Lock()
	defer h.mu.Unlock()
	removed := len(h.turns)
	h.turns = nil
	h.dropped = true
	return removed
}

func (s *HistoryStore) channel(channelID string, create bool) *channelHistory {
	s.mu.RLock()
	h, ok := s.channels[channelID]
	s.mu.RUnlock()
	if ok || !create {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.channels[channelID]; !ok {
		h = &channelHistory{}
		s.channels[channelID] = h
	}
	return h
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
