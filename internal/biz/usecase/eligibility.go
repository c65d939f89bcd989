package usecase

import (
	"sort"
	"strings"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
)

// ChannelFilter is the optional channel allow-list. Empty allows every channel.
type ChannelFilter struct {
	allowed map[string]struct{}
}

// NewChannelFilter creates a channel filter from channel IDs
func NewChannelFilter(ids []string) ChannelFilter {
	f := ChannelFilter{allowed: make(map[string]struct{})}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			f.allowed[id] = struct{}{}
		}
	}
	return f
}

// Allows checks if a channel passes the allow-list
func (f ChannelFilter) Allows(channelID string) bool {
	if len(f.allowed) == 0 {
		return true
	}
	_, ok := f.allowed[channelID]
	return ok
}

// IsEmpty reports whether every channel is allowed
func (f ChannelFilter) IsEmpty() bool {
	return len(f.allowed) == 0
}

// IDs returns the allow-listed channel IDs, sorted
func (f ChannelFilter) IDs() []string {
	ids := make([]string, 0, len(f.allowed))
	for id := range f.allowed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Decision is the outcome of evaluating an inbound message
type Decision int

const (
	DecisionIgnore Decision = iota // Drop the message entirely
	DecisionStore                  // Record the user turn only
	DecisionReply                  // Record the user turn and reply
)

func (d Decision) String() string {
	switch d {
	case DecisionStore:
		return "store"
	case DecisionReply:
		return "reply"
	default:
		return "ignore"
	}
}

// Eligibility decides what to do with inbound messages
type Eligibility struct {
	filter ChannelFilter
}

// NewEligibility creates a new eligibility checker
func NewEligibility(filter ChannelFilter) *Eligibility {
	return &Eligibility{filter: filter}
}

// Evaluate applies the decision table to a message
func (e *Eligibility) Evaluate(msg *domain.Message, botID string) Decision {
	if msg.IsFromBot(botID) {
		return DecisionIgnore
	}
	if !e.filter.Allows(msg.ChannelID) {
		return DecisionIgnore
	}
	if msg.MentionsBot || msg.RepliesTo(botID) {
		return DecisionReply
	}
	return DecisionStore
}
