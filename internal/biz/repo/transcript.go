package repo

import (
	"context"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
)

// TranscriptEntry is an archived turn
type TranscriptEntry struct {
	ID        int64
	ChannelID string
	TurnID    string
	Role      domain.Role
	Content   string
	CreatedAt time.Time
}

// TranscriptRepo archives recorded turns (SQLite)
// Write-mostly: the bot never reloads history from it
type TranscriptRepo interface {
	Record(ctx context.Context, channelID, turnID string, turn domain.Turn) error
	ListByChannel(ctx context.Context, channelID string, limit int) ([]*TranscriptEntry, error)
	CleanupOld(ctx context.Context, before time.Time) (int64, error)
	Close() error
}
