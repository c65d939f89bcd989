package repo

import (
	"context"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
)

// ChatRepo is the chat gateway interface
// Responsible for outbound operations against the chat platform
type ChatRepo interface {
	// BotUserID returns the bot's own user ID
	BotUserID() string

	// SendMessage sends a text message to a channel
	SendMessage(ctx context.Context, channelID, text string) error

	// SendReply sends a text message as a reply to msgID
	SendReply(ctx context.Context, channelID, msgID, text string) error

	// Typing shows the typing indicator in a channel
	Typing(ctx context.Context, channelID string) error

	// GetChannelHistory fetches the most recent messages of a channel, newest first
	GetChannelHistory(ctx context.Context, channelID string, limit int) ([]domain.Message, error)

	// ListTextChannels lists text channels across all joined guilds
	ListTextChannels(ctx context.Context) ([]domain.Channel, error)
}
