package data

import (
	"context"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/infra/discord"
)

// DiscordClient is the subset of the Discord client used by the chat repository
type DiscordClient interface {
	BotUserID() string
	SendMessage(ctx context.Context, channelID, text string) error
	ReplyMessage(ctx context.Context, channelID, msgID, text string) error
	Typing(ctx context.Context, channelID string) error
	GetChannelMessages(ctx context.Context, channelID string, limit int) ([]*discord.Message, error)
	ListTextChannels(ctx context.Context) ([]discord.TextChannel, error)
}

// discordRepo implements the Discord chat repository
type discordRepo struct {
	client DiscordClient
}

// NewDiscordRepo creates a new Discord repository
func NewDiscordRepo(client DiscordClient) repo.ChatRepo {
	return &discordRepo{client: client}
}

// BotUserID returns the bot's own user ID
func (r *discordRepo) BotUserID() string {
	return r.client.BotUserID()
}

// SendMessage sends a plain channel message
func (r *discordRepo) SendMessage(ctx context.Context, channelID, text string) error {
	return r.client.SendMessage(ctx, channelID, text)
}

// SendReply sends a message replying to msgID
func (r *discordRepo) SendReply(ctx context.Context, channelID, msgID, text string) error {
	return r.client.ReplyMessage(ctx, channelID, msgID, text)
}

// Typing shows the typing indicator
func (r *discordRepo) Typing(ctx context.Context, channelID string) error {
	return r.client.Typing(ctx, channelID)
}

// GetChannelHistory gets the most recent channel messages, newest first
func (r *discordRepo) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	msgs, err := r.client.GetChannelMessages(ctx, channelID, limit)
	if err != nil {
		return nil, err
	}

	botID := r.client.BotUserID()
	result := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, ToDomainMessage(m, botID))
	}
	return result, nil
}

// ListTextChannels lists guild text channels with the bot's send permission
func (r *discordRepo) ListTextChannels(ctx context.Context) ([]domain.Channel, error) {
	channels, err := r.client.ListTextChannels(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		result = append(result, domain.Channel{
			ID:      ch.ID,
			GuildID: ch.GuildID,
			Name:    ch.Name,
			CanSend: ch.CanSend,
		})
	}
	return result, nil
}

// ToDomainMessage converts a Discord message into a domain message
func ToDomainMessage(m *discord.Message, botID string) domain.Message {
	return domain.Message{
		ID:              m.MsgID,
		ChannelID:       m.ChannelID,
		GuildID:         m.GuildID,
		Content:         m.Content,
		AuthorID:        m.AuthorID,
		AuthorName:      m.AuthorName,
		CreateTime:      m.CreateTime,
		MentionsBot:     botID != "" && m.MentionsUser(botID),
		ReplyToAuthorID: m.ReplyToAuthorID,
	}
}
