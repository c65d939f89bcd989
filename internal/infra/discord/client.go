package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrNotConnected is returned when the gateway session has no ready state yet
var ErrNotConnected = errors.New("discord session not ready")

// Message represents a received Discord message
type Message struct {
	MsgID           string
	ChannelID       string
	GuildID         string
	Content         string
	AuthorID        string
	AuthorName      string
	AuthorIsBot     bool
	Mentions        []string // Mentioned user IDs
	ReplyToAuthorID string   // Author of the referenced message, empty if not a reply
	CreateTime      time.Time
}

// MentionsUser checks if userID is among the message mentions
func (m *Message) MentionsUser(userID string) bool {
	for _, id := range m.Mentions {
		if id == userID {
			return true
		}
	}
	return false
}

// TextChannel is a guild text channel visible to the bot
type TextChannel struct {
	ID        string
	GuildID   string
	GuildName string
	Name      string
	CanSend   bool
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// ReadyHandler is the callback for gateway readiness
type ReadyHandler func(botUser string, guilds int)

// Client is the Discord gateway and REST client
type Client struct {
	token   string
	session *discordgo.Session
	logger  *slog.Logger

	mu        sync.RWMutex
	botUserID string
	botName   string
	onMessage MessageHandler
	onReady   ReadyHandler
}

// NewClient creates a new Discord client
func NewClient(token string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	// Deliver events in gateway order; handlers must not block
	s.SyncEvents = true

	c := &Client{
		token:   token,
		session: s,
		logger:  logger.With("component", "discord"),
	}

	s.AddHandler(c.handleReady)
	s.AddHandler(c.handleMessageCreate)

	return c, nil
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = handler
}

// OnReady sets the ready handler
func (c *Client) OnReady(handler ReadyHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = handler
}

// Start opens the gateway connection
func (c *Client) Start() error {
	c.logger.Info("opening gateway connection")
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection
func (c *Client) Stop() error {
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("close gateway: %w", err)
	}
	c.logger.Info("gateway connection closed")
	return nil
}

// BotUserID returns the bot's own user ID, empty before the gateway is ready
func (c *Client) BotUserID() string {
	if u := c.stateUser(); u != nil {
		return u.ID
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.botUserID
}

// BotName returns the bot's username
func (c *Client) BotName() string {
	if u := c.stateUser(); u != nil {
		return u.Username
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.botName
}

// stateUser returns the user from the session state, set by Open before it returns
func (c *Client) stateUser() *discordgo.User {
	if c.session == nil || c.session.State == nil {
		return nil
	}
	c.session.State.RLock()
	defer c.session.State.RUnlock()
	return c.session.State.User
}

func (c *Client) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	c.mu.Lock()
	if r.User != nil {
		c.botUserID = r.User.ID
		c.botName = r.User.Username
	}
	handler := c.onReady
	name := c.botName
	c.mu.Unlock()

	if handler != nil {
		handler(name, len(r.Guilds))
	}
}

func (c *Client) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}

	c.mu.RLock()
	handler := c.onMessage
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	handler(convertMessage(m.Message))
}

// convertMessage flattens a discordgo message
func convertMessage(m *discordgo.Message) *Message {
	msg := &Message{
		MsgID:      m.ID,
		ChannelID:  m.ChannelID,
		GuildID:    m.GuildID,
		Content:    m.Content,
		CreateTime: m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorIsBot = m.Author.Bot
	}
	for _, u := range m.Mentions {
		if u != nil {
			msg.Mentions = append(msg.Mentions, u.ID)
		}
	}
	if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil {
		msg.ReplyToAuthorID = m.ReferencedMessage.Author.ID
	}
	return msg
}

// SendMessage sends a plain message to a channel
func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	_, err := c.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// ReplyMessage sends a message referencing msgID
func (c *Client) ReplyMessage(ctx context.Context, channelID, msgID, text string) error {
	ref := &discordgo.MessageReference{
		MessageID: msgID,
		ChannelID: channelID,
	}
	_, err := c.session.ChannelMessageSendReply(channelID, text, ref, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// Typing triggers the typing indicator in a channel (lasts ~10s)
func (c *Client) Typing(ctx context.Context, channelID string) error {
	if err := c.session.ChannelTyping(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("typing: %w", err)
	}
	return nil
}

// GetChannelMessages fetches the most recent messages of a channel, newest first
func (c *Client) GetChannelMessages(ctx context.Context, channelID string, limit int) ([]*Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	msgs, err := c.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel messages: %w", err)
	}

	result := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, convertMessage(m))
	}
	return result, nil
}

// ListTextChannels lists guild text channels from the gateway state cache
func (c *Client) ListTextChannels(ctx context.Context) ([]TextChannel, error) {
	user := c.stateUser()
	if user == nil {
		return nil, ErrNotConnected
	}
	botID := user.ID
	state := c.session.State

	state.RLock()
	type channelRef struct {
		ch        *discordgo.Channel
		guildName string
	}
	var refs []channelRef
	for _, g := range state.Guilds {
		for _, ch := range g.Channels {
			if ch.Type == discordgo.ChannelTypeGuildText {
				refs = append(refs, channelRef{ch: ch, guildName: g.Name})
			}
		}
	}
	state.RUnlock()

	result := make([]TextChannel, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result = append(result, TextChannel{
			ID:        ref.ch.ID,
			GuildID:   ref.ch.GuildID,
			GuildName: ref.guildName,
			Name:      ref.ch.Name,
			CanSend:   c.canSend(botID, ref.ch.ID),
		})
	}
	return result, nil
}

func (c *Client) canSend(userID, channelID string) bool {
	perms, err := c.session.State.UserChannelPermissions(userID, channelID)
	if err != nil {
		c.logger.Debug("permission lookup failed", "channel_id", channelID, "error", err)
		return false
	}
	return perms&discordgo.PermissionSendMessages != 0
}
