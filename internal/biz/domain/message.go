package domain

import (
	"strings"
	"time"
)

// CommandPrefix marks messages addressed to command bots rather than to people
const CommandPrefix = "!"

// Message represents an inbound chat message
type Message struct {
	ID         string
	ChannelID  string
	GuildID    string
	Content    string
	AuthorID   string
	AuthorName string
	CreateTime time.Time

	MentionsBot     bool   // Whether the bot user is among the message mentions
	ReplyToAuthorID string // Author of the referenced message, empty if not a reply
}

// IsFromBot checks if the message is from the bot
func (m *Message) IsFromBot(botID string) bool {
	return m.AuthorID == botID
}

// RepliesTo checks if the message is a reply to a message authored by userID
func (m *Message) RepliesTo(userID string) bool {
	return m.ReplyToAuthorID != "" && m.ReplyToAuthorID == userID
}

// IsCommand checks if the message starts with the command prefix
func (m *Message) IsCommand() bool {
	return strings.HasPrefix(m.Content, CommandPrefix)
}

// IsConversational reports whether a human wrote the message as part of the conversation
func (m *Message) IsConversational(botID string) bool {
	return !m.IsFromBot(botID) && !m.IsCommand()
}
