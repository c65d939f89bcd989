package domain

// Channel is a text channel the bot can see
type Channel struct {
	ID      string
	GuildID string
	Name    string
	CanSend bool // Whether the bot has send permission in this channel
}
