package usecase

import (
	"strings"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
)

// PromptConfig contains prompt configuration
type PromptConfig struct {
	SystemPrompt    string // Static persona prompt
	SpeakUpTemplate string // Speak-up instruction (supports {{preview}})

	HistoryTurns int // History turns included in every prompt
	PreviewTurns int // Turns summarized into the speak-up instruction
}

// DefaultSystemPrompt is used when no prompt file could be read
const DefaultSystemPrompt = "You are a helpful assistant."

// DefaultPromptConfig contains default prompt configuration
var DefaultPromptConfig = PromptConfig{
	SystemPrompt: DefaultSystemPrompt,
	SpeakUpTemplate: `Write one short, casual message to join the conversation in this channel naturally, as one more member of the group would.
Do not greet everyone, do not announce yourself and do not ask whether anyone needs help.
Recent conversation: {{preview}}`,
	HistoryTurns: 10,
	PreviewTurns: 5,
}

// PromptBuilder assembles completion requests from history.
// Order is fixed: system prompt, recent history, then the concrete ask.
type PromptBuilder struct {
	history *HistoryStore
	cfg     PromptConfig
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder(history *HistoryStore, cfg PromptConfig) *PromptBuilder {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultPromptConfig.SystemPrompt
	}
	if cfg.SpeakUpTemplate == "" {
		cfg.SpeakUpTemplate = DefaultPromptConfig.SpeakUpTemplate
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = DefaultPromptConfig.HistoryTurns
	}
	if cfg.PreviewTurns <= 0 {
		cfg.PreviewTurns = DefaultPromptConfig.PreviewTurns
	}
	return &PromptBuilder{history: history, cfg: cfg}
}

// Build produces the ordered messages for a channel.
// trigger is the triggering message text and is only used in reply mode.
func (b *PromptBuilder) Build(channelID string, mode domain.Mode, trigger string) []domain.PromptMessage {
	recent := b.history.Recent(channelID, b.cfg.HistoryTurns)

	messages := make([]domain.PromptMessage, 0, len(recent)+2)
	messages = append(messages, domain.PromptMessage{Role: domain.RoleSystem, Content: b.cfg.SystemPrompt})
	for _, t := range recent {
		messages = append(messages, domain.PromptMessage{Role: t.Role, Content: t.Content})
	}

	if mode == domain.ModeSpeakUp {
		return append(messages, domain.PromptMessage{Role: domain.RoleUser, Content: b.SpeakUpInstruction(channelID)})
	}
	return append(messages, domain.PromptMessage{Role: domain.RoleUser, Content: trigger})
}

// SpeakUpInstruction renders the speak-up template with the channel preview
func (b *PromptBuilder) SpeakUpInstruction(channelID string) string {
	preview := b.history.Preview(channelID, b.cfg.PreviewTurns)
	return strings.TrimSpace(strings.ReplaceAll(b.cfg.SpeakUpTemplate, "{{preview}}", preview))
}
