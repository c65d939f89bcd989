package service

import (
	"context"
	"sync"

	"github.com/devricklin/discord-casual-bot/internal/biz"
	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// Mock implementations

type sentMessage struct {
	ChannelID string
	ReplyTo   string
	Text      string
}

type mockChatRepo struct {
	mu       sync.Mutex
	botID    string
	channels []domain.Channel
	history  map[string][]domain.Message
	sent     []sentMessage
}

func (m *mockChatRepo) BotUserID() string { return m.botID }

func (m *mockChatRepo) SendMessage(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, Text: text})
	return nil
}

func (m *mockChatRepo) SendReply(ctx context.Context, channelID, msgID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, ReplyTo: msgID, Text: text})
	return nil
}

func (m *mockChatRepo) Typing(ctx context.Context, channelID string) error { return nil }

func (m *mockChatRepo) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[channelID], nil
}

func (m *mockChatRepo) ListTextChannels(ctx context.Context) ([]domain.Channel, error) {
	return m.channels, nil
}

func (m *mockChatRepo) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

type mockCompletionRepo struct {
	mu     sync.Mutex
	result domain.Completion
	calls  int
}

func (m *mockCompletionRepo) Complete(ctx context.Context, req *domain.CompletionRequest) domain.Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result
}

func (m *mockCompletionRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fixture struct {
	chat       *mockChatRepo
	completion *mockCompletionRepo
	uc         *biz.Usecases
	svc        *ConversationService
}

func newFixture(allowed []string, completion domain.Completion, speak usecase.SpeakConfig) *fixture {
	chat := &mockChatRepo{botID: "bot", history: make(map[string][]domain.Message)}
	compl := &mockCompletionRepo{result: completion}
	uc := biz.NewUsecases(chat, compl, nil, biz.Options{
		AllowedChannels: allowed,
		Prompt:          usecase.PromptConfig{SystemPrompt: "persona"},
		Generation:      usecase.DefaultGenerationConfig,
		Speak:           speak,
	}, nil)
	svc := NewConversationService(uc.Eligibility, uc.Recorder, uc.Conversation, chat, nil)
	return &fixture{chat: chat, completion: compl, uc: uc, svc: svc}
}
