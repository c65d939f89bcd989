package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
)

// Mock implementations

type sentMessage struct {
	ChannelID string
	ReplyTo   string
	Text      string
}

type mockChatRepo struct {
	mu sync.Mutex

	botID      string
	channels   []domain.Channel
	history    map[string][]domain.Message
	historyErr error
	listErr    error
	sendErr    error
	failAfter  int // Fail sends after this many successes (0 = never)

	sent         []sentMessage
	typing       int
	listCalls    int
	historyCalls int
}

func newMockChatRepo(botID string) *mockChatRepo {
	return &mockChatRepo{botID: botID, history: make(map[string][]domain.Message)}
}

func (m *mockChatRepo) BotUserID() string { return m.botID }

func (m *mockChatRepo) SendMessage(ctx context.Context, channelID, text string) error {
	return m.send(channelID, "", text)
}

func (m *mockChatRepo) SendReply(ctx context.Context, channelID, msgID, text string) error {
	return m.send(channelID, msgID, text)
}

func (m *mockChatRepo) send(channelID, replyTo, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil && (m.failAfter == 0 || len(m.sent) >= m.failAfter) {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, ReplyTo: replyTo, Text: text})
	return nil
}

func (m *mockChatRepo) Typing(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing++
	return nil
}

func (m *mockChatRepo) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyCalls++
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	msgs := m.history[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (m *mockChatRepo) ListTextChannels(ctx context.Context) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.channels, m.listErr
}

func (m *mockChatRepo) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

type mockCompletionRepo struct {
	mu       sync.Mutex
	result   domain.Completion
	requests []*domain.CompletionRequest
}

func (m *mockCompletionRepo) Complete(ctx context.Context, req *domain.CompletionRequest) domain.Completion {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.result
}

func (m *mockCompletionRepo) lastRequest() *domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

type mockTranscriptRepo struct {
	mu      sync.Mutex
	entries []*repo.TranscriptEntry
	err     error
}

func (m *mockTranscriptRepo) Record(ctx context.Context, channelID, turnID string, turn domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, &repo.TranscriptEntry{
		ChannelID: channelID,
		TurnID:    turnID,
		Role:      turn.Role,
		Content:   turn.Content,
		CreatedAt: turn.Timestamp,
	})
	return nil
}

func (m *mockTranscriptRepo) ListByChannel(ctx context.Context, channelID string, limit int) ([]*repo.TranscriptEntry, error) {
	return nil, nil
}

func (m *mockTranscriptRepo) CleanupOld(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (m *mockTranscriptRepo) Close() error { return nil }

// fixedRandom returns scripted draws
type fixedRandom struct {
	draw  float64
	index int
}

func (r *fixedRandom) Float64() float64 { return r.draw }
func (r *fixedRandom) IntN(n int) int {
	if r.index >= n {
		return n - 1
	}
	return r.index
}

// conversationFixture wires the usecases against mocks
type conversationFixture struct {
	chat       *mockChatRepo
	completion *mockCompletionRepo
	history    *HistoryStore
	recorder   *TurnRecorder
	convUC     *ConversationUsecase
}

func newConversationFixture(botID string, completion domain.Completion) *conversationFixture {
	chat := newMockChatRepo(botID)
	compl := &mockCompletionRepo{result: completion}
	history := NewHistoryStore(MaxHistoryTurns)
	recorder := NewTurnRecorder(history, nil, nil)
	builder := NewPromptBuilder(history, PromptConfig{SystemPrompt: "persona"})
	dispatcher := NewDispatcher(chat, recorder, nil)
	convUC := NewConversationUsecase(builder, compl, chat, dispatcher, DefaultGenerationConfig, nil)
	return &conversationFixture{
		chat:       chat,
		completion: compl,
		history:    history,
		recorder:   recorder,
		convUC:     convUC,
	}
}
