package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type speakFixture struct {
	*conversationFixture
	registry *LastSpokeRegistry
	random   *fixedRandom
	clock    time.Time
	uc       *SpeakUsecase
}

func newSpeakFixture(filter []string) *speakFixture {
	conv := newConversationFixture("bot", domain.CompletionOK("anyone up for a game tonight?"))
	conv.chat.channels = []domain.Channel{
		{ID: "c1", Name: "general", CanSend: true},
		{ID: "c2", Name: "random", CanSend: true},
		{ID: "c3", Name: "announcements", CanSend: false},
	}
	conv.chat.history["c1"] = []domain.Message{
		{AuthorID: "bot", Content: "earlier"},
		{AuthorID: "u1", Content: "what a day"},
	}

	f := &speakFixture{
		conversationFixture: conv,
		registry:            NewLastSpokeRegistry(),
		random:              &fixedRandom{draw: 0.05},
		clock:               time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.uc = NewSpeakUsecase(conv.chat, conv.convUC, f.registry, NewChannelFilter(filter), DefaultSpeakConfig(), nil)
	f.uc.rand = f.random
	f.uc.now = func() time.Time { return f.clock }
	return f
}

func TestDefaultSpeakConfig(t *testing.T) {
	cfg := DefaultSpeakConfig()
	assert.Equal(t, 2*time.Minute, cfg.Interval)
	assert.InDelta(t, 0.15, cfg.Probability, 1e-9)
	assert.Equal(t, 600*time.Second, cfg.Cooldown)
	assert.Equal(t, 10, cfg.ActivityWindow)
}

func TestSpeak_DrawAboveThresholdDoesNothing(t *testing.T) {
	f := newSpeakFixture(nil)
	f.random.draw = 0.15

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakSkippedDraw, res.Outcome)
	assert.Equal(t, 0, f.chat.listCalls)
	assert.Empty(t, f.chat.sentMessages())
	assert.Empty(t, f.registry.Snapshot())
}

func TestSpeak_Sends(t *testing.T) {
	f := newSpeakFixture(nil)

	res := f.uc.Tick(context.Background())

	require.Equal(t, SpeakSent, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, "c1", res.ChannelID)

	sent := f.chat.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "c1", sent[0].ChannelID)
	assert.Equal(t, "", sent[0].ReplyTo)

	last, ok := f.registry.Get("c1")
	require.True(t, ok)
	assert.Equal(t, f.clock, last)

	turns := f.history.Recent("c1", 10)
	require.Len(t, turns, 1)
	assert.Equal(t, domain.RoleAssistant, turns[0].Role)
	assert.InDelta(t, 0.7, f.completion.lastRequest().Temperature, 1e-6)
}

func TestSpeak_CandidatesRespectFilterAndPermission(t *testing.T) {
	f := newSpeakFixture([]string{"c2", "c3"})
	f.chat.history["c2"] = []domain.Message{{AuthorID: "u9", Content: "yo"}}

	res := f.uc.Tick(context.Background())

	require.Equal(t, SpeakSent, res.Outcome)
	assert.Equal(t, "c2", res.ChannelID)
}

func TestSpeak_NoCandidates(t *testing.T) {
	f := newSpeakFixture([]string{"c3"})

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakNoCandidates, res.Outcome)
	assert.Equal(t, 0, f.chat.historyCalls)
}

func TestSpeak_CooldownBlocksWithoutFallback(t *testing.T) {
	f := newSpeakFixture(nil)
	f.registry.Set("c1", f.clock.Add(-599*time.Second))

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakCoolingDown, res.Outcome)
	assert.Equal(t, "c1", res.ChannelID)
	assert.Empty(t, f.chat.sentMessages())
	assert.Equal(t, 0, f.chat.historyCalls)
}

func TestSpeak_CooldownElapsed(t *testing.T) {
	f := newSpeakFixture(nil)
	f.registry.Set("c1", f.clock.Add(-600*time.Second))

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakSent, res.Outcome)
}

func TestSpeak_NeverTwiceWithinCooldown(t *testing.T) {
	f := newSpeakFixture([]string{"c1"})

	var sends []time.Time
	for i := 0; i < 60; i++ {
		if f.uc.Tick(context.Background()).Outcome == SpeakSent {
			sends = append(sends, f.clock)
		}
		f.clock = f.clock.Add(2 * time.Minute)
	}

	require.NotEmpty(t, sends)
	for i := 1; i < len(sends); i++ {
		assert.GreaterOrEqual(t, sends[i].Sub(sends[i-1]), 600*time.Second)
	}
}

func TestSpeak_InactiveChannel(t *testing.T) {
	f := newSpeakFixture(nil)
	f.chat.history["c1"] = []domain.Message{
		{AuthorID: "bot", Content: "hello?"},
		{AuthorID: "u1", Content: "!play song"},
		{AuthorID: "bot", Content: "now playing"},
	}

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakInactive, res.Outcome)
	assert.Empty(t, f.registry.Snapshot())
	assert.Empty(t, f.chat.sentMessages())
}

func TestSpeak_AllBotMessagesAbort(t *testing.T) {
	f := newSpeakFixture(nil)
	msgs := make([]domain.Message, 10)
	for i := range msgs {
		msgs[i] = domain.Message{AuthorID: "bot", Content: "beep"}
	}
	f.chat.history["c1"] = msgs

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakInactive, res.Outcome)
	_, ok := f.registry.Get("c1")
	assert.False(t, ok)
}

func TestSpeak_HistoryFetchError(t *testing.T) {
	f := newSpeakFixture(nil)
	f.chat.historyErr = errors.New("missing access")

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakFailed, res.Outcome)
	assert.Error(t, res.Err)
	assert.Empty(t, f.registry.Snapshot())
}

func TestSpeak_ListError(t *testing.T) {
	f := newSpeakFixture(nil)
	f.chat.listErr = errors.New("gateway closed")

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakFailed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestSpeak_CompletionFailureLeavesRegistry(t *testing.T) {
	f := newSpeakFixture(nil)
	f.completion.result = domain.CompletionFailed(errors.New("timeout"))

	res := f.uc.Tick(context.Background())

	assert.Equal(t, SpeakFailed, res.Outcome)
	require.ErrorIs(t, res.Err, ErrNoResponse)
	assert.Empty(t, f.registry.Snapshot())
	assert.Equal(t, 0, f.history.Len("c1"))
}

func TestLastSpokeRegistry(t *testing.T) {
	r := NewLastSpokeRegistry()
	now := time.Now()

	assert.False(t, r.InCooldown("c1", now, time.Minute))

	r.Set("c1", now.Add(-30*time.Second))
	assert.True(t, r.InCooldown("c1", now, time.Minute))
	assert.False(t, r.InCooldown("c1", now, 30*time.Second))
	assert.Len(t, r.Snapshot(), 1)
}
