package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage_Lengths(t *testing.T) {
	tests := []struct {
		name   string
		length int
		chunks int
	}{
		{"empty", 0, 0},
		{"single char", 1, 1},
		{"exactly limit", 2000, 1},
		{"one over", 2001, 2},
		{"two full", 4000, 2},
		{"long", 9999, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("a", tt.length)
			chunks := SplitMessage(text, MaxMessageLength)

			require.Len(t, chunks, tt.chunks)
			for _, c := range chunks {
				assert.LessOrEqual(t, len([]rune(c)), MaxMessageLength)
			}
			assert.Equal(t, text, strings.Join(chunks, ""))
		})
	}
}

func TestSplitMessage_ExactBoundaries(t *testing.T) {
	text := strings.Repeat("a", 2000) + strings.Repeat("b", 2000) + "c"

	chunks := SplitMessage(text, MaxMessageLength)

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("a", 2000), chunks[0])
	assert.Equal(t, strings.Repeat("b", 2000), chunks[1])
	assert.Equal(t, "c", chunks[2])
}

func TestSplitMessage_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 2500)

	chunks := SplitMessage(text, MaxMessageLength)

	require.Len(t, chunks, 2)
	assert.Len(t, []rune(chunks[0]), 2000)
	assert.Len(t, []rune(chunks[1]), 500)
	assert.Equal(t, text, chunks[0]+chunks[1])
}

func TestDispatcher_SendsChunksAndRecordsFullText(t *testing.T) {
	chat := newMockChatRepo("bot")
	history := NewHistoryStore(MaxHistoryTurns)
	transcript := &mockTranscriptRepo{}
	d := NewDispatcher(chat, NewTurnRecorder(history, transcript, nil), nil)

	text := strings.Repeat("z", 4500)
	err := d.Dispatch(context.Background(), DispatchTarget{ChannelID: "c1", ReplyToMsgID: "m1", TurnID: "t1"}, text)
	require.NoError(t, err)

	sent := chat.sentMessages()
	require.Len(t, sent, 3)
	for _, s := range sent {
		assert.Equal(t, "c1", s.ChannelID)
		assert.Equal(t, "m1", s.ReplyTo)
	}

	turns := history.Recent("c1", 10)
	require.Len(t, turns, 1)
	assert.Equal(t, domain.RoleAssistant, turns[0].Role)
	assert.Equal(t, text, turns[0].Content)

	require.Len(t, transcript.entries, 1)
	assert.Equal(t, "t1", transcript.entries[0].TurnID)
}

func TestDispatcher_PlainSendWithoutReplyTarget(t *testing.T) {
	chat := newMockChatRepo("bot")
	d := NewDispatcher(chat, NewTurnRecorder(NewHistoryStore(MaxHistoryTurns), nil, nil), nil)

	require.NoError(t, d.Dispatch(context.Background(), DispatchTarget{ChannelID: "c1"}, "hey"))

	sent := chat.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "", sent[0].ReplyTo)
}

func TestDispatcher_EmptyResponse(t *testing.T) {
	chat := newMockChatRepo("bot")
	history := NewHistoryStore(MaxHistoryTurns)
	d := NewDispatcher(chat, NewTurnRecorder(history, nil, nil), nil)

	require.NoError(t, d.Dispatch(context.Background(), DispatchTarget{ChannelID: "c1"}, ""))

	assert.Empty(t, chat.sentMessages())
	assert.Equal(t, 0, history.Len("c1"))
}

func TestDispatcher_SendFailureRecordsNothing(t *testing.T) {
	chat := newMockChatRepo("bot")
	chat.sendErr = errors.New("rate limited")
	chat.failAfter = 1
	history := NewHistoryStore(MaxHistoryTurns)
	d := NewDispatcher(chat, NewTurnRecorder(history, nil, nil), nil)

	err := d.Dispatch(context.Background(), DispatchTarget{ChannelID: "c1"}, strings.Repeat("q", 5000))

	require.Error(t, err)
	assert.Len(t, chat.sentMessages(), 1)
	assert.Equal(t, 0, history.Len("c1"))
}

func TestTurnRecorder_TranscriptFailureKeepsHistory(t *testing.T) {
	history := NewHistoryStore(MaxHistoryTurns)
	r := NewTurnRecorder(history, &mockTranscriptRepo{err: errors.New("disk full")}, nil)

	r.Record(context.Background(), "c1", "t1", domain.NewUserTurn("hi", time.Time{}))

	assert.Equal(t, 1, history.Len("c1"))
}
