package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
)

// MaxMessageLength is the platform's hard message-size limit, in characters
const MaxMessageLength = 2000

// SplitMessage splits text into chunks of at most limit characters.
// Boundaries fall exactly on limit-character marks; concatenating the chunks yields text.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// DispatchTarget identifies where a response goes
type DispatchTarget struct {
	ChannelID    string
	ReplyToMsgID string // When set, chunks are sent as replies to this message
	TurnID       string
}

// Dispatcher sends model responses to a channel and records them
type Dispatcher struct {
	chatRepo repo.ChatRepo
	recorder *TurnRecorder
	limit    int
	now      func() time.Time
	logger   *slog.Logger
}

// NewDispatcher creates a new response dispatcher
func NewDispatcher(chatRepo repo.ChatRepo, recorder *TurnRecorder, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		chatRepo: chatRepo,
		recorder: recorder,
		limit:    MaxMessageLength,
		now:      time.Now,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Dispatch sends text in chunks, then records one assistant turn holding the full text.
// Empty text dispatches nothing. A failed send drops the remaining chunks and records nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, target DispatchTarget, text string) error {
	chunks := SplitMessage(text, d.limit)
	if len(chunks) == 0 {
		return nil
	}

	for i, chunk := range chunks {
		var err error
		if target.ReplyToMsgID != "" {
			err = d.chatRepo.SendReply(ctx, target.ChannelID, target.ReplyToMsgID, chunk)
		} else {
			err = d.chatRepo.SendMessage(ctx, target.ChannelID, chunk)
		}
		if err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	d.recorder.Record(ctx, target.ChannelID, target.TurnID, domain.NewAssistantTurn(text, d.now()))
	d.logger.Debug("response dispatched",
		"channel_id", target.ChannelID, "turn_id", target.TurnID, "chunks", len(chunks), "chars", len([]rune(text)))
	return nil
}
