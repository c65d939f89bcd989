package usecase

import (
	"context"
	"log/slog"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
)

// TurnRecorder appends turns to the history store and, when configured,
// to the transcript archive. Archive failures never affect history.
type TurnRecorder struct {
	history        *HistoryStore
	transcriptRepo repo.TranscriptRepo
	logger         *slog.Logger
}

// NewTurnRecorder creates a turn recorder. transcriptRepo may be nil.
func NewTurnRecorder(history *HistoryStore, transcriptRepo repo.TranscriptRepo, logger *slog.Logger) *TurnRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TurnRecorder{
		history:        history,
		transcriptRepo: transcriptRepo,
		logger:         logger.With("component", "recorder"),
	}
}

// Record stores a turn for a channel
func (r *TurnRecorder) Record(ctx context.Context, channelID, turnID string, turn domain.Turn) {
	r.history.Append(channelID, turn)

	if r.transcriptRepo == nil {
		return
	}
	if err := r.transcriptRepo.Record(ctx, channelID, turnID, turn); err != nil {
		r.logger.Warn("transcript write failed", "channel_id", channelID, "turn_id", turnID, "error", err)
	}
}

// History returns the underlying history store
func (r *TurnRecorder) History() *HistoryStore {
	return r.history
}
