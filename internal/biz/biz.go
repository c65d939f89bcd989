package biz

import (
	"log/slog"

	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// Options contains usecase configuration
type Options struct {
	AllowedChannels []string
	Prompt          usecase.PromptConfig
	Generation      usecase.GenerationConfig
	Speak           usecase.SpeakConfig
}

// Usecases contains all usecases
type Usecases struct {
	History      *usecase.HistoryStore
	Recorder     *usecase.TurnRecorder
	Filter       usecase.ChannelFilter
	Eligibility  *usecase.Eligibility
	Conversation *usecase.ConversationUsecase
	Speak        *usecase.SpeakUsecase
}

// NewUsecases wires the usecases. transcriptRepo may be nil.
func NewUsecases(
	chatRepo repo.ChatRepo,
	completionRepo repo.CompletionRepo,
	transcriptRepo repo.TranscriptRepo,
	opts Options,
	logger *slog.Logger,
) *Usecases {
	if logger == nil {
		logger = slog.Default()
	}

	history := usecase.NewHistoryStore(usecase.MaxHistoryTurns)
	recorder := usecase.NewTurnRecorder(history, transcriptRepo, logger)
	filter := usecase.NewChannelFilter(opts.AllowedChannels)
	builder := usecase.NewPromptBuilder(history, opts.Prompt)
	dispatcher := usecase.NewDispatcher(chatRepo, recorder, logger)
	conv := usecase.NewConversationUsecase(builder, completionRepo, chatRepo, dispatcher, opts.Generation, logger)
	speak := usecase.NewSpeakUsecase(chatRepo, conv, usecase.NewLastSpokeRegistry(), filter, opts.Speak, logger)

	return &Usecases{
		History:      history,
		Recorder:     recorder,
		Filter:       filter,
		Eligibility:  usecase.NewEligibility(filter),
		Conversation: conv,
		Speak:        speak,
	}
}
