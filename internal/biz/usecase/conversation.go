package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
)

// ErrNoResponse means the completion produced nothing to send
var ErrNoResponse = errors.New("no response available")

// GenerationConfig contains sampling configuration
type GenerationConfig struct {
	Model              string
	MaxTokens          int
	ReplyTemperature   float32
	SpeakUpTemperature float32
}

// DefaultGenerationConfig contains default sampling configuration
var DefaultGenerationConfig = GenerationConfig{
	Model:              "gpt-3.5-turbo",
	MaxTokens:          150,
	ReplyTemperature:   0.5,
	SpeakUpTemperature: 0.7,
}

// Temperature returns the sampling temperature for a mode
func (c GenerationConfig) Temperature(mode domain.Mode) float32 {
	if mode == domain.ModeSpeakUp {
		return c.SpeakUpTemperature
	}
	return c.ReplyTemperature
}

const defaultTypingInterval = 8 * time.Second

// ConversationUsecase runs the prompt -> completion -> dispatch path (aggregate)
type ConversationUsecase struct {
	builder        *PromptBuilder
	completionRepo repo.CompletionRepo
	chatRepo       repo.ChatRepo
	dispatcher     *Dispatcher
	genCfg         GenerationConfig

	typingInterval time.Duration
	logger         *slog.Logger
}

// NewConversationUsecase creates a new conversation usecase
func NewConversationUsecase(
	builder *PromptBuilder,
	completionRepo repo.CompletionRepo,
	chatRepo repo.ChatRepo,
	dispatcher *Dispatcher,
	genCfg GenerationConfig,
	logger *slog.Logger,
) *ConversationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationUsecase{
		builder:        builder,
		completionRepo: completionRepo,
		chatRepo:       chatRepo,
		dispatcher:     dispatcher,
		genCfg:         genCfg,
		typingInterval: defaultTypingInterval,
		logger:         logger.With("component", "conversation"),
	}
}

// RespondRequest represents a response request
type RespondRequest struct {
	TurnID       string
	ChannelID    string
	Mode         domain.Mode
	Trigger      string // Triggering message text (reply mode)
	ReplyToMsgID string // Message to reply to (reply mode)
}

// Respond generates a response and dispatches it (core method).
// Returns the dispatched text, or an error wrapping ErrNoResponse when the model produced nothing.
func (uc *ConversationUsecase) Respond(ctx context.Context, req *RespondRequest) (string, error) {
	stopTyping := uc.keepTyping(ctx, req.ChannelID)
	defer stopTyping()

	// 1. Build prompt
	messages := uc.builder.Build(req.ChannelID, req.Mode, req.Trigger)

	// 2. Call the model
	completion := uc.completionRepo.Complete(ctx, &domain.CompletionRequest{
		Model:       uc.genCfg.Model,
		Messages:    messages,
		MaxTokens:   uc.genCfg.MaxTokens,
		Temperature: uc.genCfg.Temperature(req.Mode),
	})
	if !completion.OK() {
		return "", fmt.Errorf("%w: %v", ErrNoResponse, completion.Err)
	}

	uc.logger.Debug("completion received",
		"channel_id", req.ChannelID, "turn_id", req.TurnID, "mode", req.Mode, "prompt_messages", len(messages))

	// 3. Send and record
	target := DispatchTarget{
		ChannelID:    req.ChannelID,
		ReplyToMsgID: req.ReplyToMsgID,
		TurnID:       req.TurnID,
	}
	if err := uc.dispatcher.Dispatch(ctx, target, completion.Text); err != nil {
		return "", fmt.Errorf("dispatch: %w", err)
	}
	return completion.Text, nil
}

// keepTyping shows the typing indicator until the returned func is called
func (uc *ConversationUsecase) keepTyping(ctx context.Context, channelID string) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(uc.typingInterval)
		defer ticker.Stop()
		for {
			if err := uc.chatRepo.Typing(ctx, channelID); err != nil && ctx.Err() == nil {
				uc.logger.Debug("typing indicator failed", "channel_id", channelID, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
