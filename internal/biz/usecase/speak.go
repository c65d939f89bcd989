package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/google/uuid"
)

// SpeakConfig contains random-speak configuration
type SpeakConfig struct {
	Interval       time.Duration // Tick interval
	Probability    float64       // Per-tick chance of attempting to speak
	Cooldown       time.Duration // Minimum spacing per channel
	ActivityWindow int           // Recent messages inspected by the activity check
}

// DefaultSpeakConfig returns default random-speak configuration
func DefaultSpeakConfig() SpeakConfig {
	return SpeakConfig{
		Interval:       2 * time.Minute,
		Probability:    0.15,
		Cooldown:       600 * time.Second,
		ActivityWindow: 10,
	}
}

// Random is the source of randomness used by the speak usecase
type Random interface {
	Float64() float64
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// SpeakOutcome describes how a tick ended
type SpeakOutcome string

const (
	SpeakSkippedDraw  SpeakOutcome = "skipped_draw"
	SpeakNoCandidates SpeakOutcome = "no_candidates"
	SpeakCoolingDown  SpeakOutcome = "cooling_down"
	SpeakInactive     SpeakOutcome = "inactive"
	SpeakFailed       SpeakOutcome = "failed"
	SpeakSent         SpeakOutcome = "sent"
)

// SpeakResult is the result of one tick
type SpeakResult struct {
	Outcome   SpeakOutcome
	ChannelID string
	Err       error
}

// SpeakUsecase decides whether and where to speak unprompted
type SpeakUsecase struct {
	chatRepo repo.ChatRepo
	convUC   *ConversationUsecase
	registry *LastSpokeRegistry
	filter   ChannelFilter
	cfg      SpeakConfig

	rand   Random
	now    func() time.Time
	logger *slog.Logger
}

// NewSpeakUsecase creates a new speak usecase
func NewSpeakUsecase(
	chatRepo repo.ChatRepo,
	convUC *ConversationUsecase,
	registry *LastSpokeRegistry,
	filter ChannelFilter,
	cfg SpeakConfig,
	logger *slog.Logger,
) *SpeakUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeakUsecase{
		chatRepo: chatRepo,
		convUC:   convUC,
		registry: registry,
		filter:   filter,
		cfg:      cfg,
		rand:     globalRandom{},
		now:      time.Now,
		logger:   logger.With("component", "speak"),
	}
}

// Config returns the speak configuration
func (uc *SpeakUsecase) Config() SpeakConfig {
	return uc.cfg
}

// Registry returns the last-spoke registry
func (uc *SpeakUsecase) Registry() *LastSpokeRegistry {
	return uc.registry
}

// Tick runs one random-speak attempt. Failures end the tick without side effects.
func (uc *SpeakUsecase) Tick(ctx context.Context) SpeakResult {
	// 1. Roll the dice
	if uc.rand.Float64() >= uc.cfg.Probability {
		return SpeakResult{Outcome: SpeakSkippedDraw}
	}

	// 2. Candidate channels
	candidates, err := uc.candidates(ctx)
	if err != nil {
		return SpeakResult{Outcome: SpeakFailed, Err: fmt.Errorf("list channels: %w", err)}
	}
	if len(candidates) == 0 {
		return SpeakResult{Outcome: SpeakNoCandidates}
	}

	// 3. Pick one; no fallback to another channel
	channel := candidates[uc.rand.IntN(len(candidates))]
	result := SpeakResult{ChannelID: channel.ID}

	// 4. Cooldown
	if uc.registry.InCooldown(channel.ID, uc.now(), uc.cfg.Cooldown) {
		result.Outcome = SpeakCoolingDown
		return result
	}

	// 5. Activity
	active, err := uc.isActive(ctx, channel.ID)
	if err != nil {
		result.Outcome = SpeakFailed
		result.Err = fmt.Errorf("fetch channel history: %w", err)
		return result
	}
	if !active {
		result.Outcome = SpeakInactive
		return result
	}

	// 6. Speak
	_, err = uc.convUC.Respond(ctx, &RespondRequest{
		TurnID:    uuid.NewString(),
		ChannelID: channel.ID,
		Mode:      domain.ModeSpeakUp,
	})
	if err != nil {
		result.Outcome = SpeakFailed
		result.Err = err
		return result
	}

	uc.registry.Set(channel.ID, uc.now())
	uc.logger.Info("unprompted message sent", "channel_id", channel.ID, "channel", channel.Name)
	result.Outcome = SpeakSent
	return result
}

func (uc *SpeakUsecase) candidates(ctx context.Context) ([]domain.Channel, error) {
	channels, err := uc.chatRepo.ListTextChannels(ctx)
	if err != nil {
		return nil, err
	}

	var result []domain.Channel
	for _, ch := range channels {
		if !uc.filter.Allows(ch.ID) || !ch.CanSend {
			continue
		}
		result = append(result, ch)
	}
	return result, nil
}

// isActive checks that at least one recent message was written by a human and is not a command
func (uc *SpeakUsecase) isActive(ctx context.Context, channelID string) (bool, error) {
	msgs, err := uc.chatRepo.GetChannelHistory(ctx, channelID, uc.cfg.ActivityWindow)
	if err != nil {
		return false, err
	}

	botID := uc.chatRepo.BotUserID()
	for _, m := range msgs {
		if m.IsConversational(botID) {
			return true, nil
		}
	}
	return false, nil
}
