package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// ConversationService handles inbound messages
type ConversationService struct {
	eligibility *usecase.Eligibility
	recorder    *usecase.TurnRecorder
	convUC      *usecase.ConversationUsecase
	chatRepo    repo.ChatRepo

	now    func() time.Time
	logger *slog.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	eligibility *usecase.Eligibility,
	recorder *usecase.TurnRecorder,
	convUC *usecase.ConversationUsecase,
	chatRepo repo.ChatRepo,
	logger *slog.Logger,
) *ConversationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationService{
		eligibility: eligibility,
		recorder:    recorder,
		convUC:      convUC,
		chatRepo:    chatRepo,
		now:         time.Now,
		logger:      logger.With("component", "service"),
	}
}

// HandleResult describes what happened to an inbound message
type HandleResult struct {
	TurnID   string
	Decision usecase.Decision
	Reply    string // Dispatched reply text, empty when none was sent
}

// HandleMessage stores an eligible message and replies when it addresses the bot.
// The user turn is recorded before the reply is generated. Failures are logged and
// returned; nothing is ever sent to the channel about them.
func (s *ConversationService) HandleMessage(ctx context.Context, msg *domain.Message) (*HandleResult, error) {
	// 1. Eligibility
	decision := s.eligibility.Evaluate(msg, s.chatRepo.BotUserID())
	result := &HandleResult{Decision: decision}
	if decision == usecase.DecisionIgnore {
		return result, nil
	}

	// 2. Record the user turn
	result.TurnID = uuid.NewString()
	at := msg.CreateTime
	if at.IsZero() {
		at = s.now()
	}
	s.recorder.Record(ctx, msg.ChannelID, result.TurnID, domain.NewUserTurn(msg.Content, at))

	if decision != usecase.DecisionReply {
		return result, nil
	}

	logger := s.logger.With("channel_id", msg.ChannelID, "msg_id", msg.ID, "turn_id", result.TurnID)
	logger.Info("replying", "author", msg.AuthorName)

	// 3. Reply
	reply, err := s.convUC.Respond(ctx, &usecase.RespondRequest{
		TurnID:       result.TurnID,
		ChannelID:    msg.ChannelID,
		Mode:         domain.ModeReply,
		Trigger:      msg.Content,
		ReplyToMsgID: msg.ID,
	})
	if err != nil {
		logger.Error("reply failed", "error", err)
		return result, err
	}

	result.Reply = reply
	logger.Info("reply sent", "chars", len([]rune(reply)))
	return result, nil
}
