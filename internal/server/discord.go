package server

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/devricklin/discord-casual-bot/internal/data"
	"github.com/devricklin/discord-casual-bot/internal/infra/discord"
	"github.com/devricklin/discord-casual-bot/internal/service"
)

const (
	seenMsgsSize = 4096
	seenMsgsTTL  = 5 * time.Minute

	channelQueueSize = 64
)

// Gateway is the Discord connection the server listens on
type Gateway interface {
	OnMessage(handler discord.MessageHandler)
	OnReady(handler discord.ReadyHandler)
	BotUserID() string
	Start() error
	Stop() error
}

// DiscordServer handles Discord message processing
type DiscordServer struct {
	gateway   Gateway
	convSvc   *service.ConversationService
	scheduler *service.SpeakScheduler
	channels  []string // Allow-list, for the startup banner

	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	// Message deduplication cache
	seenMsgs *expirable.LRU[string, struct{}]

	// One worker per channel keeps turns in arrival order
	mu      sync.Mutex
	queues  map[string]chan *discord.Message
	workers sync.WaitGroup
}

// NewDiscordServer creates a new Discord server. scheduler may be nil.
func NewDiscordServer(
	gateway Gateway,
	convSvc *service.ConversationService,
	scheduler *service.SpeakScheduler,
	channels []string,
	logger *slog.Logger,
) *DiscordServer {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DiscordServer{
		gateway:   gateway,
		convSvc:   convSvc,
		scheduler: scheduler,
		channels:  channels,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger.With("component", "server"),
		seenMsgs:  expirable.NewLRU[string, struct{}](seenMsgsSize, nil, seenMsgsTTL),
		queues:    make(map[string]chan *discord.Message),
	}
}

// Start registers handlers, connects the gateway and starts the scheduler
func (s *DiscordServer) Start() error {
	s.gateway.OnReady(s.handleReady)
	s.gateway.OnMessage(s.handleMessage)

	if err := s.gateway.Start(); err != nil {
		return err
	}

	if s.scheduler != nil {
		s.scheduler.Start(s.ctx)
	}
	return nil
}

// Stop stops the scheduler, cancels in-flight turns and disconnects
func (s *DiscordServer) Stop() {
	// Under mu so no worker starts after cancel
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if err := s.gateway.Stop(); err != nil {
		s.logger.Warn("gateway stop failed", "error", err)
	}
	s.workers.Wait()
}

func (s *DiscordServer) handleReady(botUser string, guilds int) {
	designated := "all channels"
	if len(s.channels) > 0 {
		designated = strings.Join(s.channels, ", ")
	}
	s.logger.Info("connected", "user", botUser, "guilds", guilds, "channels", designated)
}

// handleMessage queues a Discord message on its channel's worker.
// It runs on the gateway event loop and must not block on a turn.
func (s *DiscordServer) handleMessage(msg *discord.Message) {
	s.mu.Lock()
	// Message deduplication: gateway resumes may replay events
	if msg.MsgID != "" {
		if _, seen := s.seenMsgs.Get(msg.MsgID); seen {
			s.mu.Unlock()
			s.logger.Debug("duplicate message ignored", "msg_id", msg.MsgID)
			return
		}
		s.seenMsgs.Add(msg.MsgID, struct{}{})
	}
	queue := s.queueFor(msg.ChannelID)
	s.mu.Unlock()

	if queue == nil {
		return
	}

	s.logger.Debug("received",
		"channel_id", msg.ChannelID, "author", msg.AuthorName, "content", truncate(msg.Content, 50))

	select {
	case queue <- msg:
	case <-s.ctx.Done():
	}
}

// queueFor returns the channel's queue, starting its worker on first use.
// Returns nil once the server is stopping. Caller holds s.mu.
func (s *DiscordServer) queueFor(channelID string) chan *discord.Message {
	if s.ctx.Err() != nil {
		return nil
	}
	queue, ok := s.queues[channelID]
	if !ok {
		queue = make(chan *discord.Message, channelQueueSize)
		s.queues[channelID] = queue
		s.workers.Add(1)
		go s.channelWorker(channelID, queue)
	}
	return queue
}

// channelWorker handles one channel's messages, one turn at a time
func (s *DiscordServer) channelWorker(channelID string, queue <-chan *discord.Message) {
	defer s.workers.Done()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("channel worker stopped", "channel_id", channelID)
			return
		case msg := <-queue:
			domainMsg := data.ToDomainMessage(msg, s.gateway.BotUserID())

			// Errors are already logged by the service; nothing is sent back to the channel
			_, _ = s.convSvc.HandleMessage(s.ctx, &domainMsg)
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
