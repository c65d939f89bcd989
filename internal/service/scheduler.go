package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// SpeakScheduler runs the random-speak tick on a fixed interval
type SpeakScheduler struct {
	speakUC *usecase.SpeakUsecase

	// Optional transcript retention
	transcriptRepo repo.TranscriptRepo
	retention      time.Duration

	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *slog.Logger

	mu       sync.RWMutex
	lastTick time.Time
	last     usecase.SpeakResult
}

// NewSpeakScheduler creates a new speak scheduler
func NewSpeakScheduler(speakUC *usecase.SpeakUsecase, logger *slog.Logger) *SpeakScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeakScheduler{
		speakUC:  speakUC,
		interval: speakUC.Config().Interval,
		logger:   logger.With("component", "scheduler"),
	}
}

// WithTranscriptRetention enables periodic deletion of archived turns older than retention
func (s *SpeakScheduler) WithTranscriptRetention(transcriptRepo repo.TranscriptRepo, retention time.Duration) *SpeakScheduler {
	s.transcriptRepo = transcriptRepo
	s.retention = retention
	return s
}

// Start starts the scheduler
func (s *SpeakScheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.speakLoop()

	if s.transcriptRepo != nil && s.retention > 0 {
		s.wg.Add(1)
		go s.cleanupLoop()
	}

	s.logger.Info("started", "interval", s.interval)
}

// Stop stops the scheduler
func (s *SpeakScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("stopped")
}

// Last returns the time and result of the most recent tick
func (s *SpeakScheduler) Last() (time.Time, usecase.SpeakResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick, s.last
}

// speakLoop ticks until the context is cancelled; a failed tick never ends it
func (s *SpeakScheduler) speakLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce runs a single tick and logs its outcome
func (s *SpeakScheduler) RunOnce(ctx context.Context) usecase.SpeakResult {
	result := s.tick(ctx)

	s.mu.Lock()
	s.lastTick = time.Now()
	s.last = result
	s.mu.Unlock()

	switch result.Outcome {
	case usecase.SpeakFailed:
		s.logger.Error("speak tick failed", "channel_id", result.ChannelID, "error", result.Err)
	case usecase.SpeakSent:
		s.logger.Info("speak tick sent", "channel_id", result.ChannelID)
	default:
		s.logger.Debug("speak tick", "outcome", result.Outcome, "channel_id", result.ChannelID)
	}
	return result
}

func (s *SpeakScheduler) tick(ctx context.Context) (result usecase.SpeakResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("speak tick panicked", "panic", r)
			result = usecase.SpeakResult{Outcome: usecase.SpeakFailed}
		}
	}()
	return s.speakUC.Tick(ctx)
}

// cleanupLoop prunes the transcript archive (runs every 6 hours)
func (s *SpeakScheduler) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(s.ctx)
		}
	}
}

func (s *SpeakScheduler) cleanup(ctx context.Context) {
	n, err := s.transcriptRepo.CleanupOld(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.logger.Warn("transcript cleanup failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("transcript cleanup", "deleted", n)
	}
}
