package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// TickReporter reports the most recent random-speak tick
type TickReporter interface {
	Last() (time.Time, usecase.SpeakResult)
}

// Server provides the admin HTTP API
type Server struct {
	history        *usecase.HistoryStore
	speakUC        *usecase.SpeakUsecase
	ticks          TickReporter        // optional
	transcriptRepo repo.TranscriptRepo // optional

	server *http.Server
	addr   string
	logger *slog.Logger
}

// ChannelInfo summarizes a channel's in-memory history
type ChannelInfo struct {
	ChannelID string     `json:"channel_id"`
	Turns     int        `json:"turns"`
	LastSpoke *time.Time `json:"last_spoke,omitempty"`
}

// TurnInfo is a serialized history turn
type TurnInfo struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	TurnID    string    `json:"turn_id,omitempty"`
}

// SpeakStatus describes the random-speak scheduler
type SpeakStatus struct {
	IntervalSeconds int                  `json:"interval_seconds"`
	Probability     float64              `json:"probability"`
	CooldownSeconds int                  `json:"cooldown_seconds"`
	LastSpoke       map[string]time.Time `json:"last_spoke"`
	LastTick        *time.Time           `json:"last_tick,omitempty"`
	LastOutcome     string               `json:"last_outcome,omitempty"`
	LastChannel     string               `json:"last_channel,omitempty"`
	LastError       string               `json:"last_error,omitempty"`
}

// NewServer creates a new API server. ticks and transcriptRepo may be nil.
func NewServer(
	history *usecase.HistoryStore,
	speakUC *usecase.SpeakUsecase,
	ticks TickReporter,
	transcriptRepo repo.TranscriptRepo,
	addr string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		history:        history,
		speakUC:        speakUC,
		ticks:          ticks,
		transcriptRepo: transcriptRepo,
		addr:           addr,
		logger:         logger.With("component", "api"),
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Channels and history
	mux.HandleFunc("/api/channels", s.handleChannels)
	mux.HandleFunc("/api/channels/", s.handleChannelItem)

	// Random-speak status
	mux.HandleFunc("/api/speak", s.handleSpeak)

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ============ Channel Handlers ============

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lastSpoke := s.speakUC.Registry().Snapshot()

	channels := make([]ChannelInfo, 0)
	for _, id := range s.history.Channels() {
		info := ChannelInfo{ChannelID: id, Turns: s.history.Len(id)}
		if t, ok := lastSpoke[id]; ok {
			info.LastSpoke = &t
		}
		channels = append(channels, info)
	}

	s.writeJSON(w, map[string]interface{}{"channels": channels})
}

func (s *Server) handleChannelItem(w http.ResponseWriter, r *http.Request) {
	// Parse path: /api/channels/{channel_id}/history
	path := strings.TrimPrefix(r.URL.Path, "/api/channels/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	channelID := parts[0]
	action := parts[1]

	if action != "history" {
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r, channelID)
	case http.MethodDelete:
		removed := s.history.Clear(channelID)
		s.logger.Info("history cleared", "channel_id", channelID, "turns", removed)
		s.writeJSON(w, map[string]interface{}{"success": true, "removed": removed})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request, channelID string) {
	limit := usecase.MaxHistoryTurns
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	if r.URL.Query().Get("source") == "transcript" {
		if s.transcriptRepo == nil {
			http.Error(w, "transcript archive disabled", http.StatusNotFound)
			return
		}
		entries, err := s.transcriptRepo.ListByChannel(r.Context(), channelID, limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		turns := make([]TurnInfo, 0, len(entries))
		for _, e := range entries {
			turns = append(turns, TurnInfo{Role: string(e.Role), Content: e.Content, Timestamp: e.CreatedAt, TurnID: e.TurnID})
		}
		s.writeJSON(w, map[string]interface{}{"turns": turns, "source": "transcript"})
		return
	}

	recent := s.history.Recent(channelID, limit)
	turns := make([]TurnInfo, 0, len(recent))
	for _, t := range recent {
		turns = append(turns, TurnInfo{Role: string(t.Role), Content: t.Content, Timestamp: t.Timestamp})
	}
	s.writeJSON(w, map[string]interface{}{"turns": turns, "source": "memory"})
}

// ============ Speak Handlers ============

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.speakUC.Config()
	status := SpeakStatus{
		IntervalSeconds: int(cfg.Interval / time.Second),
		Probability:     cfg.Probability,
		CooldownSeconds: int(cfg.Cooldown / time.Second),
		LastSpoke:       s.speakUC.Registry().Snapshot(),
	}

	if s.ticks != nil {
		at, last := s.ticks.Last()
		if !at.IsZero() {
			status.LastTick = &at
			status.LastOutcome = string(last.Outcome)
			status.LastChannel = last.ChannelID
			if last.Err != nil {
				status.LastError = last.Err.Error()
			}
		}
	}

	s.writeJSON(w, status)
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
