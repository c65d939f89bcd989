package mcp

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/api"
	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

func newTestHandler(t *testing.T) (*Handler, *usecase.HistoryStore) {
	t.Helper()
	history := usecase.NewHistoryStore(usecase.MaxHistoryTurns)
	speakUC := usecase.NewSpeakUsecase(nil, nil, usecase.NewLastSpokeRegistry(), usecase.NewChannelFilter(nil), usecase.DefaultSpeakConfig(), nil)
	apiServer := api.NewServer(history, speakUC, nil, nil, "", nil)

	srv := httptest.NewServer(apiServer.Handler())
	t.Cleanup(srv.Close)

	return NewHandler(NewClient(srv.URL)), history
}

func TestHandler_ListChannels(t *testing.T) {
	h, history := newTestHandler(t)
	history.Append("c1", domain.NewUserTurn("hi", time.Now()))

	_, out, err := h.ListChannels(context.Background(), nil, ListChannelsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	if len(out.Channels) != 1 || out.Channels[0].ChannelID != "c1" || out.Channels[0].Turns != 1 {
		t.Errorf("unexpected channels: %+v", out.Channels)
	}
}

func TestHandler_GetChannelHistory(t *testing.T) {
	h, history := newTestHandler(t)
	history.Append("c1", domain.NewUserTurn("hello", time.Now()))
	history.Append("c1", domain.NewAssistantTurn("hey!", time.Now()))

	_, out, _ := h.GetChannelHistory(context.Background(), nil, GetChannelHistoryInput{ChannelID: "c1", Limit: 1})
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	if len(out.Turns) != 1 || out.Turns[0].Role != "assistant" {
		t.Errorf("unexpected turns: %+v", out.Turns)
	}

	_, out, _ = h.GetChannelHistory(context.Background(), nil, GetChannelHistoryInput{})
	if out.Error == "" {
		t.Error("expected error for missing channel_id")
	}

	_, out, _ = h.GetChannelHistory(context.Background(), nil, GetChannelHistoryInput{ChannelID: "c1", Source: "transcript"})
	if out.Error == "" {
		t.Error("expected error when the transcript archive is disabled")
	}
}

func TestHandler_ClearChannelHistory(t *testing.T) {
	h, history := newTestHandler(t)
	history.Append("c1", domain.NewUserTurn("hello", time.Now()))

	_, out, _ := h.ClearChannelHistory(context.Background(), nil, ClearChannelHistoryInput{ChannelID: "c1"})
	if !out.Success || out.Removed != 1 {
		t.Errorf("unexpected output: %+v", out)
	}
	if history.Len("c1") != 0 {
		t.Error("expected history to be cleared")
	}
}

func TestHandler_GetSpeakStatus(t *testing.T) {
	h, _ := newTestHandler(t)

	_, out, _ := h.GetSpeakStatus(context.Background(), nil, GetSpeakStatusInput{})
	if out.Error != "" || out.Status == nil {
		t.Fatalf("unexpected output: %+v", out)
	}
	if out.Status.CooldownSeconds != 600 {
		t.Errorf("expected cooldown 600, got %d", out.Status.CooldownSeconds)
	}
}

func TestHandler_APIUnavailable(t *testing.T) {
	h := NewHandler(NewClient("http://127.0.0.1:1"))

	_, out, err := h.ListChannels(context.Background(), nil, ListChannelsInput{})
	if err != nil {
		t.Fatalf("tool errors must be reported in the output, got %v", err)
	}
	if out.Error == "" {
		t.Error("expected error output")
	}
}

func TestNewServer(t *testing.T) {
	if NewServer(NewHandler(NewClient("http://localhost")), "test") == nil {
		t.Fatal("expected server")
	}
}
