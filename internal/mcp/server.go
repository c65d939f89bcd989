package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/devricklin/discord-casual-bot/internal/api"
)

// Handler serves MCP tool calls through the admin API client
type Handler struct {
	client *Client
}

// NewHandler creates a new MCP handler
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// NewServer creates an MCP server exposing the bot's admin tools
func NewServer(h *Handler, version string) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{
		Name:    "discord-bot-tools",
		Version: version,
	}, nil)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "list_channels",
		Description: "List channels the bot holds conversation history for, with turn counts and the last unprompted message time.",
	}, h.ListChannels)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_channel_history",
		Description: "Get the recorded conversation turns of a channel, oldest first.",
	}, h.GetChannelHistory)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "clear_channel_history",
		Description: "Forget the in-memory conversation history of a channel. The archived transcript is kept.",
	}, h.ClearChannelHistory)

	sdk.AddTool(server, &sdk.Tool{
		Name:        "get_speak_status",
		Description: "Get the random-speak settings, per-channel last unprompted message times and the outcome of the latest tick.",
	}, h.GetSpeakStatus)

	return server
}

// ListChannelsInput is empty - no input needed
type ListChannelsInput struct{}

// ListChannelsOutput contains the channels
type ListChannelsOutput struct {
	Channels []api.ChannelInfo `json:"channels"`
	Error    string            `json:"error,omitempty"`
}

// ListChannels handles list_channels
func (h *Handler) ListChannels(ctx context.Context, req *sdk.CallToolRequest, input ListChannelsInput) (*sdk.CallToolResult, ListChannelsOutput, error) {
	channels, err := h.client.ListChannels(ctx)
	if err != nil {
		return nil, ListChannelsOutput{Error: err.Error()}, nil
	}
	return nil, ListChannelsOutput{Channels: channels}, nil
}

// GetChannelHistoryInput selects a channel's history
type GetChannelHistoryInput struct {
	ChannelID string `json:"channel_id" jsonschema:"The Discord channel ID"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of turns to return (default 50)"`
	Source    string `json:"source,omitempty" jsonschema:"memory (default) or transcript"`
}

// GetChannelHistoryOutput contains the turns
type GetChannelHistoryOutput struct {
	Turns []api.TurnInfo `json:"turns"`
	Error string         `json:"error,omitempty"`
}

// GetChannelHistory handles get_channel_history
func (h *Handler) GetChannelHistory(ctx context.Context, req *sdk.CallToolRequest, input GetChannelHistoryInput) (*sdk.CallToolResult, GetChannelHistoryOutput, error) {
	if input.ChannelID == "" {
		return nil, GetChannelHistoryOutput{Error: "channel_id is required"}, nil
	}
	turns, err := h.client.GetChannelHistory(ctx, input.ChannelID, input.Limit, input.Source)
	if err != nil {
		return nil, GetChannelHistoryOutput{Error: err.Error()}, nil
	}
	return nil, GetChannelHistoryOutput{Turns: turns}, nil
}

// ClearChannelHistoryInput selects the channel to clear
type ClearChannelHistoryInput struct {
	ChannelID string `json:"channel_id" jsonschema:"The Discord channel ID"`
}

// ClearChannelHistoryOutput is the output
type ClearChannelHistoryOutput struct {
	Success bool   `json:"success"`
	Removed int    `json:"removed"`
	Error   string `json:"error,omitempty"`
}

// ClearChannelHistory handles clear_channel_history
func (h *Handler) ClearChannelHistory(ctx context.Context, req *sdk.CallToolRequest, input ClearChannelHistoryInput) (*sdk.CallToolResult, ClearChannelHistoryOutput, error) {
	if input.ChannelID == "" {
		return nil, ClearChannelHistoryOutput{Error: "channel_id is required"}, nil
	}
	removed, err := h.client.ClearChannelHistory(ctx, input.ChannelID)
	if err != nil {
		return nil, ClearChannelHistoryOutput{Error: err.Error()}, nil
	}
	return nil, ClearChannelHistoryOutput{Success: true, Removed: removed}, nil
}

// GetSpeakStatusInput is empty - no input needed
type GetSpeakStatusInput struct{}

// GetSpeakStatusOutput contains the status
type GetSpeakStatusOutput struct {
	Status *api.SpeakStatus `json:"status,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// GetSpeakStatus handles get_speak_status
func (h *Handler) GetSpeakStatus(ctx context.Context, req *sdk.CallToolRequest, input GetSpeakStatusInput) (*sdk.CallToolResult, GetSpeakStatusOutput, error) {
	status, err := h.client.GetSpeakStatus(ctx)
	if err != nil {
		return nil, GetSpeakStatusOutput{Error: err.Error()}, nil
	}
	return nil, GetSpeakStatusOutput{Status: status}, nil
}
