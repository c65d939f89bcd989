package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/api"
)

// Client is the HTTP client for the bot's admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new admin API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ============ Channels ============

// ListChannels lists channels with in-memory history
func (c *Client) ListChannels(ctx context.Context) ([]api.ChannelInfo, error) {
	var result struct {
		Channels []api.ChannelInfo `json:"channels"`
	}
	if err := c.get(ctx, "/api/channels", &result); err != nil {
		return nil, err
	}
	return result.Channels, nil
}

// GetChannelHistory gets a channel's turns. source is "memory" (default) or "transcript".
func (c *Client) GetChannelHistory(ctx context.Context, channelID string, limit int, source string) ([]api.TurnInfo, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if source != "" {
		query.Set("source", source)
	}

	path := fmt.Sprintf("/api/channels/%s/history", url.PathEscape(channelID))
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result struct {
		Turns []api.TurnInfo `json:"turns"`
	}
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Turns, nil
}

// ClearChannelHistory drops a channel's in-memory history
func (c *Client) ClearChannelHistory(ctx context.Context, channelID string) (int, error) {
	var result struct {
		Removed int `json:"removed"`
	}
	path := fmt.Sprintf("/api/channels/%s/history", url.PathEscape(channelID))
	if err := c.do(ctx, http.MethodDelete, path, &result); err != nil {
		return 0, err
	}
	return result.Removed, nil
}

// ============ Speak ============

// GetSpeakStatus gets the random-speak status
func (c *Client) GetSpeakStatus(ctx context.Context) (*api.SpeakStatus, error) {
	var status api.SpeakStatus
	if err := c.get(ctx, "/api/speak", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ============ HTTP Helpers ============

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, result)
}

func (c *Client) do(ctx context.Context, method, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
