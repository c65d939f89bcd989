package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 60 * time.Second
)

// Message is a chat message sent to the completion endpoint
type Message struct {
	Role    string
	Content string
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Options contains client options
type Options struct {
	BaseURL string        // Empty uses the public OpenAI endpoint
	Model   string        // Fallback when a request carries no model
	Timeout time.Duration // Per-call timeout
}

// Client is the OpenAI chat completion client
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new OpenAI client
func NewClient(apiKey string, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	config := openai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   opts.Model,
		timeout: opts.Timeout,
	}
}

// Model returns the default model
func (c *Client) Model() string {
	return c.model
}

// Chat sends a chat completion request and returns the first choice's content
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return resp.Choices[0].Message.Content, nil
}
