package data

import (
	"context"
	"strings"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/infra/openai"
)

// openaiRepo implements the completion repository
type openaiRepo struct {
	client *openai.Client
}

// NewOpenAIRepo creates a new OpenAI completion repository
func NewOpenAIRepo(client *openai.Client) repo.CompletionRepo {
	return &openaiRepo{client: client}
}

// Complete calls the chat completion endpoint once. Failures come back in the result.
func (r *openaiRepo) Complete(ctx context.Context, req *domain.CompletionRequest) domain.Completion {
	messages := make([]openai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.Message{Role: string(m.Role), Content: m.Content})
	}

	text, err := r.client.Chat(ctx, &openai.ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return domain.CompletionFailed(err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.CompletionFailed(domain.ErrEmptyCompletion)
	}
	return domain.CompletionOK(text)
}
