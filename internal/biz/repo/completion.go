package repo

import (
	"context"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
)

// CompletionRepo is the language-model completion interface
type CompletionRepo interface {
	// Complete runs a single completion. Failures are carried in the result, never retried.
	Complete(ctx context.Context, req *domain.CompletionRequest) domain.Completion
}
