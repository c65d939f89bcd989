package data

import (
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"
	"github.com/devricklin/discord-casual-bot/internal/infra/openai"
)

// Repositories contains all repositories
type Repositories struct {
	Chat       repo.ChatRepo
	Completion repo.CompletionRepo
	Transcript repo.TranscriptRepo // nil when archiving is disabled
}

// NewRepositories creates all repositories. An empty transcriptDBPath disables the archive.
func NewRepositories(
	discordClient DiscordClient,
	openaiClient *openai.Client,
	transcriptDBPath string,
) (*Repositories, error) {
	repos := &Repositories{
		Chat:       NewDiscordRepo(discordClient),
		Completion: NewOpenAIRepo(openaiClient),
	}

	if transcriptDBPath != "" {
		transcript, err := NewTranscriptRepo(transcriptDBPath)
		if err != nil {
			return nil, err
		}
		repos.Transcript = transcript
	}

	return repos, nil
}

// Close releases repository resources
func (r *Repositories) Close() error {
	if r.Transcript != nil {
		return r.Transcript.Close()
	}
	return nil
}
