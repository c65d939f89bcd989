package conf

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// Discord configuration
	Discord DiscordConfig

	// OpenAI configuration
	OpenAI OpenAIConfig

	// Sampling configuration
	Generation GenerationConfig

	// Random-speak configuration
	Speak SpeakConfig

	// Persona prompt file
	PromptFile   string
	SystemPrompt string // Resolved persona prompt

	// Prompts configuration (loaded from YAML)
	Prompts *PromptsConfig

	// Transcript archive (disabled when empty)
	TranscriptDBPath    string
	TranscriptRetention time.Duration // Zero keeps archived turns forever

	// Admin HTTP API listen address (disabled when empty)
	AdminAddr string

	// Debug mode
	Debug bool
}

// DiscordConfig contains Discord configuration
type DiscordConfig struct {
	Token      string
	ChannelIDs []string // Allow-list, empty means every channel
}

// OpenAIConfig contains OpenAI configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GenerationConfig contains sampling configuration
type GenerationConfig struct {
	MaxTokens          int
	ReplyTemperature   float32
	SpeakUpTemperature float32
}

// SpeakConfig contains random-speak configuration
type SpeakConfig struct {
	Probability     float64
	CooldownSeconds int
	IntervalSeconds int
}

// LoadEnvFile loads a .env file into the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	promptFile := os.Getenv("PROMPT_FILE")
	if promptFile == "" {
		promptFile = "prompt.txt"
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = usecase.DefaultGenerationConfig.Model
	}

	speakDefaults := usecase.DefaultSpeakConfig()

	return &Config{
		Discord: DiscordConfig{
			Token:      strings.TrimSpace(os.Getenv("DISCORD_TOKEN")),
			ChannelIDs: ParseChannelIDs(os.Getenv("CHANNEL_IDS")),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   model,
			Timeout: time.Duration(envInt("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Generation: GenerationConfig{
			MaxTokens:          envInt("MAX_TOKENS", usecase.DefaultGenerationConfig.MaxTokens),
			ReplyTemperature:   float32(envFloat("REPLY_TEMPERATURE", float64(usecase.DefaultGenerationConfig.ReplyTemperature))),
			SpeakUpTemperature: float32(envFloat("SPEAK_TEMPERATURE", float64(usecase.DefaultGenerationConfig.SpeakUpTemperature))),
		},
		Speak: SpeakConfig{
			Probability:     envFloat("SPEAK_PROBABILITY", speakDefaults.Probability),
			CooldownSeconds: envInt("SPEAK_COOLDOWN_SECONDS", int(speakDefaults.Cooldown/time.Second)),
			IntervalSeconds: envInt("SPEAK_INTERVAL_SECONDS", int(speakDefaults.Interval/time.Second)),
		},
		PromptFile:          promptFile,
		TranscriptDBPath:    os.Getenv("TRANSCRIPT_DB_PATH"),
		TranscriptRetention: time.Duration(envInt("TRANSCRIPT_RETENTION_DAYS", 30)) * 24 * time.Hour,
		AdminAddr:           os.Getenv("ADMIN_ADDR"),
		Debug:               os.Getenv("DEBUG") == "true",
	}
}

// LoadPrompts loads the YAML prompts and the persona prompt file.
// An unreadable prompt file falls back to the generic assistant prompt and is logged.
func (c *Config) LoadPrompts(promptsConfigPath string) error {
	prompts, err := LoadPromptsConfig(promptsConfigPath)
	if err != nil {
		return err
	}
	c.Prompts = prompts

	prompt, err := LoadSystemPrompt(c.PromptFile, usecase.DefaultSystemPrompt)
	if err != nil {
		slog.Warn("using fallback system prompt", "component", "config", "path", c.PromptFile, "error", err)
	}
	c.SystemPrompt = prompt
	return nil
}

// ParseChannelIDs parses a comma-separated channel list
func ParseChannelIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

// ToPromptConfig converts to prompt configuration
func (c *Config) ToPromptConfig() usecase.PromptConfig {
	cfg := usecase.DefaultPromptConfig
	if c.Prompts != nil {
		cfg.SpeakUpTemplate = c.Prompts.Chat.SpeakUpTemplate
		cfg.HistoryTurns = c.Prompts.History.PromptTurns
		cfg.PreviewTurns = c.Prompts.History.PreviewTurns
	}
	if c.SystemPrompt != "" {
		cfg.SystemPrompt = c.SystemPrompt
	}
	return cfg
}

// ToGenerationConfig converts to sampling configuration
func (c *Config) ToGenerationConfig() usecase.GenerationConfig {
	return usecase.GenerationConfig{
		Model:              c.OpenAI.Model,
		MaxTokens:          c.Generation.MaxTokens,
		ReplyTemperature:   c.Generation.ReplyTemperature,
		SpeakUpTemperature: c.Generation.SpeakUpTemperature,
	}
}

// ToSpeakConfig converts to random-speak configuration
func (c *Config) ToSpeakConfig() usecase.SpeakConfig {
	cfg := usecase.DefaultSpeakConfig()
	cfg.Probability = c.Speak.Probability
	cfg.Cooldown = time.Duration(c.Speak.CooldownSeconds) * time.Second
	if c.Speak.IntervalSeconds > 0 {
		cfg.Interval = time.Duration(c.Speak.IntervalSeconds) * time.Second
	}
	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var missing []string
	if c.Discord.Token == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return &ConfigError{Field: strings.Join(missing, "/"), Message: "required"}
	}
	if c.Speak.Probability < 0 || c.Speak.Probability > 1 {
		return &ConfigError{Field: "SPEAK_PROBABILITY", Message: "must be between 0 and 1"}
	}
	if c.Generation.MaxTokens <= 0 {
		return &ConfigError{Field: "MAX_TOKENS", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
