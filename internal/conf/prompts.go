package conf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devricklin/discord-casual-bot/internal/biz/usecase"
)

// PromptsConfig contains all prompt configurations loaded from YAML
type PromptsConfig struct {
	Chat    ChatPrompts   `yaml:"chat"`
	History HistoryConfig `yaml:"history"`
}

// ChatPrompts contains conversation prompts
type ChatPrompts struct {
	SpeakUpTemplate string `yaml:"speak_up_template"` // Supports {{preview}}
}

// HistoryConfig contains prompt history settings
type HistoryConfig struct {
	PromptTurns  int `yaml:"prompt_turns"`
	PreviewTurns int `yaml:"preview_turns"`
}

// LoadPromptsConfig loads prompts configuration from YAML file
func LoadPromptsConfig(configPath string) (*PromptsConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/prompts.yaml",
			"/etc/discord-casual-bot/prompts.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "prompts.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("read prompts config %s: file not found", configPath)
		}
		slog.Info("no prompts.yaml found, using defaults", "component", "config")
		return DefaultPromptsConfig(), nil
	}

	slog.Info("loading prompts", "component", "config", "path", loadedPath)

	var config PromptsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse prompts.yaml: %w", err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PromptsConfig) fillDefaults() {
	defaults := DefaultPromptsConfig()

	if strings.TrimSpace(c.Chat.SpeakUpTemplate) == "" {
		c.Chat.SpeakUpTemplate = defaults.Chat.SpeakUpTemplate
	}
	if c.History.PromptTurns <= 0 {
		c.History.PromptTurns = defaults.History.PromptTurns
	}
	if c.History.PreviewTurns <= 0 {
		c.History.PreviewTurns = defaults.History.PreviewTurns
	}
}

// DefaultPromptsConfig returns the default prompts configuration
func DefaultPromptsConfig() *PromptsConfig {
	return &PromptsConfig{
		Chat: ChatPrompts{
			SpeakUpTemplate: usecase.DefaultPromptConfig.SpeakUpTemplate,
		},
		History: HistoryConfig{
			PromptTurns:  usecase.DefaultPromptConfig.HistoryTurns,
			PreviewTurns: usecase.DefaultPromptConfig.PreviewTurns,
		},
	}
}

// LoadSystemPrompt reads the persona prompt file, falling back when it is missing or empty
func LoadSystemPrompt(path, fallback string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback, fmt.Errorf("read prompt file: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return fallback, fmt.Errorf("prompt file %s is empty", path)
	}
	return prompt, nil
}
