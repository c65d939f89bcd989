package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devricklin/discord-casual-bot/internal/api"
	"github.com/devricklin/discord-casual-bot/internal/biz"
	"github.com/devricklin/discord-casual-bot/internal/conf"
	"github.com/devricklin/discord-casual-bot/internal/data"
	"github.com/devricklin/discord-casual-bot/internal/infra/discord"
	"github.com/devricklin/discord-casual-bot/internal/infra/openai"
	"github.com/devricklin/discord-casual-bot/internal/server"
	"github.com/devricklin/discord-casual-bot/internal/service"
)

type options struct {
	envFile       string
	promptFile    string
	promptsConfig string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "discord-bot",
		Short:        "Discord casual-chat bot backed by an OpenAI-compatible model",
		Long:         `Replies when mentioned or replied to, and now and then joins active channels on its own.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "path to a .env file (default ./.env)")
	cmd.Flags().StringVar(&opts.promptFile, "prompt-file", "", "system prompt file (overrides PROMPT_FILE)")
	cmd.Flags().StringVar(&opts.promptsConfig, "prompts-config", "", "prompts YAML (overrides PROMPTS_CONFIG_PATH)")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	// Load .env file
	if err := conf.LoadEnvFile(opts.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if opts.promptFile != "" {
		cfg.PromptFile = opts.promptFile
	}

	logger := newLogger(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		return err
	}

	promptsConfig := opts.promptsConfig
	if promptsConfig == "" {
		promptsConfig = os.Getenv("PROMPTS_CONFIG_PATH")
	}
	if err := cfg.LoadPrompts(promptsConfig); err != nil {
		logger.Error("invalid prompts config", "error", err)
		return err
	}

	// Initialize clients
	discordClient, err := discord.NewClient(cfg.Discord.Token, logger)
	if err != nil {
		return err
	}
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey, openai.Options{
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
		Timeout: cfg.OpenAI.Timeout,
	})

	// Initialize repository layer
	repos, err := data.NewRepositories(discordClient, openaiClient, cfg.TranscriptDBPath)
	if err != nil {
		return fmt.Errorf("create repositories: %w", err)
	}
	defer repos.Close()
	if cfg.TranscriptDBPath != "" {
		logger.Info("transcript archive enabled", "path", cfg.TranscriptDBPath)
	}

	// Initialize usecase layer
	uc := biz.NewUsecases(repos.Chat, repos.Completion, repos.Transcript, biz.Options{
		AllowedChannels: cfg.Discord.ChannelIDs,
		Prompt:          cfg.ToPromptConfig(),
		Generation:      cfg.ToGenerationConfig(),
		Speak:           cfg.ToSpeakConfig(),
	}, logger)

	// Initialize service layer
	convSvc := service.NewConversationService(uc.Eligibility, uc.Recorder, uc.Conversation, repos.Chat, logger)
	scheduler := service.NewSpeakScheduler(uc.Speak, logger)
	if repos.Transcript != nil {
		scheduler.WithTranscriptRetention(repos.Transcript, cfg.TranscriptRetention)
	}

	// Initialize admin HTTP API
	var apiServer *api.Server
	if cfg.AdminAddr != "" {
		apiServer = api.NewServer(uc.History, uc.Speak, scheduler, repos.Transcript, cfg.AdminAddr, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("API server error", "error", err)
			}
		}()
	}

	// Initialize server
	srv := server.NewDiscordServer(discordClient, convSvc, scheduler, cfg.Discord.ChannelIDs, logger)

	logger.Info("starting discord bot", "model", cfg.OpenAI.Model)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	srv.Stop()
	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("API server shutdown failed", "error", err)
		}
	}
	return nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
