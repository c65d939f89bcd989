package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/devricklin/discord-casual-bot/internal/mcp"
)

const version = "v1.0.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:          "discord-bot-mcp",
		Short:        "MCP server exposing the Discord bot's admin API over stdio",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the MCP stream
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := mcp.NewServer(mcp.NewHandler(mcp.NewClient(apiURL)), version)
			logger.Info("serving MCP over stdio", "api_url", apiURL)
			if err := server.Run(ctx, &sdk.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("MCP server error", "error", err)
				return err
			}
			return nil
		},
	}

	defaultURL := os.Getenv("BOT_API_URL")
	if defaultURL == "" {
		defaultURL = "http://127.0.0.1:8080"
	}
	cmd.Flags().StringVar(&apiURL, "api-url", defaultURL, "admin API base URL (env BOT_API_URL)")

	return cmd
}
