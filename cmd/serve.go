package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/findorigin/findorigin/internal/bot"
	"github.com/findorigin/findorigin/internal/server"
	"github.com/findorigin/findorigin/pkg/telegram"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Telegram webhook and analyze API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		sender := telegram.NewClient(cfg.Telegram.BotToken, telegram.WithBaseURL(cfg.Telegram.BaseURL))
		analyzer := buildAnalyzer(cfg)
		handler := bot.NewHandler(analyzer, sender)

		return server.New(cfg, analyzer, handler).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
