package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Fareedsea/todo-chatbot/internal/audit"
	"github.com/Fareedsea/todo-chatbot/internal/chat"
	"github.com/Fareedsea/todo-chatbot/internal/config"
	"github.com/Fareedsea/todo-chatbot/internal/db"
	"github.com/Fareedsea/todo-chatbot/internal/llm"
	"github.com/Fareedsea/todo-chatbot/internal/server"
	"github.com/Fareedsea/todo-chatbot/internal/task"
	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat HTTP server",
	Long:  `Starts the HTTP server: the chat API, conversation history, the audit listing, and a WebSocket endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "todochat.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		provider, err := llm.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating model provider: %w", err)
		}

		taskStore := task.NewStore(database)
		registry := tools.NewRegistry()
		if err := tools.RegisterTaskTools(registry, taskStore); err != nil {
			return fmt.Errorf("registering tools: %w", err)
		}

		auditStore := audit.NewStore(database)
		dispatcher := tools.NewDispatcher(registry, auditStore)
		engine := chat.NewEngine(provider, dispatcher, chat.NewHistory(database), cfg.Chat)

		r := server.NewRouter(cfg)
		r.Group(func(r chi.Router) {
			r.Use(server.RequireIdentity(cfg.IdentityHeader))
			chat.RegisterRoutes(r, engine)
			audit.RegisterRoutes(r, auditStore)
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "todochat serving on port %d (provider=%s, model=%s)\n",
			cfg.Port, cfg.Provider, cfg.Model)
		return server.Serve(ctx, cfg, r)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
