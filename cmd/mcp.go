package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Fareedsea/todo-chatbot/internal/audit"
	"github.com/Fareedsea/todo-chatbot/internal/config"
	"github.com/Fareedsea/todo-chatbot/internal/db"
	mcpserver "github.com/Fareedsea/todo-chatbot/internal/mcp"
	"github.com/Fareedsea/todo-chatbot/internal/task"
	"github.com/Fareedsea/todo-chatbot/internal/tools"
)

var mcpUser string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing the
task tools to AI agents. Stdio serves a single principal, so the acting
user is fixed with --user for the lifetime of the process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mcpUser == "" {
			return fmt.Errorf("--user is required")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "todochat.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		taskStore := task.NewStore(database)
		registry := tools.NewRegistry()
		if err := tools.RegisterTaskTools(registry, taskStore); err != nil {
			return fmt.Errorf("registering tools: %w", err)
		}
		dispatcher := tools.NewDispatcher(registry, audit.NewStore(database))

		srv, err := mcpserver.NewServer(dispatcher, mcpUser, Version)
		if err != nil {
			return err
		}

		// Stdout carries MCP protocol messages; logging goes to stderr.
		fmt.Fprintf(os.Stderr, "todochat MCP server started on stdio (user=%s)\n", mcpUser)
		return srv.ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpUser, "user", "", "subject identity the MCP tools act as")
	rootCmd.AddCommand(mcpCmd)
}
