package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "todochat",
	Short: "Natural-language task list backed by a tool-calling model",
	Long: `todochat manages a to-do list through chat. A language model proposes
tool calls against a fixed, schema-validated registry; the server
validates every call, injects the caller's verified identity, and gates
destructive actions behind explicit confirmation.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".todochat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
