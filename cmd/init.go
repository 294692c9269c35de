package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Fareedsea/todo-chatbot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize todochat configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the model provider and server settings and writes a .todochat.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
