package main

import (
	"os"

	"github.com/Fareedsea/todo-chatbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
