package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/concilia-dev/concilia/internal/commands"
)

func main() {
	// Secrets come from the environment; a local .env is optional.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
