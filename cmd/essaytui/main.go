package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const EnvOpenAIAPIKey = "OPENAI_API_KEY"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "error", err)
	}

	program := tea.NewProgram(initialModel(os.Getenv(EnvOpenAIAPIKey)))
	if _, err := program.Run(); err != nil {
		log.Fatal("TUI failed", "error", err)
	}
}
