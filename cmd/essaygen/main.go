package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/timtim-hub/owl-framework/arxiv"
	"github.com/timtim-hub/owl-framework/client"
	"github.com/timtim-hub/owl-framework/essay"
	"github.com/timtim-hub/owl-framework/society"
)

const EnvOpenAIAPIKey = "OPENAI_API_KEY"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "error", err)
	}

	topic := flag.String("topic", "", "Scientific topic for the essay")
	pages := flag.Int("pages", essay.DefaultPages, "Approximate number of pages")
	instructions := flag.String("instructions", essay.DefaultInstructions, "Additional instructions for the essay")
	output := flag.String("output", "", "Output filename (default: auto-generated based on topic)")
	flag.Parse()

	if err := run(*topic, *pages, *instructions, *output); err != nil {
		log.Fatal("Essay generation failed", "error", err)
	}
}

func run(topic string, pages int, instructions, output string) error {
	req := essay.NewRequest(topic, pages, instructions)
	req.OutputName = output

	prompt, err := essay.ComposeTask(req)
	if err != nil {
		return err
	}

	apiKey := os.Getenv(EnvOpenAIAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%s environment variable not set", EnvOpenAIAPIKey)
	}

	apiClient, err := client.New(client.Config{APIKey: apiKey})
	if err != nil {
		return err
	}
	defer apiClient.Close()

	config := society.DefaultConfig()
	config.Research = arxiv.NewSource(req.Topic, arxiv.DefaultLimit)
	runner := society.NewRolePlaying(config, apiClient)

	fmt.Printf("Generating a %d-page scientific essay on: %s\n", req.Pages, req.Topic)
	fmt.Printf("With instructions: %s\n", req.Instructions)
	fmt.Println("\nThis may take some time depending on the length and complexity...")

	result, err := runner.Run(context.Background(), prompt)
	if err != nil {
		return err
	}

	resolver := essay.NewResolver(essay.DefaultBaseDir)
	path, err := resolver.Resolve(req.Topic, req.OutputName, false)
	if err != nil {
		return err
	}
	if err := essay.WriteEssay(path, result.Answer); err != nil {
		return err
	}

	fmt.Printf("\nEssay successfully generated and saved to: %s\n", path)
	fmt.Printf("Total tokens used: %d\n", result.TokenCount)
	return nil
}
