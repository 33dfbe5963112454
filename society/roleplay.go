package society

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/timtim-hub/owl-framework/client"
)

// specifiedTask is the structured output of the task specification step.
type specifiedTask struct {
	Task string `json:"task" jsonschema_description:"The fully specified, detailed version of the essay-writing task"`
}

// RolePlaying is a two-role society: an advisor role refines the task and an
// assistant role produces the essay. Model calls go through the injected
// CompletionClient; failures propagate to the caller unchanged, never
// retried.
type RolePlaying struct {
	config  Config
	client  CompletionClient
	tracker *UsageTracker
	schema  any
}

// NewRolePlaying creates a configured society. Zero-valued Config fields
// fall back to DefaultConfig.
func NewRolePlaying(config Config, cc CompletionClient) *RolePlaying {
	defaults := DefaultConfig()
	if config.UserRole == "" {
		config.UserRole = defaults.UserRole
	}
	if config.AssistantRole == "" {
		config.AssistantRole = defaults.AssistantRole
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Temperature == 0 {
		config.Temperature = defaults.Temperature
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	return &RolePlaying{
		config:  config,
		client:  cc,
		tracker: NewUsageTracker(config.Model),
		schema:  reflector.Reflect(specifiedTask{}),
	}
}

// Usage returns the tracker accumulating token usage across runs.
func (s *RolePlaying) Usage() *UsageTracker {
	return s.tracker
}

// Run executes one orchestration call: optionally specify the task,
// optionally collect research context, then generate the essay. The answer
// is returned verbatim along with the conversation history and the total
// token count.
func (s *RolePlaying) Run(ctx context.Context, taskPrompt string) (Result, error) {
	s.progress("Setting up agent society...", 0.1)

	history := []Exchange{{Role: s.config.UserRole, Content: taskPrompt}}
	prompt := taskPrompt

	if s.config.SpecifyTask {
		specified, err := s.specifyTask(ctx, taskPrompt)
		if err != nil {
			return Result{}, err
		}
		prompt = specified
		history = append(history, Exchange{Role: s.config.UserRole, Content: specified})
	}

	if s.config.Research != nil {
		s.progress("Collecting research material...", 0.3)
		summaries, err := s.config.Research.Summaries(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("research source failed: %w", err)
		}
		if len(summaries) > 0 {
			prompt += "\n\nRecent literature that may be relevant:\n- " + strings.Join(summaries, "\n- ")
		}
	}

	s.progress("Researching and generating essay...", 0.5)

	resp, err := s.client.Complete(ctx, client.Request{
		Model:       s.config.Model,
		System:      s.assistantPrompt(),
		User:        prompt,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return Result{}, err
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("no response from model")
	}

	answer := resp.Choices[0].Message.Content
	s.tracker.Record(s.config.AssistantRole, int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))
	history = append(history, Exchange{Role: s.config.AssistantRole, Content: answer})

	s.progress("Finalizing essay...", 0.9)

	return Result{
		Answer:     answer,
		History:    history,
		TokenCount: s.tracker.TotalTokens(),
	}, nil
}

// specifyTask sharpens the raw task prompt with one structured completion.
func (s *RolePlaying) specifyTask(ctx context.Context, taskPrompt string) (string, error) {
	resp, err := s.client.Complete(ctx, client.Request{
		Model: s.config.Model,
		System: fmt.Sprintf("You are a %s. Make the following essay-writing task more specific and "+
			"detailed without changing its topic, length target, or requirements.", s.config.UserRole),
		User:        taskPrompt,
		Temperature: s.config.Temperature,
		SchemaName:  "specified_task",
		Schema:      s.schema,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	s.tracker.Record(s.config.UserRole, int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))

	var specified specifiedTask
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &specified); err != nil {
		return "", fmt.Errorf("failed to parse specified task: %w", err)
	}
	if strings.TrimSpace(specified.Task) == "" {
		return "", fmt.Errorf("task specification produced an empty task")
	}

	return specified.Task, nil
}

func (s *RolePlaying) assistantPrompt() string {
	return fmt.Sprintf("You are a %s working with a %s to produce comprehensive scientific essays. "+
		"Write the complete essay as a well-structured Markdown document.",
		s.config.AssistantRole, s.config.UserRole)
}

func (s *RolePlaying) progress(stage string, fraction float64) {
	if s.config.Progress != nil {
		s.config.Progress(stage, fraction)
	}
}
