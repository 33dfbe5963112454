// Package society configures and runs the agent society that produces
// essays. The caller hands a task prompt to a Runner and gets back opaque
// generated text plus a usage count; nothing here interprets the result.
package society

import (
	"context"

	"github.com/openai/openai-go"

	"github.com/timtim-hub/owl-framework/client"
)

// Exchange is one turn of the society conversation, carried through verbatim
// for the caller to inspect or discard.
type Exchange struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the outcome of one orchestration call. Answer is persisted
// verbatim by the caller; TokenCount is an opaque usage metric.
type Result struct {
	Answer     string
	History    []Exchange
	TokenCount int
}

// Runner runs a configured society against a task prompt to completion.
type Runner interface {
	Run(ctx context.Context, taskPrompt string) (Result, error)
}

// CompletionClient is the slice of the API client the society depends on.
// Tests substitute a fake.
type CompletionClient interface {
	Complete(ctx context.Context, req client.Request) (*openai.ChatCompletion, error)
}

// ResearchSource supplies background material to ground the generation.
// Sources are bound to a topic at construction time.
type ResearchSource interface {
	Summaries(ctx context.Context) ([]string, error)
}

// ProgressFunc receives stage notifications while a run is in flight. The
// fraction is in [0, 1]. Implementations must not block.
type ProgressFunc func(stage string, fraction float64)

// Config holds the role and model configuration for a society. The API
// credential lives in the completion client, not here; nothing in this
// package touches process-wide environment state.
type Config struct {
	UserRole      string
	AssistantRole string
	Model         string
	Temperature   float64

	// SpecifyTask enables the task specification step that sharpens the raw
	// prompt before generation.
	SpecifyTask bool

	Research ResearchSource
	Progress ProgressFunc
}

// DefaultConfig returns the configuration used for scientific essays.
func DefaultConfig() Config {
	return Config{
		UserRole:      "scientific advisor",
		AssistantRole: "research assistant",
		Model:         client.DefaultModel,
		Temperature:   0.1,
		SpecifyTask:   true,
	}
}
