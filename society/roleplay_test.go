package society

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timtim-hub/owl-framework/client"
)

// fakeClient scripts completion responses and records the requests it saw.
type fakeClient struct {
	responses []*openai.ChatCompletion
	err       error
	requests  []client.Request
}

func (f *fakeClient) Complete(_ context.Context, req client.Request) (*openai.ChatCompletion, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func completion(content string, promptTokens, completionTokens int64) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
		Usage: openai.CompletionUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

// fakeResearch returns fixed summaries or a fixed error.
type fakeResearch struct {
	summaries []string
	err       error
}

func (f *fakeResearch) Summaries(context.Context) ([]string, error) {
	return f.summaries, f.err
}

func TestRunReturnsAnswerVerbatim(t *testing.T) {
	fc := &fakeClient{responses: []*openai.ChatCompletion{completion("# Essay\n\nBody.", 100, 400)}}

	cfg := DefaultConfig()
	cfg.SpecifyTask = false
	rp := NewRolePlaying(cfg, fc)

	result, err := rp.Run(context.Background(), "write about superconductors")
	require.NoError(t, err)

	assert.Equal(t, "# Essay\n\nBody.", result.Answer)
	assert.Equal(t, 500, result.TokenCount)
	require.Len(t, result.History, 2)
	assert.Equal(t, "scientific advisor", result.History[0].Role)
	assert.Equal(t, "write about superconductors", result.History[0].Content)
	assert.Equal(t, "research assistant", result.History[1].Role)
}

func TestRunSpecifiesTask(t *testing.T) {
	fc := &fakeClient{responses: []*openai.ChatCompletion{
		completion(`{"task": "write a detailed essay about superconductors"}`, 50, 30),
		completion("essay text", 200, 800),
	}}

	rp := NewRolePlaying(DefaultConfig(), fc)

	result, err := rp.Run(context.Background(), "write about superconductors")
	require.NoError(t, err)

	// The specifier call asks for structured output; the generation call
	// uses the specified task.
	require.Len(t, fc.requests, 2)
	assert.NotNil(t, fc.requests[0].Schema)
	assert.Equal(t, "specified_task", fc.requests[0].SchemaName)
	assert.Equal(t, "write a detailed essay about superconductors", fc.requests[1].User)

	require.Len(t, result.History, 3)
	assert.Equal(t, 1080, result.TokenCount)
}

func TestRunSpecifyTaskBadJSON(t *testing.T) {
	fc := &fakeClient{responses: []*openai.ChatCompletion{completion("not json", 10, 10)}}

	rp := NewRolePlaying(DefaultConfig(), fc)

	_, err := rp.Run(context.Background(), "topic prompt")
	assert.ErrorContains(t, err, "failed to parse specified task")
}

func TestRunAppendsResearchContext(t *testing.T) {
	fc := &fakeClient{responses: []*openai.ChatCompletion{completion("essay", 10, 10)}}

	cfg := DefaultConfig()
	cfg.SpecifyTask = false
	cfg.Research = &fakeResearch{summaries: []string{
		"Paper A (http://example.org/a): finding one",
		"Paper B (http://example.org/b): finding two",
	}}
	rp := NewRolePlaying(cfg, fc)

	_, err := rp.Run(context.Background(), "base prompt")
	require.NoError(t, err)

	require.Len(t, fc.requests, 1)
	assert.Contains(t, fc.requests[0].User, "base prompt")
	assert.Contains(t, fc.requests[0].User, "Paper A (http://example.org/a): finding one")
	assert.Contains(t, fc.requests[0].User, "Paper B (http://example.org/b): finding two")
}

func TestRunResearchFailurePropagates(t *testing.T) {
	sentinel := errors.New("arxiv unreachable")

	cfg := DefaultConfig()
	cfg.SpecifyTask = false
	cfg.Research = &fakeResearch{err: sentinel}
	rp := NewRolePlaying(cfg, &fakeClient{responses: []*openai.ChatCompletion{completion("x", 1, 1)}})

	_, err := rp.Run(context.Background(), "prompt")
	assert.ErrorIs(t, err, sentinel)
}

func TestRunClientErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("model call failed")

	cfg := DefaultConfig()
	cfg.SpecifyTask = false
	rp := NewRolePlaying(cfg, &fakeClient{err: sentinel})

	_, err := rp.Run(context.Background(), "prompt")
	assert.ErrorIs(t, err, sentinel)
}

func TestRunReportsProgressStages(t *testing.T) {
	fc := &fakeClient{responses: []*openai.ChatCompletion{completion("essay", 1, 1)}}

	var stages []string
	var last float64

	cfg := DefaultConfig()
	cfg.SpecifyTask = false
	cfg.Progress = func(stage string, fraction float64) {
		stages = append(stages, stage)
		assert.GreaterOrEqual(t, fraction, last, "fractions must not go backwards")
		last = fraction
	}
	rp := NewRolePlaying(cfg, fc)

	_, err := rp.Run(context.Background(), "prompt")
	require.NoError(t, err)

	require.NotEmpty(t, stages)
	assert.Equal(t, "Setting up agent society...", stages[0])
	assert.Equal(t, "Finalizing essay...", stages[len(stages)-1])
}

func TestConfigDefaultsApplied(t *testing.T) {
	rp := NewRolePlaying(Config{}, &fakeClient{})

	assert.Equal(t, "scientific advisor", rp.config.UserRole)
	assert.Equal(t, "research assistant", rp.config.AssistantRole)
	assert.Equal(t, client.DefaultModel, rp.config.Model)
	assert.InDelta(t, 0.1, rp.config.Temperature, 1e-9)
}
