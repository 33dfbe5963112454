// Package client wraps the OpenAI API with rate limiting, token accounting
// and structured logging for the essay generation pipeline.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tiktoken-go/tokenizer"

	"github.com/timtim-hub/owl-framework/ratelimiter"
)

const (
	DefaultRequestsPerMinute = 60
	DefaultTokensPerMinute   = 90000
	DefaultModel             = "gpt-4o"
)

var modelPricing = map[string]struct {
	InputCostPer1K  float64
	OutputCostPer1K float64
}{
	"gpt-4o":        {0.0025, 0.01},
	"gpt-4o-mini":   {0.00015, 0.0006},
	"gpt-4-turbo":   {0.01, 0.03},
	"gpt-4":         {0.03, 0.06},
	"gpt-3.5-turbo": {0.0015, 0.002},
}

// Request is a single system/user chat completion exchange. Setting Schema
// asks the model for structured JSON output matching it.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64

	SchemaName string
	Schema     any
}

// Config holds the settings for a Client.
type Config struct {
	APIKey            string
	RequestsPerMinute int
	TokensPerMinute   int
	Logger            *log.Logger
}

// Client is a rate-limited OpenAI chat completion client.
type Client struct {
	api            openai.Client
	logger         *log.Logger
	encoder        tokenizer.Codec
	requestLimiter *ratelimiter.TokenBucket
	tokenLimiter   *ratelimiter.TokenBucket
}

// New creates a Client. The API key is passed explicitly; the client never
// reads or mutates process-wide environment state.
func New(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if config.TokensPerMinute <= 0 {
		config.TokensPerMinute = DefaultTokensPerMinute
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	encoder, err := tokenizer.ForModel(tokenizer.GPT4o)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}

	requestRefillRate := time.Minute / time.Duration(config.RequestsPerMinute)
	tokenRefillRate := time.Minute / time.Duration(config.TokensPerMinute)

	return &Client{
		api:            openai.NewClient(option.WithAPIKey(config.APIKey)),
		logger:         config.Logger,
		encoder:        encoder,
		requestLimiter: ratelimiter.NewTokenBucket(config.RequestsPerMinute, requestRefillRate),
		tokenLimiter:   ratelimiter.NewTokenBucket(config.TokensPerMinute, tokenRefillRate),
	}, nil
}

// Complete performs one chat completion, waiting on the request and token
// limiters first. API failures are logged and returned unchanged.
func (c *Client) Complete(ctx context.Context, req Request) (*openai.ChatCompletion, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	inputTokens := c.countInputTokens(req.System, req.User)

	if err := c.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request rate limit exceeded: %w", err)
	}
	for i := 0; i < inputTokens; i++ {
		if err := c.tokenLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("token rate limit exceeded: %w", err)
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Model: openai.ChatModel(model),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("OpenAI API request failed",
			"error", err,
			"model", model,
			"input_tokens", inputTokens,
			"duration", duration,
		)
		return nil, err
	}

	outputTokens := int(resp.Usage.CompletionTokens)

	c.logger.Info("OpenAI API request completed",
		"model", model,
		"input_tokens", int(resp.Usage.PromptTokens),
		"output_tokens", outputTokens,
		"total_tokens", int(resp.Usage.TotalTokens),
		"expected_cost_usd", Cost(model, inputTokens, outputTokens),
		"duration", duration,
		"request_id", resp.ID,
	)

	return resp, nil
}

// countInputTokens estimates prompt size for the token limiter. The estimate
// adds the per-message overhead the chat format carries.
func (c *Client) countInputTokens(parts ...string) int {
	total := 2
	for _, part := range parts {
		if tokens, _, err := c.encoder.Encode(part); err == nil {
			total += len(tokens)
		}
		total += 4
	}
	return total
}

// Cost returns the expected dollar cost of a call. Unknown models are priced
// as gpt-3.5-turbo.
func Cost(model string, inputTokens, outputTokens int) float64 {
	pricing, exists := modelPricing[model]
	if !exists {
		pricing = modelPricing["gpt-3.5-turbo"]
	}

	inputCost := float64(inputTokens) / 1000.0 * pricing.InputCostPer1K
	outputCost := float64(outputTokens) / 1000.0 * pricing.OutputCostPer1K

	return inputCost + outputCost
}

// Close stops the rate limiters.
func (c *Client) Close() {
	if c.requestLimiter != nil {
		c.requestLimiter.Stop()
	}
	if c.tokenLimiter != nil {
		c.tokenLimiter.Stop()
	}
}

// AvailableRequestTokens reports headroom in the request limiter.
func (c *Client) AvailableRequestTokens() int {
	return c.requestLimiter.AvailableTokens()
}

// AvailableTokens reports headroom in the token limiter.
func (c *Client) AvailableTokens() int {
	return c.tokenLimiter.AvailableTokens()
}
