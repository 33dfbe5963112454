package society

import (
	"sync"
	"time"

	"github.com/timtim-hub/owl-framework/client"
)

// TokenUsage represents token consumption and cost for one role.
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	Cost         float64 `json:"cost_usd"`
}

// UsageTracker aggregates token usage across the roles of a society run.
// It is safe for concurrent use; the TUI reads totals while a run is in
// flight.
type UsageTracker struct {
	mu           sync.RWMutex
	model        string
	total        TokenUsage
	roles        map[string]*TokenUsage
	sessionStart time.Time
}

// NewUsageTracker creates a tracker pricing usage against the given model.
func NewUsageTracker(model string) *UsageTracker {
	return &UsageTracker{
		model:        model,
		roles:        make(map[string]*TokenUsage),
		sessionStart: time.Now(),
	}
}

// Record adds one call's token usage under the given role.
func (t *UsageTracker) Record(role string, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	usage, ok := t.roles[role]
	if !ok {
		usage = &TokenUsage{}
		t.roles[role] = usage
	}

	usage.InputTokens += inputTokens
	usage.OutputTokens += outputTokens
	usage.TotalTokens += inputTokens + outputTokens
	usage.Cost = client.Cost(t.model, usage.InputTokens, usage.OutputTokens)

	t.total.InputTokens += inputTokens
	t.total.OutputTokens += outputTokens
	t.total.TotalTokens += inputTokens + outputTokens
	t.total.Cost = client.Cost(t.model, t.total.InputTokens, t.total.OutputTokens)
}

// TotalTokens returns the token count across all roles.
func (t *UsageTracker) TotalTokens() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total.TotalTokens
}

// TotalCost returns the dollar cost across all roles.
func (t *UsageTracker) TotalCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total.Cost
}

// RoleUsage returns a copy of the usage recorded for one role.
func (t *UsageTracker) RoleUsage(role string) TokenUsage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if usage, ok := t.roles[role]; ok {
		return *usage
	}
	return TokenUsage{}
}

// SessionDuration reports how long the tracker has been live.
func (t *UsageTracker) SessionDuration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return time.Since(t.sessionStart)
}
