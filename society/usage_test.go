package society

import "testing"

func TestUsageTrackerAccumulates(t *testing.T) {
	tracker := NewUsageTracker("gpt-4o")

	tracker.Record("scientific advisor", 100, 50)
	tracker.Record("research assistant", 200, 800)
	tracker.Record("research assistant", 50, 100)

	if got := tracker.TotalTokens(); got != 1300 {
		t.Errorf("expected 1300 total tokens, got %d", got)
	}

	advisor := tracker.RoleUsage("scientific advisor")
	if advisor.TotalTokens != 150 {
		t.Errorf("expected 150 advisor tokens, got %d", advisor.TotalTokens)
	}

	assistant := tracker.RoleUsage("research assistant")
	if assistant.InputTokens != 250 || assistant.OutputTokens != 900 {
		t.Errorf("unexpected assistant usage: %+v", assistant)
	}

	if tracker.TotalCost() <= 0 {
		t.Error("expected a positive total cost")
	}
}

func TestUsageTrackerUnknownRole(t *testing.T) {
	tracker := NewUsageTracker("gpt-4o")

	if usage := tracker.RoleUsage("editor"); usage.TotalTokens != 0 {
		t.Errorf("expected zero usage for unknown role, got %+v", usage)
	}
}
