package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingDecision_Agents(t *testing.T) {
	d := RoutingDecision{
		PrimaryAgent:    "trading",
		SecondaryAgents: []string{"marketing", "trading", "", "crm", "marketing"},
	}
	assert.Equal(t, []string{"trading", "marketing", "crm"}, d.Agents())

	assert.Nil(t, RoutingDecision{SecondaryAgents: []string{"marketing"}}.Agents())
}

func TestExecutionResult(t *testing.T) {
	ok := ExecutionResult{AgentID: "trading", AgentName: "Trading Analyst", Response: "answer"}
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "Trading Analyst", ok.DisplayName())

	failed := ExecutionResult{AgentID: "trading", Err: "timeout"}
	assert.False(t, failed.Succeeded())
	assert.Equal(t, "trading", failed.DisplayName())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, Outcome{Status: StatusOK}, OK())
	assert.Equal(t, Outcome{Status: StatusDegraded, Reason: "backend down"}, Degraded("backend down"))

	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "degraded", StatusDegraded.String())
	assert.Equal(t, "failed", StatusFailed.String())
}

func TestAgentNotFound(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", &AgentNotFoundError{ID: "ghost"})
	assert.True(t, IsAgentNotFound(err))
	assert.Contains(t, err.Error(), `"ghost"`)
	assert.False(t, IsAgentNotFound(errors.New("other")))
}

func TestBackendError_Unwrap(t *testing.T) {
	inner := errors.New("rate limited")
	err := &BackendError{Provider: "anthropic", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "anthropic")
}

func TestMessageClone(t *testing.T) {
	msg := Message{
		ID:       "m1",
		Role:     RoleAssistant,
		Content:  "hi",
		Metadata: map[string]any{"provider": "mock"},
	}
	clone := msg.Clone()
	clone.Metadata["provider"] = "changed"
	assert.Equal(t, "mock", msg.Metadata["provider"])

	assert.Nil(t, Message{}.Clone().Metadata)
}

func TestCallMeter_Unbounded(t *testing.T) {
	m := NewCallMeter(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Increment())
	}
	assert.Equal(t, 100, m.Count())
	assert.Equal(t, -1, m.Remaining())
}

func TestCallMeter_Budget(t *testing.T) {
	m := NewCallMeter(2)
	require.NoError(t, m.Increment())
	require.NoError(t, m.Increment())
	assert.Equal(t, 0, m.Remaining())

	err := m.Increment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max backend calls")
	assert.Equal(t, 3, m.Count())
}
