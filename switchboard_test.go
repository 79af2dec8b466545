package switchboard

import (
	"context"
	"testing"

	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchboard_EndToEnd(t *testing.T) {
	sb := New()
	require.NoError(t, sb.RegisterAgent(core.AgentDescriptor{
		ID:           "support",
		Name:         "Support Agent",
		SystemPrompt: "You answer support questions.",
	}, "refund", "invoice", "failed payment"))
	sb.AddKnowledge("support", "Refund policy", "Refunds are issued within 14 days.")

	res, err := sb.Orchestrate(context.Background(), orchestrator.Request{
		Message: "I need a refund for my last invoice",
	})
	require.NoError(t, err)

	assert.Equal(t, orchestrator.ResponseTypeSingleAgent, res.Response.Type)
	assert.Equal(t, "support", res.Response.Agent)
	assert.Equal(t, core.StrategyKeyword, res.Response.Routing.Strategy)
	assert.NotEmpty(t, res.ConversationID)
}

func TestSwitchboard_GeneralFallthrough(t *testing.T) {
	sb := New()
	require.NoError(t, sb.RegisterAgent(core.AgentDescriptor{ID: "support", Name: "Support Agent"}, "refund"))

	res, err := sb.Orchestrate(context.Background(), orchestrator.Request{Message: "good morning"})
	require.NoError(t, err)
	assert.Equal(t, orchestrator.ResponseTypeOrchestrator, res.Response.Type)
}

func TestSwitchboard_RejectsDuplicateAgent(t *testing.T) {
	sb := New()
	require.NoError(t, sb.RegisterAgent(core.AgentDescriptor{ID: "support"}))
	assert.Error(t, sb.RegisterAgent(core.AgentDescriptor{ID: "support"}))
}

func TestSwitchboard_ChatDirect(t *testing.T) {
	sb := New()
	require.NoError(t, sb.RegisterAgent(core.AgentDescriptor{ID: "support", Name: "Support Agent"}))

	res, err := sb.ChatDirect(context.Background(), "support", "hello", "", "")
	require.NoError(t, err)
	assert.Equal(t, "support", res.Response.Agent)

	_, err = sb.ChatDirect(context.Background(), "ghost", "hello", "", "")
	assert.True(t, core.IsAgentNotFound(err))
}
