package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/knowledge"
	"github.com/lumohq/switchboard/model"
	"github.com/lumohq/switchboard/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAgents(t *testing.T, ids ...string) *registry.InMemory {
	t.Helper()
	r := registry.NewInMemory()
	for _, id := range ids {
		require.NoError(t, r.Register(core.AgentDescriptor{
			ID:             id,
			Name:           strings.ToUpper(id[:1]) + id[1:] + " Agent",
			Specialization: id,
			SystemPrompt:   "You are the " + id + " specialist.",
		}))
	}
	return r
}

func TestExecutor_Execute(t *testing.T) {
	backend := model.NewMockBackend("exec-mock", "mock")
	backend.AddResponse("set up a webhook", "Use a catch hook trigger.")

	exec := NewExecutor(testAgents(t, "automation"), nil, backend)
	res, err := exec.Execute(context.Background(), "automation", "set up a webhook", nil)
	require.NoError(t, err)

	assert.Equal(t, "automation", res.AgentID)
	assert.Equal(t, "Automation Agent", res.AgentName)
	assert.Equal(t, "Use a catch hook trigger.", res.Response)
	assert.Equal(t, "mock", res.Provider)
	assert.Equal(t, 0, res.KnowledgeUsed)
	assert.True(t, res.Succeeded())
}

func TestExecutor_UnknownAgent(t *testing.T) {
	exec := NewExecutor(testAgents(t, "automation"), nil, model.NewMockBackend("exec-mock", "mock"))

	res, err := exec.Execute(context.Background(), "ghost", "hello", nil)
	require.Error(t, err)
	assert.True(t, core.IsAgentNotFound(err))
	assert.Equal(t, "ghost", res.AgentID)
}

func TestExecutor_BackendErrorKeepsIdentity(t *testing.T) {
	backend := model.NewMockBackend("exec-mock", "mock")
	backend.SetError(errors.New("rate limited"))

	exec := NewExecutor(testAgents(t, "trading"), nil, backend)
	res, err := exec.Execute(context.Background(), "trading", "is btc overbought", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "trading")
	assert.Equal(t, "trading", res.AgentID)
	assert.Equal(t, "Trading Agent", res.AgentName)
}

func TestExecutor_KnowledgeGrounding(t *testing.T) {
	idx := knowledge.NewInMemory()
	idx.Add("automation", "Webhook setup", "Create a catch hook, then map the fields.")
	idx.Add("automation", "Unrelated", "Nothing about the query terms at all.")
	idx.Add("trading", "Webhook setup", "Belongs to a different agent.")

	backend := model.NewMockBackend("exec-mock", "mock")
	exec := NewExecutor(testAgents(t, "automation"), idx, backend)

	res, err := exec.Execute(context.Background(), "automation", "webhook", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.KnowledgeUsed)

	req, ok := backend.LastRequest()
	require.True(t, ok)
	assert.Contains(t, req.SystemPrompt, "--- Relevant knowledge ---")
	assert.Contains(t, req.SystemPrompt, "Webhook setup")
	assert.Contains(t, req.SystemPrompt, "Create a catch hook")
	assert.NotContains(t, req.SystemPrompt, "different agent")
}

func TestExecutor_SnippetLimitAndTruncation(t *testing.T) {
	idx := knowledge.NewInMemory()
	for i := 0; i < 8; i++ {
		idx.Add("automation", "", "webhook "+strings.Repeat("x", 50))
	}

	backend := model.NewMockBackend("exec-mock", "mock")
	exec := NewExecutor(testAgents(t, "automation"), idx, backend,
		func(o *ExecutorOptions) {
			o.SnippetLimit = 3
			o.SnippetMaxChars = 10
		})

	res, err := exec.Execute(context.Background(), "automation", "webhook", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.KnowledgeUsed)

	req, _ := backend.LastRequest()
	assert.Contains(t, req.SystemPrompt, "webhook xx")
	assert.NotContains(t, req.SystemPrompt, "xxxxxxxxxxx")
}

func TestExecutor_HistoryWindow(t *testing.T) {
	history := make([]core.Message, 0, 14)
	for i := 0; i < 14; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		history = append(history, core.Message{Role: role, Content: "turn " + strings.Repeat("i", i+1)})
	}

	backend := model.NewMockBackend("exec-mock", "mock")
	exec := NewExecutor(testAgents(t, "crm"), nil, backend)

	_, err := exec.Execute(context.Background(), "crm", "current question", history)
	require.NoError(t, err)

	req, _ := backend.LastRequest()
	// Ten history turns plus the message itself.
	require.Len(t, req.Messages, 11)
	assert.Equal(t, "turn iiiii", req.Messages[0].Content)
	assert.Equal(t, "current question", req.Messages[10].Content)
	assert.Equal(t, "user", req.Messages[10].Role)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "assistant", req.Messages[1].Role)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "héllo", truncate("héllo", 5))
	assert.Equal(t, "hé", truncate("héllo", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
}
