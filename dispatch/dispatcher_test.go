package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumohq/switchboard/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend answers per agent id, optionally after a delay, so dispatcher
// tests can control completion order and per-branch failures.
type stubBackend struct {
	responses map[string]string
	errs      map[string]error
	delays    map[string]time.Duration
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		responses: make(map[string]string),
		errs:      make(map[string]error),
		delays:    make(map[string]time.Duration),
	}
}

func (s *stubBackend) Chat(ctx context.Context, req model.Request) (model.Response, error) {
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxSeen.Load()
		if cur <= max || s.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}

	if d := s.delays[req.AgentID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return model.Response{}, ctx.Err()
		}
	}
	if err := s.errs[req.AgentID]; err != nil {
		return model.Response{}, err
	}
	return model.Response{Text: s.responses[req.AgentID], Provider: "stub", Model: "stub"}, nil
}

func (s *stubBackend) Info() model.Info { return model.Info{Name: "stub", Provider: "stub"} }

func TestDispatcher_PreservesInputOrder(t *testing.T) {
	backend := newStubBackend()
	backend.responses["trading"] = "RSI is 72, overbought."
	backend.responses["marketing"] = "Pause the ad set."
	backend.responses["content"] = "Lead with the risk angle."
	// First listed agent finishes last.
	backend.delays["trading"] = 40 * time.Millisecond
	backend.delays["marketing"] = 20 * time.Millisecond

	exec := NewExecutor(testAgents(t, "trading", "marketing", "content"), nil, backend)
	d := NewDispatcher(exec)

	results := d.Dispatch(context.Background(), []string{"trading", "marketing", "content"}, "q", nil)
	require.Len(t, results, 3)
	assert.Equal(t, "trading", results[0].AgentID)
	assert.Equal(t, "marketing", results[1].AgentID)
	assert.Equal(t, "content", results[2].AgentID)
	assert.Equal(t, "RSI is 72, overbought.", results[0].Response)
}

func TestDispatcher_PartialFailureIsData(t *testing.T) {
	backend := newStubBackend()
	backend.responses["trading"] = "ok"
	backend.errs["marketing"] = errors.New("provider unavailable")

	exec := NewExecutor(testAgents(t, "trading", "marketing"), nil, backend)
	d := NewDispatcher(exec)

	results := d.Dispatch(context.Background(), []string{"trading", "marketing"}, "q", nil)
	require.Len(t, results, 2)

	assert.True(t, results[0].Succeeded())
	assert.Equal(t, "ok", results[0].Response)

	assert.False(t, results[1].Succeeded())
	assert.Empty(t, results[1].Response)
	assert.Contains(t, results[1].Err, "provider unavailable")
	assert.Equal(t, "marketing", results[1].AgentID)
}

func TestDispatcher_DeduplicatesInput(t *testing.T) {
	backend := newStubBackend()
	backend.responses["trading"] = "ok"
	backend.responses["crm"] = "ok"

	exec := NewExecutor(testAgents(t, "trading", "crm"), nil, backend)
	d := NewDispatcher(exec)

	results := d.Dispatch(context.Background(), []string{"trading", "crm", "trading", ""}, "q", nil)
	require.Len(t, results, 2)
	assert.Equal(t, "trading", results[0].AgentID)
	assert.Equal(t, "crm", results[1].AgentID)
}

func TestDispatcher_MaxParallel(t *testing.T) {
	backend := newStubBackend()
	for _, id := range []string{"automation", "trading", "marketing", "content"} {
		backend.responses[id] = "ok"
		backend.delays[id] = 20 * time.Millisecond
	}

	exec := NewExecutor(testAgents(t, "automation", "trading", "marketing", "content"), nil, backend)
	d := NewDispatcher(exec, func(o *DispatcherOptions) { o.MaxParallel = 2 })

	results := d.Dispatch(context.Background(), []string{"automation", "trading", "marketing", "content"}, "q", nil)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Succeeded())
	}
	assert.LessOrEqual(t, backend.maxSeen.Load(), int32(2))
}

func TestDispatcher_AgentTimeout(t *testing.T) {
	backend := newStubBackend()
	backend.responses["trading"] = "fast"
	backend.responses["marketing"] = "slow"
	backend.delays["marketing"] = 200 * time.Millisecond

	exec := NewExecutor(testAgents(t, "trading", "marketing"), nil, backend)
	d := NewDispatcher(exec, func(o *DispatcherOptions) { o.AgentTimeout = 30 * time.Millisecond })

	results := d.Dispatch(context.Background(), []string{"trading", "marketing"}, "q", nil)
	require.Len(t, results, 2)

	assert.True(t, results[0].Succeeded())
	assert.False(t, results[1].Succeeded())
	assert.Contains(t, results[1].Err, context.DeadlineExceeded.Error())
}

func TestDispatcher_UnknownAgentBranch(t *testing.T) {
	backend := newStubBackend()
	backend.responses["trading"] = "ok"

	exec := NewExecutor(testAgents(t, "trading"), nil, backend)
	d := NewDispatcher(exec)

	results := d.Dispatch(context.Background(), []string{"trading", "ghost"}, "q", nil)
	require.Len(t, results, 2)
	assert.True(t, results[0].Succeeded())
	assert.False(t, results[1].Succeeded())
	assert.Equal(t, "ghost", results[1].AgentID)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "b", "a", "", "b"}))
	assert.Empty(t, dedupe(nil))
}
