package registry

import (
	"testing"

	"github.com/lumohq/switchboard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_RegisterAndGet(t *testing.T) {
	r := NewInMemory()
	require.NoError(t, r.Register(core.AgentDescriptor{ID: "trading", Name: "Trading Analyst"}))

	desc, ok := r.Get("trading")
	assert.True(t, ok)
	assert.Equal(t, "Trading Analyst", desc.Name)

	_, ok = r.Get("ghost")
	assert.False(t, ok)
}

func TestInMemory_RejectsInvalidIDs(t *testing.T) {
	r := NewInMemory()

	assert.Error(t, r.Register(core.AgentDescriptor{ID: ""}))
	assert.Error(t, r.Register(core.AgentDescriptor{ID: core.OrchestratorID}))

	require.NoError(t, r.Register(core.AgentDescriptor{ID: "trading"}))
	assert.Error(t, r.Register(core.AgentDescriptor{ID: "trading"}))
}

func TestInMemory_ListPreservesRegistrationOrder(t *testing.T) {
	r := NewInMemory()
	for _, id := range []string{"crm", "automation", "trading"} {
		require.NoError(t, r.Register(core.AgentDescriptor{ID: id}))
	}

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "crm", list[0].ID)
	assert.Equal(t, "automation", list[1].ID)
	assert.Equal(t, "trading", list[2].ID)
}

func TestDefaultSpecialists(t *testing.T) {
	r := NewInMemory()
	for _, desc := range DefaultSpecialists() {
		require.NoError(t, r.Register(desc))
		assert.NotEmpty(t, desc.Name)
		assert.NotEmpty(t, desc.Specialization)
		assert.NotEmpty(t, desc.SystemPrompt)
	}
	assert.Len(t, r.List(), 5)
}
