package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/lumohq/switchboard/conversation"
	"github.com/lumohq/switchboard/model"
	"github.com/lumohq/switchboard/orchestrator"
	"github.com/lumohq/switchboard/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*echo.Echo, *conversation.InMemoryStore) {
	t.Helper()

	reg := registry.NewInMemory()
	for _, desc := range registry.DefaultSpecialists() {
		require.NoError(t, reg.Register(desc))
	}
	store := conversation.NewInMemoryStore()
	backend := model.NewMockBackend("api-mock", "mock")
	controller := orchestrator.NewController(reg, store, nil, backend)

	e := echo.New()
	NewHandler(controller, reg, store, nil).RegisterRoutes(e)
	return e, store
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Health(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHandler_Orchestrate(t *testing.T) {
	e, store := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/orchestrate",
		`{"message": "how do I set up a zapier webhook"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result orchestrator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, orchestrator.ResponseTypeSingleAgent, result.Response.Type)
	assert.Equal(t, "automation", result.Response.Agent)
	assert.NotEmpty(t, result.ConversationID)

	conv, err := store.Get(context.Background(), result.ConversationID)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 2)
}

func TestHandler_OrchestrateEmptyMessage(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/orchestrate", `{"message": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_OrchestrateBadBody(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/orchestrate", `{"message": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Route(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/route", `{"message": "is btc overbought on the rsi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var decision struct {
		PrimaryAgent string `json:"primary_agent"`
		Strategy     string `json:"strategy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.Equal(t, "trading", decision.PrimaryAgent)
	assert.Equal(t, "keyword", decision.Strategy)
}

func TestHandler_ChatDirect(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/agents/content/chat", `{"message": "draft a headline"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result orchestrator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "content", result.Response.Agent)
}

func TestHandler_ChatDirectUnknownAgent(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/agents/ghost/chat", `{"message": "hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost")
}

func TestHandler_ListAgents(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Agents []struct {
			ID string `json:"id"`
		} `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Agents, 5)
	assert.Equal(t, "automation", payload.Agents[0].ID)
}

func TestHandler_GetConversationMessages(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/orchestrate", `{"message": "hello there"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result orchestrator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	rec = doJSON(e, http.MethodGet, "/v1/conversations/"+result.ConversationID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "user", payload.Messages[0].Role)
	assert.Equal(t, "hello there", payload.Messages[0].Content)
}

func TestHandler_GetMessagesUnknownConversation(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/v1/conversations/missing/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Messages []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload.Messages)
}

func TestHandler_Orchestrate_MultiAgent(t *testing.T) {
	reg := registry.NewInMemory()
	for _, desc := range registry.DefaultSpecialists() {
		require.NoError(t, reg.Register(desc))
	}
	store := conversation.NewInMemoryStore()
	backend := model.NewMockBackend("api-mock", "mock")
	msg := "should I buy btc and how do I run a marketing campaign for it"
	backend.AddResponse(msg,
		`{"primary_agent":"trading","secondary_agents":["marketing"],"reasoning":"two domains","is_multi_agent":true}`)
	controller := orchestrator.NewController(reg, store, nil, backend)

	e := echo.New()
	NewHandler(controller, reg, store, nil).RegisterRoutes(e)

	body, err := json.Marshal(map[string]string{"message": msg})
	require.NoError(t, err)
	rec := doJSON(e, http.MethodPost, "/v1/orchestrate", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var result orchestrator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, orchestrator.ResponseTypeMultiAgent, result.Response.Type)
	assert.Equal(t, []string{"trading", "marketing"}, result.AgentsUsed)
	assert.Len(t, result.Response.AgentResponses, 2)
}
