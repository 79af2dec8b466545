// Package httpapi exposes the orchestration controller over HTTP. Handlers
// are deliberately thin: bind, delegate, map errors; the JSON bodies mirror
// the controller's request and response types field for field so UIs can
// branch on response.type.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/orchestrator"
)

// Handler handles HTTP requests.
type Handler struct {
	controller *orchestrator.Controller
	registry   core.AgentRegistry
	store      core.ConversationStore
	logger     logging.Logger
}

// NewHandler creates a new handler.
func NewHandler(controller *orchestrator.Controller, registry core.AgentRegistry, store core.ConversationStore, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Handler{
		controller: controller,
		registry:   registry,
		store:      store,
		logger:     logger,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/orchestrate", h.Orchestrate)
	e.POST("/v1/route", h.Route)
	e.POST("/v1/agents/:agent_id/chat", h.ChatDirect)
	e.GET("/v1/agents", h.ListAgents)
	e.GET("/v1/conversations/:conversation_id/messages", h.GetConversationMessages)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Orchestrate routes and answers one message.
// POST /v1/orchestrate
func (h *Handler) Orchestrate(c echo.Context) error {
	var req orchestrator.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.controller.Orchestrate(c.Request().Context(), req)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Route returns the routing decision without executing any agent.
// POST /v1/route
func (h *Handler) Route(c echo.Context) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	decision, err := h.controller.RouteOnly(c.Request().Context(), req.Message)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, decision)
}

// ChatDirect forces a single-agent dispatch, bypassing routing.
// POST /v1/agents/:agent_id/chat
func (h *Handler) ChatDirect(c echo.Context) error {
	agentID := c.Param("agent_id")

	var req struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id,omitempty"`
		UserID         string `json:"user_id,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.controller.ChatDirect(c.Request().Context(), agentID, req.Message, req.ConversationID, req.UserID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ListAgents returns the specialist catalog.
// GET /v1/agents
func (h *Handler) ListAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"agents": h.registry.List()})
}

// GetConversationMessages returns the last messages of a conversation.
// GET /v1/conversations/:conversation_id/messages
func (h *Handler) GetConversationMessages(c echo.Context) error {
	conversationID := c.Param("conversation_id")

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 50
	}

	messages, err := h.store.RecentMessages(c.Request().Context(), conversationID, limit)
	if err != nil {
		h.logger.Error("failed to read messages", "conversation_id", conversationID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read messages"})
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

// mapError translates engine errors into HTTP responses.
func (h *Handler) mapError(c echo.Context, err error) error {
	var notFound *core.AgentNotFoundError
	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.Is(err, core.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
