package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umlhub/umlhub-backend/internal/assistant/domain"
	"github.com/umlhub/umlhub-backend/internal/assistant/llm"
	"github.com/umlhub/umlhub-backend/internal/assistant/service"
	"github.com/umlhub/umlhub-backend/internal/auth"
	"github.com/umlhub/umlhub-backend/internal/logging"
)

type exchangeReq struct {
	Prompt      string `json:"prompt"`
	CurrentCode string `json:"currentCode,omitempty"`
	DiagramType string `json:"diagramType,omitempty"`
	Model       string `json:"model,omitempty"`
	DiagramID   string `json:"diagramId,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}

type clearReq struct {
	DiagramID string `json:"diagramId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

type Handler struct {
	manager *service.Manager
}

func NewHandler(manager *service.Manager) *Handler {
	return &Handler{manager: manager}
}

// Register mounts the assistant routes. The group tolerates anonymous
// callers; a verified uid upgrades the conversation to the durable tier.
func Register(rg *gin.RouterGroup, h *Handler) {
	rg.POST("", h.exchange)
	rg.DELETE("", h.clear)
}

func (h *Handler) exchange(c *gin.Context) {
	var req exchangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "prompt is required"})
		return
	}

	res, err := h.manager.Exchange(c.Request.Context(), service.ExchangeRequest{
		Prompt:      req.Prompt,
		CurrentCode: req.CurrentCode,
		DiagramType: req.DiagramType,
		Model:       req.Model,
		DiagramID:   req.DiagramID,
		UserID:      auth.UserID(c),
		SessionID:   req.SessionID,
	})
	if err != nil {
		writeAssistantError(c, "ai_exchange", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":                  true,
		"response":            res.Response,
		"isCodeResponse":      res.IsCodeResponse,
		"conversationHistory": res.History,
		"sessionId":           res.SessionID,
	})
}

func (h *Handler) clear(c *gin.Context) {
	var req clearReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	err := h.manager.Clear(c.Request.Context(), domain.Identity{
		DiagramID: req.DiagramID,
		UserID:    auth.UserID(c),
		SessionID: req.SessionID,
	})
	if err != nil {
		writeAssistantError(c, "ai_clear", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// writeAssistantError maps backend failures onto user-safe responses. The
// raw provider error only ever reaches the log.
func writeAssistantError(c *gin.Context, operation string, err error) {
	logger := logging.NewLogger(c.Request.Context())
	logger.LogError(operation, err)

	var be *llm.BackendError
	if errors.As(err, &be) {
		status := http.StatusBadGateway
		switch be.Kind {
		case llm.KindAuth:
			status = http.StatusInternalServerError
		case llm.KindQuota, llm.KindNetwork:
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"ok": false, "error": be.UserMessage()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
}
