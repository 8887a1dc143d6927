package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/umlhub/umlhub-backend/internal/logging"
	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/render"
	"github.com/umlhub/umlhub-backend/internal/storage/objectstore"
)

type createProjectReq struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"is_public,omitempty"`
}

type renameReq struct {
	Name string `json:"name"`
}

type createDiagramReq struct {
	Name        string `json:"name"`
	DiagramType string `json:"diagram_type,omitempty"`
	Source      string `json:"source,omitempty"`
}

type saveDiagramReq struct {
	Source string `json:"source"`
	Format string `json:"format,omitempty"`
}

type previewReq struct {
	Source string `json:"source"`
	Format string `json:"format,omitempty"`
	// Seq is an opaque client sequence number echoed back so the caller can
	// drop responses that no longer match its latest edit.
	Seq int64 `json:"seq,omitempty"`
}

// writeDomainError maps service errors onto HTTP responses. Render and store
// internals are logged and replaced with a generic retry message.
func writeDomainError(c *gin.Context, operation string, err error) {
	logger := logging.NewLogger(c.Request.Context())

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
	case errors.Is(err, domain.ErrNameExhausted):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "unable to generate a unique name"})
	default:
		var renderErr *render.Failure
		var storeErr *objectstore.Failure
		if errors.As(err, &renderErr) || errors.As(err, &storeErr) {
			logger.LogError(operation, err)
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "diagram rendering failed, please try again"})
			return
		}
		logger.LogError(operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
