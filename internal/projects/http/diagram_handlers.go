package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/umlhub/umlhub-backend/internal/auth"
	"github.com/umlhub/umlhub-backend/internal/render"
)

func (h *Handler) createDiagram(c *gin.Context) {
	var req createDiagramReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	d, err := h.diagrams.Create(c.Request.Context(), userID, c.Param("id"), strings.TrimSpace(req.Name), req.DiagramType, req.Source)
	if err != nil {
		writeDomainError(c, "diagram_create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "diagram": d})
}

func (h *Handler) getDiagram(c *gin.Context) {
	userID := auth.UserID(c)
	d, err := h.diagrams.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeDomainError(c, "diagram_get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "diagram": d})
}

// saveDiagram is the explicit-save path: render the submitted source and
// persist artifact + source together.
func (h *Handler) saveDiagram(c *gin.Context) {
	var req saveDiagramReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Source) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	d, err := h.diagrams.Save(c.Request.Context(), userID, c.Param("id"), req.Source, render.ParseFormat(req.Format))
	if err != nil {
		writeDomainError(c, "diagram_save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "diagram": d})
}

func (h *Handler) renameDiagram(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	d, err := h.diagrams.Rename(c.Request.Context(), userID, c.Param("id"), strings.TrimSpace(req.Name))
	if err != nil {
		writeDomainError(c, "diagram_rename", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "diagram": d})
}

func (h *Handler) deleteDiagram(c *gin.Context) {
	userID := auth.UserID(c)
	ok, err := h.diagrams.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeDomainError(c, "diagram_delete", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "diagram not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// diagramImage proxies the stored artifact bytes with its content type.
func (h *Handler) diagramImage(c *gin.Context) {
	userID := auth.UserID(c)
	data, contentType, err := h.diagrams.Image(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeDomainError(c, "diagram_image", err)
		return
	}
	if contentType == "" {
		contentType = "image/svg+xml"
	}
	c.Data(http.StatusOK, contentType, data)
}

// preview renders source without persisting anything. The caller's sequence
// number is echoed back so stale responses can be discarded client-side.
func (h *Handler) preview(c *gin.Context) {
	var req previewReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Source) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	format := render.ParseFormat(req.Format)
	data, err := h.sync.RenderEphemeral(c.Request.Context(), req.Source, format)
	if err != nil {
		writeDomainError(c, "diagram_preview", err)
		return
	}

	c.Header("X-Preview-Seq", strconv.FormatInt(req.Seq, 10))
	c.Data(http.StatusOK, format.ContentType(), data)
}
