package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/umlhub/umlhub-backend/internal/auth"
	"github.com/umlhub/umlhub-backend/internal/projects/service"
)

type Handler struct {
	projects   *service.ProjectService
	diagrams   *service.DiagramService
	sync       *service.SyncService
	duplicator *service.DuplicateService
}

func NewHandler(projects *service.ProjectService, diagrams *service.DiagramService, sync *service.SyncService, duplicator *service.DuplicateService) *Handler {
	return &Handler{
		projects:   projects,
		diagrams:   diagrams,
		sync:       sync,
		duplicator: duplicator,
	}
}

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	p, err := h.projects.Create(c.Request.Context(), userID, strings.TrimSpace(req.Name), req.Description, req.IsPublic)
	if err != nil {
		writeDomainError(c, "project_create", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) listProjects(c *gin.Context) {
	userID := auth.UserID(c)
	items, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		writeDomainError(c, "project_list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) getProject(c *gin.Context) {
	userID := auth.UserID(c)
	p, err := h.projects.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeDomainError(c, "project_get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) renameProject(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserID(c)
	p, err := h.projects.Rename(c.Request.Context(), userID, c.Param("id"), strings.TrimSpace(req.Name))
	if err != nil {
		writeDomainError(c, "project_rename", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	userID := auth.UserID(c)
	ok, err := h.projects.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeDomainError(c, "project_delete", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) duplicateProject(c *gin.Context) {
	userID := auth.UserID(c)
	report, err := h.duplicator.Duplicate(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeDomainError(c, "project_duplicate", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": report.Project, "items": report.Items})
}
