package http

import "github.com/gin-gonic/gin"

// Register mounts project and diagram routes. The groups are expected to
// carry auth middleware already: projects requires a verified user, diagrams
// tolerates anonymous reads of public projects.
func Register(projects, diagrams *gin.RouterGroup, h *Handler) {
	projects.POST("", h.createProject)
	projects.GET("", h.listProjects)
	projects.GET("/:id", h.getProject)
	projects.PATCH("/:id", h.renameProject)
	projects.DELETE("/:id", h.deleteProject)
	projects.POST("/:id/duplicate", h.duplicateProject)
	projects.POST("/:id/diagrams", h.createDiagram)

	diagrams.POST("/preview", h.preview)
	diagrams.GET("/:id", h.getDiagram)
	diagrams.PUT("/:id", h.saveDiagram)
	diagrams.PATCH("/:id", h.renameDiagram)
	diagrams.DELETE("/:id", h.deleteDiagram)
	diagrams.GET("/:id/image", h.diagramImage)
}
