package bootstrap

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	assistanthttp "github.com/umlhub/umlhub-backend/internal/assistant/http"
	"github.com/umlhub/umlhub-backend/internal/auth"
	"github.com/umlhub/umlhub-backend/internal/httpx"
	projecthttp "github.com/umlhub/umlhub-backend/internal/projects/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	AuthClient  *fbauth.Client
	Projects    *projecthttp.Handler
	Assistant   *assistanthttp.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(httpx.RequestIDMiddleware())

	healthHandler := httpx.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	// Projects are owner-scoped and need a verified user. Diagram routes
	// tolerate anonymous callers so public projects stay readable; write
	// handlers check ownership themselves.
	projectsGroup := api.Group("/projects")
	projectsGroup.Use(auth.RequireUser(dep.AuthClient))

	diagramsGroup := api.Group("/diagrams")
	diagramsGroup.Use(auth.OptionalUser(dep.AuthClient))

	projecthttp.Register(projectsGroup, diagramsGroup, dep.Projects)

	aiGroup := api.Group("/ai")
	aiGroup.Use(auth.OptionalUser(dep.AuthClient))
	assistanthttp.Register(aiGroup, dep.Assistant)

	return r
}
