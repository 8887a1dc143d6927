package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/umlhub/umlhub-backend/config"
	assistanthttp "github.com/umlhub/umlhub-backend/internal/assistant/http"
	"github.com/umlhub/umlhub-backend/internal/assistant/llm"
	assistantsvc "github.com/umlhub/umlhub-backend/internal/assistant/service"
	"github.com/umlhub/umlhub-backend/internal/assistant/store"
	"github.com/umlhub/umlhub-backend/internal/auth"
	"github.com/umlhub/umlhub-backend/internal/bootstrap"
	"github.com/umlhub/umlhub-backend/internal/maintenance"
	projecthttp "github.com/umlhub/umlhub-backend/internal/projects/http"
	"github.com/umlhub/umlhub-backend/internal/projects/repository"
	"github.com/umlhub/umlhub-backend/internal/projects/service"
	"github.com/umlhub/umlhub-backend/internal/render"
	"github.com/umlhub/umlhub-backend/internal/storage/objectstore"
	"github.com/umlhub/umlhub-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	artifacts, err := objectstore.New(ctx, &cfg.ObjectStore)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("Failed to initialize firebase: %v", err)
	}

	projectRepo := repository.NewProjectRepository(db)
	diagramRepo := repository.NewDiagramRepository(db)

	renderer := render.NewClient(cfg.Renderer.BaseURL)
	previewCache := render.NewCache(rdb, time.Hour)
	backgroundLimiter := rate.NewLimiter(rate.Limit(cfg.Renderer.RatePerSecond), cfg.Renderer.RatePerSecond)

	syncService := service.NewSyncService(renderer, previewCache, artifacts, diagramRepo)
	projectService := service.NewProjectService(projectRepo, artifacts)
	diagramService := service.NewDiagramService(diagramRepo, syncService, artifacts)
	duplicateService := service.NewDuplicateService(projectRepo, syncService, backgroundLimiter)

	durable := store.NewDurableStore(db, cfg.AI.MaxHistory)
	volatile := store.NewVolatileStore(cfg.AI.SessionTTL, nil)
	executor := llm.NewExecutor(cfg.AI)
	manager := assistantsvc.NewManager(durable, volatile, executor, diagramService, diagramService, cfg.AI.MaxHistory)

	reconciler := maintenance.NewReconciler(diagramRepo, syncService, backgroundLimiter)
	cronRunner := reconciler.Start()
	defer cronRunner.Stop()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "umlhub-backend",
		Version:     cfg.App.Version,
		DB:          db,
		AuthClient:  authClient,
		Projects:    projecthttp.NewHandler(projectService, diagramService, syncService, duplicateService),
		Assistant:   assistanthttp.NewHandler(manager),
	})

	log.Printf("Starting umlhub-backend on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
