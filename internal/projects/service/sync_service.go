package service

import (
	"context"
	"fmt"

	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/render"
)

// Renderer produces image bytes for diagram source.
type Renderer interface {
	Render(ctx context.Context, source string, format render.Format) ([]byte, error)
}

// PreviewCache caches ephemeral render results. Optional.
type PreviewCache interface {
	Get(ctx context.Context, source string, format render.Format) ([]byte, bool)
	Set(ctx context.Context, source string, format render.Format, data []byte)
}

// ArtifactStore is the object store surface the sync service needs.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// DiagramStore is the slice of the diagram repository the sync service needs.
type DiagramStore interface {
	Get(ctx context.Context, diagramID string) (*domain.Diagram, error)
	UpdateSourceAndArtifact(ctx context.Context, diagramID, source, artifactKey string) error
}

// SyncService keeps a diagram's rendered artifact consistent with its source.
type SyncService struct {
	renderer  Renderer
	cache     PreviewCache
	artifacts ArtifactStore
	diagrams  DiagramStore
}

func NewSyncService(renderer Renderer, cache PreviewCache, artifacts ArtifactStore, diagrams DiagramStore) *SyncService {
	return &SyncService{
		renderer:  renderer,
		cache:     cache,
		artifacts: artifacts,
		diagrams:  diagrams,
	}
}

// RenderEphemeral renders source for live preview. It never touches the
// artifact store or the database; staleness handling (dropping responses
// for superseded edits) is the caller's job.
func (s *SyncService) RenderEphemeral(ctx context.Context, source string, format render.Format) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, source, format); ok {
			return data, nil
		}
	}

	data, err := s.renderer.Render(ctx, source, format)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, source, format, data)
	}
	return data, nil
}

// RenderAndPersist renders source, stores the artifact keyed by the diagram
// id, then records source + artifact key + updated_at in a single update.
// Any failure before that final update leaves the diagram row untouched:
// a successful render alone is never recorded as persisted.
func (s *SyncService) RenderAndPersist(ctx context.Context, diagramID, source string, format render.Format) (string, error) {
	if _, err := s.diagrams.Get(ctx, diagramID); err != nil {
		return "", err
	}

	data, err := s.renderer.Render(ctx, source, format)
	if err != nil {
		return "", err
	}

	if err := s.artifacts.Put(ctx, diagramID, data, format.ContentType()); err != nil {
		return "", err
	}

	if err := s.diagrams.UpdateSourceAndArtifact(ctx, diagramID, source, diagramID); err != nil {
		return "", fmt.Errorf("record artifact: %w", err)
	}

	return diagramID, nil
}
