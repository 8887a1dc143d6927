package service

import (
	"context"

	"github.com/umlhub/umlhub-backend/internal/logging"
	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/projects/repository"
	"github.com/umlhub/umlhub-backend/internal/render"
)

// DiagramService handles diagram-related business logic
type DiagramService struct {
	repo      *repository.DiagramRepository
	sync      *SyncService
	artifacts ArtifactStore
}

// NewDiagramService creates a new diagram service
func NewDiagramService(repo *repository.DiagramRepository, sync *SyncService, artifacts ArtifactStore) *DiagramService {
	return &DiagramService{
		repo:      repo,
		sync:      sync,
		artifacts: artifacts,
	}
}

// Create adds a diagram to the user's project. When the initial source is
// non-empty the first artifact is rendered right away; a render failure at
// this point is logged and the diagram is still created.
func (s *DiagramService) Create(ctx context.Context, ownerID, projectID, name, diagramType, source string) (*domain.Diagram, error) {
	d, err := s.repo.Create(ctx, ownerID, projectID, name, diagramType, source)
	if err != nil {
		return nil, err
	}

	if source != "" {
		if key, err := s.sync.RenderAndPersist(ctx, d.ID, source, render.FormatSVG); err != nil {
			logging.NewLogger(ctx).LogErrorf("diagram_create", "diagram_id=%s initial render failed: %v", d.ID, err)
		} else {
			d.ArtifactKey = key
		}
	}

	return d, nil
}

// Get returns a diagram visible to the user.
func (s *DiagramService) Get(ctx context.Context, userID, diagramID string) (*domain.Diagram, error) {
	return s.repo.GetForRead(ctx, userID, diagramID)
}

// Save is the explicit-save path: re-render the new source and persist both
// artifact and source atomically. Ownership is checked first.
func (s *DiagramService) Save(ctx context.Context, ownerID, diagramID, source string, format render.Format) (*domain.Diagram, error) {
	if _, err := s.repo.GetForWrite(ctx, ownerID, diagramID); err != nil {
		return nil, err
	}

	if _, err := s.sync.RenderAndPersist(ctx, diagramID, source, format); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, diagramID)
}

// CanRead reports whether the user may read the diagram (owner or public
// project). Returns ErrNotFound/ErrForbidden otherwise.
func (s *DiagramService) CanRead(ctx context.Context, userID, diagramID string) error {
	_, err := s.repo.GetForRead(ctx, userID, diagramID)
	return err
}

// ApplyCode pushes machine-generated source through the same ownership check
// and render pipeline as an explicit save.
func (s *DiagramService) ApplyCode(ctx context.Context, ownerID, diagramID, source string) error {
	_, err := s.Save(ctx, ownerID, diagramID, source, render.FormatSVG)
	return err
}

// Rename updates the diagram's display name.
func (s *DiagramService) Rename(ctx context.Context, ownerID, diagramID, newName string) (*domain.Diagram, error) {
	return s.repo.Rename(ctx, ownerID, diagramID, newName)
}

// Image returns the stored artifact bytes and content type for proxying.
func (s *DiagramService) Image(ctx context.Context, userID, diagramID string) ([]byte, string, error) {
	d, err := s.repo.GetForRead(ctx, userID, diagramID)
	if err != nil {
		return nil, "", err
	}
	if d.ArtifactKey == "" {
		return nil, "", domain.ErrNotFound
	}
	return s.artifacts.Get(ctx, d.ArtifactKey)
}

// Delete removes a diagram. The artifact delete is best effort and precedes
// the row delete; a failed object delete never blocks it.
func (s *DiagramService) Delete(ctx context.Context, ownerID, diagramID string) (bool, error) {
	d, err := s.repo.GetForWrite(ctx, ownerID, diagramID)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, nil
		}
		return false, err
	}

	if d.ArtifactKey != "" {
		if err := s.artifacts.Delete(ctx, d.ArtifactKey); err != nil {
			logging.NewLogger(ctx).LogErrorf("diagram_delete", "diagram_id=%s artifact delete failed: %v", d.ID, err)
		}
	}

	return s.repo.Delete(ctx, ownerID, diagramID)
}
