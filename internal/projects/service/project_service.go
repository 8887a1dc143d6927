package service

import (
	"context"

	"github.com/umlhub/umlhub-backend/internal/logging"
	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/projects/repository"
)

// ProjectService handles project-related business logic
type ProjectService struct {
	repo      *repository.ProjectRepository
	artifacts ArtifactStore
}

// NewProjectService creates a new project service
func NewProjectService(repo *repository.ProjectRepository, artifacts ArtifactStore) *ProjectService {
	return &ProjectService{
		repo:      repo,
		artifacts: artifacts,
	}
}

// Create creates a new project
func (s *ProjectService) Create(ctx context.Context, ownerID, name, description string, isPublic bool) (*domain.Project, error) {
	return s.repo.Create(ctx, ownerID, name, description, isPublic)
}

// List returns all projects for a user
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.repo.List(ctx, ownerID)
}

// Get loads a project with its diagrams. Callers see their own projects and
// anyone's public projects.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	p, err := s.repo.GetWithDiagrams(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID && !p.IsPublic {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Rename updates a project's name
func (s *ProjectService) Rename(ctx context.Context, ownerID, projectID, newName string) (*domain.Project, error) {
	return s.repo.Rename(ctx, ownerID, projectID, newName)
}

// Delete removes the project and its diagrams. Artifact deletion runs first,
// best effort: a failed object delete is logged and never blocks the row
// deletion.
func (s *ProjectService) Delete(ctx context.Context, ownerID, projectID string) (bool, error) {
	logger := logging.NewLogger(ctx)

	p, err := s.repo.GetWithDiagrams(ctx, projectID)
	if err != nil {
		if err == domain.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if p.OwnerID != ownerID {
		return false, nil
	}

	for _, d := range p.Diagrams {
		if d.ArtifactKey == "" {
			continue
		}
		if err := s.artifacts.Delete(ctx, d.ArtifactKey); err != nil {
			logger.LogErrorf("project_delete", "diagram_id=%s artifact delete failed: %v", d.ID, err)
		}
	}

	return s.repo.Delete(ctx, ownerID, projectID)
}
