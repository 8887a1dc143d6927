package service

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/umlhub/umlhub-backend/internal/logging"
	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/render"
)

// Bounded probe count for "{base} (copy) {n}" names before giving up.
const maxNameProbes = 999

// ProjectCloneStore is the slice of the project repository duplication needs.
type ProjectCloneStore interface {
	GetWithDiagrams(ctx context.Context, id string) (*domain.Project, error)
	NameExists(ctx context.Context, ownerID, name string) (bool, error)
	CreateClone(ctx context.Context, src *domain.Project, ownerID, name string) (*domain.Project, error)
}

// DiagramSyncer regenerates one clone's artifact.
type DiagramSyncer interface {
	RenderAndPersist(ctx context.Context, diagramID, source string, format render.Format) (string, error)
}

// ItemResult reports the outcome of regenerating one cloned diagram.
type ItemResult struct {
	DiagramID   string `json:"diagram_id"`
	Name        string `json:"name"`
	ArtifactKey string `json:"artifact_key,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Report is the full duplication outcome: the created project plus a
// per-diagram regeneration result.
type Report struct {
	Project *domain.Project `json:"project"`
	Items   []ItemResult    `json:"items"`
}

// DuplicateService clones a project with its diagrams and regenerates each
// clone's artifact, tolerating per-item render failures.
type DuplicateService struct {
	projects ProjectCloneStore
	sync     DiagramSyncer
	limiter  *rate.Limiter
}

func NewDuplicateService(projects ProjectCloneStore, sync DiagramSyncer, limiter *rate.Limiter) *DuplicateService {
	return &DuplicateService{
		projects: projects,
		sync:     sync,
		limiter:  limiter,
	}
}

// Duplicate clones the project for the requester. The requester must own the
// project or the project must be public. The clone and its diagram rows are
// created atomically; artifact regeneration afterwards is sequential and
// per-item fault tolerant, so one bad diagram cannot block the rest.
func (s *DuplicateService) Duplicate(ctx context.Context, projectID, requesterID string) (*Report, error) {
	logger := logging.NewLogger(ctx)

	src, err := s.projects.GetWithDiagrams(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if src.OwnerID != requesterID && !src.IsPublic {
		return nil, domain.ErrForbidden
	}

	name, err := s.resolveUniqueName(ctx, src.Name, requesterID)
	if err != nil {
		return nil, err
	}

	clone, err := s.projects.CreateClone(ctx, src, requesterID, name)
	if err != nil {
		return nil, fmt.Errorf("create clone: %w", err)
	}

	report := &Report{Project: clone, Items: make([]ItemResult, 0, len(clone.Diagrams))}

	// Sequential on purpose: bounds load on the renderer and keeps failure
	// attribution per-item unambiguous.
	for i := range clone.Diagrams {
		d := &clone.Diagrams[i]
		item := ItemResult{DiagramID: d.ID, Name: d.Name}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				item.Error = "canceled"
				report.Items = append(report.Items, item)
				continue
			}
		}

		key, err := s.sync.RenderAndPersist(ctx, d.ID, d.Source, render.FormatSVG)
		if err != nil {
			// the report goes to the client; renderer internals stay in the log
			logger.LogErrorf("duplicate", "diagram_id=%s render failed: %v", d.ID, err)
			item.Error = "render failed"
		} else {
			d.ArtifactKey = key
			item.ArtifactKey = key
		}
		report.Items = append(report.Items, item)
	}

	return report, nil
}

// resolveUniqueName probes "{base} (copy)", then "{base} (copy) {n}" for
// increasing n, and returns the first name the owner does not already use.
func (s *DuplicateService) resolveUniqueName(ctx context.Context, base, ownerID string) (string, error) {
	candidate := fmt.Sprintf("%s (copy)", base)

	for n := 0; n < maxNameProbes; n++ {
		if n > 0 {
			candidate = fmt.Sprintf("%s (copy) %d", base, n)
		}

		exists, err := s.projects.NameExists(ctx, ownerID, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", domain.ErrNameExhausted
}
