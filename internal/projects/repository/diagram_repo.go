package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/projects/utils"
)

// DiagramRepository provides persistence operations for diagrams
type DiagramRepository struct {
	db *sql.DB
}

// NewDiagramRepository creates a new diagram repository
func NewDiagramRepository(db *sql.DB) *DiagramRepository {
	return &DiagramRepository{db: db}
}

// Create inserts a new diagram under a project owned by the user.
func (r *DiagramRepository) Create(ctx context.Context, ownerID, projectID, name, diagramType, source string) (*domain.Diagram, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("owner id required")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project id required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name required")
	}
	if strings.TrimSpace(diagramType) == "" {
		diagramType = "sequence"
	}

	var ok string
	err := r.db.QueryRowContext(ctx, `
SELECT id FROM projects WHERE id = $1 AND owner_id = $2;
`, projectID, ownerID).Scan(&ok)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	id, err := utils.NewTextID("dgm")
	if err != nil {
		return nil, err
	}

	d := domain.Diagram{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		Type:      diagramType,
		Source:    source,
	}

	err = r.db.QueryRowContext(ctx, `
INSERT INTO diagrams (id, project_id, name, diagram_type, source)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;
`, d.ID, d.ProjectID, d.Name, d.Type, d.Source).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetForRead returns the diagram when the caller owns the project or the
// project is public.
func (r *DiagramRepository) GetForRead(ctx context.Context, userID, diagramID string) (*domain.Diagram, error) {
	const q = `
SELECT d.id, d.project_id, d.name, d.diagram_type, d.source, COALESCE(d.artifact_key, ''), d.created_at, d.updated_at
FROM diagrams d
JOIN projects p ON p.id = d.project_id
WHERE d.id = $1 AND (p.owner_id = $2 OR p.is_public);
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, diagramID, userID))
}

// GetForWrite returns the diagram only when the caller owns the project.
func (r *DiagramRepository) GetForWrite(ctx context.Context, userID, diagramID string) (*domain.Diagram, error) {
	const q = `
SELECT d.id, d.project_id, d.name, d.diagram_type, d.source, COALESCE(d.artifact_key, ''), d.created_at, d.updated_at
FROM diagrams d
JOIN projects p ON p.id = d.project_id
WHERE d.id = $1 AND p.owner_id = $2;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, diagramID, userID))
}

// Get returns a diagram by id with no visibility filter. Internal callers
// (sync service, reconciler) only.
func (r *DiagramRepository) Get(ctx context.Context, diagramID string) (*domain.Diagram, error) {
	const q = `
SELECT id, project_id, name, diagram_type, source, COALESCE(artifact_key, ''), created_at, updated_at
FROM diagrams
WHERE id = $1;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, diagramID))
}

// UpdateSourceAndArtifact records a successfully stored render: source,
// artifact key and updated_at move together in one statement, so the row
// never shows a new source with a stale artifact reference or vice versa.
func (r *DiagramRepository) UpdateSourceAndArtifact(ctx context.Context, diagramID, source, artifactKey string) error {
	const q = `
UPDATE diagrams
SET source = $2, artifact_key = $3, updated_at = now()
WHERE id = $1;
`
	result, err := r.db.ExecContext(ctx, q, diagramID, source, artifactKey)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Rename updates the diagram's display name.
func (r *DiagramRepository) Rename(ctx context.Context, ownerID, diagramID, newName string) (*domain.Diagram, error) {
	const q = `
UPDATE diagrams d
SET name = $3, updated_at = now()
FROM projects p
WHERE d.id = $1 AND p.id = d.project_id AND p.owner_id = $2
RETURNING d.id, d.project_id, d.name, d.diagram_type, d.source, COALESCE(d.artifact_key, ''), d.created_at, d.updated_at;
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, diagramID, ownerID, newName))
}

// ListMissingArtifacts returns diagrams whose artifact has never been stored,
// oldest first. The nightly reconciler works through this list.
func (r *DiagramRepository) ListMissingArtifacts(ctx context.Context, limit int) ([]domain.Diagram, error) {
	const q = `
SELECT id, project_id, name, diagram_type, source, COALESCE(artifact_key, ''), created_at, updated_at
FROM diagrams
WHERE (artifact_key IS NULL OR artifact_key = '') AND source <> ''
ORDER BY updated_at ASC
LIMIT $1;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Diagram, 0, limit)
	for rows.Next() {
		var d domain.Diagram
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Type, &d.Source, &d.ArtifactKey, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a diagram owned by the user.
func (r *DiagramRepository) Delete(ctx context.Context, ownerID, diagramID string) (bool, error) {
	const q = `
DELETE FROM diagrams d
USING projects p
WHERE d.id = $1 AND p.id = d.project_id AND p.owner_id = $2;
`
	result, err := r.db.ExecContext(ctx, q, diagramID, ownerID)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *DiagramRepository) scanOne(row *sql.Row) (*domain.Diagram, error) {
	var d domain.Diagram
	err := row.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Type, &d.Source, &d.ArtifactKey, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
