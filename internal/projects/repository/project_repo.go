package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/projects/utils"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project for the given user.
func (r *ProjectRepository) Create(ctx context.Context, ownerID, name, description string, isPublic bool) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner id required")
	}

	for i := 0; i < 5; i++ {
		id, err := utils.NewTextID("proj")
		if err != nil {
			return nil, err
		}

		const q = `
INSERT INTO projects (id, owner_id, name, description, is_public)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, owner_id, name, description, is_public, created_at, updated_at;
`
		var p domain.Project
		err = r.db.QueryRowContext(ctx, q, id, ownerID, name, description, isPublic).
			Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)

		if err == nil {
			return &p, nil
		}

		// unique violation on id → retry with a fresh one
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.Constraint == "projects_pkey" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

// Get returns a project by id regardless of owner. Visibility decisions
// belong to the caller.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
SELECT id, owner_id, name, description, is_public, created_at, updated_at
FROM projects
WHERE id = $1;
`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetWithDiagrams loads a project together with all of its diagrams.
func (r *ProjectRepository) GetWithDiagrams(ctx context.Context, id string) (*domain.Project, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	const q = `
SELECT id, project_id, name, diagram_type, source, COALESCE(artifact_key, ''), created_at, updated_at
FROM diagrams
WHERE project_id = $1
ORDER BY created_at ASC;
`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.Diagram
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.Type, &d.Source, &d.ArtifactKey, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		p.Diagrams = append(p.Diagrams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all projects for the given user.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	const q = `
SELECT id, owner_id, name, description, is_public, created_at, updated_at
FROM projects
WHERE owner_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename updates the project's name.
func (r *ProjectRepository) Rename(ctx context.Context, ownerID, id, newName string) (*domain.Project, error) {
	const q = `
UPDATE projects
SET name = $3, updated_at = now()
WHERE owner_id = $1 AND id = $2
RETURNING id, owner_id, name, description, is_public, created_at, updated_at;
`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, q, ownerID, id, newName).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// NameExists reports whether the owner already has a project with this name.
// Used by the duplication name probe.
func (r *ProjectRepository) NameExists(ctx context.Context, ownerID, name string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE owner_id = $1 AND name = $2);`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, ownerID, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Delete removes the project row; diagram rows go with it via ON DELETE
// CASCADE. Artifact cleanup happens before this call, in the service.
func (r *ProjectRepository) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `DELETE FROM projects WHERE owner_id = $1 AND id = $2;`

	result, err := r.db.ExecContext(ctx, q, ownerID, id)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// CreateClone inserts a new project plus clones of all source diagrams as a
// single transaction: either the whole clone set exists afterwards or none
// of it does. Clones are always private and start with no artifact.
func (r *ProjectRepository) CreateClone(ctx context.Context, src *domain.Project, ownerID, name string) (*domain.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	projectID, err := utils.NewTextID("proj")
	if err != nil {
		return nil, err
	}

	clone := domain.Project{
		ID:          projectID,
		OwnerID:     ownerID,
		Name:        name,
		Description: src.Description,
		IsPublic:    false,
	}

	err = tx.QueryRowContext(ctx, `
INSERT INTO projects (id, owner_id, name, description, is_public)
VALUES ($1, $2, $3, $4, false)
RETURNING created_at, updated_at;
`, clone.ID, clone.OwnerID, clone.Name, clone.Description).
		Scan(&clone.CreatedAt, &clone.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, d := range src.Diagrams {
		diagramID, err := utils.NewTextID("dgm")
		if err != nil {
			return nil, err
		}

		cd := domain.Diagram{
			ID:        diagramID,
			ProjectID: clone.ID,
			Name:      d.Name,
			Type:      d.Type,
			Source:    d.Source,
		}

		err = tx.QueryRowContext(ctx, `
INSERT INTO diagrams (id, project_id, name, diagram_type, source)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at;
`, cd.ID, cd.ProjectID, cd.Name, cd.Type, cd.Source).
			Scan(&cd.CreatedAt, &cd.UpdatedAt)
		if err != nil {
			return nil, err
		}

		clone.Diagrams = append(clone.Diagrams, cd)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &clone, nil
}
