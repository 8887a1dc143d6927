package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means the project or diagram does not exist (or is not
	// visible to the caller).
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNameExhausted means the duplication name probe ran out of candidates.
	ErrNameExhausted = errors.New("unable to generate unique project name")
)

// Project represents a diagram project owned by a user.
// It is intentionally storage-agnostic and used across repository and HTTP layers.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Diagrams []Diagram `json:"diagrams,omitempty"`
}

// Diagram holds the editable source text and a reference to the rendered
// artifact. ArtifactKey is derived state: it must always be re-derivable
// from Source, and is empty until a render has been stored.
type Diagram struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Type        string    `json:"diagram_type"`
	Source      string    `json:"source"`
	ArtifactKey string    `json:"artifact_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
