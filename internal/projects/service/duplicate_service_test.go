package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/render"
)

type fakeProjects struct {
	src        *domain.Project
	takenNames map[string]bool
	created    *domain.Project
}

func (f *fakeProjects) GetWithDiagrams(ctx context.Context, id string) (*domain.Project, error) {
	if f.src == nil || f.src.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.src, nil
}

func (f *fakeProjects) NameExists(ctx context.Context, ownerID, name string) (bool, error) {
	return f.takenNames[name], nil
}

func (f *fakeProjects) CreateClone(ctx context.Context, src *domain.Project, ownerID, name string) (*domain.Project, error) {
	clone := &domain.Project{
		ID:       "proj-clone",
		OwnerID:  ownerID,
		Name:     name,
		IsPublic: false,
	}
	for i, d := range src.Diagrams {
		clone.Diagrams = append(clone.Diagrams, domain.Diagram{
			ID:        fmt.Sprintf("dgm-clone-%d", i),
			ProjectID: clone.ID,
			Name:      d.Name,
			Type:      d.Type,
			Source:    d.Source,
		})
	}
	f.created = clone
	f.takenNames[name] = true
	return clone, nil
}

type fakeSyncer struct {
	failFor map[string]bool
	failErr error
	calls   []string
}

func (f *fakeSyncer) RenderAndPersist(ctx context.Context, diagramID, source string, format render.Format) (string, error) {
	f.calls = append(f.calls, diagramID)
	if f.failFor[diagramID] {
		if f.failErr != nil {
			return "", f.failErr
		}
		return "", &render.Failure{Status: 500, Reason: "renderer returned status 500"}
	}
	return diagramID, nil
}

func sourceProject(diagrams int) *domain.Project {
	p := &domain.Project{
		ID:       "proj-src",
		OwnerID:  "user-1",
		Name:     "Widget",
		IsPublic: true,
	}
	for i := 0; i < diagrams; i++ {
		p.Diagrams = append(p.Diagrams, domain.Diagram{
			ID:     fmt.Sprintf("dgm-%d", i),
			Name:   fmt.Sprintf("diagram %d", i),
			Type:   "sequence",
			Source: "@startuml\nA -> B\n@enduml",
		})
	}
	return p
}

func TestDuplicate_OwnerClonesOwnProject(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(2), takenNames: map[string]bool{}}
	syncer := &fakeSyncer{}

	svc := NewDuplicateService(projects, syncer, nil)
	report, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Widget (copy)", report.Project.Name)
	assert.False(t, report.Project.IsPublic, "clones are always private")
	assert.Len(t, report.Items, 2)
	for _, item := range report.Items {
		assert.Empty(t, item.Error)
		assert.Equal(t, item.DiagramID, item.ArtifactKey)
	}
}

func TestDuplicate_PublicProjectByStranger(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(1), takenNames: map[string]bool{}}
	svc := NewDuplicateService(projects, &fakeSyncer{}, nil)

	report, err := svc.Duplicate(context.Background(), "proj-src", "user-2")
	require.NoError(t, err)
	assert.Equal(t, "user-2", report.Project.OwnerID)
}

func TestDuplicate_PrivateProjectByStrangerIsForbidden(t *testing.T) {
	src := sourceProject(1)
	src.IsPublic = false
	projects := &fakeProjects{src: src, takenNames: map[string]bool{}}
	svc := NewDuplicateService(projects, &fakeSyncer{}, nil)

	_, err := svc.Duplicate(context.Background(), "proj-src", "user-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDuplicate_MissingProject(t *testing.T) {
	projects := &fakeProjects{takenNames: map[string]bool{}}
	svc := NewDuplicateService(projects, &fakeSyncer{}, nil)

	_, err := svc.Duplicate(context.Background(), "nope", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicate_NameProbeSequence(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(0), takenNames: map[string]bool{}}
	projects.src.Name = "Foo"

	// nine prior copies: "Foo (copy)", "Foo (copy) 1" .. "Foo (copy) 8"
	projects.takenNames["Foo (copy)"] = true
	for n := 1; n <= 8; n++ {
		projects.takenNames[fmt.Sprintf("Foo (copy) %d", n)] = true
	}

	svc := NewDuplicateService(projects, &fakeSyncer{}, nil)
	report, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Foo (copy) 9", report.Project.Name)
}

func TestDuplicate_SecondCopyGetsNumberedName(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(0), takenNames: map[string]bool{}}
	svc := NewDuplicateService(projects, &fakeSyncer{}, nil)

	first, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	require.NoError(t, err)
	second, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Widget (copy)", first.Project.Name)
	assert.Equal(t, "Widget (copy) 1", second.Project.Name)
	assert.False(t, first.Project.IsPublic)
	assert.False(t, second.Project.IsPublic)
}

func TestDuplicate_NameExhausted(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(0), takenNames: map[string]bool{}}
	projects.takenNames["Widget (copy)"] = true
	for n := 1; n < maxNameProbes; n++ {
		projects.takenNames[fmt.Sprintf("Widget (copy) %d", n)] = true
	}

	svc := NewDuplicateService(projects, &fakeSyncer{}, nil)
	_, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	assert.ErrorIs(t, err, domain.ErrNameExhausted)
	assert.Nil(t, projects.created, "clone must not be created without a name")
}

func TestDuplicate_OneBadDiagramDoesNotBlockTheRest(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(3), takenNames: map[string]bool{}}
	syncer := &fakeSyncer{failFor: map[string]bool{"dgm-clone-1": true}}

	svc := NewDuplicateService(projects, syncer, nil)
	report, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	require.NoError(t, err)

	require.Len(t, report.Items, 3)
	assert.Empty(t, report.Items[0].Error)
	assert.NotEmpty(t, report.Items[1].Error)
	assert.Empty(t, report.Items[1].ArtifactKey, "failed item keeps artifact unset")
	assert.Empty(t, report.Items[2].Error)

	// sequential, all three attempted
	assert.Equal(t, []string{"dgm-clone-0", "dgm-clone-1", "dgm-clone-2"}, syncer.calls)
}

func TestDuplicate_ReportHidesRendererInternals(t *testing.T) {
	projects := &fakeProjects{src: sourceProject(1), takenNames: map[string]bool{}}
	syncer := &fakeSyncer{
		failFor: map[string]bool{"dgm-clone-0": true},
		failErr: &render.Failure{Reason: `renderer unreachable: Post "http://plantuml.internal:9999/svg/abc": dial tcp 10.0.0.7:9999: connect: connection refused`},
	}

	svc := NewDuplicateService(projects, syncer, nil)
	report, err := svc.Duplicate(context.Background(), "proj-src", "user-1")
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "render failed", report.Items[0].Error)
	assert.NotContains(t, report.Items[0].Error, "plantuml.internal")
	assert.NotContains(t, report.Items[0].Error, "dial tcp")
}
