package maintenance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/render"
)

type fakeLister struct {
	diagrams []domain.Diagram
	err      error
}

func (f *fakeLister) ListMissingArtifacts(_ context.Context, _ int) ([]domain.Diagram, error) {
	return f.diagrams, f.err
}

type fakeSyncer struct {
	failFor map[string]error
	synced  []string
}

func (f *fakeSyncer) RenderAndPersist(_ context.Context, diagramID, _ string, _ render.Format) (string, error) {
	if err, ok := f.failFor[diagramID]; ok {
		return "", err
	}
	f.synced = append(f.synced, diagramID)
	return diagramID, nil
}

func testLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestRunRepairsMissingArtifacts(t *testing.T) {
	lister := &fakeLister{diagrams: []domain.Diagram{
		{ID: "dgm_1", Source: "@startuml\nA -> B\n@enduml"},
		{ID: "dgm_2", Source: "@startuml\nB -> C\n@enduml"},
	}}
	syncer := &fakeSyncer{}

	r := NewReconciler(lister, syncer, testLimiter())
	repaired, failed := r.Run(context.Background())

	assert.Equal(t, 2, repaired)
	assert.Zero(t, failed)
	assert.Equal(t, []string{"dgm_1", "dgm_2"}, syncer.synced)
}

func TestRunSkipsEmptySource(t *testing.T) {
	lister := &fakeLister{diagrams: []domain.Diagram{
		{ID: "dgm_1", Source: ""},
		{ID: "dgm_2", Source: "@startuml\n@enduml"},
	}}
	syncer := &fakeSyncer{}

	r := NewReconciler(lister, syncer, testLimiter())
	repaired, _ := r.Run(context.Background())

	assert.Equal(t, 1, repaired)
	assert.Equal(t, []string{"dgm_2"}, syncer.synced)
}

func TestRunContinuesPastFailures(t *testing.T) {
	lister := &fakeLister{diagrams: []domain.Diagram{
		{ID: "dgm_1", Source: "@startuml\n@enduml"},
		{ID: "dgm_2", Source: "@startuml\n@enduml"},
		{ID: "dgm_3", Source: "@startuml\n@enduml"},
	}}
	syncer := &fakeSyncer{failFor: map[string]error{"dgm_2": errors.New("renderer returned status 500")}}

	r := NewReconciler(lister, syncer, testLimiter())
	repaired, failed := r.Run(context.Background())

	assert.Equal(t, 2, repaired)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"dgm_1", "dgm_3"}, syncer.synced)
}

func TestRunListFailureAbortsQuietly(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	syncer := &fakeSyncer{}

	r := NewReconciler(lister, syncer, testLimiter())
	repaired, failed := r.Run(context.Background())

	assert.Zero(t, repaired)
	assert.Zero(t, failed)
	assert.Empty(t, syncer.synced)
}
