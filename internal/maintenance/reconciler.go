package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/umlhub/umlhub-backend/internal/projects/domain"
	"github.com/umlhub/umlhub-backend/internal/render"
)

const reconcileBatchSize = 100

// MissingArtifactLister finds diagrams whose source was saved but whose
// rendered artifact never made it to the object store.
type MissingArtifactLister interface {
	ListMissingArtifacts(ctx context.Context, limit int) ([]domain.Diagram, error)
}

// DiagramSyncer re-renders and persists a single diagram.
type DiagramSyncer interface {
	RenderAndPersist(ctx context.Context, diagramID, source string, format render.Format) (string, error)
}

// Reconciler backfills missing artifacts. Renders go through the shared
// limiter so the nightly sweep cannot starve interactive traffic on the
// PlantUML server.
type Reconciler struct {
	diagrams MissingArtifactLister
	sync     DiagramSyncer
	limiter  *rate.Limiter
}

func NewReconciler(diagrams MissingArtifactLister, sync DiagramSyncer, limiter *rate.Limiter) *Reconciler {
	return &Reconciler{diagrams: diagrams, sync: sync, limiter: limiter}
}

// Start schedules the nightly run at 12:00 AM.
func (r *Reconciler) Start() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		r.Run(ctx)
	})
	if err != nil {
		log.Printf("Failed to create artifact reconcile job: %v", err)
		return c
	}

	log.Println("Artifact reconciler started (running nightly at 12:00AM)")
	c.Start()
	return c
}

// Run performs one reconcile pass. Per-diagram failures are logged and
// skipped; the pass keeps going.
func (r *Reconciler) Run(ctx context.Context) (repaired, failed int) {
	diagrams, err := r.diagrams.ListMissingArtifacts(ctx, reconcileBatchSize)
	if err != nil {
		log.Printf("[error] operation=artifact_reconcile message=list failed: %v", err)
		return 0, 0
	}
	if len(diagrams) == 0 {
		return 0, 0
	}

	for _, d := range diagrams {
		if d.Source == "" {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			log.Printf("[warn] operation=artifact_reconcile message=pass aborted: %v", err)
			break
		}
		if _, err := r.sync.RenderAndPersist(ctx, d.ID, d.Source, render.FormatSVG); err != nil {
			log.Printf("[error] operation=artifact_reconcile diagram_id=%s message=render failed: %v", d.ID, err)
			failed++
			continue
		}
		repaired++
	}

	log.Printf("[info] operation=artifact_reconcile message=pass complete repaired=%d failed=%d", repaired, failed)
	return repaired, failed
}
