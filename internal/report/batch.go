package report

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// BatchCoordinator runs one per-case pipeline per input, concurrently but
// bounded, with full isolation between cases. The result always carries
// exactly one entry per input, in input order.
type BatchCoordinator struct {
	orch *Orchestrator
}

func NewBatchCoordinator(orch *Orchestrator) *BatchCoordinator {
	return &BatchCoordinator{orch: orch}
}

func (b *BatchCoordinator) ProcessBatch(ctx context.Context, cases []CaseInput) BatchResult {
	ctx, span := b.orch.tracer.Start(ctx, "report.process_batch",
		trace.WithAttributes(attribute.Int("batch.cases", len(cases))))
	defer span.End()

	started := time.Now()
	entries := make([]BatchEntry, len(cases))
	sem := semaphore.NewWeighted(int64(b.orch.cfg.MaxConcurrentCases))

	var g errgroup.Group
	for i, c := range cases {
		g.Go(func() error {
			entries[i] = b.runIsolated(ctx, sem, c)
			return nil
		})
	}
	// Entries land in their input-index slot, so completion order cannot
	// reorder the batch. Wait never returns an error: runIsolated absorbs
	// every per-case failure.
	_ = g.Wait()

	return BatchResult{Entries: entries, StartedAt: started, FinishedAt: time.Now()}
}

func (b *BatchCoordinator) runIsolated(ctx context.Context, sem *semaphore.Weighted, c CaseInput) (entry BatchEntry) {
	entry = BatchEntry{Label: c.Label}
	// A panicking case pipeline must not take its siblings down; it
	// degrades to a placeholder report like any other case failure.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("radreport case_panic label=%q panic=%v", c.Label, r)
			entry.Report = placeholderReport(c.Label)
		}
	}()

	if err := sem.Acquire(ctx, 1); err != nil {
		log.Printf("radreport case_cancelled label=%q err=%v", c.Label, err)
		entry.Report = placeholderReport(c.Label)
		return entry
	}
	defer sem.Release(1)

	entry.Report = b.orch.ProcessCase(ctx, c.Text, c.Label)
	return entry
}

func placeholderReport(label string) CaseReport {
	now := time.Now()
	return CaseReport{
		Label:      label,
		Text:       ComposeReport("", ""),
		Degraded:   true,
		StartedAt:  now,
		FinishedAt: now,
	}
}
