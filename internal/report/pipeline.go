package report

import (
	"context"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/osgrady/radreport/internal/report"

// Orchestrator composes segmentation, dispatch, aggregation, and impression
// synthesis into the per-case pipeline. It holds only read-only state and
// is safe for concurrent ProcessCase calls.
type Orchestrator struct {
	segmenter  *Segmenter
	dispatcher *Dispatcher
	summarizer *Summarizer
	cfg        Config
	tracer     trace.Tracer
}

func NewOrchestrator(gen Generator, cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		segmenter:  NewSegmenter(gen, cfg),
		dispatcher: NewDispatcher(gen, cfg),
		summarizer: NewSummarizer(gen, cfg),
		cfg:        cfg,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

func (o *Orchestrator) Config() Config { return o.cfg }

// ProcessCase runs the full pipeline for one case. It never returns an
// error: total segmentation failure yields a near-empty degraded report.
func (o *Orchestrator) ProcessCase(ctx context.Context, rawText, label string) CaseReport {
	ctx, span := o.tracer.Start(ctx, "report.process_case",
		trace.WithAttributes(attribute.String("case.label", label)))
	defer span.End()

	started := time.Now()

	_, segSpan := o.tracer.Start(ctx, "report.segment")
	record := o.segmenter.Split(ctx, rawText)
	segSpan.End()

	dispatchCtx, dispatchSpan := o.tracer.Start(ctx, "report.dispatch")
	results := o.dispatcher.Dispatch(dispatchCtx, record)
	dispatchSpan.End()

	findings := Aggregate(results)

	impression := ""
	if len(results) > 0 || strings.TrimSpace(record.Note) != "" {
		sumCtx, sumSpan := o.tracer.Start(ctx, "report.summarize")
		impression = o.summarizer.Summarize(sumCtx, findings, record.Note).Text
		sumSpan.End()
	}

	degraded := len(results) == 0 && strings.TrimSpace(rawText) != ""
	if degraded {
		log.Printf("radreport case_degraded label=%q", label)
	}
	span.SetAttributes(
		attribute.Int("case.sections", len(results)),
		attribute.Bool("case.degraded", degraded),
	)

	return CaseReport{
		Label:      label,
		Sections:   results,
		Impression: impression,
		Text:       ComposeReport(findings, impression),
		Degraded:   degraded,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
}
