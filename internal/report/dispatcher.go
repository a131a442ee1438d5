package report

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/osgrady/radreport/internal/genclient"
)

// Dispatcher fans one generation task per eligible section out across a
// bounded concurrent wave and joins the results in canonical + discovery
// order. Completion timing never influences ordering: each task writes to
// its own positional slot.
type Dispatcher struct {
	gen Generator
	cfg Config
}

func NewDispatcher(gen Generator, cfg Config) *Dispatcher {
	return &Dispatcher{gen: gen, cfg: cfg}
}

// BuildTasks lists the work for a record: one task per canonical section
// with non-empty trimmed text, in canonical order, then one per dynamic
// entry with non-empty trimmed findings, in discovery order. Empty
// sections produce no task and are absent downstream.
func (d *Dispatcher) BuildTasks(rec CaseRecord) []SectionTask {
	var tasks []SectionTask
	for _, key := range d.cfg.CanonicalKeys {
		text := rec.Sections[key]
		if strings.TrimSpace(text) == "" {
			continue
		}
		tasks = append(tasks, SectionTask{
			Label:        string(key),
			Input:        sectionPrompt(d.sectionName(key), text),
			Instructions: d.cfg.Instructions[key],
		})
	}
	for _, dyn := range rec.Dynamic {
		if strings.TrimSpace(dyn.Findings) == "" {
			continue
		}
		tasks = append(tasks, SectionTask{
			Label:        dyn.Organ,
			Input:        dynamicPrompt(dyn.Organ, dyn.Findings, rec.Note),
			Instructions: d.cfg.DynamicInstructions,
		})
	}
	return tasks
}

// Dispatch runs all tasks, canonical and dynamic alike, in one concurrent
// wave and waits for every one of them. A slow section delays only the
// final join, never its siblings.
func (d *Dispatcher) Dispatch(ctx context.Context, rec CaseRecord) []SectionResult {
	tasks := d.BuildTasks(rec)
	results := make([]SectionResult, len(tasks))

	var g errgroup.Group
	g.SetLimit(d.cfg.MaxConcurrentSections)
	for i, task := range tasks {
		g.Go(func() error {
			res := d.gen.Generate(ctx, task.Instructions, task.Input)
			results[i] = SectionResult{
				Label:    task.Label,
				Text:     res.Text,
				Status:   sectionStatus(res.Status),
				Attempts: res.Attempts,
			}
			return nil
		})
	}
	// Join, not race: section failures have already degraded to fallback
	// text inside Generate, so Wait never returns an error.
	_ = g.Wait()
	return results
}

func (d *Dispatcher) sectionName(key SectionKey) string {
	if header, ok := d.cfg.Headers[key]; ok {
		return strings.ToLower(header)
	}
	return string(key)
}

func sectionPrompt(name, findings string) string {
	return fmt.Sprintf("Generate a radiology report section for the %s based on these findings:\n\n%s\n\nProvide only the report text, no headers or labels.", name, findings)
}

func dynamicPrompt(organ, findings, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a radiology report section for %s based on these findings:\n\n%s\n", organ, findings)
	if strings.TrimSpace(note) != "" {
		fmt.Fprintf(&b, "Additional Comments - consider only the part relevant to %s findings:\n%s\n", organ, note)
	}
	b.WriteString("\nProvide only the report text.")
	return b.String()
}

func sectionStatus(s genclient.CallStatus) SectionStatus {
	if s == genclient.StatusSuccess {
		return SectionSuccess
	}
	return SectionFallback
}
