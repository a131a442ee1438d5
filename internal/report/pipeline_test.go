package report

import (
	"context"
	"strings"
	"testing"

	"github.com/osgrady/radreport/internal/genclient"
)

const allNPSegmentation = `{
	"liver": "NP", "gb": "NP", "pancreas": "NP",
	"spleen": "NP", "kidney": "NP", "aorta": "NP",
	"others": [], "comment": ""
}`

func TestProcessCaseAllNormalProducesSentinelOnce(t *testing.T) {
	cfg := DefaultConfig()
	gen := &stubGen{fn: func(instructions, content string) genclient.CallResult {
		switch instructions {
		case cfg.SegmenterInstructions:
			return ok(allNPSegmentation)
		case cfg.ImpressionInstructions:
			return ok(cfg.NoFindingsSentinel)
		default:
			return ok("No significant abnormality detected.")
		}
	}}
	orch, err := NewOrchestrator(gen, cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	rep := orch.ProcessCase(context.Background(), "Liver: NP\nGB: NP\n...", "case-1")
	if len(rep.Sections) != len(cfg.CanonicalKeys) {
		t.Fatalf("expected %d sections, got %d", len(cfg.CanonicalKeys), len(rep.Sections))
	}
	for _, call := range gen.recorded() {
		if call.instructions == cfg.SegmenterInstructions || call.instructions == cfg.ImpressionInstructions {
			continue
		}
		if !strings.Contains(call.content, "NP") {
			t.Fatalf("section task content should carry the NP findings: %q", call.content)
		}
	}
	if got := strings.Count(rep.Text, cfg.NoFindingsSentinel); got != 1 {
		t.Fatalf("expected sentinel exactly once, found %d times in:\n%s", got, rep.Text)
	}
	if rep.Degraded {
		t.Fatal("normal case should not be degraded")
	}
}

func TestProcessCaseComposesTemplate(t *testing.T) {
	cfg := DefaultConfig()
	gen := &stubGen{fn: func(instructions, content string) genclient.CallResult {
		switch instructions {
		case cfg.SegmenterInstructions:
			return ok(`{"liver": "Cyst S7", "others": [], "comment": ""}`)
		case cfg.ImpressionInstructions:
			return ok("Liver cyst.")
		default:
			return ok("A liver cyst is noted in segment 7.")
		}
	}}
	orch, err := NewOrchestrator(gen, cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	rep := orch.ProcessCase(context.Background(), "Liver: Cyst S7", "case-2")
	want := "RADIOLOGY REPORT\n\nFINDINGS:\n\nA liver cyst is noted in segment 7.\n\nIMPRESSION:\nLiver cyst.\n"
	if rep.Text != want {
		t.Fatalf("template mismatch:\ngot  %q\nwant %q", rep.Text, want)
	}
	if rep.Impression != "Liver cyst." {
		t.Fatalf("impression not captured: %q", rep.Impression)
	}
}

func TestProcessCaseSegmentationFailureDegrades(t *testing.T) {
	cfg := DefaultConfig()
	gen := &stubGen{fn: func(instructions, content string) genclient.CallResult {
		if instructions == cfg.SegmenterInstructions {
			return ok("not json at all")
		}
		t.Errorf("no further calls expected after empty segmentation, got instructions=%q", instructions)
		return ok("")
	}}
	orch, err := NewOrchestrator(gen, cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	rep := orch.ProcessCase(context.Background(), "some findings", "case-3")
	if !rep.Degraded {
		t.Fatal("expected degraded report after total segmentation failure")
	}
	if len(rep.Sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(rep.Sections))
	}
	if !strings.HasPrefix(rep.Text, "RADIOLOGY REPORT") {
		t.Fatalf("degraded report should still use the fixed template: %q", rep.Text)
	}
}

func TestProcessCaseEmptyInputIsNotDegraded(t *testing.T) {
	cfg := DefaultConfig()
	gen := &stubGen{}
	orch, err := NewOrchestrator(gen, cfg)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	rep := orch.ProcessCase(context.Background(), "", "case-4")
	if rep.Degraded {
		t.Fatal("empty input is an empty report, not a degraded one")
	}
	if gen.callCount() != 0 {
		t.Fatalf("expected no backend calls for empty input, got %d", gen.callCount())
	}
}

func TestNewOrchestratorRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrentSections = 0
	if _, err := NewOrchestrator(&stubGen{}, cfg); err == nil {
		t.Fatal("expected config validation error")
	}

	cfg = DefaultConfig()
	cfg.Instructions = map[SectionKey]string{}
	if _, err := NewOrchestrator(&stubGen{}, cfg); err == nil {
		t.Fatal("expected missing-instructions error")
	}
}
