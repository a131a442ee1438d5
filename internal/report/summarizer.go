package report

import (
	"context"
	"fmt"
	"strings"
)

// Summarizer produces the impression block from the aggregated findings
// document. Failure semantics are those of the generation client: the call
// degrades to fallback text and never returns an error.
type Summarizer struct {
	gen Generator
	cfg Config
}

func NewSummarizer(gen Generator, cfg Config) *Summarizer {
	return &Summarizer{gen: gen, cfg: cfg}
}

func (s *Summarizer) Summarize(ctx context.Context, document, note string) SectionResult {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this complete radiology report, generate a professional IMPRESSION section:\n\nREPORT:\n%s\n", document)
	if strings.TrimSpace(note) != "" {
		fmt.Fprintf(&b, "\nORIGINAL COMMENT:\n%s\n", note)
	}
	b.WriteString("\nProvide only the impression text, no headers.")

	res := s.gen.Generate(ctx, s.cfg.ImpressionInstructions, b.String())
	return SectionResult{
		Label:    "impression",
		Text:     strings.TrimSpace(res.Text),
		Status:   sectionStatus(res.Status),
		Attempts: res.Attempts,
	}
}
