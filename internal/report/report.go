package report

import (
	"fmt"
	"strings"
)

const reportTitle = "RADIOLOGY REPORT"

const batchBannerRule = "================================================================================"

// Aggregate joins section texts with a blank-line separator in the given
// order. Pure and total: no failure path.
func Aggregate(results []SectionResult) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	return strings.Join(texts, "\n\n")
}

// ComposeReport fills the fixed report template: title, findings in
// section order, impression block.
func ComposeReport(findings, impression string) string {
	return fmt.Sprintf("%s\n\nFINDINGS:\n\n%s\n\nIMPRESSION:\n%s\n", reportTitle, findings, impression)
}

// BuildBatchArtifact concatenates per-case reports, each prefixed by a
// fixed PATIENT banner, in batch entry order (which is input order).
func BuildBatchArtifact(batch BatchResult) string {
	blocks := make([]string, 0, len(batch.Entries))
	for _, entry := range batch.Entries {
		header := fmt.Sprintf("%s\nPATIENT %s\n%s\n\n", batchBannerRule, entry.Label, batchBannerRule)
		blocks = append(blocks, header+entry.Report.Text)
	}
	return strings.Join(blocks, "\n\n\n")
}

// BuildReportMarkdown renders a CaseReport as markdown for the HTML/PDF
// renderers. The plain-text artifact in CaseReport.Text stays the report
// of record; this view only adds headings.
func BuildReportMarkdown(cfg Config, rep CaseReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", reportTitle)
	if strings.TrimSpace(rep.Label) != "" {
		fmt.Fprintf(&b, "**Patient:** %s\n\n", rep.Label)
	}
	b.WriteString("## FINDINGS\n\n")
	for _, sec := range rep.Sections {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", sectionHeader(cfg, sec.Label), sec.Text)
	}
	b.WriteString("## IMPRESSION\n\n")
	b.WriteString(rep.Impression)
	b.WriteString("\n")
	return b.String()
}

func sectionHeader(cfg Config, label string) string {
	if header, ok := cfg.Headers[SectionKey(label)]; ok {
		return header
	}
	return strings.ToUpper(label)
}
