package render

import (
	"strings"
	"testing"
)

func TestBuildHTMLConvertsMarkdown(t *testing.T) {
	out, err := BuildHTML("# RADIOLOGY REPORT\n\n## FINDINGS\n\nThe liver is normal.\n", false)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "RADIOLOGY REPORT") {
		t.Fatalf("title heading missing: %s", out)
	}
	if !strings.Contains(out, "<h2") || !strings.Contains(out, "FINDINGS") {
		t.Fatalf("section heading missing: %s", out)
	}
	if strings.Contains(out, "report-degraded") {
		t.Fatal("complete report should not carry the degraded notice")
	}
}

func TestBuildHTMLMarksDegradedReports(t *testing.T) {
	out, err := BuildHTML("# RADIOLOGY REPORT\n", true)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if !strings.Contains(out, "report-degraded") || !strings.Contains(out, "Incomplete report") {
		t.Fatalf("degraded notice missing: %s", out)
	}
}

func TestBuildHTMLRendersGFMTables(t *testing.T) {
	md := "| Organ | Finding |\n| --- | --- |\n| Liver | Cyst |\n"
	out, err := BuildHTML(md, false)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<td>Cyst</td>") {
		t.Fatalf("table extension not applied: %s", out)
	}
}
