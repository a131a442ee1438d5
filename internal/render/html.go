package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const reportCSS = `
body{font-family:Georgia,'Times New Roman',serif;color:#1c1917;line-height:1.5;}
.report-wrap{max-width:820px;margin:0 auto;padding:0.8rem 1rem;}
.report-html h1{font-size:1.4rem;letter-spacing:0.04em;border-bottom:2px solid #1c1917;padding-bottom:0.3rem;}
.report-html h2{font-size:1.05rem;letter-spacing:0.03em;margin-top:1.4rem;}
.report-html h3{font-size:0.92rem;letter-spacing:0.02em;color:#44403c;margin-bottom:0.2rem;}
.report-html p{margin:0.4rem 0;}
.report-degraded{background:#fef3c7;color:#78350f;border:1px solid #fcd34d;padding:0.3rem 0.6rem;font-size:0.82rem;display:inline-block;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
@media print{ @page{size:auto;margin:12mm;} body{padding:0;} .report-wrap{max-width:none;} }
`

// BuildHTML converts report markdown into a standalone HTML document with
// the print stylesheet inlined. A degraded report gets a visible notice so
// the rendered document cannot be mistaken for a complete read.
func BuildHTML(markdown string, degraded bool) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}

	notice := ""
	if degraded {
		notice = "<div class='report-degraded'>Incomplete report: automated processing did not finish. Review the source findings.</div>"
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Radiology Report</title>" +
		"<style>" + reportCSS + "</style></head><body>" +
		"<div class='report-wrap'>" + notice +
		"<div class='report-html'>" + content.String() + "</div></div>" +
		"</body></html>", nil
}
