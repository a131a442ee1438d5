package report

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/osgrady/radreport/internal/genclient"
)

// Generator is the reliable generation call every pipeline phase shares.
// *genclient.Client satisfies it; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, instructions, content string) genclient.CallResult
}

// Segmenter turns raw case text into a structured CaseRecord. Segmentation
// failure never propagates: any unparseable response degrades to an
// all-empty record.
type Segmenter struct {
	gen Generator
	cfg Config
}

func NewSegmenter(gen Generator, cfg Config) *Segmenter {
	return &Segmenter{gen: gen, cfg: cfg}
}

type segmentPayload struct {
	Liver    string           `json:"liver"`
	GB       string           `json:"gb"`
	Pancreas string           `json:"pancreas"`
	Spleen   string           `json:"spleen"`
	Kidney   string           `json:"kidney"`
	Aorta    string           `json:"aorta"`
	Others   []DynamicSection `json:"others"`
	Comment  string           `json:"comment"`
}

func (s *Segmenter) Split(ctx context.Context, rawText string) CaseRecord {
	if strings.TrimSpace(rawText) == "" {
		return emptyRecord(s.cfg.CanonicalKeys)
	}

	prompt := "Parse this radiology patient information and extract data by body part:\n\n" +
		rawText +
		"\n\nReturn a JSON object with the structure specified in your instructions."
	res := s.gen.Generate(ctx, s.cfg.SegmenterInstructions, prompt)
	if res.Status != genclient.StatusSuccess {
		log.Printf("radreport segmenter_degraded class=%s attempts=%d", res.Class, res.Attempts)
		return emptyRecord(s.cfg.CanonicalKeys)
	}

	payload, ok := parseSegmentPayload(res.Text)
	if !ok {
		log.Printf("radreport segmenter_parse_failed response_chars=%d", len(res.Text))
		return emptyRecord(s.cfg.CanonicalKeys)
	}

	record := emptyRecord(s.cfg.CanonicalKeys)
	record.Sections[SectionLiver] = payload.Liver
	record.Sections[SectionGB] = payload.GB
	record.Sections[SectionPancreas] = payload.Pancreas
	record.Sections[SectionSpleen] = payload.Spleen
	record.Sections[SectionKidney] = payload.Kidney
	record.Sections[SectionAorta] = payload.Aorta
	record.Dynamic = payload.Others
	record.Note = payload.Comment
	return record
}

// parseSegmentPayload tries direct JSON first, then the first balanced
// {...} substring. Unknown keys are ignored; missing keys stay empty.
func parseSegmentPayload(raw string) (segmentPayload, bool) {
	var payload segmentPayload
	clean := stripCodeFences(raw)
	if err := json.Unmarshal([]byte(clean), &payload); err == nil {
		return payload, true
	}
	obj, ok := extractJSONObject(clean)
	if !ok {
		return segmentPayload{}, false
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return segmentPayload{}, false
	}
	return payload, true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// extractJSONObject returns the first balanced top-level {...} substring,
// honoring string literals and escapes.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
