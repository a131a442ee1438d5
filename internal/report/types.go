package report

import "time"

// SectionKey identifies a canonical organ section. The canonical set and
// its order are fixed configuration and never change at runtime.
type SectionKey string

const (
	SectionLiver    SectionKey = "liver"
	SectionGB       SectionKey = "gb"
	SectionPancreas SectionKey = "pancreas"
	SectionSpleen   SectionKey = "spleen"
	SectionKidney   SectionKey = "kidney"
	SectionAorta    SectionKey = "aorta"
)

// DynamicSection is an ad hoc organ discovered during segmentation, outside
// the canonical set. Discovery order is preserved end to end.
type DynamicSection struct {
	Organ    string `json:"organ"`
	Findings string `json:"findings"`
}

// CaseRecord holds the segmented findings for one case. It is created once
// by the segmenter and never mutated afterwards. Every canonical key is
// always present in Sections (default empty string).
type CaseRecord struct {
	Sections map[SectionKey]string
	Dynamic  []DynamicSection
	Note     string
}

func emptyRecord(keys []SectionKey) CaseRecord {
	sections := make(map[SectionKey]string, len(keys))
	for _, k := range keys {
		sections[k] = ""
	}
	return CaseRecord{Sections: sections}
}

type SectionStatus string

const (
	SectionSuccess  SectionStatus = "SUCCESS"
	SectionFallback SectionStatus = "FALLBACK"
)

// SectionTask is one unit of dispatched generation work.
type SectionTask struct {
	Label        string // canonical key or dynamic organ name
	Input        string
	Instructions string
}

// SectionResult is the outcome of exactly one SectionTask. Results are
// always reordered to the originating record's canonical + discovery
// order, never left in completion order.
type SectionResult struct {
	Label    string        `json:"label"`
	Text     string        `json:"text"`
	Status   SectionStatus `json:"status"`
	Attempts int           `json:"attempts"`
}

// CaseReport is the final per-case artifact. Immutable once composed.
type CaseReport struct {
	Label      string          `json:"label"`
	Sections   []SectionResult `json:"sections"`
	Impression string          `json:"impression"`
	Text       string          `json:"text"`
	Degraded   bool            `json:"degraded"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// CaseInput is one raw case handed to the batch coordinator.
type CaseInput struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type BatchEntry struct {
	Label  string     `json:"label"`
	Report CaseReport `json:"report"`
}

// BatchResult preserves input order regardless of completion order or
// per-case degradation.
type BatchResult struct {
	Entries    []BatchEntry `json:"entries"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}
