package report

import (
	"fmt"
	"strings"
)

// Config is injected at orchestrator construction and read-only afterwards.
// There is deliberately no package-level mutable configuration.
type Config struct {
	// CanonicalKeys fixes the section set and its output order.
	CanonicalKeys []SectionKey
	// Headers maps canonical keys to their display headers in rendered output.
	Headers map[SectionKey]string
	// Instructions maps a canonical key to the generation instructions for
	// that section. DynamicInstructions covers organs outside the canonical
	// set and SegmenterInstructions / ImpressionInstructions drive the two
	// non-section calls.
	Instructions          map[SectionKey]string
	DynamicInstructions   string
	SegmenterInstructions string
	ImpressionInstructions string

	// NoFindingsSentinel is the impression emitted when nothing abnormal
	// was found.
	NoFindingsSentinel string

	// MaxConcurrentSections bounds the per-case generation wave;
	// MaxConcurrentCases bounds the batch fan-out.
	MaxConcurrentSections int
	MaxConcurrentCases    int
}

func DefaultConfig() Config {
	return Config{
		CanonicalKeys: []SectionKey{
			SectionLiver, SectionGB, SectionPancreas,
			SectionSpleen, SectionKidney, SectionAorta,
		},
		Headers: map[SectionKey]string{
			SectionLiver:    "LIVER",
			SectionGB:       "GALLBLADDER AND BILIARY SYSTEM",
			SectionPancreas: "PANCREAS",
			SectionSpleen:   "SPLEEN",
			SectionKidney:   "KIDNEYS",
			SectionAorta:    "AORTA",
		},
		Instructions: map[SectionKey]string{
			SectionLiver:    liverInstructions,
			SectionGB:       gbInstructions,
			SectionPancreas: pancreasInstructions,
			SectionSpleen:   spleenInstructions,
			SectionKidney:   kidneyInstructions,
			SectionAorta:    aortaInstructions,
		},
		DynamicInstructions:    dynamicInstructions,
		SegmenterInstructions:  segmenterInstructions,
		ImpressionInstructions: impressionInstructions,
		NoFindingsSentinel:     "Unremarkable ultrasound study.",
		MaxConcurrentSections:  6,
		MaxConcurrentCases:     4,
	}
}

func (c Config) Validate() error {
	if len(c.CanonicalKeys) == 0 {
		return fmt.Errorf("canonical key set is empty")
	}
	seen := map[SectionKey]bool{}
	for _, k := range c.CanonicalKeys {
		if strings.TrimSpace(string(k)) == "" {
			return fmt.Errorf("canonical key is blank")
		}
		if seen[k] {
			return fmt.Errorf("duplicate canonical key %q", k)
		}
		seen[k] = true
		if _, ok := c.Instructions[k]; !ok {
			return fmt.Errorf("no instructions configured for section %q", k)
		}
	}
	if c.MaxConcurrentSections <= 0 || c.MaxConcurrentCases <= 0 {
		return fmt.Errorf("concurrency bounds must be positive")
	}
	if strings.TrimSpace(c.NoFindingsSentinel) == "" {
		return fmt.Errorf("no-findings sentinel is blank")
	}
	return nil
}
