package termlog

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Phase records what a single pipeline stage did, summed over all passes.
type Phase struct {
	Name        string         `json:"name"`
	Enabled     bool           `json:"enabled"`
	BytesBefore int            `json:"bytes_before"`
	BytesAfter  int            `json:"bytes_after"`
	Matches     int            `json:"matches"`
	Details     map[string]int `json:"details,omitempty"` // rule -> matches
	Duration    time.Duration  `json:"duration_ns"`
}

// BytesRemoved returns how many bytes the stage removed.
func (p *Phase) BytesRemoved() int {
	return p.BytesBefore - p.BytesAfter
}

// Stats captures metrics about what the cleaner did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`
	InputLines  int `json:"input_lines"`
	OutputLines int `json:"output_lines"`

	// Passes is the number of times the pipeline ran (more than one when
	// converging).
	Passes int `json:"passes"`

	// Phases holds one entry per pipeline stage, in order.
	Phases []*Phase `json:"phases"`

	TotalDuration time.Duration `json:"total_duration_ns"`
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{
		Phases: make([]*Phase, 0, len(StageNames())),
	}
}

// AddPhase appends a phase record and returns it.
func (s *Stats) AddPhase(name string, enabled bool) *Phase {
	p := &Phase{
		Name:    name,
		Enabled: enabled,
		Details: make(map[string]int),
	}
	s.Phases = append(s.Phases, p)
	return p
}

// GetPhase returns the phase with the given name, or nil.
func (s *Stats) GetPhase(name string) *Phase {
	for _, p := range s.Phases {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalMatches returns the sum of rule matches over all phases.
func (s *Stats) TotalMatches() int {
	total := 0
	for _, p := range s.Phases {
		total += p.Matches
	}
	return total
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent()))
	sb.WriteString(fmt.Sprintf("Lines: %d -> %d\n", s.InputLines, s.OutputLines))
	sb.WriteString(fmt.Sprintf("Passes: %d\n", s.Passes))

	for _, p := range s.Phases {
		if !p.Enabled {
			sb.WriteString(fmt.Sprintf("  %-20s disabled\n", p.Name))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-20s -%d bytes, %d matches", p.Name, p.BytesRemoved(), p.Matches))
		if len(p.Details) > 0 {
			rules := make([]string, 0, len(p.Details))
			for r := range p.Details {
				rules = append(rules, r)
			}
			sort.Strings(rules)
			parts := make([]string, 0, len(rules))
			for _, r := range rules {
				if p.Details[r] > 0 {
					parts = append(parts, fmt.Sprintf("%s=%d", r, p.Details[r]))
				}
			}
			if len(parts) > 0 {
				sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Timing: total=%v\n", s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered while building or running
// the pipeline.
type Warning struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Context string `json:"context"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the cleaned output.
	Content string `json:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
