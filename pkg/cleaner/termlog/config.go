// Package termlog cleans raw terminal-session transcripts.
//
// A transcript captured from an interactive tool is full of presentation
// artifacts: colour and cursor escape sequences, window title updates,
// box-drawing borders from TUI tables, progress lines repeated on every
// redraw and runs of blank lines. The cleaner removes them with an ordered
// pipeline of pure rewrite stages and leaves the meaningful text behind.
//
// The pipeline only strips sequences. It never interprets cursor movement,
// colour state or screen regions, and partial sequences that don't match a
// known class are left in place.
package termlog

import (
	"errors"
	"fmt"
	"regexp"
)

// Config defines all configuration options for the terminal log cleaner.
// Each stage can be switched off independently; the order in which enabled
// stages run is fixed.
type Config struct {
	// === Stripping ===

	// StripEscapes removes CSI, mode-toggle, keypad, charset-designation and
	// single-character escape sequences plus stray bell characters.
	StripEscapes bool `json:"strip_escapes" mapstructure:"strip_escapes"`

	// StripTitles removes OSC window-title sequences and leftover title
	// fragments. The fragment rule is a heuristic and may remove text that
	// contains "0;" followed by a dash on the same line.
	StripTitles bool `json:"strip_titles" mapstructure:"strip_titles"`

	// StripBoxDrawing removes the tool availability table, indented border
	// fragments and lines made only of box-drawing characters.
	StripBoxDrawing bool `json:"strip_box_drawing" mapstructure:"strip_box_drawing"`

	// RemovePatterns is a list of extra regular expressions whose matches are
	// deleted after the box-drawing stage. Invalid patterns are skipped and
	// reported as warnings.
	RemovePatterns []string `json:"remove_patterns" mapstructure:"remove_patterns"`

	// === Line handling ===

	// CollapseDuplicates collapses runs of identical consecutive lines.
	CollapseDuplicates bool `json:"collapse_duplicates" mapstructure:"collapse_duplicates"`

	// RemoveBlankLines removes lines made only of spaces and tabs.
	// Truly empty lines are left for CompressBlankRuns.
	RemoveBlankLines bool `json:"remove_blank_lines" mapstructure:"remove_blank_lines"`

	// === Whitespace ===

	// TrimTrailing removes trailing spaces and tabs from every line.
	TrimTrailing bool `json:"trim_trailing" mapstructure:"trim_trailing"`

	// CompressBlankRuns caps consecutive blank lines at one.
	CompressBlankRuns bool `json:"compress_blank_runs" mapstructure:"compress_blank_runs"`

	// TrimOuter trims leading and trailing whitespace from the whole buffer.
	TrimOuter bool `json:"trim_outer" mapstructure:"trim_outer"`

	// === Passes ===

	// Converge re-runs the pipeline until the output stops changing, so that
	// cleaning already-cleaned output is a no-op.
	Converge bool `json:"converge" mapstructure:"converge"`
}

// spinnerPattern matches a line starting with a braille spinner frame, the
// usual shape of a redrawn progress indicator.
const spinnerPattern = `(?m)^[ \t]*[⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏][^\n]*\n?`

// DefaultConfig returns a configuration with every stage enabled.
func DefaultConfig() *Config {
	return &Config{
		StripEscapes:       true,
		StripTitles:        true,
		StripBoxDrawing:    true,
		CollapseDuplicates: true,
		RemoveBlankLines:   true,
		TrimTrailing:       true,
		CompressBlankRuns:  true,
		TrimOuter:          true,
		Converge:           true,
	}
}

// PresetMinimal returns a config that only removes escape sequences and
// window titles and tidies whitespace. Line structure is preserved.
func PresetMinimal() *Config {
	return &Config{
		StripEscapes: true,
		StripTitles:  true,
		TrimTrailing: true,
		TrimOuter:    true,
		Converge:     true,
	}
}

// PresetAggressive returns the default config plus removal of spinner
// progress lines.
func PresetAggressive() *Config {
	cfg := DefaultConfig()
	cfg.RemovePatterns = append(cfg.RemovePatterns, spinnerPattern)
	return cfg
}

// Preset returns the named preset: "default", "minimal" or "aggressive".
// An empty name selects the default.
func Preset(name string) (*Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "minimal":
		return PresetMinimal(), nil
	case "aggressive":
		return PresetAggressive(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q (use default, minimal or aggressive)", name)
	}
}

// Validate reports every RemovePatterns entry that does not compile.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range c.RemovePatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("remove pattern %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Merge merges another config into this one.
// Stages enabled in other are enabled in the result; patterns are appended
// without duplicates.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	merged := *c
	merged.RemovePatterns = append([]string(nil), c.RemovePatterns...)

	if other.StripEscapes {
		merged.StripEscapes = true
	}
	if other.StripTitles {
		merged.StripTitles = true
	}
	if other.StripBoxDrawing {
		merged.StripBoxDrawing = true
	}
	if other.CollapseDuplicates {
		merged.CollapseDuplicates = true
	}
	if other.RemoveBlankLines {
		merged.RemoveBlankLines = true
	}
	if other.TrimTrailing {
		merged.TrimTrailing = true
	}
	if other.CompressBlankRuns {
		merged.CompressBlankRuns = true
	}
	if other.TrimOuter {
		merged.TrimOuter = true
	}
	if other.Converge {
		merged.Converge = true
	}

	if len(other.RemovePatterns) > 0 {
		seen := make(map[string]bool, len(merged.RemovePatterns))
		for _, p := range merged.RemovePatterns {
			seen[p] = true
		}
		for _, p := range other.RemovePatterns {
			if !seen[p] {
				merged.RemovePatterns = append(merged.RemovePatterns, p)
				seen[p] = true
			}
		}
	}

	return &merged
}
