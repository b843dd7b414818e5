package termlog

import (
	"regexp"
	"strings"
)

// Stage names, in pipeline order.
const (
	StageEscapes            = "escapes"
	StageTitles             = "titles"
	StageBoxDrawing         = "box-drawing"
	StageCustom             = "custom"
	StageDuplicates         = "duplicates"
	StageBlankLines         = "blank-lines"
	StageTrailingWhitespace = "trailing-whitespace"
	StageBlankRuns          = "blank-runs"
	StageOuterTrim          = "outer-trim"
)

// rule is a single pure rewrite over the whole buffer. Regexp rules replace
// every match with repl (which may reference capture groups); function rules
// are used where the regexp engine can't express the rewrite.
type rule struct {
	name string
	re   *regexp.Regexp
	repl string
	fn   func(string) (string, int)
}

// apply runs the rule. When count is set it also reports the number of
// matches, which costs an extra scan.
func (r rule) apply(s string, count bool) (string, int) {
	if r.fn != nil {
		return r.fn(s)
	}
	n := 0
	if count {
		n = len(r.re.FindAllStringIndex(s, -1))
	}
	return r.re.ReplaceAllString(s, r.repl), n
}

// stage is an ordered group of rules that is toggled as a unit.
type stage struct {
	name  string
	rules []rule
}

func (st stage) apply(s string, count bool) (string, map[string]int) {
	var matches map[string]int
	if count {
		matches = make(map[string]int, len(st.rules))
	}
	for _, r := range st.rules {
		var n int
		s, n = r.apply(s, count)
		if count {
			matches[r.name] += n
		}
	}
	return s, matches
}

// boxChars are the light and rounded box-drawing characters TUI tables use.
const boxChars = `─│┌┐└┘├┤┬┴┼╭╮╯╰`

var (
	escapeRules = []rule{
		// ESC [ parameter bytes, intermediate bytes, final byte.
		{name: "csi", re: regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)},
		{name: "mode", re: regexp.MustCompile(`\x1b\[?\d*[hl]`)},
		{name: "keypad", re: regexp.MustCompile(`\x1b[=>]`)},
		{name: "charset", re: regexp.MustCompile(`\x1b[()*+][0-9A-Za-z]`)},
		// OSC other than 0-2 (hyperlinks, cwd, prompt marks), terminated by
		// BEL or ST. Runs before fe so the ST is still intact.
		{name: "osc", re: regexp.MustCompile(`\x1b\](?:[3-9]\d*|[12]\d+|0\d+)(?:;[^\x07\x1b\n]*)?(?:\x07|\x1b\\)?`)},
		// Single-character Fe sequences. '[' and ']' are excluded: a CSI that
		// did not match above is malformed and stays, OSC 0-2 belongs to titles.
		{name: "fe", re: regexp.MustCompile(`\x1b[@-Z\\^_]`)},
		// Bells terminating a title sequence are kept for the titles stage.
		{name: "bell", re: regexp.MustCompile(`(\x1b?\][0-2];[^\x07\n]*\x07)|\x07`), repl: "${1}"},
	}

	titleRules = []rule{
		{name: "osc-title", re: regexp.MustCompile(`\x1b?\][0-2];[^\x07\n]*[\x07\n]`)},
		{name: "title-fragment", re: regexp.MustCompile(`0;[^-\n]*-[ \t]*`)},
		// An OSC introducer left without a recognisable body.
		{name: "osc-residue", re: regexp.MustCompile(`\x1b\]`)},
	}

	boxRules = []rule{
		// One "Group | Tools" table per match, up to its closing border.
		{name: "tools-table", re: regexp.MustCompile(`(?ms)^[│ \t]*Group[ \t]+[|│][ \t]+Tools.*?└─+┴─+┘[ \t\r]*$\n?`)},
		{name: "indented-top-border", re: regexp.MustCompile(`   ┌─+┐`)},
		{name: "indented-edge", re: regexp.MustCompile(`   │`)},
		{name: "border-line", re: regexp.MustCompile(`(?m)^[ \t]*[` + boxChars + `][` + boxChars + ` \t\r]*$\n?`)},
	}

	duplicateRules = []rule{
		{name: "consecutive-duplicates", fn: collapseDuplicateLines},
	}

	blankLineRules = []rule{
		{name: "whitespace-line", re: regexp.MustCompile(`(?m)^[ \t\f\v]+\r?(?:\n|\z)`)},
	}

	trailingRules = []rule{
		{name: "trailing-space", re: regexp.MustCompile(`(?m)[ \t]+(\r?)$`), repl: "${1}"},
	}

	blankRunRules = []rule{
		{name: "blank-run", re: regexp.MustCompile(`(\r?\n)(\r?\n)(?:\r?\n)+`), repl: "${1}${2}"},
	}

	outerTrimRules = []rule{
		{name: "trim", fn: trimOuter},
	}
)

// collapseDuplicateLines keeps one line out of every run of two or more
// consecutive byte-identical lines. A line includes its terminator, so a
// final line without a newline never matches the line before it. Empty
// lines are left for the blank-line stages.
func collapseDuplicateLines(s string) (string, int) {
	if s == "" {
		return s, 0
	}

	var b strings.Builder
	b.Grow(len(s))

	removed := 0
	prev := ""
	for len(s) > 0 {
		var line string
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			line, s = s[:i+1], s[i+1:]
		} else {
			line, s = s, ""
		}

		if line == prev && !isEmptyLine(line) {
			removed++
			continue
		}
		b.WriteString(line)
		prev = line
	}
	return b.String(), removed
}

func isEmptyLine(line string) bool {
	return strings.TrimRight(line, "\r\n") == ""
}

func trimOuter(s string) (string, int) {
	out := strings.TrimSpace(s)
	if out == s {
		return s, 0
	}
	return out, 1
}

// buildStages assembles the enabled stages for cfg. custom holds the
// compiled RemovePatterns.
func buildStages(cfg *Config, custom []rule) []stage {
	var stages []stage
	add := func(enabled bool, name string, rules []rule) {
		if enabled && len(rules) > 0 {
			stages = append(stages, stage{name: name, rules: rules})
		}
	}

	add(cfg.StripEscapes, StageEscapes, escapeRules)
	add(cfg.StripTitles, StageTitles, titleRules)
	add(cfg.StripBoxDrawing, StageBoxDrawing, boxRules)
	add(true, StageCustom, custom)
	add(cfg.CollapseDuplicates, StageDuplicates, duplicateRules)
	add(cfg.RemoveBlankLines, StageBlankLines, blankLineRules)
	add(cfg.TrimTrailing, StageTrailingWhitespace, trailingRules)
	add(cfg.CompressBlankRuns, StageBlankRuns, blankRunRules)
	add(cfg.TrimOuter, StageOuterTrim, outerTrimRules)

	return stages
}

// StageNames lists every stage the pipeline knows about, in order.
func StageNames() []string {
	return []string{
		StageEscapes,
		StageTitles,
		StageBoxDrawing,
		StageCustom,
		StageDuplicates,
		StageBlankLines,
		StageTrailingWhitespace,
		StageBlankRuns,
		StageOuterTrim,
	}
}
