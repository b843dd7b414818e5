package termlog

import (
	"regexp"
	"sync"
	"time"
)

// Cleaner is the terminal log cleaner.
// It implements the cleaner.Cleaner interface and is safe for concurrent use.
type Cleaner struct {
	config   *Config
	stages   []stage
	warnings []Warning

	mu    sync.Mutex
	stats *Stats
}

// New creates a new Cleaner with the given configuration.
// If config is nil, DefaultConfig() is used. Remove patterns that fail to
// compile are skipped and reported as warnings on every result.
func New(config *Config) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}

	c := &Cleaner{config: config}

	var custom []rule
	for _, p := range config.RemovePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			c.warnings = append(c.warnings, Warning{
				Phase:   StageCustom,
				Message: "invalid remove pattern skipped",
				Context: err.Error(),
			})
			continue
		}
		custom = append(custom, rule{name: p, re: re})
	}

	c.stages = buildStages(config, custom)
	return c
}

var defaultCleaner = New(nil)

// Clean cleans text with the default configuration.
func Clean(text string) string {
	return defaultCleaner.run(text, nil)
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "termlog"
}

// Config returns the configuration the cleaner was built with.
func (c *Cleaner) Config() *Config {
	return c.config
}

// Warnings returns the problems found while building the pipeline.
func (c *Cleaner) Warnings() []Warning {
	return c.warnings
}

// Clean transforms terminal output according to the configuration.
// It never fails; the error is always nil.
func (c *Cleaner) Clean(text string) (string, error) {
	return c.run(text, nil), nil
}

// CleanWithStats performs cleaning and returns detailed stats.
func (c *Cleaner) CleanWithStats(text string) *Result {
	start := time.Now()

	stats := NewStats()
	stats.InputBytes = len(text)
	stats.InputLines = countLines(text)

	enabled := make(map[string]bool, len(c.stages))
	for _, st := range c.stages {
		enabled[st.name] = true
	}
	for _, name := range StageNames() {
		stats.AddPhase(name, enabled[name])
	}

	out := c.run(text, stats)

	stats.OutputBytes = len(out)
	stats.OutputLines = countLines(out)
	stats.TotalDuration = time.Since(start)

	result := &Result{
		Content: out,
		Stats:   stats,
	}
	result.Warnings = append(result.Warnings, c.warnings...)

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()

	return result
}

// Stats returns the stats from the last CleanWithStats call.
func (c *Cleaner) Stats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// run applies the stages in order, repeating until the output is stable when
// the config asks to converge. Every rule only deletes, so a pass that
// changes the buffer shortens it and at most len(text)+1 passes are needed.
func (c *Cleaner) run(text string, stats *Stats) string {
	passes := 1
	if c.config.Converge {
		passes = len(text) + 1
	}

	out := text
	for i := 0; i < passes; i++ {
		next := c.pass(out, stats)
		if stats != nil {
			stats.Passes++
		}
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (c *Cleaner) pass(s string, stats *Stats) string {
	for _, st := range c.stages {
		if stats == nil {
			s, _ = st.apply(s, false)
			continue
		}

		p := stats.GetPhase(st.name)
		before := len(s)
		t := time.Now()

		var matches map[string]int
		s, matches = st.apply(s, true)

		p.Duration += time.Since(t)
		if stats.Passes == 0 {
			p.BytesBefore = before
			p.BytesAfter = len(s)
		} else {
			p.BytesAfter -= before - len(s)
		}
		for r, n := range matches {
			p.Details[r] += n
			p.Matches += n
		}
	}
	return s
}
