// logclean-inspect is a standalone CLI tool for testing and tuning the
// terminal log cleaner against a single transcript.
//
// Usage:
//
//	logclean-inspect [options] [file]
//
// Examples:
//
//	# Clean a file and show per-stage stats
//	logclean-inspect iterations/001.log
//
//	# Clean with the aggressive preset
//	logclean-inspect -preset aggressive iterations/001.log
//
//	# Read from stdin, drop extra lines
//	cat session.log | logclean-inspect -remove '(?m)^DEBUG.*\n'
//
//	# Output to file
//	logclean-inspect -o cleaned.log session.log
//
//	# Compare presets
//	logclean-inspect -compare session.log
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jmylchreest/logclean/pkg/cleaner"
	"github.com/jmylchreest/logclean/pkg/cleaner/termlog"
)

type options struct {
	preset    string
	remove    string
	single    bool
	output    string
	statsOnly bool
	jsonStats bool
	verbose   bool
	quiet     bool
	compare   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("logclean-inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.preset, "preset", "", "Use preset: default, minimal, aggressive")
	fs.StringVar(&opts.remove, "remove", "", "Comma-separated regular expressions to remove")
	fs.BoolVar(&opts.single, "single-pass", false, "Run the pipeline once instead of until stable")
	fs.StringVar(&opts.output, "o", "", "Write cleaned output to file")
	fs.BoolVar(&opts.statsOnly, "stats-only", false, "Only show stats, don't output content")
	fs.BoolVar(&opts.jsonStats, "json", false, "Output stats as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output (show warnings)")
	fs.BoolVar(&opts.quiet, "q", false, "Quiet mode (no stats, only content)")
	fs.BoolVar(&opts.compare, "compare", false, "Compare different presets")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "logclean-inspect - Test tool for the terminal log cleaner\n\n")
		fmt.Fprintf(stderr, "Usage: logclean-inspect [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  logclean-inspect iterations/001.log\n")
		fmt.Fprintf(stderr, "  logclean-inspect -preset aggressive iterations/001.log\n")
		fmt.Fprintf(stderr, "  cat session.log | logclean-inspect -q\n")
		fmt.Fprintf(stderr, "  logclean-inspect -compare session.log\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text, source, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.compare {
		runComparison(stdout, text, source)
		return 0
	}

	cfg, err := buildConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	result := termlog.New(cfg).CleanWithStats(text)

	if !opts.quiet {
		if opts.jsonStats {
			if err := outputJSONStats(stdout, result, source); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
		} else {
			outputTextStats(stderr, result, source)
		}
	}

	if opts.verbose && result.HasWarnings() {
		fmt.Fprintf(stderr, "\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(stderr, "  %s\n", w.String())
		}
	}

	if opts.statsOnly {
		return 0
	}
	switch {
	case opts.output != "":
		if err := os.WriteFile(opts.output, []byte(result.Content), 0o644); err != nil {
			fmt.Fprintf(stderr, "Error writing output file: %v\n", err)
			return 1
		}
		if !opts.quiet {
			fmt.Fprintf(stderr, "\nWritten to %s\n", opts.output)
		}
	case opts.jsonStats:
		// stdout already carries the JSON document
	case !opts.quiet:
		fmt.Fprintln(stdout, "\n--- Cleaned Content ---")
		fmt.Fprintln(stdout, result.Content)
	default:
		fmt.Fprintln(stdout, result.Content)
	}
	return 0
}

func readInput(path string, stdin io.Reader) (text, source string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading file %s: %w", path, err)
	}
	return string(data), path, nil
}

func buildConfig(opts options) (*termlog.Config, error) {
	cfg, err := termlog.Preset(opts.preset)
	if err != nil {
		return nil, err
	}

	if opts.remove != "" {
		var patterns []string
		for _, p := range strings.Split(opts.remove, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		cfg = cfg.Merge(&termlog.Config{RemovePatterns: patterns})
	}

	if opts.single {
		cfg.Converge = false
	}

	return cfg, nil
}

func outputTextStats(w io.Writer, result *termlog.Result, source string) {
	fmt.Fprintf(w, "\n=== Terminal Log Cleaner Stats ===\n")
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "%s", result.Stats.String())
}

func outputJSONStats(w io.Writer, result *termlog.Result, source string) error {
	stats := struct {
		Source   string            `json:"source"`
		Stats    *termlog.Stats    `json:"stats"`
		Reduced  float64           `json:"reduction_percent"`
		Warnings []termlog.Warning `json:"warnings,omitempty"`
	}{
		Source:   source,
		Stats:    result.Stats,
		Reduced:  result.Stats.ReductionPercent(),
		Warnings: result.Warnings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func runComparison(w io.Writer, text, source string) {
	presets := []struct {
		name string
		cfg  *termlog.Config
	}{
		{"default", termlog.DefaultConfig()},
		{"minimal", termlog.PresetMinimal()},
		{"aggressive", termlog.PresetAggressive()},
	}

	fmt.Fprintf(w, "\n=== Preset Comparison for %s ===\n", source)
	fmt.Fprintf(w, "Input size: %d bytes\n\n", len(text))
	fmt.Fprintf(w, "%-12s %10s %10s %8s %8s %10s\n", "Preset", "Output", "Matches", "Reduce%", "Passes", "Time")
	fmt.Fprintf(w, "%-12s %10s %10s %8s %8s %10s\n", "------", "------", "-------", "-------", "------", "----")

	for _, p := range presets {
		result := termlog.New(p.cfg).CleanWithStats(text)

		fmt.Fprintf(w, "%-12s %10d %10d %7.1f%% %8d %10v\n",
			p.name,
			result.Stats.OutputBytes,
			result.Stats.TotalMatches(),
			result.Stats.ReductionPercent(),
			result.Stats.Passes,
			result.Stats.TotalDuration.Round(time.Microsecond))
	}

	// Escape stripping alone, for reference.
	start := time.Now()
	baseline := cleaner.NewANSI()
	out, _ := baseline.Clean(text)
	reduced := 0.0
	if len(text) > 0 {
		reduced = float64(len(text)-len(out)) / float64(len(text)) * 100
	}
	fmt.Fprintf(w, "%-12s %10d %10s %7.1f%% %8s %10v\n",
		baseline.Name(), len(out), "-", reduced, "-", time.Since(start).Round(time.Microsecond))

	fmt.Fprintln(w)
}
