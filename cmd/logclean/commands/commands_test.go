package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/logclean/internal/batch"
	"github.com/jmylchreest/logclean/internal/logger"
	"github.com/jmylchreest/logclean/internal/version"
	"github.com/jmylchreest/logclean/pkg/cleaner/termlog"
)

// resetFlags restores every flag to its default so commands can be executed
// more than once per test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestBatchOptions(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		check   func(batch.Options) bool
		wantErr string
	}{
		{
			name:  "defaults keep backups",
			set:   nil,
			check: func(o batch.Options) bool { return o.Backup && o.OutputDir == "" && o.Extension == ".log" && o.Concurrency > 0 },
		},
		{
			name:  "no backup and output dir",
			set:   map[string]any{"no_backup": true, "output_dir": "cleaned"},
			check: func(o batch.Options) bool { return !o.Backup && o.OutputDir == "cleaned" },
		},
		{
			name:  "humanized max size",
			set:   map[string]any{"max_size": "10MB"},
			check: func(o batch.Options) bool { return o.MaxSize == 10_000_000 },
		},
		{
			name:  "explicit concurrency",
			set:   map[string]any{"concurrency": 3, "dry_run": true},
			check: func(o batch.Options) bool { return o.Concurrency == 3 && o.DryRun },
		},
		{
			name:    "bad max size",
			set:     map[string]any{"max_size": "lots"},
			wantErr: "invalid max-size",
		},
		{
			name:    "negative concurrency",
			set:     map[string]any{"concurrency": -2},
			wantErr: "Concurrency",
		},
		{
			name:    "extension without dot",
			set:     map[string]any{"extension": "txt"},
			wantErr: "Extension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			opts, err := batchOptions(v)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("batchOptions() error = %v", err)
			}
			if !tt.check(opts) {
				t.Errorf("unexpected options %+v", opts)
			}
		})
	}
}

func TestBuildCleaner(t *testing.T) {
	t.Run("no clean", func(t *testing.T) {
		v := viper.New()
		v.Set("no_clean", true)
		cl, err := buildCleaner(v)
		if err != nil {
			t.Fatal(err)
		}
		if cl.Name() != "noop" {
			t.Errorf("Name() = %q, want noop", cl.Name())
		}
	})

	t.Run("preset and remove", func(t *testing.T) {
		v := viper.New()
		v.Set("preset", "minimal")
		v.Set("remove", []string{`(?m)^DEBUG.*\n`})
		cl, err := buildCleaner(v)
		if err != nil {
			t.Fatal(err)
		}
		cfg := cl.(*termlog.Cleaner).Config()
		if cfg.StripBoxDrawing || len(cfg.RemovePatterns) != 1 {
			t.Errorf("unexpected config %+v", cfg)
		}
		got, _ := cl.Clean("DEBUG noise\nkept\n")
		if got != "kept" {
			t.Errorf("Clean() = %q, want %q", got, "kept")
		}
	})

	t.Run("cleaner section overrides stages", func(t *testing.T) {
		v := viper.New()
		v.Set("cleaner", map[string]any{"collapse_duplicates": false})
		cl, err := buildCleaner(v)
		if err != nil {
			t.Fatal(err)
		}
		cfg := cl.(*termlog.Cleaner).Config()
		if cfg.CollapseDuplicates || !cfg.StripEscapes {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("unknown preset", func(t *testing.T) {
		v := viper.New()
		v.Set("preset", "extreme")
		if _, err := buildCleaner(v); err == nil || !strings.Contains(err.Error(), "unknown preset") {
			t.Errorf("expected unknown preset error, got %v", err)
		}
	})

	t.Run("invalid remove pattern", func(t *testing.T) {
		v := viper.New()
		v.Set("remove", []string{"(unclosed"})
		if _, err := buildCleaner(v); err == nil || !strings.Contains(err.Error(), "(unclosed") {
			t.Errorf("expected pattern error, got %v", err)
		}
	})
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "001.log")
	raw := "\x1b[32mok\x1b[0m\nok\n\n\n\n\ndone  \n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "clean", dir, "--report", "json", "--quiet")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var report batch.Report
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid report %q: %v", stdout, err)
	}
	if report.Summary.Cleaned != 1 || report.Cleaner != "termlog" {
		t.Errorf("unexpected report %+v", report)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "ok\n\ndone" {
		t.Errorf("cleaned = %q, want %q", data, "ok\n\ndone")
	}
	backup, _ := os.ReadFile(path + batch.BackupSuffix)
	if string(backup) != raw {
		t.Errorf("backup = %q, want original", backup)
	}
}

func TestCleanCommand_OutputDirNoBackup(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "cleaned")
	path := filepath.Join(dir, "002.log")
	if err := os.WriteFile(path, []byte("a\na\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := execute(t, "clean", path, "--output-dir", out, "--report", "none", "--quiet")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "002.log"))
	if err != nil || string(data) != "a" {
		t.Errorf("output = %q, %v", data, err)
	}
	if src, _ := os.ReadFile(path); string(src) != "a\na\n" {
		t.Error("source modified")
	}
}

func TestCleanCommand_ArgumentErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no path", []string{"clean", "--quiet"}, batch.ErrNoInput},
		{"missing path", []string{"clean", filepath.Join(dir, "missing"), "--quiet"}, batch.ErrNotFound},
		{"not a log", []string{"clean", txt, "--quiet"}, batch.ErrUnsupportedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Execute() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCleanCommand_BadReportFormat(t *testing.T) {
	_, _, err := execute(t, "clean", t.TempDir(), "--report", "xml", "--quiet")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestReportWriter(t *testing.T) {
	// NO_COLOR or TERM=dumb in the environment would otherwise win.
	text.EnableColors()

	report := &batch.Report{
		Input: "iterations",
		Files: []batch.FileResult{{Path: "iterations/001.log", OriginalBytes: 10, CleanedBytes: 5, Reduction: 50}},
	}

	tests := []struct {
		name    string
		set     map[string]any
		check   func(string) bool
		wantErr string
	}{
		{
			name:  "auto is plain off a terminal",
			set:   map[string]any{"report": "table", "color": "auto"},
			check: func(out string) bool { return strings.Contains(out, "001.log") && !strings.Contains(out, "\x1b[") },
		},
		{
			name:  "always colors",
			set:   map[string]any{"report": "table", "color": "always"},
			check: func(out string) bool { return strings.Contains(out, "\x1b[") },
		},
		{
			name:  "never is plain",
			set:   map[string]any{"report": "table", "color": "NEVER"},
			check: func(out string) bool { return !strings.Contains(out, "\x1b[") },
		},
		{
			name:  "compact json",
			set:   map[string]any{"report": "json", "compact": true},
			check: func(out string) bool { return strings.Count(out, "\n") == 1 },
		},
		{
			name:  "indented json by default",
			set:   map[string]any{"report": "json"},
			check: func(out string) bool { return strings.Count(out, "\n") > 1 },
		},
		{
			name:    "unknown color mode",
			set:     map[string]any{"color": "rainbow"},
			wantErr: "invalid color mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			buf := &bytes.Buffer{}
			w, err := reportWriter(v, buf)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("reportWriter() error = %v", err)
			}
			if err := w.WriteReport(report); err != nil {
				t.Fatalf("WriteReport() error = %v", err)
			}
			if !tt.check(buf.String()) {
				t.Errorf("unexpected report output:\n%s", buf.String())
			}
		})
	}
}

func TestCleanCommand_LogLevel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001.log"), []byte("a\na\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := execute(t, "clean", dir, "--report", "none", "--no-backup")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stderr, "msg=done") {
		t.Errorf("expected info records by default, got %q", stderr)
	}

	_, stderr, err = execute(t, "clean", dir, "--report", "none", "--no-backup", "--log-level", "warn")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(stderr, "level=INFO") {
		t.Errorf("expected info records suppressed, got %q", stderr)
	}

	_, _, err = execute(t, "clean", dir, "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "unknown log level") {
		t.Errorf("expected log level error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info version.Info
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if info.Version != version.Version {
		t.Errorf("Version = %q, want %q", info.Version, version.Version)
	}

	stdout, _, err = execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "logclean ") {
		t.Errorf("unexpected version output %q", stdout)
	}
}
