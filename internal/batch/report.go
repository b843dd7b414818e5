package batch

import (
	"time"
)

// FileResult describes what happened to a single file.
type FileResult struct {
	Path          string        `json:"path" yaml:"path" toml:"path"`
	OutputPath    string        `json:"output_path,omitempty" yaml:"output_path,omitempty" toml:"output_path,omitempty"`
	BackupPath    string        `json:"backup_path,omitempty" yaml:"backup_path,omitempty" toml:"backup_path,omitempty"`
	OriginalBytes int64         `json:"original_bytes" yaml:"original_bytes" toml:"original_bytes"`
	CleanedBytes  int64         `json:"cleaned_bytes" yaml:"cleaned_bytes" toml:"cleaned_bytes"`
	Reduction     float64       `json:"reduction_percent" yaml:"reduction_percent" toml:"reduction_percent"`
	Duration      time.Duration `json:"duration_ns" yaml:"duration_ns" toml:"duration_ns"`
	Skipped       bool          `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
	SkipReason    string        `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty" toml:"skip_reason,omitempty"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`

	// Err is the underlying error, kept for errors.Is checks.
	Err error `json:"-" yaml:"-" toml:"-"`
}

// Failed reports whether processing the file failed.
func (r FileResult) Failed() bool {
	return r.Err != nil
}

func (r *FileResult) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Summary aggregates a batch.
type Summary struct {
	Files         int     `json:"files" yaml:"files" toml:"files"`
	Cleaned       int     `json:"cleaned" yaml:"cleaned" toml:"cleaned"`
	Skipped       int     `json:"skipped" yaml:"skipped" toml:"skipped"`
	Failed        int     `json:"failed" yaml:"failed" toml:"failed"`
	OriginalBytes int64   `json:"original_bytes" yaml:"original_bytes" toml:"original_bytes"`
	CleanedBytes  int64   `json:"cleaned_bytes" yaml:"cleaned_bytes" toml:"cleaned_bytes"`
	Reduction     float64 `json:"reduction_percent" yaml:"reduction_percent" toml:"reduction_percent"`
}

// Report is the outcome of a Run.
type Report struct {
	ID        string        `json:"id" yaml:"id" toml:"id"`
	Input     string        `json:"input" yaml:"input" toml:"input"`
	Cleaner   string        `json:"cleaner" yaml:"cleaner" toml:"cleaner"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at" toml:"started_at"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns" toml:"duration_ns"`
	Files     []FileResult  `json:"files" yaml:"files" toml:"files"`
	Summary   Summary       `json:"summary" yaml:"summary" toml:"summary"`
}

// summarize fills in Summary and Duration.
func (r *Report) summarize() {
	s := Summary{Files: len(r.Files)}
	for _, f := range r.Files {
		switch {
		case f.Failed():
			s.Failed++
		case f.Skipped:
			s.Skipped++
		default:
			s.Cleaned++
			s.OriginalBytes += f.OriginalBytes
			s.CleanedBytes += f.CleanedBytes
		}
	}
	s.Reduction = reductionPercent(s.OriginalBytes, s.CleanedBytes)
	r.Summary = s
	r.Duration = time.Since(r.StartedAt)
}

// Failures returns the results that failed.
func (r *Report) Failures() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Failed() {
			out = append(out, f)
		}
	}
	return out
}

func reductionPercent(original, cleaned int64) float64 {
	if original == 0 {
		return 0
	}
	return float64(original-cleaned) / float64(original) * 100
}
