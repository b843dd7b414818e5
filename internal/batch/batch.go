// Package batch applies a cleaner to log files on disk.
//
// A run targets either one log file or every log file directly inside a
// directory. Files are independent: each is read, cleaned and written on its
// own, and a failure on one is recorded in its result without stopping the
// others. Only argument problems (no path, missing path, wrong file type)
// fail the run as a whole.
package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/logclean/internal/logger"
	"github.com/jmylchreest/logclean/pkg/cleaner"
)

// Fatal argument errors.
var (
	ErrNoInput          = errors.New("no input path given")
	ErrNotFound         = errors.New("input path does not exist")
	ErrUnsupportedInput = errors.New("input path is neither a directory nor a log file")
)

// ErrLocked is recorded for a file that another process is cleaning.
var ErrLocked = errors.New("file is locked by another process")

// Processor cleans files according to its Options.
type Processor struct {
	cleaner cleaner.Cleaner
	opts    Options
	log     *slog.Logger
}

// New creates a Processor. A nil cleaner is rejected; invalid options are
// reported by Options.Validate.
func New(cl cleaner.Cleaner, opts Options) (*Processor, error) {
	if cl == nil {
		return nil, errors.New("batch: nil cleaner")
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = 1
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("batch options: %w", err)
	}
	return &Processor{
		cleaner: cl,
		opts:    opts,
		log:     logger.With("cleaner", cl.Name()),
	}, nil
}

// Options returns the processor's options.
func (p *Processor) Options() Options {
	return p.opts
}

// Run cleans inputPath, which must be a directory or a single log file.
// The returned error is non-nil only for argument errors or cancellation;
// per-file failures are in the report.
func (p *Processor) Run(ctx context.Context, inputPath string) (*Report, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, ErrNoInput
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, inputPath)
		}
		return nil, fmt.Errorf("stat %s: %w", inputPath, err)
	}

	switch {
	case info.IsDir():
		return p.ProcessDir(ctx, inputPath)
	case info.Mode().IsRegular() && p.matches(inputPath):
		report := p.newReport(inputPath)
		p.ensureOutputDir()
		report.Files = []FileResult{p.ProcessFile(ctx, inputPath)}
		report.summarize()
		return report, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, inputPath)
	}
}

// ProcessDir cleans every matching file directly inside dir, in name order.
func (p *Processor) ProcessDir(ctx context.Context, dir string) (*Report, error) {
	report := p.newReport(dir)

	p.log.Info("scanning directory", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by name.
	var files []string
	for _, e := range entries {
		// Symlinks are resolved by ProcessFile; pipes, sockets and devices
		// would block or never end on read.
		if !e.Type().IsRegular() && e.Type()&fs.ModeSymlink == 0 {
			continue
		}
		if !p.matches(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	if len(files) == 0 {
		p.log.Info("no log files found", "dir", dir, "extension", p.opts.Extension)
		report.summarize()
		return report, nil
	}

	p.log.Info("found log files", "count", len(files))
	p.ensureOutputDir()

	report.Files = make([]FileResult, len(files))
	scheduled := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		scheduled[i] = true
		i, path := i, path
		g.Go(func() error {
			report.Files[i] = p.ProcessFile(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range files {
		if !scheduled[i] {
			report.Files[i] = FileResult{Path: path}
			report.Files[i].fail(ctx.Err())
		}
	}

	report.summarize()
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// ProcessFile reads, cleans and writes a single file. It never panics on
// I/O problems; they are returned in the result.
func (p *Processor) ProcessFile(ctx context.Context, path string) (res FileResult) {
	start := time.Now()
	res = FileResult{Path: path}
	log := p.log.With("file", path)

	defer func() {
		res.Duration = time.Since(start)
		if res.Failed() {
			log.Warn("failed to process file", "error", res.Err)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.fail(err)
		return res
	}

	log.Info("processing")

	info, err := os.Stat(path)
	if err != nil {
		res.fail(fmt.Errorf("stat: %w", err))
		return res
	}
	if !info.Mode().IsRegular() {
		res.Skipped = true
		res.SkipReason = "not a regular file"
		log.Info("skipping file", "reason", res.SkipReason)
		return res
	}
	if p.opts.MaxSize > 0 && info.Size() > p.opts.MaxSize {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("size %d exceeds limit %d", info.Size(), p.opts.MaxSize)
		res.OriginalBytes = info.Size()
		log.Info("skipping file", "reason", res.SkipReason)
		return res
	}

	lock := flock.New(lockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		res.fail(fmt.Errorf("lock: %w", err))
		return res
	}
	if !locked {
		res.fail(ErrLocked)
		return res
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		res.fail(fmt.Errorf("read: %w", err))
		return res
	}
	// Match only fails on an empty buffer, which is treated as text.
	kind, err := filetype.Match(data)
	if err != nil {
		kind = filetype.Unknown
	}
	if kind != filetype.Unknown && !utf8.Valid(data) {
		res.Skipped = true
		res.SkipReason = "binary content (" + kind.MIME.Value + ")"
		res.OriginalBytes = int64(len(data))
		log.Info("skipping file", "reason", res.SkipReason)
		return res
	}
	content := string(data)

	cleaned, err := p.cleaner.Clean(content)
	if err != nil {
		res.fail(fmt.Errorf("clean: %w", err))
		return res
	}

	res.OriginalBytes = int64(len(content))
	res.CleanedBytes = int64(len(cleaned))
	res.Reduction = reductionPercent(res.OriginalBytes, res.CleanedBytes)
	res.OutputPath, res.BackupPath = p.targets(path)

	if !p.opts.DryRun {
		if err := p.persist(res, content, cleaned, info.Mode().Perm()); err != nil {
			res.fail(err)
			return res
		}
		if res.BackupPath != "" {
			log.Info("created backup", "backup", res.BackupPath)
		}
	}

	log.Info("cleaned",
		"output", res.OutputPath,
		"original_bytes", res.OriginalBytes,
		"cleaned_bytes", res.CleanedBytes,
		"reduction", fmt.Sprintf("%.1f%%", res.Reduction),
		"dry_run", p.opts.DryRun,
	)
	return res
}

// targets returns where the cleaned output goes and, when a backup is
// written, where the original is preserved.
func (p *Processor) targets(path string) (output, backup string) {
	if p.opts.OutputDir != "" {
		return filepath.Join(p.opts.OutputDir, filepath.Base(path)), ""
	}
	if p.opts.Backup {
		return path, path + BackupSuffix
	}
	return path, ""
}

// persist writes the backup first so the original survives a failed
// overwrite.
func (p *Processor) persist(res FileResult, original, cleaned string, perm fs.FileMode) error {
	if res.BackupPath != "" {
		if err := os.WriteFile(res.BackupPath, []byte(original), perm); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
	}
	if err := os.WriteFile(res.OutputPath, []byte(cleaned), perm); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// ensureOutputDir creates the output directory. A failure is only logged:
// each file's write will then fail and be reported on its own.
func (p *Processor) ensureOutputDir() {
	if p.opts.OutputDir == "" || p.opts.DryRun {
		return
	}
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		p.log.Warn("failed to create output directory", "dir", p.opts.OutputDir, "error", err)
		return
	}
	p.log.Info("output directory", "dir", p.opts.OutputDir)
}

// lockPath returns the advisory lock file guarding path. It lives in the
// temp directory so the log directory stays clean and the log itself can
// be rewritten while locked.
func lockPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "logclean-"+hex.EncodeToString(sum[:8])+".lock")
}

func (p *Processor) matches(name string) bool {
	return strings.HasSuffix(name, p.opts.Extension)
}

func (p *Processor) newReport(input string) *Report {
	id := uuid.NewString()
	p.log.Debug("starting run", "run", id, "input", input, "dry_run", p.opts.DryRun)
	return &Report{
		ID:        id,
		Input:     input,
		Cleaner:   p.cleaner.Name(),
		DryRun:    p.opts.DryRun,
		StartedAt: time.Now(),
	}
}
