package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/logclean/internal/batch"
	"github.com/jmylchreest/logclean/internal/logger"
	"github.com/jmylchreest/logclean/internal/output"
	"github.com/jmylchreest/logclean/pkg/cleaner"
	"github.com/jmylchreest/logclean/pkg/cleaner/termlog"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <directory|file.log>",
	Short: "Clean a log file or every log file in a directory",
	Long: `Clean rewrites terminal session logs without their presentation artifacts.

Given a directory, every file ending in the configured extension (default
.log) directly inside it is cleaned; subdirectories are not visited. Given a
file, only that file is cleaned.

By default each file is overwritten in place after its original content is
saved next to it as <name>.backup. With --output-dir the sources are left
untouched and cleaned copies are written to the directory instead.

Stage toggles can be set in the config file under a "cleaner" key, e.g.:

  cleaner:
    collapse_duplicates: false
  remove:
    - '(?m)^DEBUG .*\n'

Examples:
  logclean clean iterations
  logclean clean iterations/001.log --no-backup
  logclean clean iterations --output-dir cleaned --preset aggressive
  logclean clean iterations --max-size 10MB --report yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()

	// Persistence
	flags.Bool("no-backup", false, "overwrite files without writing a .backup copy")
	flags.StringP("output-dir", "o", "", "write cleaned files to this directory instead of overwriting")
	flags.BoolP("dry-run", "n", false, "clean and report without writing anything")

	// Selection
	flags.String("extension", batch.DefaultExtension, "file extension picked up from a directory")
	flags.String("max-size", "0", "skip files larger than this (e.g., 10MB, 0=unlimited)")
	flags.IntP("concurrency", "c", 0, "files processed at once (0=one per CPU)")

	// Cleaning
	flags.String("preset", "default", "cleaner preset: default, minimal, aggressive")
	flags.StringSlice("remove", nil, "extra regular expression to remove (can be repeated)")
	flags.Bool("no-clean", false, "copy content unchanged (backups and copies only)")

	// Output
	flags.String("report", string(output.FormatTable), "report format: table, json, jsonl, yaml, toml, none")
	flags.String("color", "auto", "color the table report: auto, always, never")
	flags.Bool("compact", false, "write JSON reports on a single line")

	// Bind to viper
	_ = viper.BindPFlag("no_backup", flags.Lookup("no-backup"))
	_ = viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = viper.BindPFlag("dry_run", flags.Lookup("dry-run"))
	_ = viper.BindPFlag("extension", flags.Lookup("extension"))
	_ = viper.BindPFlag("max_size", flags.Lookup("max-size"))
	_ = viper.BindPFlag("concurrency", flags.Lookup("concurrency"))
	_ = viper.BindPFlag("preset", flags.Lookup("preset"))
	_ = viper.BindPFlag("remove", flags.Lookup("remove"))
	_ = viper.BindPFlag("no_clean", flags.Lookup("no-clean"))
	_ = viper.BindPFlag("report", flags.Lookup("report"))
	_ = viper.BindPFlag("color", flags.Lookup("color"))
	_ = viper.BindPFlag("compact", flags.Lookup("compact"))
}

func runClean(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()

	err := logger.Init(logger.Options{
		Level:  v.GetString("log_level"),
		Debug:  v.GetBool("debug"),
		Quiet:  v.GetBool("quiet"),
		JSON:   v.GetBool("log_json"),
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	cl, err := buildCleaner(v)
	if err != nil {
		return err
	}
	opts, err := batchOptions(v)
	if err != nil {
		return err
	}
	writer, err := reportWriter(v, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	proc, err := batch.New(cl, opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var input string
	if len(args) > 0 {
		input = args[0]
	}

	report, runErr := proc.Run(ctx, input)
	if report != nil {
		if err := writer.WriteReport(report); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		s := report.Summary
		logger.Logger().Info("done",
			"files", s.Files,
			"cleaned", s.Cleaned,
			"skipped", s.Skipped,
			"failed", s.Failed,
			"size", fmt.Sprintf("%s -> %s", humanize.IBytes(uint64(s.OriginalBytes)), humanize.IBytes(uint64(s.CleanedBytes))),
			"reduction", fmt.Sprintf("%.1f%%", s.Reduction),
			"duration", report.Duration,
		)
	}
	return runErr
}

// buildCleaner assembles the cleaner from the preset, the optional "cleaner"
// config section and the extra remove patterns.
func buildCleaner(v *viper.Viper) (cleaner.Cleaner, error) {
	if v.GetBool("no_clean") {
		return cleaner.NewNoop(), nil
	}

	cfg, err := termlog.Preset(v.GetString("preset"))
	if err != nil {
		return nil, err
	}
	if v.IsSet("cleaner") {
		if err := v.UnmarshalKey("cleaner", cfg); err != nil {
			return nil, fmt.Errorf("cleaner config: %w", err)
		}
	}
	cfg = cfg.Merge(&termlog.Config{RemovePatterns: v.GetStringSlice("remove")})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return termlog.New(cfg), nil
}

// reportWriter picks the report format and its rendering options.
func reportWriter(v *viper.Viper, w io.Writer) (output.Writer, error) {
	format, err := output.ParseFormat(v.GetString("report"))
	if err != nil {
		return nil, err
	}

	opts := []output.WriterOption{output.WithPretty(!v.GetBool("compact"))}
	switch c := strings.ToLower(v.GetString("color")); c {
	case "", "auto":
	case "always":
		opts = append(opts, output.WithColor(true))
	case "never":
		opts = append(opts, output.WithColor(false))
	default:
		return nil, fmt.Errorf("invalid color mode %q (want auto, always or never)", c)
	}

	return output.NewWriter(w, format, opts...)
}

// batchOptions maps flags and config onto batch.Options.
func batchOptions(v *viper.Viper) (batch.Options, error) {
	opts := batch.DefaultOptions()
	opts.Backup = !v.GetBool("no_backup")
	opts.OutputDir = v.GetString("output_dir")
	opts.DryRun = v.GetBool("dry_run")

	if c := v.GetInt("concurrency"); c != 0 {
		opts.Concurrency = c
	}
	if ext := v.GetString("extension"); ext != "" {
		opts.Extension = ext
	}
	if s := v.GetString("max_size"); s != "" && s != "0" {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			return opts, fmt.Errorf("invalid max-size %q: %w", s, err)
		}
		opts.MaxSize = int64(n)
	}

	return opts, opts.Validate()
}
