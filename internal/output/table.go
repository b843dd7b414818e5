package output

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jmylchreest/logclean/internal/batch"
)

// TableWriter renders a human-readable table of file results.
type TableWriter struct {
	w     io.Writer
	color bool
}

// NewTableWriter creates a table writer.
func NewTableWriter(w io.Writer, color bool) *TableWriter {
	return &TableWriter{w: w, color: color}
}

// WriteReport renders one row per file and a totals footer.
func (w *TableWriter) WriteReport(r *batch.Report) error {
	if len(r.Files) == 0 {
		_, err := fmt.Fprintf(w.w, "No log files found in %s\n", r.Input)
		return err
	}

	tw := table.NewWriter()
	if w.color {
		tw.SetStyle(table.StyleColoredBright)
	} else {
		tw.SetStyle(table.StyleRounded)
	}

	tw.AppendHeader(table.Row{"File", "Original", "Cleaned", "Reduction", "Status"})
	for _, f := range r.Files {
		tw.AppendRow(table.Row{
			filepath.Base(f.Path),
			sizeCell(f.OriginalBytes, f.Failed()),
			sizeCell(f.CleanedBytes, f.Failed() || f.Skipped),
			percentCell(f.Reduction, f.Failed() || f.Skipped),
			w.status(f, r.DryRun),
		})
	}

	s := r.Summary
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d files", s.Files),
		humanize.IBytes(uint64(s.OriginalBytes)),
		humanize.IBytes(uint64(s.CleanedBytes)),
		fmt.Sprintf("%.1f%%", s.Reduction),
		fmt.Sprintf("%d ok, %d skipped, %d failed", s.Cleaned, s.Skipped, s.Failed),
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	if _, err := fmt.Fprintln(w.w, tw.Render()); err != nil {
		return err
	}
	if r.DryRun {
		_, err := fmt.Fprintln(w.w, "Dry run: no files were written.")
		return err
	}
	return nil
}

func (w *TableWriter) status(f batch.FileResult, dryRun bool) string {
	var s string
	switch {
	case f.Failed():
		s = "failed: " + f.Error
		if w.color {
			return text.FgRed.Sprint(s)
		}
		return s
	case f.Skipped:
		s = "skipped: " + f.SkipReason
		if w.color {
			return text.FgYellow.Sprint(s)
		}
		return s
	case dryRun:
		return "would clean"
	default:
		return "cleaned"
	}
}

func sizeCell(n int64, blank bool) string {
	if blank {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func percentCell(p float64, blank bool) string {
	if blank {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", p)
}
