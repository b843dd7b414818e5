package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/logclean/internal/batch"
)

// JSONWriter writes the whole report as one JSON document.
type JSONWriter struct {
	w      io.Writer
	pretty bool
	indent string
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      w,
		pretty: pretty,
		indent: indent,
	}
}

// WriteReport encodes r followed by a newline.
func (w *JSONWriter) WriteReport(r *batch.Report) error {
	enc := json.NewEncoder(w.w)
	if w.pretty {
		enc.SetIndent("", w.indent)
	}
	return enc.Encode(r)
}

// JSONLWriter writes newline-delimited JSON: one line per file, then a
// summary line.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

type summaryLine struct {
	Input   string        `json:"input"`
	Cleaner string        `json:"cleaner"`
	DryRun  bool          `json:"dry_run"`
	Summary batch.Summary `json:"summary"`
}

// WriteReport writes each file result, then the summary.
func (w *JSONLWriter) WriteReport(r *batch.Report) error {
	for _, f := range r.Files {
		if err := w.writeLine(f); err != nil {
			return err
		}
	}
	if err := w.writeLine(summaryLine{
		Input:   r.Input,
		Cleaner: r.Cleaner,
		DryRun:  r.DryRun,
		Summary: r.Summary,
	}); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLWriter) writeLine(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(line); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}
