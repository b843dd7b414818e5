package output

import (
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/logclean/internal/batch"
)

// TOMLWriter writes TOML output.
type TOMLWriter struct {
	w io.Writer
}

// NewTOMLWriter creates a TOML writer.
func NewTOMLWriter(w io.Writer) *TOMLWriter {
	return &TOMLWriter{w: w}
}

// WriteReport encodes r as a TOML document with one [[files]] table per file.
func (w *TOMLWriter) WriteReport(r *batch.Report) error {
	enc := toml.NewEncoder(w.w)
	enc.SetIndentTables(true)
	return enc.Encode(r)
}
