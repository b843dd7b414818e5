package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/logclean/internal/batch"
)

// YAMLWriter writes YAML output.
type YAMLWriter struct {
	w io.Writer
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: w}
}

// WriteReport encodes r as a single YAML document.
func (w *YAMLWriter) WriteReport(r *batch.Report) error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}
