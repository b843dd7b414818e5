// Package output renders batch reports.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/jmylchreest/logclean/internal/batch"
)

// Format represents output format types.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatNone  Format = "none"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatJSONL), string(FormatYAML), string(FormatTOML), string(FormatNone)}
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatJSON, FormatJSONL, FormatYAML, FormatTOML, FormatNone:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unsupported output format: %s (want one of %s)", s, strings.Join(Formats(), ", "))
}

// Writer renders a report.
type Writer interface {
	WriteReport(r *batch.Report) error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	color  bool
}

// WithPretty toggles indented JSON. Other formats ignore it.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithColor forces colored table output on or off.
func WithColor(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.color = enabled
	}
}

// NewWriter creates a writer for the specified format. Tables are colored
// by default only when w is a terminal.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		color:  IsTerminal(w),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatTable, "":
		return NewTableWriter(w, cfg.color), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, "  "), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatTOML:
		return NewTOMLWriter(w), nil
	case FormatNone:
		return discardWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type discardWriter struct{}

func (discardWriter) WriteReport(*batch.Report) error { return nil }
