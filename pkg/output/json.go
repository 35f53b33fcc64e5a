package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter formats reports as an indented JSON document.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON. Quiet mode renders only the summary.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(report.Summary)
	}

	return encoder.Encode(report)
}

// ResultWriter streams results as JSON Lines, one compact object per line.
type ResultWriter struct {
	enc *json.Encoder
}

// NewResultWriter returns a ResultWriter writing to w.
func NewResultWriter(w io.Writer) *ResultWriter {
	return &ResultWriter{enc: json.NewEncoder(w)}
}

// Write encodes one result.
func (rw *ResultWriter) Write(r *Result) error {
	return rw.enc.Encode(r)
}
