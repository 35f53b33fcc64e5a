// Package source reads raw errors from files.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// Format is the on-disk layout of an error file.
type Format string

const (
	// FormatJSONL holds one RawError JSON object per line.
	FormatJSONL Format = "jsonl"

	// FormatText holds a single raw stack. The first non-empty line is the message.
	FormatText Format = "text"

	// FormatAuto picks FormatJSONL or FormatText from the file extension.
	FormatAuto Format = "auto"
)

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ParseFormat parses a format name. The empty string means FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatAuto, nil
	case FormatJSONL, FormatText, FormatAuto:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatForPath resolves FormatAuto for path: .jsonl, .ndjson and .json files
// are JSON Lines, everything else is text.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	default:
		return FormatText
	}
}

// Record is one raw error read from a file.
type Record struct {
	// Raw is the decoded error.
	Raw stacktrace.RawError

	// Source is the file path this error came from.
	Source string

	// LineNum is the 1-based line where the record starts.
	LineNum int
}

// RawErrorSource provides an iterator over raw errors.
// Implementations must be safe for sequential access (not concurrent).
type RawErrorSource interface {
	// Next returns the next record.
	// Returns io.EOF when no more records are available.
	Next(ctx context.Context) (*Record, error)

	// Close releases any resources held by the source.
	Close() error
}
