package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// FileSource implements RawErrorSource for reading from files.
type FileSource struct {
	files  []string
	format Format
	logger *slog.Logger

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int
}

// Option configures a FileSource.
type Option func(*FileSource)

// WithLogger sets the slog logger used to report skipped lines.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFileSource creates a RawErrorSource that reads files in order.
// FormatAuto is resolved per file.
func NewFileSource(files []string, format Format, opts ...Option) *FileSource {
	s := &FileSource{
		files:     files,
		format:    format,
		logger:    slog.New(slog.DiscardHandler),
		fileIndex: -1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Next returns the next record.
// Blank and malformed JSON Lines entries are skipped.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Record, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.formatFor(s.currentSource) == FormatText {
			rec, err := s.readText()
			// A text file yields at most one record
			if cerr := s.closeCurrentFile(); err == nil && cerr != nil {
				err = cerr
			}
			if err != nil || rec != nil {
				return rec, err
			}
			continue
		}

		rec, err := s.readJSONLine()
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) formatFor(path string) Format {
	if s.format == "" || s.format == FormatAuto {
		return FormatForPath(path)
	}
	return s.format
}

// readJSONLine returns the next decodable line, or nil at end of file.
func (s *FileSource) readJSONLine() (*Record, error) {
	for s.currentScanner.Scan() {
		s.currentLine++
		raw, ok, err := DecodeLine(s.currentScanner.Text())
		if err != nil {
			s.logger.Debug("skipping malformed line",
				"source", s.currentSource, "line", s.currentLine, "error", err)
			continue
		}
		if !ok {
			continue
		}
		return &Record{Raw: raw, Source: s.currentSource, LineNum: s.currentLine}, nil
	}
	if err := s.currentScanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
	}
	return nil, nil
}

// readText consumes the whole file as one stack.
func (s *FileSource) readText() (*Record, error) {
	var (
		b     strings.Builder
		first = 0
		msg   string
	)
	for s.currentScanner.Scan() {
		s.currentLine++
		line := s.currentScanner.Text()
		if s.currentLine > 1 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if first == 0 && strings.TrimSpace(line) != "" {
			first = s.currentLine
			msg = strings.TrimSpace(line)
		}
	}
	if err := s.currentScanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
	}
	if first == 0 {
		s.logger.Debug("skipping empty file", "source", s.currentSource)
		return nil, nil
	}
	return &Record{
		Raw:     stacktrace.NewRawError(msg, b.String()),
		Source:  s.currentSource,
		LineNum: first,
	}, nil
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening error file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = bufio.NewScanner(f)
	s.currentScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	s.currentScanner = nil
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		return err
	}
	return nil
}

// DecodeLine decodes one JSON Lines entry.
// It returns ok=false for blank lines.
func DecodeLine(line string) (raw stacktrace.RawError, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return stacktrace.RawError{}, false, nil
	}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return stacktrace.RawError{}, false, fmt.Errorf("decoding raw error: %w", err)
	}
	return raw, true, nil
}

// ReadAll drains src into a slice.
func ReadAll(ctx context.Context, src RawErrorSource) ([]*Record, error) {
	var records []*Record
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
