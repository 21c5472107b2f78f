// internal/reporting/reporter.go
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// Supported export formats.
const (
	FormatDOCX = "docx"
	FormatJSON = "json"
)

// FilePrefix starts every export file name.
const FilePrefix = "navigation_history_"

const fileTimeLayout = "20060102_150405"

// ErrUnsupportedFormat is returned by New for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Renderer turns the record sequence into a report and returns where it was written.
type Renderer interface {
	Render(records []schemas.NavigationRecord) (string, error)
}

// Report is the input every encoder renders.
type Report struct {
	GeneratedAt time.Time
	Records     []schemas.NavigationRecord
}

// Encoder serializes a Report in one format.
type Encoder interface {
	Encode(w io.Writer, report Report) error
	// Extension is the file extension, without the dot.
	Extension() string
	ContentType() string
}

// FileRenderer writes reports into a directory, one timestamped file per export.
type FileRenderer struct {
	dir     string
	encoder Encoder
	now     func() time.Time
	logger  *zap.Logger
}

var _ Renderer = (*FileRenderer)(nil)

// New creates a renderer for format writing under dir. A leading ~ in dir expands to
// the user's home directory and the directory is created if needed.
func New(format, dir string, logger *zap.Logger) (*FileRenderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	encoder, err := encoderFor(format)
	if err != nil {
		return nil, err
	}

	if dir == "" {
		dir = "."
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand export directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", expanded, err)
	}

	return &FileRenderer{
		dir:     expanded,
		encoder: encoder,
		now:     time.Now,
		logger:  logger.Named("reporting").With(zap.String("format", encoder.Extension())),
	}, nil
}

func encoderFor(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatDOCX, "word":
		return DOCXEncoder{}, nil
	case FormatJSON:
		return JSONEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ContentType is the MIME type of the files this renderer writes.
func (r *FileRenderer) ContentType() string { return r.encoder.ContentType() }

// Render writes the report and returns the file path. It refuses an empty sequence
// with ErrEmptyExport. The file appears only once fully written.
func (r *FileRenderer) Render(records []schemas.NavigationRecord) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("cannot export navigation history: %w", schemas.ErrEmptyExport)
	}
	start := time.Now()
	generatedAt := r.now()
	name := FilePrefix + generatedAt.Format(fileTimeLayout) + "." + r.encoder.Extension()
	path := filepath.Join(r.dir, name)

	tmp, err := os.CreateTemp(r.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file in %s: %w", r.dir, err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	report := Report{GeneratedAt: generatedAt, Records: records}
	if err := r.encoder.Encode(tmp, report); err != nil {
		cleanup()
		r.logger.Error("Failed to encode report.", zap.Error(err))
		return "", fmt.Errorf("failed to encode %s report: %w", r.encoder.Extension(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move report to %s: %w", path, err)
	}

	r.logger.Info("Navigation history exported.",
		zap.String("path", path),
		zap.Int("entries", len(records)),
		zap.Duration("duration", time.Since(start)))
	return path, nil
}
