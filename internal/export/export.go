// Package export turns the current record into a deliverable: clipboard
// text or a prompt.md / prompt.json file.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/metrics"
	"github.com/HendryAvila/promptforge/internal/prompt"
)

// Format selects a rendering.
type Format string

const (
	FormatNatural    Format = "natural"
	FormatStructured Format = "structured"
)

// Action selects where an export goes.
type Action string

const (
	ActionCopy     Action = "copy"
	ActionDownload Action = "download"
)

var (
	// ErrUnknownFormat is returned for a format other than natural or structured.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnknownAction is returned for an action other than copy or download.
	ErrUnknownAction = errors.New("unknown export action")
)

// ParseFormat validates a format name. Empty means natural.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatNatural:
		return FormatNatural, nil
	case FormatStructured:
		return FormatStructured, nil
	}
	return "", fmt.Errorf("%w: %q (want natural or structured)", ErrUnknownFormat, s)
}

// Filename is the download name for a format.
func Filename(f Format) string {
	if f == FormatStructured {
		return "prompt.json"
	}
	return "prompt.md"
}

// MIMEType is the content type served for a format.
func MIMEType(f Format) string {
	if f == FormatStructured {
		return "application/json; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Serialize renders spec in the requested format.
func Serialize(spec form.ProjectSpec, f Format) (string, error) {
	switch f {
	case FormatNatural:
		return prompt.Document(spec), nil
	case FormatStructured:
		return prompt.StructuredJSON(spec)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available on this system")
	}
	return clipboard.WriteAll(text)
}

// Exporter delivers rendered prompts.
type Exporter struct {
	clipboard Clipboard
	dir       string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewExporter creates an exporter. A nil clipboard uses the system one; an
// empty dir downloads into the working directory.
func NewExporter(cb Clipboard, dir string, logger *slog.Logger, m *metrics.Metrics) *Exporter {
	if cb == nil {
		cb = SystemClipboard{}
	}
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{clipboard: cb, dir: dir, logger: logger, metrics: m}
}

// Dir is the download directory.
func (e *Exporter) Dir() string { return e.dir }

// Copy sends content to the clipboard.
func (e *Exporter) Copy(content string) error {
	if err := e.clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("copying to clipboard: %w", err)
	}
	return nil
}

// Download writes content to the format's filename in the download
// directory and returns the final path. The content goes to a temp file
// first; the temp file is closed and removed on every path.
func (e *Exporter) Download(content string, f Format) (path string, err error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, ".prompt-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return "", fmt.Errorf("writing %s: %w", Filename(f), err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("syncing %s: %w", Filename(f), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", Filename(f), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("setting permissions: %w", err)
	}

	path = filepath.Join(e.dir, Filename(f))
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("saving %s: %w", Filename(f), err)
	}
	return path, nil
}

// Result describes a finished export.
type Result struct {
	Action  Action
	Format  Format
	Content string
	// Path is set for downloads.
	Path string
}

// Export renders spec and delivers it with action.
func (e *Exporter) Export(spec form.ProjectSpec, f Format, action Action) (Result, error) {
	res := Result{Action: action, Format: f}
	content, err := Serialize(spec, f)
	if err != nil {
		e.metrics.Exported(string(action), string(f), err)
		return res, err
	}
	res.Content = content

	switch action {
	case ActionCopy:
		err = e.Copy(content)
	case ActionDownload:
		res.Path, err = e.Download(content, f)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	e.metrics.Exported(string(action), string(f), err)
	if err != nil {
		e.logger.Warn("export failed", "action", action, "format", f, "error", err)
		return res, err
	}
	e.logger.Info("prompt exported", "action", action, "format", f, "path", res.Path)
	return res, nil
}
