// Package session is the single owner of the form record, the template
// collection and the shell-facing view state (edit mode, active panel).
//
// Both shells may call in from separate goroutines. Every method takes the
// session lock, so each operation runs to completion before the next one
// starts.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/HendryAvila/promptforge/internal/export"
	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/metrics"
	"github.com/HendryAvila/promptforge/internal/templates"
)

// Notices shown to the user after a successful action.
const (
	NoticeSaved   = "Template saved successfully!"
	NoticeUpdated = "Template updated successfully!"
	NoticeCopied  = "Copied to clipboard!"
)

// ErrNotEditing is returned by CancelEdit when no template is being edited.
var ErrNotEditing = errors.New("no template is being edited")

// State is a snapshot of everything a shell may display.
type State struct {
	Spec      form.ProjectSpec `json:"spec"`
	Pending   form.Field       `json:"pendingField,omitempty"`
	Awaiting  bool             `json:"awaitingCustomValue"`
	EditingID int64            `json:"editingId,omitempty"`
	IsEditing bool             `json:"editing"`
	Panel     export.Format    `json:"panel"`
}

// Session serializes access to the core.
type Session struct {
	mu       sync.Mutex
	machine  *form.Machine
	store    *templates.Store
	exporter *export.Exporter
	logger   *slog.Logger
	metrics  *metrics.Metrics

	editing int64
	panel   export.Format
}

// New creates a session around an already loaded store.
func New(store *templates.Store, exporter *export.Exporter, logger *slog.Logger, m *metrics.Metrics) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		machine:  form.NewMachine(),
		store:    store,
		exporter: exporter,
		logger:   logger,
		metrics:  m,
		panel:    export.FormatNatural,
	}
}

// State returns a copy of the current view state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		Spec:      s.machine.Spec(),
		EditingID: s.editing,
		IsEditing: s.editing != 0,
		Panel:     s.panel,
	}
	if f, ok := s.machine.Pending(); ok {
		st.Pending = f
		st.Awaiting = true
	}
	return st
}

// Spec returns a copy of the current record.
func (s *Session) Spec() form.ProjectSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Spec()
}

// FieldOptions describes what a shell can offer for a field right now.
type FieldOptions struct {
	Field        form.Field `json:"field"`
	Options      []string   `json:"options"`
	Enabled      bool       `json:"enabled"`
	AllowsCustom bool       `json:"allowsCustom"`
	Current      string     `json:"current"`
}

// Options lists the choices for a field given the current record.
func (s *Session) Options(field string) (FieldOptions, error) {
	f, err := form.ParseField(field)
	if err != nil {
		return FieldOptions{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	spec := s.machine.Spec()
	opts := form.Options(f, spec)
	if opts == nil {
		opts = []string{}
	}
	return FieldOptions{
		Field:        f,
		Options:      opts,
		Enabled:      form.Enabled(f, spec),
		AllowsCustom: f.AllowsCustom(),
		Current:      spec.Get(f),
	}, nil
}

// Select applies a choice to a field. awaiting reports whether the choice
// opened a free-text capture.
func (s *Session) Select(field string, c form.Choice) (awaiting bool, err error) {
	f, err := form.ParseField(field)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	awaiting, err = s.machine.Select(f, c)
	if err != nil {
		return false, err
	}
	if !awaiting {
		s.metrics.FieldChanged(string(f))
	}
	return awaiting, nil
}

// SetField sets a field to a plain value.
func (s *Session) SetField(field, value string) error {
	_, err := s.Select(field, form.Known(value))
	return err
}

// ToggleConfigFile flips one config file in or out of the set. The
// "Other" sentinel opens the configFiles capture instead; awaiting
// reports that.
func (s *Session) ToggleConfigFile(value string) (awaiting bool, err error) {
	if strings.TrimSpace(value) == "" {
		return false, errors.New("config file value is required")
	}
	return s.Select(string(form.FieldConfigFiles), form.Known(value))
}

// ConfirmOther commits the free text of the open capture.
func (s *Session) ConfirmOther(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.machine.Pending()
	if err := s.machine.ConfirmOther(text); err != nil {
		return err
	}
	if strings.TrimSpace(text) != "" {
		s.metrics.FieldChanged(string(f))
	}
	return nil
}

// CancelOther abandons the open capture, if any.
func (s *Session) CancelOther() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.CancelOther()
}

// Reset clears the record and leaves edit mode.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Reset()
	s.editing = 0
}

// Templates lists saved templates.
func (s *Session) Templates() []templates.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// FindTemplate resolves a numeric id or a case-insensitive name.
func (s *Session) FindTemplate(ref string) (templates.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); err == nil {
		if t, ok := s.store.Get(id); ok {
			return t, true
		}
	}
	return s.store.FindByName(ref)
}

// SaveResult reports what SaveTemplate did.
type SaveResult struct {
	Template templates.Template
	Updated  bool
	Notice   string
}

// SaveTemplate snapshots the current record. In edit mode it overwrites
// the template being edited and leaves edit mode; otherwise it creates a
// new template.
func (s *Session) SaveTemplate(name string) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec := s.machine.Spec()
	if s.editing != 0 {
		t, err := s.store.Update(s.editing, name, spec)
		if errors.Is(err, templates.ErrNotFound) {
			s.editing = 0
		}
		if err != nil {
			return SaveResult{}, err
		}
		s.editing = 0
		s.logger.Info("template updated", "id", t.ID, "name", t.Name)
		return SaveResult{Template: t, Updated: true, Notice: NoticeUpdated}, nil
	}

	t, err := s.store.Create(name, spec)
	if err != nil {
		return SaveResult{}, err
	}
	s.logger.Info("template saved", "id", t.ID, "name", t.Name)
	return SaveResult{Template: t, Notice: NoticeSaved}, nil
}

// LoadTemplate replaces the record with a copy of the template's data and
// leaves edit mode.
func (s *Session) LoadTemplate(id int64) (templates.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.store.Get(id)
	if !ok {
		return templates.Template{}, fmt.Errorf("%w: %d", templates.ErrNotFound, id)
	}
	s.machine.Replace(t.Data)
	s.editing = 0
	return t, nil
}

// EditTemplate loads a template and enters edit mode for it.
func (s *Session) EditTemplate(id int64) (templates.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.store.Get(id)
	if !ok {
		return templates.Template{}, fmt.Errorf("%w: %d", templates.ErrNotFound, id)
	}
	s.machine.Replace(t.Data)
	s.editing = t.ID
	return t, nil
}

// CancelEdit leaves edit mode. The record keeps its current values.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing == 0 {
		return ErrNotEditing
	}
	s.editing = 0
	return nil
}

// CloneTemplate duplicates a template. Edit mode is unaffected.
func (s *Session) CloneTemplate(id int64, name string) (templates.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clone(id, name)
}

// PeekTemplate returns a template without touching the record.
func (s *Session) PeekTemplate(id int64) (templates.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// DeleteTemplate removes a template. Deleting the template being edited
// leaves edit mode. It reports the removed template, if there was one.
func (s *Session) DeleteTemplate(id int64) (templates.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.store.Get(id)
	if !ok {
		return templates.Template{}, false
	}
	s.store.Delete(id)
	if s.editing == id {
		s.editing = 0
	}
	return t, true
}

// SelectPanel sets the active preview panel.
func (s *Session) SelectPanel(panel string) (export.Format, error) {
	f, err := export.ParseFormat(panel)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = f
	return f, nil
}

// Panel returns the active preview panel.
func (s *Session) Panel() export.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

// Render renders the current record. An empty format uses the active panel.
func (s *Session) Render(format string) (export.Format, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.formatLocked(format)
	if err != nil {
		return "", "", err
	}
	out, err := export.Serialize(s.machine.Spec(), f)
	if err != nil {
		return f, "", err
	}
	s.metrics.Rendered(string(f))
	return f, out, nil
}

// Export copies or downloads the current record. An empty format uses the
// active panel.
func (s *Session) Export(format string, action export.Action) (export.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.formatLocked(format)
	if err != nil {
		return export.Result{}, err
	}
	if s.exporter == nil {
		return export.Result{}, errors.New("export is not configured")
	}
	return s.exporter.Export(s.machine.Spec(), f, action)
}

func (s *Session) formatLocked(format string) (export.Format, error) {
	if strings.TrimSpace(format) == "" {
		return s.panel, nil
	}
	return export.ParseFormat(format)
}
