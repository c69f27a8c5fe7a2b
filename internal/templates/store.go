// Package templates persists named snapshots of the project form.
//
// The Store exclusively owns the collection. Records cross its boundary
// only as deep copies, in both directions, so a later form edit can never
// change a saved template and vice versa.
//
// The whole collection lives under one slot key as a JSON array and is
// rewritten synchronously after every mutation. Storage failures never
// reach the caller: unreadable data at startup degrades to an empty
// collection and failed writes are logged while the in-memory collection
// stays usable.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/HendryAvila/promptforge/internal/form"
	"github.com/HendryAvila/promptforge/internal/metrics"
	"github.com/HendryAvila/promptforge/internal/storage"
)

// DefaultKey is the slot key holding the collection.
const DefaultKey = "promptBuilderTemplates"

// createdAtLayout matches JavaScript's Date.toISOString output.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// timeNow is a package-level variable for testability.
var timeNow = time.Now

var (
	// ErrEmptyName is returned when a template name is blank.
	ErrEmptyName = errors.New("please enter a template name")
	// ErrNotFound is returned when an id does not exist.
	ErrNotFound = errors.New("template not found")
)

// Template is a named snapshot of a ProjectSpec.
type Template struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Data      form.ProjectSpec `json:"data"`
	CreatedAt string           `json:"createdAt"`
}

func (t Template) clone() Template {
	t.Data = t.Data.Clone()
	return t
}

// Store is the template collection bound to a slot. It is not safe for
// concurrent use; session.Session serializes access.
type Store struct {
	slot    storage.Slot
	key     string
	logger  *slog.Logger
	metrics *metrics.Metrics

	items  []Template
	lastID int64
}

// New loads the collection from slot once. A missing key, a read error or
// malformed JSON all start the store empty.
func New(slot storage.Slot, key string, logger *slog.Logger, m *metrics.Metrics) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{slot: slot, key: key, logger: logger, metrics: m}
	s.items = s.load()
	for _, t := range s.items {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	return s
}

func (s *Store) load() []Template {
	raw, err := s.slot.Get(s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []Template{}
	}
	if err != nil {
		s.logger.Warn("templates unavailable, starting empty", "key", s.key, "error", err)
		s.metrics.LoadFailed()
		return []Template{}
	}

	var items []Template
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("discarding malformed templates", "key", s.key, "error", err)
		s.metrics.LoadFailed()
		return []Template{}
	}
	if err := validate(items); err != nil {
		s.logger.Warn("discarding malformed templates", "key", s.key, "error", err)
		s.metrics.LoadFailed()
		return []Template{}
	}
	for i := range items {
		items[i] = items[i].clone()
	}
	return items
}

// validate rejects collections that could not have been produced by the
// store itself.
func validate(items []Template) error {
	seen := make(map[int64]bool, len(items))
	for _, t := range items {
		switch {
		case t.ID <= 0:
			return fmt.Errorf("template %q has invalid id %d", t.Name, t.ID)
		case seen[t.ID]:
			return fmt.Errorf("duplicate template id %d", t.ID)
		case strings.TrimSpace(t.Name) == "":
			return fmt.Errorf("template %d has no name", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// List returns copies of every template in insertion order.
func (s *Store) List() []Template {
	out := make([]Template, len(s.items))
	for i, t := range s.items {
		out[i] = t.clone()
	}
	return out
}

// Get returns a copy of the template with id.
func (s *Store) Get(id int64) (Template, bool) {
	i := s.index(id)
	if i < 0 {
		return Template{}, false
	}
	return s.items[i].clone(), true
}

// FindByName returns the first template whose name matches, ignoring case.
func (s *Store) FindByName(name string) (Template, bool) {
	name = strings.TrimSpace(name)
	for _, t := range s.items {
		if strings.EqualFold(t.Name, name) {
			return t.clone(), true
		}
	}
	return Template{}, false
}

// Create stores a new template holding a copy of data.
func (s *Store) Create(name string, data form.ProjectSpec) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.metrics.TemplateOp("create", ErrEmptyName)
		return Template{}, ErrEmptyName
	}

	t := s.newTemplate(name, data)
	s.items = append(s.items, t)
	s.persist("create")
	s.metrics.TemplateOp("create", nil)
	return t.clone(), nil
}

// Update replaces name and data of an existing template. id and
// createdAt are preserved.
func (s *Store) Update(id int64, name string, data form.ProjectSpec) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		s.metrics.TemplateOp("update", ErrEmptyName)
		return Template{}, ErrEmptyName
	}
	i := s.index(id)
	if i < 0 {
		err := fmt.Errorf("%w: %d", ErrNotFound, id)
		s.metrics.TemplateOp("update", err)
		return Template{}, err
	}

	s.items[i].Name = name
	s.items[i].Data = data.Clone()
	s.persist("update")
	s.metrics.TemplateOp("update", nil)
	return s.items[i].clone(), nil
}

// Delete removes the template if present and reports whether it did.
// Deleting an absent id is a no-op.
func (s *Store) Delete(id int64) bool {
	i := s.index(id)
	if i < 0 {
		s.metrics.TemplateOp("delete", ErrNotFound)
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.persist("delete")
	s.metrics.TemplateOp("delete", nil)
	return true
}

// Clone duplicates a template under a fresh id and createdAt. A blank
// name keeps the source name.
func (s *Store) Clone(id int64, name string) (Template, error) {
	i := s.index(id)
	if i < 0 {
		err := fmt.Errorf("%w: %d", ErrNotFound, id)
		s.metrics.TemplateOp("clone", err)
		return Template{}, err
	}
	src := s.items[i]
	if name = strings.TrimSpace(name); name == "" {
		name = src.Name
	}

	t := s.newTemplate(name, src.Data)
	s.items = append(s.items, t)
	s.persist("clone")
	s.metrics.TemplateOp("clone", nil)
	return t.clone(), nil
}

// newTemplate allocates the next id. Ids are creation instants in
// milliseconds, bumped past the last issued or loaded id so they strictly
// increase. createdAt is derived from the id, so distinct ids never share
// a timestamp.
func (s *Store) newTemplate(name string, data form.ProjectSpec) Template {
	id := timeNow().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return Template{
		ID:        id,
		Name:      name,
		Data:      data.Clone(),
		CreatedAt: time.UnixMilli(id).UTC().Format(createdAtLayout),
	}
}

func (s *Store) index(id int64) int {
	for i, t := range s.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full collection. Failures are logged and counted.
func (s *Store) persist(op string) {
	data, err := json.Marshal(s.items)
	if err == nil {
		err = s.slot.Put(s.key, data)
	}
	if err != nil {
		s.logger.Error("persisting templates failed", "op", op, "key", s.key, "error", err)
		s.metrics.PersistFailed()
	}
}
