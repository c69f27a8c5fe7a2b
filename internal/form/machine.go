package form

import (
	"fmt"

	"github.com/HendryAvila/promptforge/internal/catalog"
)

// capture is an open request for free text on one field. The record is
// not touched until the capture is confirmed.
type capture struct {
	field Field
}

// Machine owns the canonical ProjectSpec. It is not safe for concurrent
// use; session.Session serializes access.
type Machine struct {
	current ProjectSpec
	pending *capture
}

// NewMachine returns a machine holding an empty record.
func NewMachine() *Machine {
	return &Machine{current: ProjectSpec{ConfigFiles: []string{}}}
}

// Spec returns a deep copy of the current record.
func (m *Machine) Spec() ProjectSpec {
	return m.current.Clone()
}

// Pending reports the field awaiting free text, if any.
func (m *Machine) Pending() (Field, bool) {
	if m.pending == nil {
		return "", false
	}
	return m.pending.field, true
}

// Select applies a shell choice to a field. It returns awaiting=true when
// the choice opened a capture; the record is unchanged in that case.
// Selecting a value for configFiles toggles its membership. A select value
// equal to the "Other" sentinel is treated as Other(), and projectDomain
// only accepts catalog domains.
func (m *Machine) Select(f Field, c Choice) (awaiting bool, err error) {
	if _, err := ParseField(string(f)); err != nil {
		return false, err
	}
	if !f.IsText() && c.kind == choiceKnown && catalog.IsSentinel(c.Value()) {
		c = Other()
	}
	if c.IsOther() || c.IsCustom() {
		if !f.AllowsCustom() {
			return false, fmt.Errorf("%w: %s", ErrCustomNotAllowed, f)
		}
	}
	if c.IsOther() {
		m.pending = &capture{field: f}
		return true, nil
	}
	if f == FieldProjectDomain && c.Value() != "" && !catalog.IsDomain(c.Value()) {
		return false, fmt.Errorf("%w: %s %q is not a listed domain", ErrCustomNotAllowed, f, c.Value())
	}

	m.pending = nil
	if f == FieldConfigFiles {
		if c.Value() == "" {
			return false, nil
		}
		op := OpToggle
		if c.IsCustom() {
			op = OpAdd
		}
		m.apply(Change{Field: f, Op: op, Value: c.Value()})
		return false, nil
	}
	m.apply(Change{Field: f, Op: OpSet, Value: c.Value()})
	return false, nil
}

// Set replaces a field with a plain value (free-text fields included).
func (m *Machine) Set(f Field, value string) error {
	_, err := m.Select(f, Known(value))
	return err
}

// Toggle flips a config file in or out of the set. Blank values are ignored.
func (m *Machine) Toggle(value string) {
	_, _ = m.Select(FieldConfigFiles, Known(value))
}

// ConfirmOther commits free text to the field under capture. Blank text,
// or the sentinel itself, behaves like CancelOther.
func (m *Machine) ConfirmOther(text string) error {
	if m.pending == nil {
		return ErrNoCapture
	}
	f := m.pending.field
	m.pending = nil

	c := Custom(text)
	if c.Value() == "" || catalog.IsSentinel(c.Value()) {
		return nil
	}
	if f == FieldConfigFiles {
		m.apply(Change{Field: f, Op: OpAdd, Value: c.Value()})
		return nil
	}
	m.apply(Change{Field: f, Op: OpSet, Value: c.Value()})
	return nil
}

// CancelOther abandons the capture. The field keeps its prior value.
func (m *Machine) CancelOther() {
	m.pending = nil
}

// Replace installs a copy of spec as the current record, e.g. when a
// template is loaded, and drops any open capture.
func (m *Machine) Replace(spec ProjectSpec) {
	m.pending = nil
	m.current = spec.Clone()
}

// Reset clears the record.
func (m *Machine) Reset() {
	m.Replace(ProjectSpec{})
}

func (m *Machine) apply(ch Change) {
	m.current = Transition(m.current, ch)
}
