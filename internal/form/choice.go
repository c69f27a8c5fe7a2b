package form

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

type choiceKind int

const (
	choiceKnown choiceKind = iota
	choiceCustom
	choiceOther
)

// Choice is what a shell submits for a select field: a catalog value, a
// free-text value, or a request to start capturing free text.
type Choice struct {
	kind  choiceKind
	value string
}

// Known selects a catalog value. The empty string clears the field.
func Known(v string) Choice { return Choice{kind: choiceKnown, value: v} }

// Custom selects a free-text value outside the catalog.
func Custom(text string) Choice { return Choice{kind: choiceCustom, value: normalizeText(text)} }

// Other asks the machine to open a capture for free text.
func Other() Choice { return Choice{kind: choiceOther} }

// IsOther reports whether the choice opens a capture.
func (c Choice) IsOther() bool { return c.kind == choiceOther }

// IsCustom reports whether the choice carries free text.
func (c Choice) IsCustom() bool { return c.kind == choiceCustom }

// Value is the submitted value. Empty for Other.
func (c Choice) Value() string { return c.value }

// normalizeText trims and NFC-normalizes user-typed text so visually
// identical entries compare equal in the config file set.
func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
