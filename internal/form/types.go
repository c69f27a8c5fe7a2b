// Package form holds the canonical project-spec record and the state
// machine that edits it.
//
// Every edit goes through Transition, a single pure function that computes
// the complete next record from the current one. Dependent selections are
// cleared in the same step as the parent change, so a record with a
// language that does not belong to its domain is never observable.
package form

import (
	"errors"
	"fmt"
	"strings"
)

// Field names a ProjectSpec field. Values match the persisted JSON keys.
type Field string

const (
	FieldProjectDomain      Field = "projectDomain"
	FieldLanguage           Field = "language"
	FieldProjectType        Field = "projectType"
	FieldProjectScale       Field = "projectScale"
	FieldFramework          Field = "framework"
	FieldPackageManager     Field = "packageManager"
	FieldConfigFiles        Field = "configFiles"
	FieldFeatureDescription Field = "featureDescription"
	FieldTargetUsers        Field = "targetUsers"
	FieldKeyFeatures        Field = "keyFeatures"
)

// Fields lists every field in form order.
var Fields = []Field{
	FieldProjectDomain,
	FieldLanguage,
	FieldProjectType,
	FieldProjectScale,
	FieldFramework,
	FieldPackageManager,
	FieldConfigFiles,
	FieldFeatureDescription,
	FieldTargetUsers,
	FieldKeyFeatures,
}

var (
	// ErrUnknownField is returned when a field name is not part of ProjectSpec.
	ErrUnknownField = errors.New("unknown field")
	// ErrCustomNotAllowed is returned when free text is requested for a
	// field that only accepts catalog values.
	ErrCustomNotAllowed = errors.New("field does not accept custom values")
	// ErrNoCapture is returned when confirming a custom value with no
	// capture in progress.
	ErrNoCapture = errors.New("no custom value capture in progress")
)

// ParseField validates a field name coming from a shell.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// AllowsCustom reports whether the field offers the free-text escape hatch.
// The domain is a closed enumeration; free-text fields need no capture.
func (f Field) AllowsCustom() bool {
	switch f {
	case FieldLanguage, FieldProjectType, FieldProjectScale,
		FieldFramework, FieldPackageManager, FieldConfigFiles:
		return true
	}
	return false
}

// IsText reports whether the field is unconstrained free text.
func (f Field) IsText() bool {
	switch f {
	case FieldFeatureDescription, FieldTargetUsers, FieldKeyFeatures:
		return true
	}
	return false
}

// ProjectSpec is the canonical form record. Empty string means unset.
type ProjectSpec struct {
	ProjectDomain      string   `json:"projectDomain"`
	Language           string   `json:"language"`
	ProjectType        string   `json:"projectType"`
	ProjectScale       string   `json:"projectScale"`
	Framework          string   `json:"framework"`
	PackageManager     string   `json:"packageManager"`
	ConfigFiles        []string `json:"configFiles"`
	FeatureDescription string   `json:"featureDescription"`
	TargetUsers        string   `json:"targetUsers"`
	KeyFeatures        string   `json:"keyFeatures"`
}

// Clone returns a deep copy. ConfigFiles is never nil in the copy so the
// record always marshals as a total document.
func (s ProjectSpec) Clone() ProjectSpec {
	out := s
	out.ConfigFiles = make([]string, len(s.ConfigFiles))
	copy(out.ConfigFiles, s.ConfigFiles)
	return out
}

// Equal reports whether two records hold the same values.
func (s ProjectSpec) Equal(o ProjectSpec) bool {
	if s.ProjectDomain != o.ProjectDomain || s.Language != o.Language ||
		s.ProjectType != o.ProjectType || s.ProjectScale != o.ProjectScale ||
		s.Framework != o.Framework || s.PackageManager != o.PackageManager ||
		s.FeatureDescription != o.FeatureDescription || s.TargetUsers != o.TargetUsers ||
		s.KeyFeatures != o.KeyFeatures {
		return false
	}
	if len(s.ConfigFiles) != len(o.ConfigFiles) {
		return false
	}
	for i := range s.ConfigFiles {
		if s.ConfigFiles[i] != o.ConfigFiles[i] {
			return false
		}
	}
	return true
}

// Get returns the scalar value of a field. ConfigFiles is returned
// comma-joined.
func (s ProjectSpec) Get(f Field) string {
	switch f {
	case FieldProjectDomain:
		return s.ProjectDomain
	case FieldLanguage:
		return s.Language
	case FieldProjectType:
		return s.ProjectType
	case FieldProjectScale:
		return s.ProjectScale
	case FieldFramework:
		return s.Framework
	case FieldPackageManager:
		return s.PackageManager
	case FieldConfigFiles:
		return strings.Join(s.ConfigFiles, ", ")
	case FieldFeatureDescription:
		return s.FeatureDescription
	case FieldTargetUsers:
		return s.TargetUsers
	case FieldKeyFeatures:
		return s.KeyFeatures
	}
	return ""
}

// HasConfigFile reports whether value is in the config file set.
func (s ProjectSpec) HasConfigFile(value string) bool {
	for _, v := range s.ConfigFiles {
		if v == value {
			return true
		}
	}
	return false
}
