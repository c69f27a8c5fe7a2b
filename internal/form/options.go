package form

import "github.com/HendryAvila/promptforge/internal/catalog"

// Options returns the catalog values a shell should offer for f given the
// current record. Dependent fields derive their list from the parent
// value, so a custom or empty parent offers nothing. Free-text fields
// return nil.
func Options(f Field, spec ProjectSpec) []string {
	switch f {
	case FieldProjectDomain:
		ds := catalog.Domains()
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = string(d)
		}
		return out
	case FieldLanguage:
		langs := catalog.Languages(catalog.Domain(spec.ProjectDomain))
		out := make([]string, len(langs))
		for i, l := range langs {
			out[i] = string(l)
		}
		return out
	case FieldFramework:
		return catalog.Frameworks(catalog.Language(spec.Language))
	case FieldPackageManager:
		return catalog.PackageManagers(catalog.Language(spec.Language))
	case FieldProjectType:
		return catalog.ProjectTypes()
	case FieldProjectScale:
		return catalog.ProjectScales()
	case FieldConfigFiles:
		return catalog.ConfigFiles()
	}
	return nil
}

// Enabled reports whether a shell should accept input for f. Dependent
// selects stay disabled until their parent is set.
func Enabled(f Field, spec ProjectSpec) bool {
	switch f {
	case FieldLanguage:
		return spec.ProjectDomain != ""
	case FieldFramework, FieldPackageManager:
		return spec.Language != ""
	}
	return true
}
