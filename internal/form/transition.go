package form

// Op is the kind of edit a Change applies.
type Op int

const (
	// OpSet replaces a scalar field (or, for configFiles, toggles).
	OpSet Op = iota
	// OpToggle flips membership of a value in configFiles.
	OpToggle
	// OpAdd inserts a value into configFiles when absent.
	OpAdd
)

// Change is one intended field edit.
type Change struct {
	Field Field
	Op    Op
	Value string
}

// Transition computes the next record from cur and ch. cur is never
// modified. Parent changes clear their dependents in the returned record:
//
//	projectDomain -> language, framework, packageManager
//	language      -> framework, packageManager
//
// An unknown field yields an unchanged copy; callers validate names with
// ParseField first.
func Transition(cur ProjectSpec, ch Change) ProjectSpec {
	next := cur.Clone()

	if ch.Field == FieldConfigFiles {
		switch ch.Op {
		case OpAdd:
			if !next.HasConfigFile(ch.Value) {
				next.ConfigFiles = append(next.ConfigFiles, ch.Value)
			}
		default:
			next.ConfigFiles = toggle(next.ConfigFiles, ch.Value)
		}
		return next
	}

	switch ch.Field {
	case FieldProjectDomain:
		next.ProjectDomain = ch.Value
		next.Language = ""
		next.Framework = ""
		next.PackageManager = ""
	case FieldLanguage:
		next.Language = ch.Value
		next.Framework = ""
		next.PackageManager = ""
	case FieldProjectType:
		next.ProjectType = ch.Value
	case FieldProjectScale:
		next.ProjectScale = ch.Value
	case FieldFramework:
		next.Framework = ch.Value
	case FieldPackageManager:
		next.PackageManager = ch.Value
	case FieldFeatureDescription:
		next.FeatureDescription = ch.Value
	case FieldTargetUsers:
		next.TargetUsers = ch.Value
	case FieldKeyFeatures:
		next.KeyFeatures = ch.Value
	}
	return next
}

// toggle removes value if present, otherwise appends it. The input slice
// is owned by the caller's fresh copy.
func toggle(files []string, value string) []string {
	for i, v := range files {
		if v == value {
			return append(files[:i], files[i+1:]...)
		}
	}
	return append(files, value)
}
