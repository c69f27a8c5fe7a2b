// Package prompt renders a form.ProjectSpec as text.
//
// Every function here is pure: the output depends only on the record
// passed in, so rendering on every read is always current.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/HendryAvila/promptforge/internal/catalog"
	"github.com/HendryAvila/promptforge/internal/form"
)

// Placeholder is the summary for a record with nothing meaningful set.
const Placeholder = "Fill out the form to generate your project prompt."

// Document headings.
const (
	headingTitle        = "# Project Specification"
	headingOverview     = "## Product Overview"
	headingUsers        = "## Target Users & Problem"
	headingFeatures     = "## Key Features & Success Metrics"
	headingTechnical    = "## Technical Requirements"
	headingArchitecture = "## Architecture Recommendations"
)

var architecture = map[string][]string{
	catalog.ScaleSmall: {
		"Monolithic architecture recommended",
		"Single database",
		"Simple deployment strategy",
	},
	catalog.ScaleMedium: {
		"Modular monolith or simple microservices",
		"Consider database separation by domain",
		"Container-based deployment",
	},
	catalog.ScaleLarge: {
		"Microservices architecture",
		"Event-driven communication",
		"Multiple specialized databases",
		"Orchestrated deployment",
	},
	catalog.ScaleEnterprise: {
		"Distributed microservices with service mesh",
		"Event sourcing and CQRS patterns",
		"Multi-region deployment",
		"Comprehensive monitoring and observability",
	},
}

// ArchitectureRecommendations returns the bullet text for a scale tier, or
// nil for an empty or custom scale.
func ArchitectureRecommendations(scale string) []string {
	recs, ok := architecture[scale]
	if !ok {
		return nil
	}
	return append([]string(nil), recs...)
}

// SummarySentence builds the one-line role statement that opens every
// prompt.
func SummarySentence(spec form.ProjectSpec) string {
	if spec.ProjectDomain == "" && spec.ProjectType == "" && spec.Language == "" {
		return Placeholder
	}

	var clauses []string
	if spec.ProjectDomain != "" {
		clauses = append(clauses, "You are an expert "+strings.ToLower(spec.ProjectDomain)+" developer")
	}
	if spec.Language != "" {
		clauses = append(clauses, "specializing in "+spec.Language)
	}
	if spec.ProjectType != "" {
		clauses = append(clauses, "building "+article(spec.ProjectType)+" "+spec.ProjectType)
	}
	if spec.Framework != "" {
		clauses = append(clauses, "using the "+spec.Framework+" framework")
	}
	if spec.PackageManager != "" {
		clauses = append(clauses, "managing dependencies with "+spec.PackageManager)
	}
	if spec.ProjectScale != "" {
		clauses = append(clauses, "designed for "+strings.ToLower(spec.ProjectScale)+" scale")
	}
	if len(spec.ConfigFiles) > 0 {
		clauses = append(clauses, "with configuration files: "+strings.Join(spec.ConfigFiles, ", "))
	}

	s := capitalize(strings.Join(clauses, ", "))
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

// Document renders the full markdown prompt. Sections are separated by a
// single blank line.
func Document(spec form.ProjectSpec) string {
	sections := []string{SummarySentence(spec), headingTitle}

	if spec.FeatureDescription != "" {
		sections = append(sections, headingOverview+"\n"+spec.FeatureDescription)
	}
	if spec.TargetUsers != "" {
		sections = append(sections, headingUsers+"\n"+spec.TargetUsers)
	}
	if spec.KeyFeatures != "" {
		sections = append(sections, headingFeatures+"\n"+spec.KeyFeatures)
	}

	if bullets := technicalBullets(spec); len(bullets) > 0 {
		sections = append(sections, headingTechnical+"\n\n"+strings.Join(bullets, "\n"))
	} else {
		sections = append(sections, headingTechnical)
	}

	if recs := ArchitectureRecommendations(spec.ProjectScale); len(recs) > 0 {
		sections = append(sections, headingArchitecture+"\n\n"+bulletList(recs))
	}
	return strings.Join(sections, "\n\n")
}

func technicalBullets(spec form.ProjectSpec) []string {
	rows := []struct{ label, value string }{
		{"Domain", spec.ProjectDomain},
		{"Type", spec.ProjectType},
		{"Scale", spec.ProjectScale},
		{"Language", spec.Language},
		{"Framework", spec.Framework},
		{"Package Manager", spec.PackageManager},
		{"Configuration Files", strings.Join(spec.ConfigFiles, ", ")},
	}
	var out []string
	for _, r := range rows {
		if r.value != "" {
			out = append(out, fmt.Sprintf("- **%s**: %s", r.label, r.value))
		}
	}
	return out
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

// Record is the structured rendering. Every key is always present.
type Record struct {
	PromptSummary string       `json:"promptSummary"`
	Project       Project      `json:"project"`
	Technical     Technical    `json:"technical"`
	Requirements  Requirements `json:"requirements"`
}

// Project is the project section of a Record.
type Project struct {
	Domain      string `json:"domain"`
	Type        string `json:"type"`
	Scale       string `json:"scale"`
	Description string `json:"description"`
}

// Technical is the technical section of a Record.
type Technical struct {
	Language       string   `json:"language"`
	Framework      string   `json:"framework"`
	PackageManager string   `json:"packageManager"`
	ConfigFiles    []string `json:"configFiles"`
}

// Requirements holds the free-text requirement fields of a Record.
type Requirements struct {
	TargetUsers string `json:"targetUsers"`
	KeyFeatures string `json:"keyFeatures"`
}

// Structured maps the record field by field. configFiles is never nil.
func Structured(spec form.ProjectSpec) Record {
	spec = spec.Clone()
	return Record{
		PromptSummary: SummarySentence(spec),
		Project: Project{
			Domain:      spec.ProjectDomain,
			Type:        spec.ProjectType,
			Scale:       spec.ProjectScale,
			Description: spec.FeatureDescription,
		},
		Technical: Technical{
			Language:       spec.Language,
			Framework:      spec.Framework,
			PackageManager: spec.PackageManager,
			ConfigFiles:    spec.ConfigFiles,
		},
		Requirements: Requirements{
			TargetUsers: spec.TargetUsers,
			KeyFeatures: spec.KeyFeatures,
		},
	}
}

// StructuredJSON pretty-prints Structured with two-space indentation.
// HTML characters are left as typed.
func StructuredJSON(spec form.ProjectSpec) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Structured(spec)); err != nil {
		return "", fmt.Errorf("encoding structured prompt: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// article picks "a" or "an" from the first letter of noun.
func article(noun string) string {
	r, _ := utf8.DecodeRuneInString(noun)
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return "an"
	}
	return "a"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
