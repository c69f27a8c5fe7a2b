// Package catalog holds the static option taxonomy behind the project form.
//
// Domains map to languages, languages map to frameworks and package
// managers, and a few flat lists cover project type, scale and
// configuration files. Lookups are typed so an unknown key is caught by
// Validate at package init instead of silently yielding nothing at runtime.
//
// The free-text "Other" escape hatch is NOT part of any list. It is modeled
// by form.Other() and offered by the shells on every field where
// AllowsCustom reports true.
package catalog

import (
	"fmt"
	"strings"
)

// Domain is the top-level project domain.
type Domain string

const (
	DomainFrontend  Domain = "Frontend"
	DomainBackend   Domain = "Backend"
	DomainFullStack Domain = "Full-Stack"
)

// Language is a programming language offered for a domain.
type Language string

const (
	LangJavaScript Language = "JavaScript"
	LangTypeScript Language = "TypeScript"
	LangDart       Language = "Dart"
	LangSwift      Language = "Swift"
	LangKotlin     Language = "Kotlin"
	LangPython     Language = "Python"
	LangJava       Language = "Java"
	LangRust       Language = "Rust"
	LangGo         Language = "Go"
	LangCSharp     Language = "C#"
	LangPHP        Language = "PHP"
)

// Scale tiers. Architecture recommendations are keyed on these.
const (
	ScaleSmall      = "Small"
	ScaleMedium     = "Medium"
	ScaleLarge      = "Large"
	ScaleEnterprise = "Enterprise"
)

// sentinel is the literal the original form used for free-text entry.
// It must never appear in a catalog list.
const sentinel = "Other"

var domains = []Domain{DomainFrontend, DomainBackend, DomainFullStack}

var domainLanguages = map[Domain][]Language{
	DomainFrontend:  {LangJavaScript, LangTypeScript, LangDart, LangSwift, LangKotlin},
	DomainBackend:   {LangPython, LangJava, LangJavaScript, LangTypeScript, LangRust, LangGo, LangCSharp, LangPHP},
	DomainFullStack: {LangJavaScript, LangTypeScript, LangPython, LangJava, LangCSharp},
}

var languageFrameworks = map[Language][]string{
	LangJavaScript: {"React", "Vue", "Angular", "Express", "Next.js", "Nuxt.js"},
	LangTypeScript: {"React", "Vue", "Angular", "Express", "Next.js", "NestJS"},
	LangPython:     {"FastAPI", "Flask", "Django", "Streamlit"},
	LangJava:       {"Spring Boot", "Spring MVC", "Quarkus"},
	LangRust:       {"Actix", "Rocket", "Warp"},
	LangGo:         {"Gin", "Echo", "Fiber"},
	LangCSharp:     {".NET Core", "ASP.NET", "Blazor"},
	LangPHP:        {"Laravel", "Symfony", "CodeIgniter"},
	LangDart:       {"Flutter"},
	LangSwift:      {"SwiftUI", "UIKit"},
	LangKotlin:     {"Android SDK", "Ktor"},
}

var languagePackageManagers = map[Language][]string{
	LangJavaScript: {"npm", "yarn", "pnpm"},
	LangTypeScript: {"npm", "yarn", "pnpm"},
	LangPython:     {"pip", "uv", "poetry"},
	LangJava:       {"Maven", "Gradle"},
	LangRust:       {"Cargo"},
	LangGo:         {"Go Modules"},
	LangCSharp:     {"NuGet"},
	LangPHP:        {"Composer"},
	LangDart:       {"pub"},
	LangSwift:      {"Swift Package Manager"},
	LangKotlin:     {"Gradle", "Maven"},
}

var projectTypes = []string{"Web App", "Mobile App", "Desktop App", "API Service", "Library/Package"}

var projectScales = []string{ScaleSmall, ScaleMedium, ScaleLarge, ScaleEnterprise}

var configFiles = []string{
	"Dockerfile", "docker-compose.yml", "README.md", ".gitignore", "CI/CD Config",
	".env", "Makefile", "Helm chart", "Terraform",
}

func init() {
	if err := Validate(); err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
}

// Domains returns the selectable project domains.
func Domains() []Domain {
	return append([]Domain(nil), domains...)
}

// IsSentinel reports whether v is the literal "Other" entry the original
// form used to request free text. Surrounding space is ignored.
func IsSentinel(v string) bool {
	return strings.TrimSpace(v) == sentinel
}

// IsDomain reports whether v names a catalog domain.
func IsDomain(v string) bool {
	_, ok := domainLanguages[Domain(v)]
	return ok
}

// Languages returns the languages offered for a domain, or nil when the
// domain is empty or unknown.
func Languages(d Domain) []Language {
	return append([]Language(nil), domainLanguages[d]...)
}

// Frameworks returns the frameworks offered for a language. Custom
// languages have no catalog frameworks.
func Frameworks(l Language) []string {
	return append([]string(nil), languageFrameworks[l]...)
}

// PackageManagers returns the package managers offered for a language.
func PackageManagers(l Language) []string {
	return append([]string(nil), languagePackageManagers[l]...)
}

// ProjectTypes returns the project type options.
func ProjectTypes() []string { return append([]string(nil), projectTypes...) }

// ProjectScales returns the scale tiers.
func ProjectScales() []string { return append([]string(nil), projectScales...) }

// ConfigFiles returns the configuration file options.
func ConfigFiles() []string { return append([]string(nil), configFiles...) }

// Validate checks the taxonomy for internal consistency.
func Validate() error {
	seenDomains := make(map[Domain]bool, len(domains))
	for _, d := range domains {
		if seenDomains[d] {
			return fmt.Errorf("duplicate domain %q", d)
		}
		seenDomains[d] = true
		langs, ok := domainLanguages[d]
		if !ok || len(langs) == 0 {
			return fmt.Errorf("domain %q has no languages", d)
		}
		if err := checkList(string(d)+" languages", languageStrings(langs)); err != nil {
			return err
		}
		for _, l := range langs {
			if len(languageFrameworks[l]) == 0 {
				return fmt.Errorf("language %q (domain %q) has no frameworks", l, d)
			}
			if len(languagePackageManagers[l]) == 0 {
				return fmt.Errorf("language %q (domain %q) has no package managers", l, d)
			}
		}
	}
	if len(domainLanguages) != len(domains) {
		return fmt.Errorf("domain language table has %d entries, want %d", len(domainLanguages), len(domains))
	}

	for l, fws := range languageFrameworks {
		if err := checkList(string(l)+" frameworks", fws); err != nil {
			return err
		}
	}
	for l, pms := range languagePackageManagers {
		if err := checkList(string(l)+" package managers", pms); err != nil {
			return err
		}
	}

	if err := checkList("project types", projectTypes); err != nil {
		return err
	}
	if err := checkList("project scales", projectScales); err != nil {
		return err
	}
	return checkList("config files", configFiles)
}

func checkList(name string, values []string) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		switch {
		case v == "":
			return fmt.Errorf("%s: empty value", name)
		case v == sentinel:
			return fmt.Errorf("%s: %q must not be listed as an option", name, sentinel)
		case seen[v]:
			return fmt.Errorf("%s: duplicate value %q", name, v)
		}
		seen[v] = true
	}
	return nil
}

func languageStrings(langs []Language) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = string(l)
	}
	return out
}
