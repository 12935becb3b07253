package usecase

import "strings"

// countryAliases maps common native-language and long-form country names to
// the canonical value stored on the Lead, so downstream filtering and display
// stay consistent regardless of how the wizard user typed the country.
var countryAliases = map[string]string{
	"deutschland":                "Germany",
	"bundesrepublik deutschland": "Germany",
	"türkiye":                    "Turkey",
	"turkiye":                    "Turkey",
	"republic of turkey":         "Turkey",
	"österreich":                 "Austria",
	"oesterreich":                "Austria",
	"schweiz":                    "Switzerland",
	"suisse":                     "Switzerland",
	"svizzera":                   "Switzerland",
	"nederland":                  "Netherlands",
	"the netherlands":            "Netherlands",
	"holland":                    "Netherlands",
	"belgië":                     "Belgium",
	"belgique":                   "Belgium",
	"polska":                     "Poland",
	"españa":                     "Spain",
	"espana":                     "Spain",
	"italia":                     "Italy",
	"united states of america":   "United States",
	"usa":                        "United States",
	"uk":                         "United Kingdom",
	"great britain":              "United Kingdom",
}

// NormalizeCountry maps a submitted country name through the alias table.
// Unknown values pass through trimmed but otherwise untouched.
func NormalizeCountry(country string) string {
	trimmed := strings.TrimSpace(country)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := countryAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
