// Package catalog holds the static reference data: canned issues, the symptom
// checklist, diagnostic trouble codes and vehicle make/model options.
//
// Accessors return copies so callers may mutate what they get back.
package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// MinModelYear is the earliest model year offered by the vehicle form.
const MinModelYear = 1990

// Issues returns the canned issue table in catalog order.
func Issues() []domain.Issue {
	out := make([]domain.Issue, len(commonIssues))
	for i, issue := range commonIssues {
		issue.CommonCauses = slices.Clone(issue.CommonCauses)
		issue.Keywords = slices.Clone(issue.Keywords)
		out[i] = issue
	}
	return out
}

// Symptoms returns a fresh, fully unselected symptom checklist.
func Symptoms() []domain.Symptom {
	return slices.Clone(commonSymptoms)
}

// SymptomCategories returns the distinct symptom categories in checklist order.
func SymptomCategories() []string {
	var cats []string
	seen := make(map[string]bool)
	for _, s := range commonSymptoms {
		if !seen[s.Category] {
			seen[s.Category] = true
			cats = append(cats, s.Category)
		}
	}
	return cats
}

// Codes returns all known trouble codes sorted by code.
func Codes() []domain.DiagnosticCode {
	out := make([]domain.DiagnosticCode, 0, len(commonCodes))
	for _, c := range commonCodes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// LookupCode finds a trouble code case-insensitively.
func LookupCode(code string) (domain.DiagnosticCode, bool) {
	c, ok := commonCodes[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Makes returns the supported vehicle makes in alphabetical order.
func Makes() []string {
	makes := make([]string, 0, len(vehicleModels))
	for m := range vehicleModels {
		makes = append(makes, m)
	}
	sort.Strings(makes)
	return makes
}

// Models returns the known models of a make, or nil for an unknown make.
func Models(vehicleMake string) []string {
	return slices.Clone(vehicleModels[vehicleMake])
}

// ModelYears returns the selectable years, newest first, down to MinModelYear.
func ModelYears(current int) []int {
	if current < MinModelYear {
		return nil
	}
	years := make([]int, 0, current-MinModelYear+1)
	for y := current; y >= MinModelYear; y-- {
		years = append(years, y)
	}
	return years
}
