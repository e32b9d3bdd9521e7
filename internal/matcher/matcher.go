// Package matcher finds canned issues for a free-text description without
// consulting the oracle.
package matcher

import (
	"strings"
	"unicode"

	"github.com/tjfontaine/autodiag/internal/domain"
)

// Mode says which rule produced a match.
type Mode string

const (
	// ModeNone means nothing matched and the caller should escalate to the
	// oracle's free-text analysis.
	ModeNone Mode = "none"
	// ModeSubstring means the whole query is contained in a description,
	// keyword or category.
	ModeSubstring Mode = "substring"
	// ModeTerms means no field contained the query, but keywords or
	// categories occur as whole words inside the query.
	ModeTerms Mode = "terms"
)

// Result is the outcome of a search against a working set.
type Result struct {
	// Matches are all matching issues in catalog order.
	Matches []domain.Issue
	// New are the matches whose id is not already in the working set.
	New  []domain.Issue
	Mode Mode
}

// Escalate reports whether nothing matched.
func (r Result) Escalate() bool {
	return len(r.Matches) == 0
}

// Match returns every issue whose lower-cased description, any keyword, or
// category contains the lower-cased query. Duplicates in issues are kept.
// An empty query matches nothing.
func Match(query string, issues []domain.Issue) []domain.Issue {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []domain.Issue
	for _, issue := range issues {
		if containsQuery(issue, q) {
			out = append(out, issue)
		}
	}
	return out
}

func containsQuery(issue domain.Issue, q string) bool {
	if strings.Contains(strings.ToLower(issue.Description), q) {
		return true
	}
	for _, kw := range issue.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(issue.Category), q)
}

// MatchTerms scores issues by how many distinct keywords and categories occur
// as whole-word phrases in the query and returns the best scoring ones.
func MatchTerms(query string, issues []domain.Issue) []domain.Issue {
	words := tokenize(query)
	if len(words) == 0 {
		return nil
	}

	best := 0
	scores := make([]int, len(issues))
	for i, issue := range issues {
		seen := make(map[string]bool)
		phrases := append([]string{issue.Category}, issue.Keywords...)
		for _, p := range phrases {
			key := strings.ToLower(p)
			if seen[key] {
				continue
			}
			if containsPhrase(words, tokenize(p)) {
				seen[key] = true
				scores[i]++
			}
		}
		if scores[i] > best {
			best = scores[i]
		}
	}
	if best == 0 {
		return nil
	}

	var out []domain.Issue
	for i, issue := range issues {
		if scores[i] == best {
			out = append(out, issue)
		}
	}
	return out
}

// Search matches query against issues and filters out those already present
// in existing. Term matching is only tried when substring matching finds
// nothing.
func Search(query string, issues, existing []domain.Issue) Result {
	res := Result{Mode: ModeSubstring, Matches: Match(query, issues)}
	if len(res.Matches) == 0 {
		res.Mode = ModeTerms
		res.Matches = MatchTerms(query, issues)
	}
	if len(res.Matches) == 0 {
		return Result{Mode: ModeNone}
	}
	res.New = Exclude(res.Matches, existing)
	return res
}

// Exclude drops issues whose id appears in existing.
func Exclude(issues, existing []domain.Issue) []domain.Issue {
	ids := make(map[string]bool, len(existing))
	for _, e := range existing {
		ids[e.ID] = true
	}
	var out []domain.Issue
	for _, issue := range issues {
		if !ids[issue.ID] {
			out = append(out, issue)
		}
	}
	return out
}

// tokenize lower-cases s, drops apostrophes and splits on anything that is
// not a letter or digit.
func tokenize(s string) []string {
	s = strings.ToLower(strings.ReplaceAll(s, "'", ""))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}

// FilterSymptoms returns the symptoms whose description or category contains
// query, restricted to category unless it is empty or "all".
func FilterSymptoms(symptoms []domain.Symptom, query, category string) []domain.Symptom {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []domain.Symptom{}
	for _, s := range symptoms {
		if category != "" && category != "all" && s.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Description), q) &&
			!strings.Contains(strings.ToLower(s.Category), q) {
			continue
		}
		out = append(out, s)
	}
	return out
}
