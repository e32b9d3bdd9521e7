package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity ranks how serious an issue or trouble code is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rank returns 1..4 for known severities and 0 otherwise.
func (s Severity) Rank() int {
	return rankOf(string(s))
}

// Color returns the display colour used for the severity badge.
func (s Severity) Color() string {
	return colorOf(s.Rank())
}

// UnmarshalJSON accepts any casing of a known severity.
func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Urgency is the canonical four level urgency scale of a diagnosis. It shares
// its vocabulary with Severity.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// legacyUrgency maps the routine/priority/immediate/safety_critical
// vocabulary onto the canonical scale.
var legacyUrgency = map[string]Urgency{
	"routine":         UrgencyLow,
	"priority":        UrgencyMedium,
	"immediate":       UrgencyHigh,
	"safety_critical": UrgencyCritical,
	"safety-critical": UrgencyCritical,
}

// ParseUrgency accepts both urgency vocabularies and returns the canonical
// value.
func ParseUrgency(s string) (Urgency, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch u := Urgency(norm); u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return u, nil
	}
	if u, ok := legacyUrgency[norm]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

// Rank returns 1..4 for known urgencies and 0 otherwise.
func (u Urgency) Rank() int {
	return rankOf(string(u))
}

// Color returns the display colour used for the urgency badge.
func (u Urgency) Color() string {
	return colorOf(u.Rank())
}

// UnmarshalJSON decodes either vocabulary onto the canonical scale.
func (u *Urgency) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseUrgency(raw)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func rankOf(s string) int {
	switch s {
	case "low":
		return 1
	case "medium":
		return 2
	case "high":
		return 3
	case "critical":
		return 4
	}
	return 0
}

func colorOf(rank int) string {
	switch rank {
	case 1:
		return "green"
	case 2:
		return "yellow"
	case 3:
		return "orange"
	case 4:
		return "red"
	}
	return "gray"
}
