// Package scope defines the named aggregation scopes and their window keys.
//
// A scope is a time-window/mode filter over stat submissions: day, week and
// month are rolling UTC calendar windows, lifetime is the unbounded union,
// and solo/squad filter by play mode with no time predicate.
package scope

import (
	"fmt"
	"strings"
	"time"
)

// Name identifies one of the six aggregation scopes.
type Name string

// The full scope set.
const (
	Day      Name = "day"
	Week     Name = "week"
	Month    Name = "month"
	Lifetime Name = "lifetime"
	Solo     Name = "solo"
	Squad    Name = "squad"
)

// All returns every scope name in canonical order.
func All() []Name {
	return []Name{Day, Week, Month, Lifetime, Solo, Squad}
}

// Identity returns the identity-bearing scopes used to locate a viewer's own
// row for snapshot purposes.
func Identity() []Name {
	return []Name{Solo, Month, Lifetime}
}

// Parse validates a scope name string.
func Parse(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	switch n {
	case Day, Week, Month, Lifetime, Solo, Squad:
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// ParseList parses a comma-separated scope list, rejecting unknown names and
// collapsing duplicates while preserving first-seen order.
func ParseList(s string) ([]Name, error) {
	parts := strings.Split(s, ",")
	seen := make(map[Name]bool, len(parts))
	names := make([]Name, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		n, err := Parse(p)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	if len(names) == 0 {
		return nil, ErrEmptyScopeList
	}
	return names, nil
}

// Scope is a fully resolved scope: a name plus the reference instant used to
// compute rolling window keys. The reference is normally "now" but callers
// may pin it to an explicit month/year so that "current" is unambiguous from
// their perspective.
type Scope struct {
	Name Name
	Ref  time.Time
}

// New resolves a scope name against a reference instant.
func New(name Name, ref time.Time) Scope {
	return Scope{Name: name, Ref: ref.UTC()}
}

// WindowKey returns the window bucket key for the scope's reference instant:
// the UTC calendar day, the ISO week of the year, the UTC calendar month, or
// the scope name itself for unbounded scopes.
func (s Scope) WindowKey() string {
	switch s.Name {
	case Day:
		return s.Ref.Format("2006-01-02")
	case Week:
		year, week := s.Ref.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return s.Ref.Format("2006-01")
	default:
		return string(s.Name)
	}
}

// Mode returns the play-mode filter for mode scopes, or "" for time scopes.
func (s Scope) Mode() string {
	switch s.Name {
	case Solo, Squad:
		return string(s.Name)
	default:
		return ""
	}
}

// IsIdentityBearing reports whether the scope participates in snapshot
// matching.
func (n Name) IsIdentityBearing() bool {
	switch n {
	case Solo, Month, Lifetime:
		return true
	default:
		return false
	}
}
