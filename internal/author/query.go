// Package author parses and normalises author names as they appear in
// submission exports, and matches them against search queries.
package author

import (
	"strings"
)

// Query represents a parsed author search query.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author search string into a structured Query.
//
// Supported formats:
//   - "Doe"        → last="Doe"
//   - "Jane Doe"   → first="Jane", last="Doe"
//   - "Doe, Jane"  → first="Jane", last="Doe"
func ParseQuery(input string) Query {
	n := ParseName(input)
	return Query{First: n.First, Last: n.Last}
}

// Matches checks if the query matches an author display name.
//
// The last name must match exactly, ignoring case and accents. The first
// name, when given, is a case-insensitive prefix match, so "Jan Doe" matches
// "Jane Q. Doe" while "Do" never matches "Doe".
func (q Query) Matches(display string) bool {
	n := ParseName(display)
	if Fold(q.Last) != Fold(n.Last) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(Fold(n.First), Fold(q.First))
}

// MatchesAny checks if the query matches any author in the list.
func (q Query) MatchesAny(authors []string) bool {
	for _, a := range authors {
		if q.Matches(a) {
			return true
		}
	}
	return false
}

// AllMatch checks if all queries match at least one author each.
func AllMatch(queries []Query, authors []string) bool {
	for _, q := range queries {
		if !q.MatchesAny(authors) {
			return false
		}
	}
	return true
}
