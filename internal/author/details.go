package author

import (
	"strings"

	"github.com/matsen/proceedings/internal/diag"
)

// Entry is one author parsed from a "Name (Affiliation)*" list.
type Entry struct {
	Name        string // Normalised display name
	Affiliation string
	Primary     bool // Marked with a trailing '*'
}

// ParseDetails parses a semicolon-separated list of "Name (Affiliation)"
// entries. The affiliation runs from the first '(' to the last ')' of the
// entry so that nested parentheses survive. Semicolons inside parentheses do
// not split entries.
func ParseDetails(field string, d *diag.Collector) []Entry {
	var entries []Entry
	for _, raw := range splitTopLevel(field, ';') {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		var e Entry
		name := raw
		if open := strings.Index(raw, "("); open >= 0 {
			name = raw[:open]
			rest := raw[open+1:]
			if end := strings.LastIndex(rest, ")"); end >= 0 {
				e.Affiliation = strings.TrimSpace(rest[:end])
				e.Primary = strings.Contains(rest[end+1:], "*")
			} else {
				e.Affiliation = strings.TrimSpace(rest)
			}
		}
		if strings.Contains(name, "*") {
			e.Primary = true
		}
		e.Name = NormalizeName(name, d)
		entries = append(entries, e)
	}
	return entries
}

// SplitNames parses a semicolon-separated list of bare author names.
func SplitNames(field string, d *diag.Collector) []string {
	var names []string
	for _, raw := range strings.Split(field, ";") {
		if n := NormalizeName(raw, d); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// SplitList splits a semicolon-separated list, trimming and dropping blanks.
func SplitList(field string) []string {
	var out []string
	for _, v := range strings.Split(field, ";") {
		v = strings.TrimSpace(strings.ReplaceAll(v, "*", ""))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Names returns the display names of entries in order.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
