package qc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoAttribution means the first page has no recognisable attribution line.
	ErrNoAttribution = errors.New("attribution not found on first page")
	// ErrNoAbstract means the abstract could not be delimited.
	ErrNoAbstract = errors.New("abstract not found on first page")
)

// PatternSet describes how to find metadata in first-page text. The
// attribution pattern captures authors then title; each abstract pattern
// captures the abstract in its first group and they are tried in order.
type PatternSet struct {
	Name        string   `yaml:"name"`
	Attribution string   `yaml:"attribution"`
	Abstract    []string `yaml:"abstract"`
}

// DefaultPatterns matches the license footer and section layout of the ISMIR
// paper template.
func DefaultPatterns() PatternSet {
	return PatternSet{
		Name:        "ismir",
		Attribution: `At(?:-\n)?tri(?:-\n)?bu(?:-\n)?tion:\W([^“]+),\W“([^”]+)”,?\W`,
		Abstract: []string{
			`(?s)ABSTRACT\W{2,}(.+)\W{2,}1\.\W+[A-Z]{5,}`,
			`(?s)ABSTRACT\W{2,}(.+)\W{2,}1\.?\W+Intro`,
		},
	}
}

// LoadPatterns reads a pattern set from a YAML file.
func LoadPatterns(path string) (PatternSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PatternSet{}, fmt.Errorf("reading patterns: %w", err)
	}
	var ps PatternSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return PatternSet{}, fmt.Errorf("parsing patterns %s: %w", path, err)
	}
	if ps.Name == "" {
		ps.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ps, nil
}

// Extractor applies a compiled pattern set.
type Extractor struct {
	attribution *regexp.Regexp
	abstract    []*regexp.Regexp
}

// Compile checks the pattern set and prepares it for use.
func (ps PatternSet) Compile() (*Extractor, error) {
	if ps.Attribution == "" {
		return nil, fmt.Errorf("pattern set %q: attribution pattern is required", ps.Name)
	}
	attr, err := regexp.Compile(ps.Attribution)
	if err != nil {
		return nil, fmt.Errorf("pattern set %q: attribution: %w", ps.Name, err)
	}
	if attr.NumSubexp() < 2 {
		return nil, fmt.Errorf("pattern set %q: attribution needs author and title groups", ps.Name)
	}

	ex := &Extractor{attribution: attr}
	for i, p := range ps.Abstract {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern set %q: abstract %d: %w", ps.Name, i+1, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("pattern set %q: abstract %d has no capture group", ps.Name, i+1)
		}
		ex.abstract = append(ex.abstract, re)
	}
	return ex, nil
}

// Extracted is the metadata recovered from a first page, cleaned up.
type Extracted struct {
	Authors  []string
	Title    string
	Abstract string
}

// Extract recovers authors, title and abstract from raw page text. A missing
// abstract returns the attribution fields with ErrNoAbstract.
func (ex *Extractor) Extract(raw string) (Extracted, error) {
	m := ex.attribution.FindStringSubmatch(raw)
	if m == nil {
		return Extracted{}, ErrNoAttribution
	}
	out := Extracted{
		Authors: splitAuthors(Cleanup(m[1])),
		Title:   Cleanup(m[2]),
	}

	for _, re := range ex.abstract {
		if am := re.FindStringSubmatch(raw); am != nil {
			out.Abstract = Cleanup(am[1])
			return out, nil
		}
	}
	return out, ErrNoAbstract
}

var cleanupReplacer = strings.NewReplacer("-\n", "", "\n", " ", "ﬁ", "fi", "ﬂ", "fl")

// Cleanup joins hyphenated line wraps, unfolds lines, expands ligatures and
// collapses double spaces.
func Cleanup(text string) string {
	text = cleanupReplacer.Replace(strings.TrimSpace(text))
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	return text
}

// splitAuthors splits "A, B, and C" or "A and B".
func splitAuthors(s string) []string {
	var out []string
	for _, n := range strings.Split(strings.ReplaceAll(s, " and ", ","), ",") {
		if n = strings.TrimSpace(n); n != "" && n != "and" {
			out = append(out, n)
		}
	}
	return out
}
