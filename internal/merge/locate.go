package merge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Layout names the directory structure that submitted PDFs are stored in.
type Layout string

const (
	LayoutCameraReady Layout = "camera-ready" // <dir>/<id>/CameraReady/*.pdf
	LayoutExact       Layout = "exact"        // <dir>/<id>.pdf
	LayoutPrefixed    Layout = "prefixed"     // <dir>/paper_<id>*.pdf or <dir>/<id>_*.pdf
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case LayoutCameraReady, LayoutExact, LayoutPrefixed:
		return l, nil
	}
	return "", fmt.Errorf("unknown file layout %q (want camera-ready, exact or prefixed)", s)
}

// Sentinel errors for file matching.
var (
	ErrPaperNotFound  = errors.New("no PDF found for paper")
	ErrAmbiguousMatch = errors.New("more than one PDF matches paper")
)

// MatchError reports a failed file match for one paper.
type MatchError struct {
	ID         int
	Candidates []string
	Err        error // ErrPaperNotFound or ErrAmbiguousMatch
}

func (e *MatchError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("paper %d: %v: %s", e.ID, e.Err, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("paper %d: %v", e.ID, e.Err)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// Locator finds the submitted PDF of a paper on disk.
type Locator struct {
	Dir    string
	Layout Layout
}

// Find returns the single PDF belonging to paper id.
func (l Locator) Find(id int) (string, error) {
	candidates, err := l.candidates(id)
	if err != nil {
		return "", err
	}
	switch len(candidates) {
	case 0:
		return "", &MatchError{ID: id, Err: ErrPaperNotFound}
	case 1:
		return candidates[0], nil
	default:
		return "", &MatchError{ID: id, Candidates: candidates, Err: ErrAmbiguousMatch}
	}
}

func (l Locator) candidates(id int) ([]string, error) {
	switch l.Layout {
	case LayoutCameraReady, "":
		matches, err := filepath.Glob(filepath.Join(l.Dir, strconv.Itoa(id), "CameraReady", "*.pdf"))
		if err != nil {
			return nil, fmt.Errorf("searching for paper %d: %w", id, err)
		}
		sort.Strings(matches)
		return matches, nil

	case LayoutExact:
		path := filepath.Join(l.Dir, strconv.Itoa(id)+".pdf")
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		return []string{path}, nil

	case LayoutPrefixed:
		entries, err := os.ReadDir(l.Dir)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.Dir, err)
		}
		var matches []string
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pdf") || strings.Contains(strings.ToLower(name), "old") {
				continue
			}
			if n, ok := leadingID(name); ok && n == id {
				matches = append(matches, filepath.Join(l.Dir, name))
			}
		}
		return matches, nil
	}
	return nil, fmt.Errorf("unknown file layout %q", l.Layout)
}

// leadingID parses the number at the start of a file name, after an optional
// "paper_" prefix.
func leadingID(name string) (int, bool) {
	name = strings.TrimPrefix(strings.ToLower(name), "paper_")
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:end])
	return n, err == nil
}
