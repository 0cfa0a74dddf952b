// Package paper defines the core domain types for proceedings metadata.
package paper

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemaVersion is the current version of the record layout written to metadata JSON.
const SchemaVersion = 1

// Record represents one accepted paper and everything the pipeline knows about it.
//
// The top-level fields are the public archive fields. Bookkeeping used by the
// pipeline itself lives under Extra and is stripped from public output.
type Record struct {
	Title    string   `json:"title"`
	Authors  []string `json:"author"`
	Year     string   `json:"year"`
	DOI      string   `json:"doi,omitempty"`
	URL      string   `json:"url,omitempty"`
	Pages    string   `json:"pages,omitempty"` // Printed page range, "12-14"
	Abstract string   `json:"abstract"`
	ZenodoID int      `json:"zenodo_id,omitempty"`
	DBLPKey  string   `json:"dblp_key,omitempty"`
	EE       string   `json:"ee,omitempty"` // Electronic edition URL

	Extra *Extra `json:"extra,omitempty"`
}

// Extra holds internal bookkeeping fields.
type Extra struct {
	SchemaVersion int `json:"schema_version"`

	SubmissionID    int    `json:"submission_id"`
	SessionID       string `json:"session_id"`
	SessionPosition int    `json:"session_position"` // 1-based

	Email       map[string]string `json:"email"`       // Author display name -> email
	Affiliation map[string]string `json:"affiliation"` // Author display name -> affiliation
	Primary     string            `json:"primary_author,omitempty"`

	Takeaway         string   `json:"takeaway,omitempty"`
	SubjectPrimary   string   `json:"subject_area_primary,omitempty"`
	SubjectSecondary []string `json:"subject_area_secondary,omitempty"`

	NumPages     int    `json:"num_pages"`
	File         string `json:"file"`                 // Canonical file name, paper_042.pdf
	SplitFile    string `json:"split_file,omitempty"` // Assigned by the splitter, 000017.pdf
	OriginalFile string `json:"original_file"`
}

// ID returns the submission id, or 0 for records without bookkeeping.
func (r *Record) ID() int {
	if r.Extra == nil {
		return 0
	}
	return r.Extra.SubmissionID
}

// Public returns a copy of the record without internal bookkeeping.
func (r *Record) Public() Record {
	pub := *r
	pub.Authors = append([]string(nil), r.Authors...)
	pub.Extra = nil
	return pub
}

// Validate checks the invariants every loaded record must satisfy.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("missing title")
	}
	if r.Extra == nil {
		return fmt.Errorf("missing extra block")
	}
	x := r.Extra
	if x.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema_version %d (want %d)", x.SchemaVersion, SchemaVersion)
	}
	if x.SubmissionID <= 0 {
		return fmt.Errorf("invalid submission_id %d", x.SubmissionID)
	}
	if x.SessionID == "" {
		return fmt.Errorf("missing session_id")
	}
	if x.SessionPosition < 1 {
		return fmt.Errorf("invalid session_position %d", x.SessionPosition)
	}
	if x.NumPages < 1 {
		return fmt.Errorf("invalid num_pages %d", x.NumPages)
	}
	return nil
}

// PageRange is an inclusive range of printed page numbers.
type PageRange struct {
	First int
	Last  int
}

// String formats the range as "first-last".
func (p PageRange) String() string {
	return fmt.Sprintf("%d-%d", p.First, p.Last)
}

// Len returns the number of pages covered by the range.
func (p PageRange) Len() int {
	return p.Last - p.First + 1
}

// ParsePageRange parses a "first-last" string.
func ParsePageRange(s string) (PageRange, error) {
	first, last, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return PageRange{}, fmt.Errorf("invalid page range %q", s)
	}
	f, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return PageRange{}, fmt.Errorf("invalid page range %q: %w", s, err)
	}
	l, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil {
		return PageRange{}, fmt.Errorf("invalid page range %q: %w", s, err)
	}
	if l < f {
		return PageRange{}, fmt.Errorf("invalid page range %q: end before start", s)
	}
	return PageRange{First: f, Last: l}, nil
}
