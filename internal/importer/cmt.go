// Package importer reads submission exports from the paper management
// platform (Microsoft CMT) into typed rows.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/matsen/proceedings/internal/diag"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Schema maps row fields to CSV column names. Empty names mean the export
// does not carry that field.
type Schema struct {
	Name string

	ID       string
	Title    string
	Abstract string

	AuthorNames   string // "Last, First*; Last, First"
	AuthorEmails  string // "a@x.org*; b@y.org"
	AuthorDetails string // "First Last (Affiliation)*; ..."

	Takeaway          string
	PrimarySubject    string
	SecondarySubjects string

	Session  string
	Position string // Empty when the position is part of Session or implied by row order
	// Composite sessions are written "<session>:<position>" in the Session column.
	Composite bool
	// SessionPrefix is prepended to session values, for exports that only carry a set number.
	SessionPrefix string

	TitleChecked string
}

// Presets are the column layouts used by past CMT exports.
var Presets = map[string]Schema{
	"cmt": {
		Name:              "cmt",
		ID:                "PaperID",
		Title:             "Title",
		Abstract:          "Abstract",
		AuthorNames:       "AuthorNames",
		AuthorEmails:      "AuthorEmails",
		AuthorDetails:     "AuthorDetails",
		Takeaway:          "OneLiner",
		PrimarySubject:    "PrimarySubjectArea",
		SecondarySubjects: "SecondarySubjectAreas",
		Session:           "SessionID",
		Composite:         true,
		TitleChecked:      "TitleChecked",
	},
	"cmt2022": {
		Name:              "cmt2022",
		ID:                "PaperID",
		Title:             "Title",
		Abstract:          "Abstract",
		AuthorNames:       "AuthorNames",
		AuthorEmails:      "AuthorEmails",
		AuthorDetails:     "AuthorDetails",
		Takeaway:          "OneLiner",
		PrimarySubject:    "PrimarySubjectArea",
		SecondarySubjects: "SecondarySubjectAreas",
		Session:           "SessionID",
		Position:          "SessionPosition",
		TitleChecked:      "TitleChecked",
	},
	"cmt2020": {
		Name:          "cmt2020",
		ID:            "Paper ID",
		Title:         "Paper Title",
		Abstract:      "Abstract",
		AuthorDetails: "Authors",
		Takeaway:      "Q1 (Main message)",
		Session:       "Set",
		SessionPrefix: "Session ",
	},
}

// SchemaByName returns a preset schema.
func SchemaByName(name string) (Schema, error) {
	s, ok := Presets[name]
	if !ok {
		names := make([]string, 0, len(Presets))
		for n := range Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Schema{}, fmt.Errorf("unknown CSV schema %q (available: %s)", name, strings.Join(names, ", "))
	}
	return s, nil
}

// required returns the columns that must be present in the header.
func (s Schema) required() []string {
	cols := []string{s.ID, s.Title, s.Abstract, s.Session, s.Position, s.AuthorNames, s.AuthorEmails, s.AuthorDetails}
	out := cols[:0]
	for _, c := range cols {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (s Schema) optional() []string {
	cols := []string{s.Takeaway, s.PrimarySubject, s.SecondarySubjects}
	out := cols[:0]
	for _, c := range cols {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// checkedColumn names the title-checked column, which exports without one
// gain from RewriteTitles.
func (s Schema) checkedColumn() string {
	if s.TitleChecked == "" {
		return "TitleChecked"
	}
	return s.TitleChecked
}

// MissingColumnError reports a required column absent from the header.
type MissingColumnError struct {
	Column string
	Schema string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("CSV is missing column %q required by schema %s", e.Column, e.Schema)
}

// ParseError reports a cell that could not be interpreted.
type ParseError struct {
	Row    int // 1-based data row
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrEmptyCSV is returned for input without a header row.
var ErrEmptyCSV = errors.New("CSV has no header row")

// Row is one submission as exported, with composite cells left raw.
type Row struct {
	Line int // 1-based data row

	ID           int
	Title        string
	TitleChecked bool
	Abstract     string

	AuthorNames   string
	AuthorEmails  string
	AuthorDetails string

	Takeaway          string
	PrimarySubject    string
	SecondarySubjects string

	Session  string
	Position int
}

// ReadCMT reads an export, validating the header against schema before any
// row is decoded.
func ReadCMT(r io.Reader, schema Schema, d *diag.Collector) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	header, err := gocsv.DefaultCSVReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return nil, ErrEmptyCSV
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range schema.required() {
		if !present[col] {
			return nil, &MissingColumnError{Column: col, Schema: schema.Name}
		}
	}
	for _, col := range schema.optional() {
		if !present[col] {
			d.Warn(diag.MetadataMissing, col, "CSV has no %q column; the field stays empty", col)
		}
	}

	maps, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding CSV: %w", err)
	}

	rows := make([]Row, 0, len(maps))
	nextPosition := make(map[string]int)
	for i, m := range maps {
		row, err := schema.decode(i+1, m)
		if err != nil {
			return nil, err
		}
		if schema.Position == "" && !schema.Composite {
			nextPosition[row.Session]++
			row.Position = nextPosition[row.Session]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s Schema) decode(line int, m map[string]string) (Row, error) {
	get := func(col string) string {
		if col == "" {
			return ""
		}
		return strings.TrimSpace(m[col])
	}

	row := Row{
		Line:              line,
		Title:             get(s.Title),
		TitleChecked:      truthy(get(s.checkedColumn())),
		Abstract:          get(s.Abstract),
		AuthorNames:       get(s.AuthorNames),
		AuthorEmails:      get(s.AuthorEmails),
		AuthorDetails:     get(s.AuthorDetails),
		Takeaway:          get(s.Takeaway),
		PrimarySubject:    get(s.PrimarySubject),
		SecondarySubjects: get(s.SecondarySubjects),
	}

	idStr := get(s.ID)
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return Row{}, &ParseError{Row: line, Column: s.ID, Value: idStr, Err: err}
	}
	if id <= 0 {
		return Row{}, &ParseError{Row: line, Column: s.ID, Value: idStr, Err: errors.New("id must be positive")}
	}
	row.ID = id

	session := get(s.Session)
	switch {
	case s.Composite:
		i := strings.LastIndex(session, ":")
		if i <= 0 {
			return Row{}, &ParseError{Row: line, Column: s.Session, Value: session, Err: errors.New(`want "<session>:<position>"`)}
		}
		pos, err := strconv.Atoi(strings.TrimSpace(session[i+1:]))
		if err != nil {
			return Row{}, &ParseError{Row: line, Column: s.Session, Value: session, Err: err}
		}
		row.Session = strings.TrimSpace(session[:i])
		row.Position = pos
	case s.Position != "":
		posStr := get(s.Position)
		pos, err := strconv.Atoi(posStr)
		if err != nil {
			return Row{}, &ParseError{Row: line, Column: s.Position, Value: posStr, Err: err}
		}
		row.Session = session
		row.Position = pos
	default:
		row.Session = session
	}
	if row.Session == "" {
		return Row{}, &ParseError{Row: line, Column: s.Session, Value: session, Err: errors.New("empty session")}
	}
	row.Session = s.SessionPrefix + row.Session

	if s.Composite || s.Position != "" {
		if row.Position < 1 {
			return Row{}, &ParseError{Row: line, Column: s.Session, Value: session, Err: errors.New("position must be at least 1")}
		}
	}
	return row, nil
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "x", "y", "yes", "true", "checked":
		return true
	}
	return false
}
