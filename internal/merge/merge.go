// Package merge turns exported submission rows into paper records, matching
// each paper to its PDF on disk and deriving the session order.
package merge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/matsen/proceedings/internal/author"
	"github.com/matsen/proceedings/internal/diag"
	"github.com/matsen/proceedings/internal/importer"
	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/titlecase"
)

// DefaultFileFormat names canonical paper files by submission id.
const DefaultFileFormat = "paper_%03d.pdf"

// PageCounter reports the number of pages in a PDF file.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// Options configures a merge run.
type Options struct {
	Year       string
	Schema     importer.Schema
	Locator    Locator
	Sessions   *paper.SessionFile // nil infers the order from the data
	Titlecase  bool               // Apply smart title case to unchecked titles
	Exclude    []int              // Submission ids left out of the proceedings
	FileFormat string
}

// Result is the outcome of a merge.
type Result struct {
	Records []*paper.Record
	Order   paper.SessionOrder
}

// Merge builds records from rows in row order and derives the session order.
func Merge(rows []importer.Row, opts Options, counter PageCounter, d *diag.Collector) (*Result, error) {
	if opts.FileFormat == "" {
		opts.FileFormat = DefaultFileFormat
	}
	excluded := make(map[int]bool, len(opts.Exclude))
	for _, id := range opts.Exclude {
		excluded[id] = true
	}

	var records []*paper.Record
	seenID := make(map[int]int)
	seenSlot := make(map[string]int)
	for _, row := range rows {
		if excluded[row.ID] {
			slog.Info("excluding paper", "id", row.ID, "title", row.Title)
			continue
		}
		if line, dup := seenID[row.ID]; dup {
			return nil, fmt.Errorf("paper %d appears on rows %d and %d", row.ID, line, row.Line)
		}
		seenID[row.ID] = row.Line

		slot := fmt.Sprintf("%s\x00%d", row.Session, row.Position)
		if other, dup := seenSlot[slot]; dup {
			return nil, fmt.Errorf("papers %d and %d both claim position %d of session %q", other, row.ID, row.Position, row.Session)
		}
		seenSlot[slot] = row.ID

		r, err := buildRecord(row, opts, d)
		if err != nil {
			return nil, err
		}
		if err := attachFile(r, opts.Locator, counter); err != nil {
			return nil, err
		}
		slog.Debug("merged paper", "id", row.ID, "pages", r.Extra.NumPages, "file", r.Extra.OriginalFile)
		records = append(records, r)
	}

	order, err := sessionOrder(records, opts.Sessions)
	if err != nil {
		return nil, err
	}
	return &Result{Records: records, Order: order}, nil
}

func buildRecord(row importer.Row, opts Options, d *diag.Collector) (*paper.Record, error) {
	title := row.Title
	if opts.Titlecase && !row.TitleChecked {
		title = titlecase.Smart(title, d)
	}

	details := author.ParseDetails(row.AuthorDetails, d)
	names := author.SplitNames(row.AuthorNames, d)
	if len(names) == 0 {
		names = author.Names(details)
	}
	if len(names) == 0 {
		return nil, &importer.ParseError{Row: row.Line, Column: opts.Schema.AuthorDetails, Value: row.AuthorDetails,
			Err: fmt.Errorf("no authors")}
	}
	if len(details) > 0 && len(details) != len(names) {
		d.Warn(diag.AuthorMismatch, row.Title, "paper %d lists %d author names but %d affiliation entries",
			row.ID, len(names), len(details))
	}

	emails := author.SplitList(row.AuthorEmails)
	if len(emails) > 0 && len(emails) != len(names) {
		return nil, &importer.ParseError{Row: row.Line, Column: opts.Schema.AuthorEmails, Value: row.AuthorEmails,
			Err: fmt.Errorf("%d emails for %d authors", len(emails), len(names))}
	}

	x := &paper.Extra{
		SchemaVersion:    paper.SchemaVersion,
		SubmissionID:     row.ID,
		SessionID:        row.Session,
		SessionPosition:  row.Position,
		Email:            make(map[string]string, len(names)),
		Affiliation:      make(map[string]string, len(names)),
		Takeaway:         row.Takeaway,
		SubjectPrimary:   row.PrimarySubject,
		SubjectSecondary: author.SplitList(row.SecondarySubjects),
		File:             fmt.Sprintf(opts.FileFormat, row.ID),
	}
	for i, name := range names {
		if i < len(emails) {
			x.Email[name] = emails[i]
		}
		x.Affiliation[name] = ""
		if i < len(details) {
			x.Affiliation[name] = details[i].Affiliation
			if details[i].Primary && x.Primary == "" {
				x.Primary = name
			}
		}
	}
	if x.Primary == "" && strings.Contains(row.AuthorNames, "*") {
		for i, raw := range strings.Split(row.AuthorNames, ";") {
			if strings.Contains(raw, "*") && i < len(names) {
				x.Primary = names[i]
				break
			}
		}
	}

	return &paper.Record{
		Title:    title,
		Authors:  names,
		Year:     opts.Year,
		Abstract: row.Abstract,
		Extra:    x,
	}, nil
}

func attachFile(r *paper.Record, loc Locator, counter PageCounter) error {
	path, err := loc.Find(r.ID())
	if err != nil {
		return err
	}
	n, err := counter.PageCount(path)
	if err != nil {
		return fmt.Errorf("paper %d: %w", r.ID(), err)
	}
	if n < 1 {
		return fmt.Errorf("paper %d: %s has no pages", r.ID(), path)
	}
	r.Extra.NumPages = n
	r.Extra.OriginalFile = path
	return nil
}

// SessionMismatchError reports sessions present on only one side of a
// comparison between the data and a declared session list.
type SessionMismatchError = paper.SessionMismatchError

// OrderMismatchError reports papers missing from an explicit session order
// or listed there without a record.
type OrderMismatchError struct {
	Unlisted []int // Records not placed in any session
	Unknown  []int // Listed ids without a record
	Repeated []int // Ids listed more than once
}

func (e *OrderMismatchError) Error() string {
	return fmt.Sprintf("session order does not match records: unlisted %v, unknown %v, repeated %v",
		e.Unlisted, e.Unknown, e.Repeated)
}

func sessionOrder(records []*paper.Record, file *paper.SessionFile) (paper.SessionOrder, error) {
	bySession := make(map[string][]*paper.Record)
	for _, r := range records {
		bySession[r.Extra.SessionID] = append(bySession[r.Extra.SessionID], r)
	}
	dataNames := make([]string, 0, len(bySession))
	for name := range bySession {
		dataNames = append(dataNames, name)
	}
	sort.Slice(dataNames, func(i, j int) bool { return natural.Less(dataNames[i], dataNames[j]) })

	names := dataNames
	if file != nil {
		names = file.SessionNames()
		if err := paper.CompareSessions(dataNames, names); err != nil {
			return nil, err
		}
	}

	if file != nil && file.Explicit() {
		if err := checkExplicitOrder(records, file.Order); err != nil {
			return nil, err
		}
		return file.Order, nil
	}

	order := make(paper.SessionOrder, 0, len(names))
	for _, name := range names {
		papers := bySession[name]
		sort.Slice(papers, func(i, j int) bool {
			return papers[i].Extra.SessionPosition < papers[j].Extra.SessionPosition
		})
		s := paper.Session{Name: name, Papers: make([]int, len(papers))}
		for i, r := range papers {
			s.Papers[i] = r.ID()
		}
		order = append(order, s)
	}
	return order, nil
}

func checkExplicitOrder(records []*paper.Record, order paper.SessionOrder) error {
	known := make(map[int]bool, len(records))
	for _, r := range records {
		known[r.ID()] = true
	}

	e := &OrderMismatchError{}
	listed := make(map[int]bool)
	for _, s := range order {
		for _, id := range s.Papers {
			switch {
			case listed[id]:
				e.Repeated = append(e.Repeated, id)
			case !known[id]:
				e.Unknown = append(e.Unknown, id)
			}
			listed[id] = true
		}
	}
	for _, r := range records {
		if !listed[r.ID()] {
			e.Unlisted = append(e.Unlisted, r.ID())
		}
	}
	if len(e.Unlisted) > 0 || len(e.Unknown) > 0 || len(e.Repeated) > 0 {
		return e
	}
	return paper.CheckOrder(records, order)
}

// CopyFunc copies one PDF to a new location.
type CopyFunc func(src, dst string) error

// CopyPapers writes each record's source PDF into dir under its canonical name.
func CopyPapers(records []*paper.Record, dir string, copyFile CopyFunc) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, r := range records {
		dst := filepath.Join(dir, r.Extra.File)
		slog.Info("copying paper", "id", r.ID(), "title", r.Title, "dst", dst)
		if err := copyFile(r.Extra.OriginalFile, dst); err != nil {
			return fmt.Errorf("paper %d: %w", r.ID(), err)
		}
	}
	return nil
}
