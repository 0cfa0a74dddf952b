// Package layout computes where every paper lands in the printed
// proceedings.
//
// Each session opens with a two-page divider. Papers follow back to back in
// session order. A session must end on an even page so that the next divider
// starts on a right-hand (odd) page; when it does not, one blank page is
// inserted.
package layout

import (
	"fmt"

	"github.com/matsen/proceedings/internal/paper"
)

// DividerPages is the number of pages a session divider occupies.
const DividerPages = 2

// Placement is the printed position of one paper.
type Placement struct {
	PaperID  int
	Session  string
	Sequence int // 1-based position across the whole volume
	Range    paper.PageRange
}

// SessionSpan describes one session in the printed volume.
type SessionSpan struct {
	Name        string
	DividerPage int  // First page of the divider
	LastPage    int  // Last page of the session's final paper, or of its divider
	BlankAfter  bool // A blank page follows the session
}

// Layout is the result of walking the session order.
type Layout struct {
	StartPage  int
	Placements []Placement
	Sessions   []SessionSpan
	BlankPages int
	NextPage   int // First free page after the last session
}

// UnknownPaperError reports a session entry without a matching record.
type UnknownPaperError struct {
	ID      int
	Session string
}

func (e *UnknownPaperError) Error() string {
	return fmt.Sprintf("session %q references unknown paper %d", e.Session, e.ID)
}

// Compute walks order from startPage, assigning page ranges from each
// record's page count.
func Compute(order paper.SessionOrder, idx paper.Index, startPage int) (*Layout, error) {
	if startPage < 1 {
		return nil, fmt.Errorf("start page must be at least 1, got %d", startPage)
	}

	l := &Layout{StartPage: startPage}
	cursor := startPage
	seq := 0
	for _, s := range order {
		span := SessionSpan{Name: s.Name, DividerPage: cursor}
		cursor += DividerPages

		for _, id := range s.Papers {
			r, ok := idx.Get(id)
			if !ok {
				return nil, &UnknownPaperError{ID: id, Session: s.Name}
			}
			n := r.Extra.NumPages
			if n < 1 {
				return nil, fmt.Errorf("paper %d has invalid page count %d", id, n)
			}
			seq++
			l.Placements = append(l.Placements, Placement{
				PaperID:  id,
				Session:  s.Name,
				Sequence: seq,
				Range:    paper.PageRange{First: cursor, Last: cursor + n - 1},
			})
			cursor += n
		}
		span.LastPage = cursor - 1

		if cursor%2 == 0 {
			cursor++
			span.BlankAfter = true
			l.BlankPages++
		}
		l.Sessions = append(l.Sessions, span)
	}
	l.NextPage = cursor
	return l, nil
}

// Placement returns the placement of a paper.
func (l *Layout) Placement(id int) (Placement, bool) {
	for _, p := range l.Placements {
		if p.PaperID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// TotalPages returns the number of pages from the start page to the end of
// the last session, blanks included.
func (l *Layout) TotalPages() int {
	return l.NextPage - l.StartPage
}
