package paper

import (
	"fmt"
	"sort"
	"strings"
)

// Session is a named group of papers presented together, in presentation order.
type Session struct {
	Name   string `json:"name"`
	Papers []int  `json:"papers"`
}

// SessionOrder is the ordered list of sessions making up the proceedings.
type SessionOrder []Session

// Names returns the session names in order.
func (o SessionOrder) Names() []string {
	names := make([]string, len(o))
	for i, s := range o {
		names[i] = s.Name
	}
	return names
}

// PaperCount returns the number of paper slots across all sessions.
func (o SessionOrder) PaperCount() int {
	n := 0
	for _, s := range o {
		n += len(s.Papers)
	}
	return n
}

// SessionMismatchError reports sessions present on only one side of a
// comparison between the data and a declared session list.
type SessionMismatchError struct {
	OnlyInData []string
	OnlyInList []string
}

func (e *SessionMismatchError) Error() string {
	return fmt.Sprintf("session lists differ: only in data [%s], only in session file [%s]",
		strings.Join(e.OnlyInData, ", "), strings.Join(e.OnlyInList, ", "))
}

// CompareSessions returns a *SessionMismatchError unless data and declared
// name the same set of sessions.
func CompareSessions(data, declared []string) error {
	inData := make(map[string]bool, len(data))
	for _, n := range data {
		inData[n] = true
	}
	inList := make(map[string]bool, len(declared))
	for _, n := range declared {
		inList[n] = true
	}

	e := &SessionMismatchError{}
	for _, n := range data {
		if !inList[n] && !contains(e.OnlyInData, n) {
			e.OnlyInData = append(e.OnlyInData, n)
		}
	}
	for _, n := range declared {
		if !inData[n] && !contains(e.OnlyInList, n) {
			e.OnlyInList = append(e.OnlyInList, n)
		}
	}
	if len(e.OnlyInData) > 0 || len(e.OnlyInList) > 0 {
		return e
	}
	return nil
}

func contains(names []string, n string) bool {
	for _, m := range names {
		if m == n {
			return true
		}
	}
	return false
}

// MisplacedPaperError reports a paper listed under a session other than
// the one its record belongs to.
type MisplacedPaperError struct {
	ID      int
	Session string // From the record
	Listed  string // Where the order places it
}

func (e *MisplacedPaperError) Error() string {
	return fmt.Sprintf("paper %d belongs to session %q but is listed under %q", e.ID, e.Session, e.Listed)
}

// CheckOrder verifies that order declares exactly the sessions used by
// records and lists every known paper under its own session. Ids without a
// record are ignored here.
func CheckOrder(records []*Record, order SessionOrder) error {
	var data []string
	for _, r := range records {
		data = append(data, r.Extra.SessionID)
	}
	if err := CompareSessions(data, order.Names()); err != nil {
		return err
	}

	bySession := make(map[int]string, len(records))
	for _, r := range records {
		bySession[r.ID()] = r.Extra.SessionID
	}
	for _, s := range order {
		for _, id := range s.Papers {
			if want, ok := bySession[id]; ok && want != s.Name {
				return &MisplacedPaperError{ID: id, Session: want, Listed: s.Name}
			}
		}
	}
	return nil
}

// Index maps submission ids to records.
type Index map[int]*Record

// NewIndex builds an index, failing on duplicate submission ids.
func NewIndex(records []*Record) (Index, error) {
	idx := make(Index, len(records))
	for _, r := range records {
		id := r.ID()
		if _, dup := idx[id]; dup {
			return nil, fmt.Errorf("duplicate submission_id %d", id)
		}
		idx[id] = r
	}
	return idx, nil
}

// Get returns the record for a submission id.
func (idx Index) Get(id int) (*Record, bool) {
	r, ok := idx[id]
	return r, ok
}

// IDs returns the indexed submission ids in ascending order.
func (idx Index) IDs() []int {
	ids := make([]int, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
