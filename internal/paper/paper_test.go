package paper

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validRecord(id int) *Record {
	return &Record{
		Title:    "A Paper",
		Authors:  []string{"Jane Doe"},
		Year:     "2024",
		Abstract: "Abstract.",
		Extra: &Extra{
			SchemaVersion:   SchemaVersion,
			SubmissionID:    id,
			SessionID:       "Session 1",
			SessionPosition: 1,
			NumPages:        6,
			Email:           map[string]string{"Jane Doe": "jane@example.org"},
			Affiliation:     map[string]string{"Jane Doe": "MIT"},
		},
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Record)
		wantErr string
	}{
		{"valid", func(r *Record) {}, ""},
		{"missing title", func(r *Record) { r.Title = " " }, "missing title"},
		{"missing extra", func(r *Record) { r.Extra = nil }, "missing extra"},
		{"old schema", func(r *Record) { r.Extra.SchemaVersion = 0 }, "schema_version"},
		{"bad id", func(r *Record) { r.Extra.SubmissionID = 0 }, "submission_id"},
		{"no session", func(r *Record) { r.Extra.SessionID = "" }, "session_id"},
		{"bad position", func(r *Record) { r.Extra.SessionPosition = 0 }, "session_position"},
		{"no pages", func(r *Record) { r.Extra.NumPages = 0 }, "num_pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord(7)
			tt.mutate(r)
			err := r.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPublicStripsExtra(t *testing.T) {
	r := validRecord(3)
	pub := r.Public()
	if pub.Extra != nil {
		t.Error("Public() kept extra")
	}
	if r.Extra == nil {
		t.Error("Public() modified the original record")
	}
	pub.Authors[0] = "Changed"
	if r.Authors[0] != "Jane Doe" {
		t.Error("Public() shares the author slice")
	}
}

func TestParsePageRange(t *testing.T) {
	pr, err := ParsePageRange("12-14")
	if err != nil {
		t.Fatalf("ParsePageRange() error = %v", err)
	}
	if pr.First != 12 || pr.Last != 14 || pr.Len() != 3 {
		t.Errorf("ParsePageRange() = %+v", pr)
	}
	if pr.String() != "12-14" {
		t.Errorf("String() = %q", pr.String())
	}

	for _, bad := range []string{"", "12", "a-b", "14-12"} {
		if _, err := ParsePageRange(bad); err == nil {
			t.Errorf("ParsePageRange(%q) expected error", bad)
		}
	}
}

func TestNewIndexRejectsDuplicates(t *testing.T) {
	if _, err := NewIndex([]*Record{validRecord(1), validRecord(1)}); err == nil {
		t.Fatal("NewIndex() expected duplicate error")
	}

	idx, err := NewIndex([]*Record{validRecord(5), validRecord(2)})
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	ids := idx.IDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 5 {
		t.Errorf("IDs() = %v, want [2 5]", ids)
	}
}

func TestWriteAndLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	records := []*Record{validRecord(1), validRecord(2)}
	records[1].Title = "Rock & Roll <Live>"

	if err := WriteJSON(path, records); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Rock & Roll <Live>") {
		t.Error("WriteJSON() escaped HTML characters")
	}
	if !strings.Contains(string(data), "\n    {") {
		t.Error("WriteJSON() did not indent with four spaces")
	}

	loaded, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords() error = %v", err)
	}
	if len(loaded) != 2 || loaded[1].Title != "Rock & Roll <Live>" {
		t.Errorf("LoadRecords() = %+v", loaded)
	}
	if loaded[0].Extra.Email["Jane Doe"] != "jane@example.org" {
		t.Errorf("email map lost: %+v", loaded[0].Extra.Email)
	}
}

func TestLoadRecordsValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	bad := validRecord(1)
	bad.Extra.NumPages = 0
	if err := WriteJSON(path, []*Record{bad}); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRecords(path); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("LoadRecords() error = %v, want ErrInvalidRecord", err)
	}
}

func TestLoadRecordsRejectsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte("[null]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRecords(path); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("LoadRecords() error = %v, want ErrInvalidRecord", err)
	}
}

func TestCheckOrder(t *testing.T) {
	records := []*Record{validRecord(1), validRecord(2), validRecord(3)}
	records[0].Extra.SessionID = "A"
	records[1].Extra.SessionID = "B"
	records[2].Extra.SessionID = "B"

	t.Run("valid", func(t *testing.T) {
		order := SessionOrder{{Name: "B", Papers: []int{3, 2}}, {Name: "A", Papers: []int{1}}}
		if err := CheckOrder(records, order); err != nil {
			t.Fatalf("CheckOrder() error = %v", err)
		}
	})

	t.Run("misplaced", func(t *testing.T) {
		order := SessionOrder{{Name: "A", Papers: []int{1, 2}}, {Name: "B", Papers: []int{3}}}
		err := CheckOrder(records, order)
		var mpe *MisplacedPaperError
		if !errors.As(err, &mpe) {
			t.Fatalf("CheckOrder() error = %v, want *MisplacedPaperError", err)
		}
		if mpe.ID != 2 || mpe.Session != "B" || mpe.Listed != "A" {
			t.Errorf("MisplacedPaperError = %+v", mpe)
		}
	})

	t.Run("session sets differ", func(t *testing.T) {
		order := SessionOrder{{Name: "A", Papers: []int{1}}, {Name: "C", Papers: []int{2, 3}}}
		err := CheckOrder(records, order)
		var sme *SessionMismatchError
		if !errors.As(err, &sme) {
			t.Fatalf("CheckOrder() error = %v, want *SessionMismatchError", err)
		}
		if len(sme.OnlyInData) != 1 || sme.OnlyInData[0] != "B" {
			t.Errorf("OnlyInData = %v", sme.OnlyInData)
		}
		if len(sme.OnlyInList) != 1 || sme.OnlyInList[0] != "C" {
			t.Errorf("OnlyInList = %v", sme.OnlyInList)
		}
	})
}

func TestReadSessionFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("text list", func(t *testing.T) {
		path := filepath.Join(dir, "sessions.txt")
		if err := os.WriteFile(path, []byte("Session B\n\nSession A\n"), 0644); err != nil {
			t.Fatal(err)
		}
		f, err := ReadSessionFile(path)
		if err != nil {
			t.Fatalf("ReadSessionFile() error = %v", err)
		}
		if f.Explicit() {
			t.Error("text file reported explicit order")
		}
		names := f.SessionNames()
		if len(names) != 2 || names[0] != "Session B" || names[1] != "Session A" {
			t.Errorf("SessionNames() = %v", names)
		}
	})

	t.Run("json order", func(t *testing.T) {
		path := filepath.Join(dir, "order.json")
		content := `[{"name":"A","papers":[1,2]},{"name":"B","papers":[3]}]`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		f, err := ReadSessionFile(path)
		if err != nil {
			t.Fatalf("ReadSessionFile() error = %v", err)
		}
		if !f.Explicit() {
			t.Fatal("json file not explicit")
		}
		if f.Order.PaperCount() != 3 {
			t.Errorf("PaperCount() = %d, want 3", f.Order.PaperCount())
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		path := filepath.Join(dir, "dup.txt")
		if err := os.WriteFile(path, []byte("A\nA\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadSessionFile(path); err == nil {
			t.Error("ReadSessionFile() expected duplicate error")
		}
	})
}
