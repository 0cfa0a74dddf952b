package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const cmtCSV = "\xef\xbb\xbfPaperID,Title,Abstract,AuthorNames,AuthorEmails,AuthorDetails,OneLiner,PrimarySubjectArea,SecondarySubjectAreas,SessionID\n" +
	`7,Beat Tracking,An abstract.,"Doe, Jane*; Smith, John",jane@mit.edu*; john@x.org,"Jane Doe (MIT)*; John Smith (Inst A (Inst B))",Beats matter,MIR,Rhythm; Tempo,Session 1:2` + "\n" +
	`3,Chord Estimation,Another.,"Ruiz, Ana",ana@upf.edu,Ana Ruiz (UPF),Chords,MIR,,Session 1:1` + "\n"

func TestReadCMT(t *testing.T) {
	rows, err := ReadCMT(strings.NewReader(cmtCSV), Presets["cmt"], nil)
	if err != nil {
		t.Fatalf("ReadCMT() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ReadCMT() returned %d rows, want 2", len(rows))
	}

	r := rows[0]
	if r.ID != 7 || r.Title != "Beat Tracking" {
		t.Errorf("row 0 = %+v", r)
	}
	if r.Session != "Session 1" || r.Position != 2 {
		t.Errorf("session = %q:%d, want Session 1:2", r.Session, r.Position)
	}
	if r.AuthorDetails != "Jane Doe (MIT)*; John Smith (Inst A (Inst B))" {
		t.Errorf("AuthorDetails = %q", r.AuthorDetails)
	}
	if r.Takeaway != "Beats matter" || r.SecondarySubjects != "Rhythm; Tempo" {
		t.Errorf("optional fields = %q / %q", r.Takeaway, r.SecondarySubjects)
	}
	if rows[1].Line != 2 || rows[1].Position != 1 {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

func TestReadCMTMissingColumn(t *testing.T) {
	csv := "PaperID,Title,Abstract\n1,T,A\n"
	_, err := ReadCMT(strings.NewReader(csv), Presets["cmt"], nil)

	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("ReadCMT() error = %v, want *MissingColumnError", err)
	}
	if mce.Column != "SessionID" {
		t.Errorf("missing column = %q, want SessionID", mce.Column)
	}
}

func TestReadCMTParseErrors(t *testing.T) {
	header := "PaperID,Title,Abstract,AuthorNames,AuthorEmails,AuthorDetails,SessionID\n"
	tests := []struct {
		name   string
		row    string
		column string
	}{
		{"non-numeric id", "abc,T,A,,,,S:1\n", "PaperID"},
		{"no position", "1,T,A,,,,Session 1\n", "SessionID"},
		{"bad position", "1,T,A,,,,S:x\n", "SessionID"},
		{"zero position", "1,T,A,,,,S:0\n", "SessionID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCMT(strings.NewReader(header+tt.row), Presets["cmt"], nil)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ReadCMT() error = %v, want *ParseError", err)
			}
			if pe.Column != tt.column || pe.Row != 1 {
				t.Errorf("ParseError = %+v", pe)
			}
		})
	}
}

func TestReadCMTPositionByOrder(t *testing.T) {
	csv := "Paper ID,Paper Title,Abstract,Authors,Set\n" +
		"4,A,x,Jane Doe (MIT),2\n" +
		"9,B,x,John Smith,1\n" +
		"2,C,x,Ana Ruiz,2\n"
	rows, err := ReadCMT(strings.NewReader(csv), Presets["cmt2020"], nil)
	if err != nil {
		t.Fatalf("ReadCMT() error = %v", err)
	}
	if rows[0].Session != "Session 2" || rows[0].Position != 1 {
		t.Errorf("row 0 = %s:%d", rows[0].Session, rows[0].Position)
	}
	if rows[2].Session != "Session 2" || rows[2].Position != 2 {
		t.Errorf("row 2 = %s:%d", rows[2].Session, rows[2].Position)
	}
	if rows[1].Position != 1 {
		t.Errorf("row 1 position = %d", rows[1].Position)
	}
}

func TestReadCMTEmpty(t *testing.T) {
	if _, err := ReadCMT(strings.NewReader(""), Presets["cmt"], nil); !errors.Is(err, ErrEmptyCSV) {
		t.Errorf("ReadCMT() error = %v, want ErrEmptyCSV", err)
	}
}

func TestSchemaByName(t *testing.T) {
	if s, err := SchemaByName("cmt2022"); err != nil || s.Position != "SessionPosition" {
		t.Errorf("SchemaByName(cmt2022) = %+v, %v", s, err)
	}
	if _, err := SchemaByName("nope"); err == nil {
		t.Error("SchemaByName(nope) expected error")
	}
}

func TestRewriteTitles(t *testing.T) {
	in := "PaperID,Title,Abstract\n1, deep learning ,x\n2,Already Fine,y\n"
	var out bytes.Buffer
	res, err := RewriteTitles(strings.NewReader(in), &out, Presets["cmt"], strings.ToUpper)
	if err != nil {
		t.Fatalf("RewriteTitles() error = %v", err)
	}
	if res.Rows != 2 || res.Changed != 2 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}

	want := "PaperID,Title,Abstract,TitleChecked\n1,DEEP LEARNING,x,yes\n2,ALREADY FINE,y,yes\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestRewriteTitlesSkipsChecked(t *testing.T) {
	in := "PaperID,Title,TitleChecked\n1,keep me,yes\n2,change me,\n"
	var out bytes.Buffer
	res, err := RewriteTitles(strings.NewReader(in), &out, Presets["cmt"], strings.ToUpper)
	if err != nil {
		t.Fatalf("RewriteTitles() error = %v", err)
	}
	if res.Skipped != 1 || res.Changed != 1 {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(out.String(), "1,keep me,yes") {
		t.Errorf("checked row was rewritten:\n%s", out.String())
	}
}

func TestRewriteTitlesIsIdempotent(t *testing.T) {
	// Lower-casing after the first pass stands in for a converter that would
	// damage an already converted title.
	calls := 0
	convert := func(s string) string {
		calls++
		if calls > 1 {
			return strings.ToLower(s)
		}
		return strings.ToUpper(s)
	}

	var first, second bytes.Buffer
	if _, err := RewriteTitles(strings.NewReader("PaperID,Title\n1,a dnn\n"), &first, Presets["cmt"], convert); err != nil {
		t.Fatal(err)
	}
	res, err := RewriteTitles(bytes.NewReader(first.Bytes()), &second, Presets["cmt"], convert)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 || calls != 1 {
		t.Errorf("second pass result = %+v after %d conversions", res, calls)
	}
	if want := "PaperID,Title,TitleChecked\n1,A DNN,yes\n"; second.String() != want {
		t.Errorf("second pass output =\n%s\nwant\n%s", second.String(), want)
	}
}

const cmt2020WithChecked = "Paper ID,Paper Title,Abstract,Authors,Set,TitleChecked\n" +
	"4,A,x,Jane Doe (MIT),2,yes\n" +
	"9,B,x,John Smith,1,\n"

func TestRewriteTitlesReusesDefaultCheckedColumn(t *testing.T) {
	in := "Paper ID,Paper Title,TitleChecked\n1,keep me,yes\n2,change me,\n"
	var out bytes.Buffer
	res, err := RewriteTitles(strings.NewReader(in), &out, Presets["cmt2020"], strings.ToUpper)
	if err != nil {
		t.Fatalf("RewriteTitles() error = %v", err)
	}
	if res.Skipped != 1 || res.Changed != 1 {
		t.Errorf("result = %+v", res)
	}
	want := "Paper ID,Paper Title,TitleChecked\n1,keep me,yes\n2,CHANGE ME,yes\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}

	rows, err := ReadCMT(strings.NewReader(cmt2020WithChecked), Presets["cmt2020"], nil)
	if err != nil {
		t.Fatalf("ReadCMT() error = %v", err)
	}
	if !rows[0].TitleChecked || rows[1].TitleChecked {
		t.Errorf("TitleChecked = %v, %v", rows[0].TitleChecked, rows[1].TitleChecked)
	}
}
