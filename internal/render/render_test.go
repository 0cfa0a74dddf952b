package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/proceedings/internal/paper"
)

func splitRecords() []*paper.Record {
	mk := func(id int, session, title string, pages int, authors ...string) *paper.Record {
		return &paper.Record{
			Title:    title,
			Authors:  authors,
			Year:     "2024",
			Abstract: "Line one\nline  two.",
			Extra: &paper.Extra{
				SchemaVersion: paper.SchemaVersion,
				SubmissionID:  id,
				SessionID:     session,
				NumPages:      pages,
				File:          "paper_00" + string(rune('0'+id)) + ".pdf",
			},
		}
	}
	recs := []*paper.Record{
		mk(3, "Session 1", "Beat Tracking & Tempo", 3, "Ada Lovelace", "Alan Turing"),
		mk(1, "Session 1", "Chords_in_Context", 2, "Grace Hopper"),
		mk(2, "Session 2", "Lyrics", 4, "Jean van der Berg"),
	}
	for i, r := range recs {
		r.Extra.SplitFile = "00000" + string(rune('1'+i)) + ".pdf"
	}
	return recs
}

func newRenderer(t *testing.T, dir string) *Renderer {
	t.Helper()
	r, err := New(Config{Venue: "ISMIR", Year: "2024", StartPage: 1, OutputDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestBuild(t *testing.T) {
	r := newRenderer(t, t.TempDir())
	ctx, err := r.Build(splitRecords(), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(ctx.Sessions) != 2 || ctx.Sessions[0].Title != "Session 1" || len(ctx.Sessions[0].Papers) != 2 {
		t.Fatalf("sessions = %+v", ctx.Sessions)
	}
	// Session 1: divider 1-2, paper 3 on 3-5, paper 1 on 6-7. Session 2: divider 9-10.
	wantPages := []string{"3-5", "6-7", "11-14"}
	for i, rec := range ctx.Records {
		if rec.Pages != wantPages[i] {
			t.Errorf("record %d pages = %q, want %q", rec.ID(), rec.Pages, wantPages[i])
		}
	}
	if ctx.Sessions[1].DividerPage != 9 || ctx.Sessions[1].Index != 2 {
		t.Errorf("second session = %+v", ctx.Sessions[1])
	}
	if got, want := ctx.Records[0].EE, "https://archives.ismir.net/ismir2024/paper/000001.pdf"; got != want {
		t.Errorf("EE = %q, want %q", got, want)
	}
	if got := ctx.Records[0].Abstract; got != "Line one line two." {
		t.Errorf("abstract = %q", got)
	}
}

func TestBuildLayoutMismatch(t *testing.T) {
	recs := splitRecords()
	recs[1].Pages = "6-8"

	_, err := newRenderer(t, t.TempDir()).Build(recs, nil)
	var lme *LayoutMismatchError
	if !errors.As(err, &lme) {
		t.Fatalf("Build() error = %v, want *LayoutMismatchError", err)
	}
	if lme.PaperID != 1 || lme.Computed != "6-7" {
		t.Errorf("LayoutMismatchError = %+v", lme)
	}
}

func TestBuildRequiresSplitFile(t *testing.T) {
	recs := splitRecords()
	recs[2].Extra.SplitFile = ""
	if _, err := newRenderer(t, t.TempDir()).Build(recs, nil); err == nil {
		t.Error("Build() expected error for unsplit paper")
	}
}

func TestBuildFollowsSessionOrder(t *testing.T) {
	recs := splitRecords()
	order := paper.SessionOrder{
		{Name: "Session 2", Papers: []int{2}},
		{Name: "Session 1", Papers: []int{1, 3}},
	}
	ctx, err := newRenderer(t, t.TempDir()).Build(recs, order)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Session 2: divider 1-2, paper 2 on 3-6. Session 1: divider 7-8, paper 1 on 9-10, paper 3 on 11-13.
	want := map[int]string{2: "3-6", 1: "9-10", 3: "11-13"}
	for _, rec := range ctx.Records {
		if rec.Pages != want[rec.ID()] {
			t.Errorf("paper %d pages = %q, want %q", rec.ID(), rec.Pages, want[rec.ID()])
		}
	}
	if ctx.Sessions[0].Title != "Session 2" || ctx.Sessions[1].Papers[0].ID() != 1 {
		t.Errorf("sessions = %+v", ctx.Sessions)
	}
}

func TestBuildRejectsMismatchedOrder(t *testing.T) {
	tests := []struct {
		name  string
		order paper.SessionOrder
		check func(err error) bool
	}{
		{
			name: "session sets differ",
			order: paper.SessionOrder{
				{Name: "Session 1", Papers: []int{3, 1}},
				{Name: "Session 3", Papers: []int{2}},
			},
			check: func(err error) bool {
				var sme *paper.SessionMismatchError
				return errors.As(err, &sme) && sme.OnlyInData[0] == "Session 2" && sme.OnlyInList[0] == "Session 3"
			},
		},
		{
			name: "paper under another session",
			order: paper.SessionOrder{
				{Name: "Session 1", Papers: []int{3, 1, 2}},
				{Name: "Session 2", Papers: nil},
			},
			check: func(err error) bool {
				var mpe *paper.MisplacedPaperError
				return errors.As(err, &mpe) && mpe.ID == 2
			},
		},
		{
			name: "paper missing",
			order: paper.SessionOrder{
				{Name: "Session 1", Papers: []int{3}},
				{Name: "Session 2", Papers: []int{2}},
			},
			check: func(err error) bool {
				var ue *UnplacedError
				return errors.As(err, &ue) && len(ue.IDs) == 1 && ue.IDs[0] == 1
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRenderer(t, t.TempDir()).Build(splitRecords(), tt.order)
			if !tt.check(err) {
				t.Errorf("Build() error = %v", err)
			}
		})
	}
}

func TestOrderFromRecords(t *testing.T) {
	order, err := OrderFromRecords(splitRecords())
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || len(order[0].Papers) != 2 || order[0].Papers[0] != 3 || order[1].Papers[0] != 2 {
		t.Errorf("order = %+v", order)
	}

	recs := splitRecords()
	recs[2].Extra.SessionID = "Session 1"
	recs[1].Extra.SessionID = "Session 2"
	if _, err := OrderFromRecords(recs); err == nil {
		t.Error("OrderFromRecords() expected error for a split session")
	}
}

func TestNewRequiresVenueAndYear(t *testing.T) {
	if _, err := New(Config{Year: "2024"}); err == nil {
		t.Error("New() without venue should fail")
	}
	if _, err := New(Config{Venue: "ISMIR"}); err == nil {
		t.Error("New() without year should fail")
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	r := newRenderer(t, dir)
	ctx, err := r.Build(splitRecords(), nil)
	if err != nil {
		t.Fatal(err)
	}
	paths, err := r.WriteAll(ctx)
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if len(paths) != 7 {
		t.Errorf("wrote %d files, want 7: %v", len(paths), paths)
	}

	read := func(name string) string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	checks := []struct {
		file string
		want []string
	}{
		{"overview_table.html", []string{
			`<a href="https://archives.ismir.net/ismir2024/paper/000001.pdf">Beat Tracking &amp; Tempo</a>`,
			"Ada Lovelace, Alan Turing",
			"Session 2",
		}},
		{"publications_ISMIR2024.txt", []string{
			"<h2>Session 1</h2>",
			"<li>Ada Lovelace, Alan Turing:\nBeat Tracking &amp; Tempo.\n3-5\n<ee>https://archives.ismir.net/ismir2024/paper/000001.pdf</ee>\n</li>",
		}},
		{"papers.tex", []string{
			`\sessiontitlepage{2}{Session 2}`,
			`\proceedingspaper{Chords\_in\_Context}{Grace Hopper}{articles/paper_001.pdf}`,
			`\proceedingspaper{Beat Tracking \& Tempo}{Ada Lovelace, Alan Turing}{articles/paper_003.pdf}`,
		}},
		{"ismir2024.bib", []string{
			"@inproceedings{ismir2024_3,",
			"author = {Lovelace, Ada and Turing, Alan}",
			"author = {van der Berg, Jean}",
			"title = {{Beat Tracking \\& Tempo}}",
			"pages = {11--14}",
		}},
		{"overview.csv", []string{
			"sequence,session,submission_id,title,authors,pages,split_file,ee\n",
			"2,Session 1,1,Chords_in_Context,Grace Hopper,6-7,000002.pdf,",
		}},
		{"2024_internal.json", []string{`"split_file": "000003.pdf"`}},
		{"2024.json", []string{`"pages": "6-7"`}},
	}
	for _, c := range checks {
		got := read(c.file)
		for _, want := range c.want {
			if !strings.Contains(got, want) {
				t.Errorf("%s missing %q\n%s", c.file, want, got)
			}
		}
	}

	if strings.Contains(read("2024.json"), `"extra"`) {
		t.Error("public JSON contains the extra block")
	}

	pub, err := paper.LoadPublic(filepath.Join(dir, "2024.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(pub) != 3 || pub[0].Title != "Beat Tracking & Tempo" {
		t.Errorf("public records = %+v", pub)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	render := func() []byte {
		r := newRenderer(t, t.TempDir())
		ctx, err := r.Build(splitRecords(), nil)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		for _, fn := range []func(*bytes.Buffer) error{
			func(b *bytes.Buffer) error { return r.WriteOverview(b, ctx) },
			func(b *bytes.Buffer) error { return r.WriteDBLP(b, ctx) },
			func(b *bytes.Buffer) error { return r.WriteTeX(b, ctx) },
			func(b *bytes.Buffer) error { return r.WriteBibTeX(b, ctx) },
			func(b *bytes.Buffer) error { return r.WriteCSV(b, ctx) },
		} {
			if err := fn(&buf); err != nil {
				t.Fatal(err)
			}
		}
		return buf.Bytes()
	}
	if !bytes.Equal(render(), render()) {
		t.Error("two generation runs produced different output")
	}
}

func TestBuildAcceptsMatchingPages(t *testing.T) {
	recs := splitRecords()
	recs[0].Pages = "3-5"
	if _, err := newRenderer(t, t.TempDir()).Build(recs, nil); err != nil {
		t.Errorf("Build() error = %v", err)
	}
}

func TestEscapeLatex(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Rock & Roll", `Rock \& Roll`},
		{"50% of $x_1$", `50\% of \$x\_1\$`},
		{`C:\music`, `C:\textbackslash{}music`},
		{`\{x}`, `\textbackslash{}\{x\}`},
		{"a~b^c", `a\textasciitilde{}b\textasciicircum{}c`},
	}
	for _, tt := range tests {
		if got := escapeLatex(tt.in); got != tt.want {
			t.Errorf("escapeLatex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
