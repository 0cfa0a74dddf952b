// Package render generates the publication artifacts from split metadata.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/gocarina/gocsv"

	"github.com/matsen/proceedings/internal/layout"
	"github.com/matsen/proceedings/internal/paper"
)

// DefaultArchiveURL is the electronic edition pattern. {year} and {file} are
// replaced by the proceedings year and the split file name.
const DefaultArchiveURL = "https://archives.ismir.net/ismir{year}/paper/{file}"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Config holds everything a generation run needs besides the records.
type Config struct {
	Venue      string // Short venue name, "ISMIR"
	Year       string
	BookTitle  string // BibTeX booktitle; derived from Venue and Year when empty
	ArchiveURL string // Electronic edition pattern; DefaultArchiveURL when empty
	StartPage  int
	OutputDir  string
}

// LayoutMismatchError reports a record whose stored page range disagrees with
// the recomputed layout.
type LayoutMismatchError struct {
	PaperID  int
	Recorded string
	Computed string
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("paper %d: metadata says pages %s but the layout gives %s", e.PaperID, e.Recorded, e.Computed)
}

// Renderer writes artifacts for one configuration.
type Renderer struct {
	cfg      Config
	overview *htmltemplate.Template
	dblp     *texttemplate.Template
	tex      *texttemplate.Template
}

// New validates cfg and parses the templates.
func New(cfg Config) (*Renderer, error) {
	if cfg.Venue == "" {
		return nil, fmt.Errorf("venue is required")
	}
	if cfg.Year == "" {
		return nil, fmt.Errorf("year is required")
	}
	if cfg.StartPage == 0 {
		cfg.StartPage = 1
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.BookTitle == "" {
		cfg.BookTitle = fmt.Sprintf("Proceedings of the %s %s Conference", cfg.Venue, cfg.Year)
	}

	overview, err := htmltemplate.New("overview_table.html.tmpl").
		Funcs(htmltemplate.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/overview_table.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing overview template: %w", err)
	}
	dblp, err := texttemplate.New("dblp.txt.tmpl").
		Funcs(texttemplate.FuncMap{"join": strings.Join, "esc": html.EscapeString}).
		ParseFS(templateFS, "templates/dblp.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing dblp template: %w", err)
	}
	// LaTeX braces collide with the default delimiters.
	tex, err := texttemplate.New("papers.tex.tmpl").
		Delims("<<", ">>").
		Funcs(texttemplate.FuncMap{"join": strings.Join, "tex": escapeLatex}).
		ParseFS(templateFS, "templates/papers.tex.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing tex template: %w", err)
	}

	return &Renderer{cfg: cfg, overview: overview, dblp: dblp, tex: tex}, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Context is the shared input of every artifact.
type Context struct {
	Venue    string
	Year     string
	Sessions []SessionContext
	Records  []*paper.Record // Traversal order
	Layout   *layout.Layout
}

// SessionContext is one session with its papers in presentation order.
type SessionContext struct {
	Index       int // 1-based; the session's title page in the divider document
	Title       string
	DividerPage int
	Papers      []*paper.Record
}

// OrderFromRecords rebuilds the session order from records in traversal
// order, as written by the splitter.
func OrderFromRecords(records []*paper.Record) (paper.SessionOrder, error) {
	var order paper.SessionOrder
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Extra == nil {
			return nil, fmt.Errorf("record %q has no extra block", rec.Title)
		}
		name := rec.Extra.SessionID
		if n := len(order); n > 0 && order[n-1].Name == name {
			order[n-1].Papers = append(order[n-1].Papers, rec.ID())
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("session %q is not contiguous in the split metadata (paper %d)", name, rec.ID())
		}
		seen[name] = true
		order = append(order, paper.Session{Name: name, Papers: []int{rec.ID()}})
	}
	return order, nil
}

// UnplacedError reports records that the session order does not list.
type UnplacedError struct {
	IDs []int
}

func (e *UnplacedError) Error() string {
	return fmt.Sprintf("papers %v are not in the session order", e.IDs)
}

// Build recomputes the layout from order and assembles the context. A nil
// order is rebuilt from the records' traversal order. Page ranges and
// electronic edition links are written onto the records.
func (r *Renderer) Build(records []*paper.Record, order paper.SessionOrder) (*Context, error) {
	if order == nil {
		var err error
		if order, err = OrderFromRecords(records); err != nil {
			return nil, err
		}
	}
	if err := paper.CheckOrder(records, order); err != nil {
		return nil, err
	}
	idx, err := paper.NewIndex(records)
	if err != nil {
		return nil, err
	}
	l, err := layout.Compute(order, idx, r.cfg.StartPage)
	if err != nil {
		return nil, err
	}

	placed := make(map[int]bool, len(l.Placements))
	for _, p := range l.Placements {
		placed[p.PaperID] = true
	}
	var unplaced []int
	for _, id := range idx.IDs() {
		if !placed[id] {
			unplaced = append(unplaced, id)
		}
	}
	if len(unplaced) > 0 {
		return nil, &UnplacedError{IDs: unplaced}
	}

	ctx := &Context{Venue: r.cfg.Venue, Year: r.cfg.Year, Layout: l}
	for i, span := range l.Sessions {
		ctx.Sessions = append(ctx.Sessions, SessionContext{Index: i + 1, Title: span.Name, DividerPage: span.DividerPage})
	}

	next := 0
	for i, s := range order {
		for range s.Papers {
			p := l.Placements[next]
			next++
			rec, _ := idx.Get(p.PaperID)
			computed := p.Range.String()
			if rec.Pages != "" && rec.Pages != computed {
				return nil, &LayoutMismatchError{PaperID: p.PaperID, Recorded: rec.Pages, Computed: computed}
			}
			if rec.Extra.SplitFile == "" {
				return nil, fmt.Errorf("paper %d has no split file; run split first", p.PaperID)
			}
			rec.Pages = computed
			rec.EE = r.EE(rec)
			rec.Abstract = strings.Join(strings.Fields(rec.Abstract), " ")

			ctx.Sessions[i].Papers = append(ctx.Sessions[i].Papers, rec)
			ctx.Records = append(ctx.Records, rec)
		}
	}
	return ctx, nil
}

// EE returns the electronic edition link of a split record.
func (r *Renderer) EE(rec *paper.Record) string {
	return strings.NewReplacer("{year}", r.cfg.Year, "{file}", rec.Extra.SplitFile).Replace(r.cfg.ArchiveURL)
}

// Artifact names for a configuration.
func (r *Renderer) overviewName() string { return "overview_table.html" }
func (r *Renderer) dblpName() string {
	return fmt.Sprintf("publications_%s%s.txt", strings.ToUpper(r.cfg.Venue), r.cfg.Year)
}
func (r *Renderer) publicName() string   { return r.cfg.Year + ".json" }
func (r *Renderer) internalName() string { return r.cfg.Year + "_internal.json" }
func (r *Renderer) bibName() string {
	return fmt.Sprintf("%s%s.bib", strings.ToLower(r.cfg.Venue), r.cfg.Year)
}

// WriteAll writes every artifact into the output directory and returns the
// paths written.
func (r *Renderer) WriteAll(ctx *Context) ([]string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", r.cfg.OutputDir, err)
	}

	var written []string
	writeFile := func(name string, fn func(io.Writer, *Context) error) error {
		var buf bytes.Buffer
		if err := fn(&buf, ctx); err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		path := filepath.Join(r.cfg.OutputDir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
		slog.Info("wrote artifact", "path", path)
		return nil
	}

	files := []struct {
		name string
		fn   func(io.Writer, *Context) error
	}{
		{r.overviewName(), r.WriteOverview},
		{r.dblpName(), r.WriteDBLP},
		{"overview.csv", r.WriteCSV},
		{"papers.tex", r.WriteTeX},
		{r.bibName(), r.WriteBibTeX},
	}
	for _, f := range files {
		if err := writeFile(f.name, f.fn); err != nil {
			return written, err
		}
	}

	public := make([]paper.Record, len(ctx.Records))
	for i, rec := range ctx.Records {
		public[i] = rec.Public()
	}
	docs := []struct {
		name string
		v    any
	}{
		{r.publicName(), public},
		{r.internalName(), ctx.Records},
	}
	for _, doc := range docs {
		path := filepath.Join(r.cfg.OutputDir, doc.name)
		if err := paper.WriteJSON(path, doc.v); err != nil {
			return written, err
		}
		written = append(written, path)
		slog.Info("wrote artifact", "path", path)
	}
	return written, nil
}

// WriteOverview renders the HTML overview table.
func (r *Renderer) WriteOverview(w io.Writer, ctx *Context) error {
	return r.overview.Execute(w, ctx)
}

// WriteDBLP renders the bibliography in dblp's table-of-contents format.
func (r *Renderer) WriteDBLP(w io.Writer, ctx *Context) error {
	return r.dblp.Execute(w, ctx)
}

// WriteTeX renders the LaTeX paper list included by the proceedings volume.
func (r *Renderer) WriteTeX(w io.Writer, ctx *Context) error {
	return r.tex.Execute(w, ctx)
}

// WriteBibTeX renders one inproceedings entry per paper.
func (r *Renderer) WriteBibTeX(w io.Writer, ctx *Context) error {
	entries := make([]string, len(ctx.Records))
	for i, rec := range ctx.Records {
		entries[i] = toBibTeX(r.cfg.Venue, r.cfg.Year, r.cfg.BookTitle, rec)
	}
	_, err := io.WriteString(w, strings.Join(entries, "\n"))
	return err
}

type overviewRow struct {
	Sequence     int    `csv:"sequence"`
	Session      string `csv:"session"`
	SubmissionID int    `csv:"submission_id"`
	Title        string `csv:"title"`
	Authors      string `csv:"authors"`
	Pages        string `csv:"pages"`
	SplitFile    string `csv:"split_file"`
	EE           string `csv:"ee"`
}

// WriteCSV renders a flat spreadsheet of the volume.
func (r *Renderer) WriteCSV(w io.Writer, ctx *Context) error {
	rows := make([]overviewRow, len(ctx.Records))
	for i, rec := range ctx.Records {
		rows[i] = overviewRow{
			Sequence:     i + 1,
			Session:      rec.Extra.SessionID,
			SubmissionID: rec.ID(),
			Title:        rec.Title,
			Authors:      strings.Join(rec.Authors, "; "),
			Pages:        rec.Pages,
			SplitFile:    rec.Extra.SplitFile,
			EE:           rec.EE,
		}
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
