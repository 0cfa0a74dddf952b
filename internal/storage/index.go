package storage

import (
	"database/sql"
	"fmt"
	"html/template"
	"io"
	"unicode"
	"unicode/utf8"
)

// IndexPaper is one paper listed under an author.
type IndexPaper struct {
	SubmissionID int    `json:"submission_id"`
	Title        string `json:"title"`
	FirstPage    int    `json:"first_page"` // 0 when the paper has not been placed
	SplitFile    string `json:"split_file,omitempty"`
	EE           string `json:"ee,omitempty"`
}

// IndexEntry is one author in the author index.
type IndexEntry struct {
	Name   string       `json:"name"`
	Letter string       `json:"letter"` // Heading the entry is filed under, "A".."Z" or "#"
	Papers []IndexPaper `json:"papers"`
}

// Index lists authors ordered by accent-folded surname, each with their
// papers in page order.
func (d *DB) Index() ([]IndexEntry, error) {
	rows, err := d.db.Query(`
		SELECT a.name, a.sort_key, p.submission_id, p.title, p.first_page, p.split_file, p.ee
		FROM authorships a
		JOIN papers p ON p.submission_id = a.submission_id
		ORDER BY a.sort_key, a.name, p.first_page, p.submission_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var entries []IndexEntry
	for rows.Next() {
		var name, key string
		var p IndexPaper
		var first sql.NullInt64
		var file, ee sql.NullString
		if err := rows.Scan(&name, &key, &p.SubmissionID, &p.Title, &first, &file, &ee); err != nil {
			return nil, err
		}
		p.FirstPage = int(first.Int64)
		p.SplitFile = file.String
		p.EE = ee.String

		if n := len(entries); n > 0 && entries[n-1].Name == name {
			entries[n-1].Papers = append(entries[n-1].Papers, p)
			continue
		}
		entries = append(entries, IndexEntry{Name: name, Letter: letter(key), Papers: []IndexPaper{p}})
	}
	return entries, rows.Err()
}

func letter(sortKey string) string {
	r, _ := utf8.DecodeRuneInString(sortKey)
	if r >= 'A' && r <= 'Z' {
		return string(r)
	}
	if unicode.IsLetter(r) {
		return string(unicode.ToUpper(r))
	}
	return "#"
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
h2 { border-bottom: 1px solid #ccc; }
ul.papers { list-style: none; margin: 0 0 0.6em 1.5em; padding: 0; }
span.page { color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{range .Letters}}<a href="#letter-{{.}}">{{.}}</a> {{end}}</p>
{{- range .Groups}}
<h2 id="letter-{{.Letter}}">{{.Letter}}</h2>
{{- range .Entries}}
<div class="author">{{.Name}}
<ul class="papers">
{{- range .Papers}}
<li>{{if .EE}}<a href="{{.EE}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}{{if .FirstPage}} <span class="page">{{.FirstPage}}</span>{{end}}</li>
{{- end}}
</ul>
</div>
{{- end}}
{{- end}}
</body>
</html>
`

type letterGroup struct {
	Letter  string
	Entries []IndexEntry
}

// WriteIndexHTML renders the author index as a single page with one section
// per initial letter.
func WriteIndexHTML(w io.Writer, title string, entries []IndexEntry) error {
	page, err := template.New("author_index").Parse(indexPage)
	if err != nil {
		return fmt.Errorf("parsing author index template: %w", err)
	}

	var groups []letterGroup
	var letters []string
	for _, e := range entries {
		if n := len(groups); n > 0 && groups[n-1].Letter == e.Letter {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, letterGroup{Letter: e.Letter, Entries: []IndexEntry{e}})
		letters = append(letters, e.Letter)
	}

	return page.Execute(w, struct {
		Title   string
		Letters []string
		Groups  []letterGroup
	}{title, letters, groups})
}
