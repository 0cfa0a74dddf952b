package qc

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// diffRow is one line of a side-by-side table. Line numbers are 1-based; 0
// leaves the cell empty.
type diffRow struct {
	LeftNo  int
	Left    string
	RightNo int
	Right   string
	Class   string // equal, replace, delete, insert or sep
}

// sideBySide aligns a and b. A negative context shows every line; otherwise
// only changed lines with that many lines around them, groups separated by a
// "sep" row.
func sideBySide(a, b []string, context int) []diffRow {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	m := difflib.NewMatcher(a, b)
	var groups [][]difflib.OpCode
	if context < 0 {
		groups = [][]difflib.OpCode{m.GetOpCodes()}
	} else {
		groups = m.GetGroupedOpCodes(context)
	}

	var rows []diffRow
	for gi, group := range groups {
		if gi > 0 {
			rows = append(rows, diffRow{Class: "sep"})
		}
		for _, op := range group {
			n := max(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				row := diffRow{Class: opClass(op.Tag)}
				if i := op.I1 + k; i < op.I2 {
					row.LeftNo, row.Left = i+1, a[i]
				}
				if j := op.J1 + k; j < op.J2 {
					row.RightNo, row.Right = j+1, b[j]
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func opClass(tag byte) string {
	switch tag {
	case 'r':
		return "replace"
	case 'd':
		return "delete"
	case 'i':
		return "insert"
	default:
		return "equal"
	}
}

const diffPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.FromDesc}} vs {{.ToDesc}}</title>
<style>
table.diff { border-collapse: collapse; font-family: monospace; width: 100%; }
table.diff td { padding: 2px 6px; vertical-align: top; white-space: pre-wrap; }
td.no { color: #888; text-align: right; width: 3em; }
tr.replace td.text { background: #ffe8a8; }
tr.delete td.left { background: #ffc8c8; }
tr.insert td.right { background: #c8ffc8; }
tr.sep td { border-top: 1px dashed #888; }
</style>
</head>
<body>
<table class="diff">
<tr><th colspan="2">{{.FromDesc}}</th><th colspan="2">{{.ToDesc}}</th></tr>
{{- range .Rows}}
{{- if eq .Class "sep"}}
<tr class="sep"><td colspan="4"></td></tr>
{{- else}}
<tr class="{{.Class}}"><td class="no">{{if .LeftNo}}{{.LeftNo}}{{end}}</td><td class="text left">{{.Left}}</td><td class="no">{{if .RightNo}}{{.RightNo}}{{end}}</td><td class="text right">{{.Right}}</td></tr>
{{- end}}
{{- else}}
<tr><td colspan="4">No differences found.</td></tr>
{{- end}}
</table>
</body>
</html>
`

// DiffWriter renders side-by-side HTML diffs.
type DiffWriter struct {
	page *template.Template
}

// NewDiffWriter parses the page template.
func NewDiffWriter() (*DiffWriter, error) {
	page, err := template.New("diff").Parse(diffPage)
	if err != nil {
		return nil, fmt.Errorf("parsing diff template: %w", err)
	}
	return &DiffWriter{page: page}, nil
}

// Render writes a full page comparing two line lists.
func (w *DiffWriter) Render(path, fromDesc, toDesc string, a, b []string, context int) error {
	var buf bytes.Buffer
	data := struct {
		FromDesc, ToDesc string
		Rows             []diffRow
	}{fromDesc, toDesc, sideBySide(a, b, context)}
	if err := w.page.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteDiffs writes author-diff.html, title-diff.html and abstract-diff.html
// into dir and returns their paths. Abstracts are split into sentences and
// shown with one line of context.
func (r *Report) WriteDiffs(dir string) ([]string, error) {
	w, err := NewDiffWriter()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var metaAbs, pdfAbs []string
	for _, m := range r.Abstracts {
		metaAbs = append(metaAbs, strings.Split(m.Metadata, ". ")...)
		pdfAbs = append(pdfAbs, strings.Split(m.PDF, ". ")...)
	}

	pages := []struct {
		name, what string
		a, b       []string
		context    int
	}{
		{"author-diff.html", "Authors", column(r.Authors, true), column(r.Authors, false), -1},
		{"title-diff.html", "Titles", column(r.Titles, true), column(r.Titles, false), -1},
		{"abstract-diff.html", "Abstracts", metaAbs, pdfAbs, 1},
	}

	var written []string
	for _, p := range pages {
		path := filepath.Join(dir, p.name)
		if err := w.Render(path, p.what+" in Metadata", p.what+" in PDFs", p.a, p.b, p.context); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func column(ms []Mismatch, metadata bool) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		if metadata {
			out[i] = m.Metadata
		} else {
			out[i] = m.PDF
		}
	}
	return out
}
