package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

const checkedMark = "yes"

// RewriteResult summarises a title rewrite.
type RewriteResult struct {
	Rows    int `json:"rows"`
	Changed int `json:"changed"`
	Skipped int `json:"skipped"` // Rows already marked as checked
}

// RewriteTitles copies an export from r to w, passing every title not yet
// marked as checked through convert and marking it checked. Column order is
// preserved, the checked column is appended when missing, and all cells are
// trimmed.
func RewriteTitles(r io.Reader, w io.Writer, schema Schema, convert func(string) string) (*RewriteResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	records, err := gocsv.DefaultCSVReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decoding CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCSV
	}

	header := records[0]
	checkedName := schema.checkedColumn()
	titleCol, checkedCol := -1, -1
	for i, h := range header {
		switch h {
		case schema.Title:
			titleCol = i
		case checkedName:
			checkedCol = i
		}
	}
	if titleCol < 0 {
		return nil, &MissingColumnError{Column: schema.Title, Schema: schema.Name}
	}
	if checkedCol < 0 {
		header = append(header, checkedName)
		checkedCol = len(header) - 1
	}

	out := gocsv.DefaultCSVWriter(w)
	if err := out.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	res := &RewriteResult{}
	for _, rec := range records[1:] {
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		res.Rows++

		if truthy(rec[checkedCol]) {
			res.Skipped++
		} else {
			if title := convert(rec[titleCol]); title != rec[titleCol] {
				rec[titleCol] = title
				res.Changed++
			}
			rec[checkedCol] = checkedMark
		}
		if err := out.Write(rec); err != nil {
			return nil, fmt.Errorf("writing CSV row %d: %w", res.Rows, err)
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return res, nil
}
