// Package qc compares paper metadata against the text printed on each
// paper's first page.
package qc

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/matsen/proceedings/internal/author"
	"github.com/matsen/proceedings/internal/diag"
	"github.com/matsen/proceedings/internal/paper"
)

// TextSource returns the text of the first page of a PDF.
type TextSource interface {
	FirstPageText(path string) (string, error)
}

// Mismatch is one field that differs between metadata and PDF.
type Mismatch struct {
	PaperID  int    `json:"submission_id"`
	Metadata string `json:"metadata"`
	PDF      string `json:"pdf"`
}

// Report summarises a QC run.
type Report struct {
	Checked   int        `json:"checked"`
	Unparsed  []int      `json:"unparsed"`
	Authors   []Mismatch `json:"authors"`
	Titles    []Mismatch `json:"titles"`
	Abstracts []Mismatch `json:"abstracts"`
}

// Clean reports whether every parsed paper matched.
func (r *Report) Clean() bool {
	return len(r.Authors) == 0 && len(r.Titles) == 0 && len(r.Abstracts) == 0
}

// Checker runs QC over split papers.
type Checker struct {
	Dir       string // Directory holding the split files
	Source    TextSource
	Extractor *Extractor
}

// Check compares every record with its split PDF. Papers whose text cannot be
// read or parsed are listed in Unparsed and reported as diagnostics; they
// never stop the run.
func (c *Checker) Check(records []*paper.Record, d *diag.Collector) (*Report, error) {
	if c.Extractor == nil {
		return nil, fmt.Errorf("no pattern set configured")
	}

	rep := &Report{}
	for _, rec := range records {
		if rec.Extra == nil || rec.Extra.SplitFile == "" {
			return nil, fmt.Errorf("paper %q has no split file; run split first", rec.Title)
		}
		id := rec.ID()
		path := filepath.Join(c.Dir, rec.Extra.SplitFile)
		rep.Checked++

		raw, err := c.Source.FirstPageText(path)
		if err != nil {
			rep.Unparsed = append(rep.Unparsed, id)
			d.Warn(diag.PDFUnparsed, rec.Extra.SplitFile, "paper %d: reading first page: %v", id, err)
			continue
		}

		got, err := c.Extractor.Extract(raw)
		switch {
		case errors.Is(err, ErrNoAttribution):
			rep.Unparsed = append(rep.Unparsed, id)
			d.Warn(diag.PDFUnparsed, rec.Extra.SplitFile, "paper %d: %v", id, err)
			continue
		case errors.Is(err, ErrNoAbstract):
			d.Warn(diag.PDFUnparsed, rec.Extra.SplitFile, "paper %d: %v", id, err)
		case err != nil:
			return nil, err
		}

		metaLast := strings.Join(author.LastNames(rec.Authors), " ")
		pdfLast := strings.Join(author.LastNames(got.Authors), " ")
		if metaLast != pdfLast {
			rep.Authors = append(rep.Authors, Mismatch{PaperID: id, Metadata: metaLast, PDF: pdfLast})
		}
		if !strings.EqualFold(got.Title, rec.Title) {
			rep.Titles = append(rep.Titles, Mismatch{PaperID: id, Metadata: strings.ToUpper(rec.Title), PDF: strings.ToUpper(got.Title)})
		}
		metaAbstract := strings.Join(strings.Fields(rec.Abstract), " ")
		if err == nil && got.Abstract != metaAbstract {
			rep.Abstracts = append(rep.Abstracts, Mismatch{PaperID: id, Metadata: metaAbstract, PDF: got.Abstract})
		}
		slog.Debug("checked paper", "id", id, "file", rec.Extra.SplitFile)
	}

	slog.Info("quality control finished", "checked", rep.Checked, "unparsed", len(rep.Unparsed),
		"author_mismatches", len(rep.Authors), "title_mismatches", len(rep.Titles), "abstract_mismatches", len(rep.Abstracts))
	return rep, nil
}
