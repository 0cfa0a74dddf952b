// Package pdf reads page counts and text from PDF files, extracts page
// ranges into new documents, and opens files in a viewer.
package pdf

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}

// Counter counts pages through PageCount.
type Counter struct{}

// PageCount implements the page counting interface used by the merger.
func (Counter) PageCount(path string) (int, error) {
	return PageCount(path)
}

// Document is a PDF loaded into memory for page extraction.
type Document struct {
	path string
	ctx  *model.Context
}

// OpenDocument reads and validates a PDF file.
func OpenDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Document{path: path, ctx: ctx}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Extract writes pages first..last (1-based, inclusive) to a new file at dst.
func (d *Document) Extract(dst string, first, last int) error {
	if first < 1 || last > d.ctx.PageCount || first > last {
		return fmt.Errorf("pages %d-%d outside %s (%d pages)", first, last, d.path, d.ctx.PageCount)
	}

	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}

	out, err := pdfcpu.ExtractPages(d.ctx, pages, false)
	if err != nil {
		return fmt.Errorf("extracting pages %d-%d from %s: %w", first, last, d.path, err)
	}
	if err := api.WriteContextFile(out, dst); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

// Rewrite writes an optimised copy of src to dst.
func Rewrite(src, dst string) error {
	if err := api.OptimizeFile(src, dst, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("rewriting %s to %s: %w", src, dst, err)
	}
	return nil
}
