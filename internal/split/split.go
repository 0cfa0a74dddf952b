// Package split cuts the assembled proceedings PDF into one file per paper.
package split

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/matsen/proceedings/internal/layout"
	"github.com/matsen/proceedings/internal/paper"
)

// DefaultNameWidth is the zero-padded width of split file names.
const DefaultNameWidth = 6

// Extractor is a loaded source document.
type Extractor interface {
	PageCount() int
	Extract(dst string, first, last int) error
}

// Options configures a split run.
type Options struct {
	StartPage int // Printed page number of the first session divider
	PDFOffset int // Printed page p is page p+PDFOffset of the source PDF
	OutputDir string
	NameWidth int  // Zero padding of output names; DefaultNameWidth when 0
	DryRun    bool // Compute and check ranges without writing files
}

// RangeError reports a paper whose pages fall outside the source document.
type RangeError struct {
	PaperID   int
	Printed   paper.PageRange
	PDFFirst  int
	PDFLast   int
	PageCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("paper %d: printed pages %s map to PDF pages %d-%d, but the document has %d pages",
		e.PaperID, e.Printed, e.PDFFirst, e.PDFLast, e.PageCount)
}

// Result holds the split records in traversal order and the layout used.
type Result struct {
	Records []*paper.Record
	Layout  *layout.Layout
}

// Run lays out the papers, checks every range against the document, then
// extracts each paper. The split file name and printed page range are written
// back onto the records.
func Run(records []*paper.Record, order paper.SessionOrder, doc Extractor, opts Options) (*Result, error) {
	if opts.NameWidth <= 0 {
		opts.NameWidth = DefaultNameWidth
	}

	idx, err := paper.NewIndex(records)
	if err != nil {
		return nil, err
	}
	l, err := layout.Compute(order, idx, opts.StartPage)
	if err != nil {
		return nil, err
	}

	total := doc.PageCount()
	for _, p := range l.Placements {
		first, last := p.Range.First+opts.PDFOffset, p.Range.Last+opts.PDFOffset
		if first < 1 || last > total {
			return nil, &RangeError{PaperID: p.PaperID, Printed: p.Range, PDFFirst: first, PDFLast: last, PageCount: total}
		}
	}

	if !opts.DryRun {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", opts.OutputDir, err)
		}
	}

	out := make([]*paper.Record, 0, len(l.Placements))
	for _, p := range l.Placements {
		r, _ := idx.Get(p.PaperID)
		name := fmt.Sprintf("%0*d.pdf", opts.NameWidth, p.Sequence)

		if !opts.DryRun {
			dst := filepath.Join(opts.OutputDir, name)
			if err := doc.Extract(dst, p.Range.First+opts.PDFOffset, p.Range.Last+opts.PDFOffset); err != nil {
				return nil, fmt.Errorf("paper %d: %w", p.PaperID, err)
			}
		}
		slog.Info("split paper", "id", p.PaperID, "pages", p.Range.String(), "file", name)

		r.Extra.SplitFile = name
		r.Pages = p.Range.String()
		out = append(out, r)
	}

	if len(out) != len(records) {
		slog.Warn("records not placed in any session", "count", len(records)-len(out))
	}
	return &Result{Records: out, Layout: l}, nil
}
