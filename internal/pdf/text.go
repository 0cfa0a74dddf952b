package pdf

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PageText extracts the plain text of one page (1-based).
func PageText(path string, page int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if page < 1 || page > r.NumPage() {
		return "", fmt.Errorf("page %d outside %s (%d pages)", page, path, r.NumPage())
	}

	p := r.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d of %s has no content", page, path)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return text, nil
}

// FirstPageText copies the first page of path into a temporary document and
// returns its text. Text extraction on the single page is far less sensitive
// to damage elsewhere in the file.
func FirstPageText(path string) (string, error) {
	doc, err := OpenDocument(path)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "pp-first-page-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := doc.Extract(tmpPath, 1, 1); err != nil {
		return "", err
	}
	return PageText(tmpPath, 1)
}

// TextSource reads first-page text with FirstPageText.
type TextSource struct{}

// FirstPageText implements the text source used by quality control.
func (TextSource) FirstPageText(path string) (string, error) {
	return FirstPageText(path)
}
