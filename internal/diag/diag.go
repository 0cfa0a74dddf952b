// Package diag collects advisory diagnostics raised by the normalisation
// heuristics. Diagnostics never stop a run; they are logged for a human to
// review before publication.
package diag

import (
	"fmt"
	"log/slog"
)

// Kind classifies a diagnostic.
type Kind string

const (
	TitleAllCaps    Kind = "title_all_caps"   // Title was fully uppercase and re-cased
	TitleAmbiguous  Kind = "title_ambiguous"  // Word may be a preposition or an adverb
	AuthorCase      Kind = "author_case"      // Name fragment was re-cased
	AuthorMismatch  Kind = "author_mismatch"  // Name/email/affiliation lists disagree
	PDFUnparsed     Kind = "pdf_unparsed"     // Attribution text not found on first page
	MetadataMissing Kind = "metadata_missing" // Optional metadata column empty
)

// Diagnostic is a single advisory message.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject"` // Title, author or file the message is about
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// Collector accumulates diagnostics and logs each one as it arrives.
// A nil *Collector discards everything.
type Collector struct {
	logger *slog.Logger
	items  []Diagnostic
}

// NewCollector creates a collector logging through logger. A nil logger uses slog.Default.
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Warn records a diagnostic.
func (c *Collector) Warn(kind Kind, subject, format string, args ...any) {
	if c == nil {
		return
	}
	d := Diagnostic{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
	c.items = append(c.items, d)
	c.logger.Warn(d.Message, "kind", string(kind), "subject", subject)
}

// Items returns the diagnostics recorded so far.
func (c *Collector) Items() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.items
}

// Count returns how many diagnostics of the given kind were recorded.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, d := range c.Items() {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the total number of diagnostics.
func (c *Collector) Len() int {
	return len(c.Items())
}
