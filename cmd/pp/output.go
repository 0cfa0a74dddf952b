package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/proceedings/internal/diag"
)

// Constants for output formatting.
const (
	ListTitleMaxLen    = 50 // Used in per-paper listings
	DetailTitleMaxLen  = 70 // Used in single-paper views
	DefaultSearchLimit = 20
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that write files.
type StatusResponse struct {
	Status string   `json:"status"`
	Paths  []string `json:"paths,omitempty"`
}

// DiagnosticSummary counts advisory diagnostics by kind.
type DiagnosticSummary struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind,omitempty"`
}

func summarize(d *diag.Collector) DiagnosticSummary {
	s := DiagnosticSummary{Total: d.Len()}
	for _, item := range d.Items() {
		if s.ByKind == nil {
			s.ByKind = make(map[string]int)
		}
		s.ByKind[string(item.Kind)]++
	}
	return s
}

// printDiagnosticsHuman prints a one-line diagnostic count, if any.
func printDiagnosticsHuman(d *diag.Collector) {
	if d.Len() == 0 {
		return
	}
	outputHuman("%d diagnostic(s) need review; see the warnings above\n", d.Len())
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
