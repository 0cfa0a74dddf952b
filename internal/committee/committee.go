// Package committee renders the program committee section of the
// proceedings front matter from reviewer exports.
package committee

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/matsen/proceedings/internal/author"
)

// Reviewer is one row of a reviewer export.
type Reviewer struct {
	First        string `csv:"First Name"`
	Middle       string `csv:"Middle Initial (optional)"`
	Last         string `csv:"Last Name"`
	Organization string `csv:"Organization"`
	Completed    int    `csv:"Completed"`
}

// Name returns the display name. Single-letter middle initials get a period.
func (r Reviewer) Name() string {
	parts := []string{strings.TrimSpace(r.First)}
	for _, m := range strings.Fields(r.Middle) {
		if len([]rune(m)) == 1 {
			m += "."
		}
		parts = append(parts, m)
	}
	parts = append(parts, strings.TrimSpace(r.Last))
	return strings.Join(parts, " ")
}

// Line returns the LaTeX line for the reviewer list.
func (r Reviewer) Line(affiliation bool) string {
	line := r.Name()
	if org := strings.TrimSpace(r.Organization); affiliation && org != "" {
		line += ", " + strings.ReplaceAll(org, "&", `\&`)
	}
	return line + `\\`
}

// ReadReviewers decodes a reviewer export and returns the reviewers who
// completed at least one review, sorted by accent-folded last name.
func ReadReviewers(r io.Reader) ([]Reviewer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var rows []Reviewer
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing reviewers: %w", err)
	}

	out := rows[:0]
	for _, row := range rows {
		if row.Completed > 0 {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToUpper(author.Fold(out[i].Last)) < strings.ToUpper(author.Fold(out[j].Last))
	})
	return out, nil
}

// LoadReviewers reads a reviewer export from disk.
func LoadReviewers(path string) ([]Reviewer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	revs, err := ReadReviewers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return revs, nil
}

// WriteTeX writes the Program Committee section: meta-reviewers with their
// affiliations, then reviewers in three columns without.
func WriteTeX(w io.Writer, meta, reviewers []Reviewer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "\\section*{Program Committee}\n\n")
	fmt.Fprint(bw, "\\subsection*{Meta-Reviewers}\n\n")
	fmt.Fprint(bw, "\\begin{reviewers}\n")
	for _, r := range meta {
		fmt.Fprintln(bw, r.Line(true))
	}
	fmt.Fprint(bw, "\\end{reviewers}\n\n\n")
	fmt.Fprint(bw, "\\subsection*{Reviewers}\n\n")
	fmt.Fprint(bw, "\\begin{multicols}{3}\n")
	fmt.Fprint(bw, "\\begin{reviewers}\n")
	for _, r := range reviewers {
		fmt.Fprintln(bw, r.Line(false))
	}
	fmt.Fprint(bw, "\\end{reviewers}\n")
	fmt.Fprint(bw, "\\end{multicols}\n")
	return bw.Flush()
}
