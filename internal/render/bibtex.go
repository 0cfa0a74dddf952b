package render

import (
	"fmt"
	"strings"

	"github.com/matsen/proceedings/internal/author"
	"github.com/matsen/proceedings/internal/paper"
)

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}

// bibKey returns the citation key of a record: its dblp key when known,
// otherwise venue, year and submission id.
func bibKey(venue, year string, r *paper.Record) string {
	if r.DBLPKey != "" {
		return r.DBLPKey
	}
	return fmt.Sprintf("%s%s_%d", strings.ToLower(venue), year, r.ID())
}

// toBibTeX converts one placed record to an inproceedings entry.
func toBibTeX(venue, year, booktitle string, r *paper.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "@inproceedings{%s,\n", bibKey(venue, year, r))
	if len(r.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(r.Authors))
	}
	// Double braces keep the title's casing.
	fmt.Fprintf(&b, "  title = {{%s}},\n", escapeLatex(r.Title))
	fmt.Fprintf(&b, "  booktitle = {%s},\n", escapeLatex(booktitle))
	fmt.Fprintf(&b, "  year = {%s},\n", year)
	if r.Pages != "" {
		fmt.Fprintf(&b, "  pages = {%s},\n", strings.Replace(r.Pages, "-", "--", 1))
	}
	if r.DOI != "" {
		fmt.Fprintf(&b, "  doi = {%s},\n", r.DOI)
	}
	if r.EE != "" {
		fmt.Fprintf(&b, "  url = {%s},\n", r.EE)
	}
	b.WriteString("}\n")
	return b.String()
}

// formatAuthors formats display names BibTeX style: "Last, First and Last, First".
func formatAuthors(names []string) string {
	formatted := make([]string, 0, len(names))
	for _, display := range names {
		n := author.ParseName(display).SurnameWithParticles()
		if n.First != "" {
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(n.Last), escapeLatex(n.First)))
		} else {
			formatted = append(formatted, escapeLatex(n.Last))
		}
	}
	return strings.Join(formatted, " and ")
}
