package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/author"
	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/storage"
)

var (
	authorsDB        string
	authorsIndexHTML string
	authorsTitle     string
	authorsSearch    string
	authorsLimit     int
	authorsFilter    []string
	authorsList      bool
)

func init() {
	authorsCmd.Flags().StringVar(&authorsDB, "db", ":memory:", "SQLite database path (rebuilt on every run)")
	authorsCmd.Flags().StringVar(&authorsIndexHTML, "index-html", "", "Write the author index as HTML to this path")
	authorsCmd.Flags().StringVar(&authorsTitle, "title", "Author Index", "Heading of the HTML author index")
	authorsCmd.Flags().StringVar(&authorsSearch, "search", "", "Full-text search over titles and author names")
	authorsCmd.Flags().IntVar(&authorsLimit, "limit", DefaultSearchLimit, "Maximum number of search results")
	authorsCmd.Flags().StringArrayVarP(&authorsFilter, "author", "a", nil, "Only papers by this author (repeatable, all must match)")
	authorsCmd.Flags().BoolVar(&authorsList, "list", false, "Include the full author index in the output")
	rootCmd.AddCommand(authorsCmd)
}

var authorsCmd = &cobra.Command{
	Use:   "authors <metadata.json>",
	Short: "Author statistics, author index and search",
	Long: `Author statistics, author index and search.

Loads the metadata into an SQLite database and reports the number of papers,
authorships and distinct authors. The author index lists every author by
accent-folded surname with the first printed page of each of their papers.

Author filters match the surname exactly (ignoring case and accents) and the
first name by prefix: "Doe", "Jane Doe" and "Doe, Jane" are all accepted.

Examples:
  pp authors split_metadata.json
  pp authors output/2024_internal.json --index-html output/author_index.html
  pp authors metadata.json --search "beat tracking" --human
  pp authors metadata.json -a "Lovelace" -a "Turing, Alan" --list`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthors,
}

// AuthorsResult is the response for the authors command.
type AuthorsResult struct {
	storage.Stats
	Index     []storage.IndexEntry `json:"index,omitempty"`
	IndexHTML string               `json:"index_html,omitempty"`
	Hits      []storage.Hit        `json:"hits,omitempty"`
}

func runAuthors(cmd *cobra.Command, args []string) error {
	records, err := paper.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(authorsFilter) > 0 {
		records = filterByAuthors(records, authorsFilter)
		slog.Info("filtered papers by author", "queries", authorsFilter, "papers", len(records))
	}

	db, err := storage.OpenDB(authorsDB)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Rebuild(records); err != nil {
		return err
	}
	stats, err := db.Stats()
	if err != nil {
		return err
	}
	out := AuthorsResult{Stats: stats}

	if authorsList || authorsIndexHTML != "" {
		entries, err := db.Index()
		if err != nil {
			return err
		}
		if authorsList {
			out.Index = entries
		}
		if authorsIndexHTML != "" {
			if err := writeIndexHTML(authorsIndexHTML, authorsTitle, entries); err != nil {
				return err
			}
			out.IndexHTML = authorsIndexHTML
		}
	}

	if authorsSearch != "" {
		out.Hits, err = db.Search(authorsSearch, authorsLimit)
		if err != nil {
			return err
		}
	}

	if humanOutput {
		printAuthorsHuman(out)
		return nil
	}
	return outputJSON(out)
}

func filterByAuthors(records []*paper.Record, filters []string) []*paper.Record {
	queries := make([]author.Query, len(filters))
	for i, f := range filters {
		queries[i] = author.ParseQuery(f)
	}
	var out []*paper.Record
	for _, r := range records {
		if author.AllMatch(queries, r.Authors) {
			out = append(out, r)
		}
	}
	return out
}

func writeIndexHTML(path, title string, entries []storage.IndexEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := storage.WriteIndexHTML(f, title, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printAuthorsHuman(out AuthorsResult) {
	outputHuman("Papers:                %d\n", out.Papers)
	outputHuman("Authorships:           %d\n", out.Authorships)
	outputHuman("Unique authors:        %d\n", out.UniqueAuthors)
	outputHuman("Authors per paper:     %.2f\n", out.AuthorsPerPaper)
	outputHuman("Unique authors/paper:  %.2f\n", out.UniquePerPaper)

	for _, e := range out.Index {
		pages := make([]string, len(e.Papers))
		for i, p := range e.Papers {
			pages[i] = fmt.Sprint(p.FirstPage)
		}
		outputHuman("  %s, %s\n", e.Name, strings.Join(pages, ", "))
	}
	if out.IndexHTML != "" {
		outputHuman("Author index written to %s\n", out.IndexHTML)
	}
	if len(out.Hits) > 0 {
		outputHuman("\n")
	}
	for i, h := range out.Hits {
		outputHuman("%d. [%d] %s\n   %s\n", i+1, h.SubmissionID, truncateString(h.Title, DetailTitleMaxLen), h.Authors)
	}
}
