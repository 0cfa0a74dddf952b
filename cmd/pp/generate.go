package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/render"
)

var (
	generateOutputDir string
	generateOrder     string
)

func init() {
	generateCmd.Flags().StringVarP(&generateOutputDir, "output", "o", "output", "Directory for the generated artifacts")
	generateCmd.Flags().StringVar(&generateOrder, "order", "", "Session order JSON (default session_order.json next to the metadata)")
	generateCmd.Flags().String("year", "", "Proceedings year")
	generateCmd.Flags().String("venue", "", "Short venue name")
	generateCmd.Flags().String("book-title", "", "BibTeX booktitle")
	generateCmd.Flags().String("archive-url", "", "Electronic edition URL pattern with {year} and {file}")
	generateCmd.Flags().Int("start-page", 0, "Printed page number of the first session divider")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <split_metadata.json>",
	Short: "Generate the publication artifacts from split metadata",
	Long: `Generate the publication artifacts from split metadata.

The page layout is recomputed from the split metadata and the session order
written by 'pp merge'. It must agree with the page ranges recorded by
'pp split'. Writes:
  overview_table.html            HTML table of contents
  publications_<VENUE><year>.txt dblp table of contents
  overview.csv                   flat spreadsheet of the volume
  papers.tex                     paper list for the LaTeX volume
  <venue><year>.bib              BibTeX entries
  <year>.json                    public metadata
  <year>_internal.json           metadata with bookkeeping

Examples:
  pp generate split_metadata.json --year 2024
  pp generate split_metadata.json -o site --archive-url 'https://example.org/{year}/{file}'`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

// GenerateResult is the response for the generate command.
type GenerateResult struct {
	Papers   int      `json:"papers"`
	Sessions int      `json:"sessions"`
	Pages    int      `json:"pages"`
	Files    []string `json:"files"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := project.RequireYear(); err != nil {
		return err
	}

	records, err := paper.LoadRecords(args[0])
	if err != nil {
		return err
	}
	orderPath := generateOrder
	if orderPath == "" {
		orderPath = filepath.Join(filepath.Dir(args[0]), "session_order.json")
	}
	order, err := paper.LoadSessionOrder(orderPath)
	if err != nil {
		return err
	}

	r, err := render.New(render.Config{
		Venue:      project.Venue,
		Year:       project.Year,
		BookTitle:  project.BookTitle,
		ArchiveURL: project.ArchiveURL,
		StartPage:  project.StartPage,
		OutputDir:  generateOutputDir,
	})
	if err != nil {
		return err
	}
	ctx, err := r.Build(records, order)
	if err != nil {
		return err
	}
	files, err := r.WriteAll(ctx)
	if err != nil {
		return err
	}

	out := GenerateResult{
		Papers:   len(ctx.Records),
		Sessions: len(ctx.Sessions),
		Pages:    ctx.Layout.TotalPages(),
		Files:    files,
	}
	if humanOutput {
		outputHuman("Generated %d files for %d papers in %d sessions (%d pages)\n",
			len(files), out.Papers, out.Sessions, out.Pages)
		for _, f := range files {
			outputHuman("  %s\n", f)
		}
		return nil
	}
	return outputJSON(out)
}
