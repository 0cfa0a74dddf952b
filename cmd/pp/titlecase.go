package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/diag"
	"github.com/matsen/proceedings/internal/importer"
	"github.com/matsen/proceedings/internal/titlecase"
)

var titlecaseOutput string

func init() {
	titlecaseCmd.Flags().StringVarP(&titlecaseOutput, "output", "o", "", "Rewritten CSV (required)")
	titlecaseCmd.Flags().String("csv-schema", "", "CSV column preset: cmt, cmt2022 or cmt2020")
	titlecaseCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(titlecaseCmd)
}

var titlecaseCmd = &cobra.Command{
	Use:   "titlecase <export.csv>",
	Short: "Rewrite export titles in smart title case",
	Long: `Rewrite export titles in smart title case.

Every title not yet marked as checked is passed through the title caser and a
TitleChecked column is added. Titles that were fully uppercase, or that
contain words the caser cannot decide on, are reported for manual review.
Mark reviewed rows as checked and later runs leave them alone.

Examples:
  pp titlecase Papers.csv -o Papers_titlecase.csv
  pp titlecase Papers.csv -o out.csv --csv-schema cmt2022 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runTitlecase,
}

// TitlecaseResult is the response for the titlecase command.
type TitlecaseResult struct {
	*importer.RewriteResult
	Output      string            `json:"output"`
	Diagnostics DiagnosticSummary `json:"diagnostics"`
}

func runTitlecase(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd)
	if err != nil {
		return err
	}
	schema, err := importer.SchemaByName(project.CSVSchema)
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer in.Close()

	out, err := os.Create(titlecaseOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", titlecaseOutput, err)
	}
	defer out.Close()

	d := diag.NewCollector(nil)
	res, err := importer.RewriteTitles(in, out, schema, func(title string) string {
		return titlecase.Smart(title, d)
	})
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", titlecaseOutput, err)
	}

	if humanOutput {
		outputHuman("Rewrote %d titles of %d rows (%d already checked) into %s\n",
			res.Changed, res.Rows, res.Skipped, titlecaseOutput)
		outputHuman("  all-caps titles:  %d\n", d.Count(diag.TitleAllCaps))
		outputHuman("  ambiguous words:  %d\n", d.Count(diag.TitleAmbiguous))
		return nil
	}
	return outputJSON(TitlecaseResult{RewriteResult: res, Output: titlecaseOutput, Diagnostics: summarize(d)})
}
