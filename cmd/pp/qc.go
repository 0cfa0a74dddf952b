package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/diag"
	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/pdf"
	"github.com/matsen/proceedings/internal/qc"
)

var (
	qcSplitDir  string
	qcOutputDir string
)

func init() {
	qcCmd.Flags().StringVar(&qcSplitDir, "split-dir", "split", "Directory holding the split PDFs")
	qcCmd.Flags().StringVarP(&qcOutputDir, "output", "o", "qc", "Directory for the diff reports")
	qcCmd.Flags().String("patterns", "", "YAML pattern set for first-page parsing (default: built-in ISMIR set)")
	rootCmd.AddCommand(qcCmd)
}

var qcCmd = &cobra.Command{
	Use:   "qc <split_metadata.json>",
	Short: "Compare split PDFs against the metadata",
	Long: `Compare split PDFs against the metadata.

The first page of every split paper is parsed for its author line, title and
abstract, which are compared with the metadata. Differences are written as
side-by-side HTML diffs:
  author-diff.html, title-diff.html, abstract-diff.html

Pages that cannot be parsed are reported but never stop the run.

Examples:
  pp qc split_metadata.json
  pp qc split_metadata.json --split-dir articles --patterns patterns/ismir2019.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runQC,
}

// QCResult is the response for the qc command.
type QCResult struct {
	*qc.Report
	Patterns string   `json:"patterns"`
	Files    []string `json:"files"`
	Clean    bool     `json:"clean"`
}

func runQC(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd)
	if err != nil {
		return err
	}

	set := qc.DefaultPatterns()
	if project.QCPatterns != "" {
		set, err = qc.LoadPatterns(project.QCPatterns)
		if err != nil {
			return err
		}
	}
	extractor, err := set.Compile()
	if err != nil {
		return err
	}

	records, err := paper.LoadRecords(args[0])
	if err != nil {
		return err
	}

	d := diag.NewCollector(nil)
	checker := &qc.Checker{Dir: qcSplitDir, Source: pdf.TextSource{}, Extractor: extractor}
	report, err := checker.Check(records, d)
	if err != nil {
		return err
	}
	files, err := report.WriteDiffs(qcOutputDir)
	if err != nil {
		return err
	}

	out := QCResult{Report: report, Patterns: set.Name, Files: files, Clean: report.Clean()}
	if humanOutput {
		outputHuman("Checked %d papers with the %s patterns (%d unparsed)\n", report.Checked, set.Name, len(report.Unparsed))
		outputHuman("  author mismatches:   %d\n", len(report.Authors))
		outputHuman("  title mismatches:    %d\n", len(report.Titles))
		outputHuman("  abstract mismatches: %d\n", len(report.Abstracts))
		for _, f := range files {
			outputHuman("  %s\n", f)
		}
		return nil
	}
	return outputJSON(out)
}
