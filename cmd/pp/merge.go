package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/diag"
	"github.com/matsen/proceedings/internal/importer"
	"github.com/matsen/proceedings/internal/merge"
	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/pdf"
)

var (
	mergePDFDir    string
	mergeOutput    string
	mergeOrderOut  string
	mergeSessions  string
	mergeExclude   []int
	mergeTitlecase bool
	mergeCopyDir   string
)

func init() {
	mergeCmd.Flags().StringVar(&mergePDFDir, "pdf-dir", "", "Directory holding the submitted PDFs (required)")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "metadata.json", "Merged metadata output")
	mergeCmd.Flags().StringVar(&mergeOrderOut, "order-out", "", "Session order output (default session_order.json next to --output)")
	mergeCmd.Flags().StringVar(&mergeSessions, "sessions", "", "Session list (one name per line) or JSON session order")
	mergeCmd.Flags().String("year", "", "Proceedings year")
	mergeCmd.Flags().String("csv-schema", "", "CSV column preset: cmt, cmt2022 or cmt2020")
	mergeCmd.Flags().String("file-layout", "", "PDF directory layout: camera-ready, exact or prefixed")
	mergeCmd.Flags().IntSliceVar(&mergeExclude, "exclude", nil, "Submission ids to leave out")
	mergeCmd.Flags().BoolVar(&mergeTitlecase, "titlecase", false, "Apply smart title case to titles not marked as checked")
	mergeCmd.Flags().StringVar(&mergeCopyDir, "copy-dir", "", "Copy matched PDFs here under their canonical names")
	mergeCmd.MarkFlagRequired("pdf-dir")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge <export.csv>",
	Short: "Merge the submission export with the camera-ready PDFs",
	Long: `Merge the submission export with the camera-ready PDFs.

Each CSV row becomes a paper record. Its PDF is located under --pdf-dir and
its page count is read from the file. Author names are normalised and the
session order is taken from --sessions, or inferred from the data.

Writes the metadata array and the session order consumed by 'pp split'.

Examples:
  pp merge Papers.csv --pdf-dir CameraReady --year 2024
  pp merge Papers.csv --pdf-dir pdfs --file-layout exact --sessions sessions.txt
  pp merge Papers.csv --pdf-dir pdfs --exclude 17,42 --titlecase --copy-dir articles`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

// MergeResult is the response for the merge command.
type MergeResult struct {
	Papers      int               `json:"papers"`
	Sessions    int               `json:"sessions"`
	Pages       int               `json:"pages"`
	Metadata    string            `json:"metadata"`
	Order       string            `json:"order"`
	Copied      string            `json:"copied_to,omitempty"`
	Diagnostics DiagnosticSummary `json:"diagnostics"`
}

func runMerge(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if err := project.RequireYear(); err != nil {
		return err
	}
	schema, err := importer.SchemaByName(project.CSVSchema)
	if err != nil {
		return err
	}
	fileLayout, err := merge.ParseLayout(project.FileLayout)
	if err != nil {
		return err
	}

	opts := merge.Options{
		Year:      project.Year,
		Schema:    schema,
		Locator:   merge.Locator{Dir: mergePDFDir, Layout: fileLayout},
		Titlecase: mergeTitlecase,
		Exclude:   mergeExclude,
	}
	if mergeSessions != "" {
		opts.Sessions, err = paper.ReadSessionFile(mergeSessions)
		if err != nil {
			return err
		}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	d := diag.NewCollector(nil)
	rows, err := importer.ReadCMT(f, schema, d)
	if err != nil {
		return err
	}
	slog.Info("read export", "path", args[0], "rows", len(rows), "schema", schema.Name)

	res, err := merge.Merge(rows, opts, pdf.Counter{}, d)
	if err != nil {
		return err
	}

	orderOut := mergeOrderOut
	if orderOut == "" {
		orderOut = filepath.Join(filepath.Dir(mergeOutput), "session_order.json")
	}
	if err := paper.WriteJSON(mergeOutput, res.Records); err != nil {
		return err
	}
	if err := paper.WriteJSON(orderOut, res.Order); err != nil {
		return err
	}

	if mergeCopyDir != "" {
		if err := merge.CopyPapers(res.Records, mergeCopyDir, pdf.Rewrite); err != nil {
			return err
		}
	}

	out := MergeResult{
		Papers:      len(res.Records),
		Sessions:    len(res.Order),
		Metadata:    mergeOutput,
		Order:       orderOut,
		Copied:      mergeCopyDir,
		Diagnostics: summarize(d),
	}
	for _, r := range res.Records {
		out.Pages += r.Extra.NumPages
	}

	if humanOutput {
		outputHuman("Merged %d papers in %d sessions (%d pages)\n", out.Papers, out.Sessions, out.Pages)
		outputHuman("  metadata: %s\n  order:    %s\n", out.Metadata, out.Order)
		if out.Copied != "" {
			outputHuman("  copied:   %s\n", out.Copied)
		}
		printDiagnosticsHuman(d)
		return nil
	}
	return outputJSON(out)
}
