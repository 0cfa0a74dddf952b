package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/pdf"
	"github.com/matsen/proceedings/internal/split"
)

var (
	splitOrder       string
	splitOutputDir   string
	splitMetadataOut string
	splitDryRun      bool
)

func init() {
	splitCmd.Flags().StringVar(&splitOrder, "order", "", "Session order JSON (default session_order.json next to the metadata)")
	splitCmd.Flags().StringVarP(&splitOutputDir, "output", "o", "split", "Directory for the per-paper PDFs")
	splitCmd.Flags().StringVar(&splitMetadataOut, "metadata-out", "split_metadata.json", "Split metadata output")
	splitCmd.Flags().Int("start-page", 0, "Printed page number of the first session divider")
	splitCmd.Flags().Int("pdf-offset", 0, "Printed page p is page p+offset of the proceedings PDF")
	splitCmd.Flags().BoolVar(&splitDryRun, "dry-run", false, "Compute and check page ranges without writing PDFs")
	rootCmd.AddCommand(splitCmd)
}

var splitCmd = &cobra.Command{
	Use:   "split <metadata.json> <proceedings.pdf>",
	Short: "Split the assembled proceedings into one PDF per paper",
	Long: `Split the assembled proceedings into one PDF per paper.

Papers are laid out session by session: a two-page divider opens each
session and every session starts on an odd page. The computed printed page
range and the split file name are written back onto each record.

Every range is checked against the proceedings PDF before any page is
extracted, so a wrong --pdf-offset fails without writing partial output.

Examples:
  pp split metadata.json proceedings.pdf
  pp split metadata.json proceedings.pdf --start-page 13 --pdf-offset 2
  pp split metadata.json proceedings.pdf --order session_order.json --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runSplit,
}

// SplitResult is the response for the split command.
type SplitResult struct {
	Papers     int    `json:"papers"`
	Sessions   int    `json:"sessions"`
	FirstPage  int    `json:"first_page"`
	NextPage   int    `json:"next_page"`
	BlankPages int    `json:"blank_pages"`
	OutputDir  string `json:"output_dir,omitempty"`
	Metadata   string `json:"metadata"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

func runSplit(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd)
	if err != nil {
		return err
	}

	records, err := paper.LoadRecords(args[0])
	if err != nil {
		return err
	}
	orderPath := splitOrder
	if orderPath == "" {
		orderPath = filepath.Join(filepath.Dir(args[0]), "session_order.json")
	}
	order, err := paper.LoadSessionOrder(orderPath)
	if err != nil {
		return err
	}

	doc, err := pdf.OpenDocument(args[1])
	if err != nil {
		return err
	}
	slog.Info("opened proceedings", "path", args[1], "pages", doc.PageCount())

	res, err := split.Run(records, order, doc, split.Options{
		StartPage: project.StartPage,
		PDFOffset: project.PDFOffset,
		OutputDir: splitOutputDir,
		DryRun:    splitDryRun,
	})
	if err != nil {
		return err
	}
	if err := paper.WriteJSON(splitMetadataOut, res.Records); err != nil {
		return err
	}

	out := SplitResult{
		Papers:     len(res.Records),
		Sessions:   len(res.Layout.Sessions),
		FirstPage:  project.StartPage,
		NextPage:   res.Layout.NextPage,
		BlankPages: res.Layout.BlankPages,
		Metadata:   splitMetadataOut,
		DryRun:     splitDryRun,
	}
	if !splitDryRun {
		out.OutputDir = splitOutputDir
	}

	if humanOutput {
		verb := "Split"
		if splitDryRun {
			verb = "Laid out"
		}
		outputHuman("%s %d papers in %d sessions, pages %d-%d (%d blank)\n",
			verb, out.Papers, out.Sessions, out.FirstPage, out.NextPage-1, out.BlankPages)
		for _, r := range res.Records {
			outputHuman("  %-7s %s  %s\n", r.Pages, r.Extra.SplitFile, truncateString(r.Title, ListTitleMaxLen))
		}
		outputHuman("Metadata written to %s\n", out.Metadata)
		return nil
	}
	return outputJSON(out)
}
