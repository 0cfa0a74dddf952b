package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/config"
	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/pdf"
)

var (
	openMetadata string
	openSplitDir string
	openSource   bool
)

func init() {
	openCmd.Flags().StringVar(&openMetadata, "metadata", "split_metadata.json", "Metadata used to look papers up")
	openCmd.Flags().StringVar(&openSplitDir, "split-dir", "split", "Directory holding the split PDFs")
	openCmd.Flags().BoolVar(&openSource, "source", false, "Open the submitted PDF instead of the split one")
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <submission-id>...",
	Short: "Open papers' PDFs in the configured viewer",
	Long: `Open papers' PDFs in the configured viewer.

Papers are looked up by submission id in the metadata. The split PDF is
opened by default; --source opens the file the paper was merged from. The
viewer is set with 'pp config pdf-reader'.

Examples:
  pp open 42
  pp open 42 117 --metadata split_metadata.json --split-dir split
  pp open 42 --source --metadata metadata.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

// OpenedPaper is a paper whose PDF was opened.
type OpenedPaper struct {
	ID   int    `json:"submission_id"`
	Path string `json:"path"`
}

// OpenError is a paper that could not be opened.
type OpenError struct {
	ID    string `json:"submission_id"`
	Error string `json:"error"`
}

// OpenMultipleResult is the response for the open command.
type OpenMultipleResult struct {
	Opened []OpenedPaper `json:"opened,omitempty"`
	Errors []OpenError   `json:"errors,omitempty"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	records, err := paper.LoadRecords(openMetadata)
	if err != nil {
		return err
	}
	idx, err := paper.NewIndex(records)
	if err != nil {
		return err
	}

	dir := openSplitDir
	if openSource {
		dir = ""
	}
	opener := pdf.NewOpener(dir, config.PDFReader())

	var result OpenMultipleResult
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			result.Errors = append(result.Errors, OpenError{ID: arg, Error: "not a submission id"})
			continue
		}
		rec, ok := idx.Get(id)
		if !ok {
			result.Errors = append(result.Errors, OpenError{ID: arg, Error: "paper not found in " + openMetadata})
			continue
		}

		name := rec.Extra.SplitFile
		if openSource {
			name = rec.Extra.OriginalFile
		}
		if name == "" {
			result.Errors = append(result.Errors, OpenError{ID: arg, Error: "paper has no PDF recorded; run split first"})
			continue
		}

		path, err := opener.ResolvePath(name)
		if err != nil {
			result.Errors = append(result.Errors, OpenError{ID: arg, Error: err.Error()})
			continue
		}
		if err := opener.Open(path); err != nil {
			result.Errors = append(result.Errors, OpenError{ID: arg, Error: fmt.Sprintf("opening PDF: %v", err)})
			continue
		}
		result.Opened = append(result.Opened, OpenedPaper{ID: id, Path: path})
	}

	if humanOutput {
		if len(result.Opened) > 0 {
			fmt.Printf("Opening %d paper(s):\n", len(result.Opened))
		}
		for _, o := range result.Opened {
			fmt.Printf("  ✓ %d: %s\n", o.ID, o.Path)
		}
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: %s\n", e.ID, e.Error)
		}
	} else {
		outputJSON(result)
	}

	if len(result.Opened) == 0 {
		return exitErrorSilent(ExitDataError)
	}
	return nil
}
