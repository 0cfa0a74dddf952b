package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/committee"
)

var committeeOutput string

func init() {
	committeeCmd.Flags().StringVarP(&committeeOutput, "output", "o", "committee.tex", "LaTeX output")
	rootCmd.AddCommand(committeeCmd)
}

var committeeCmd = &cobra.Command{
	Use:   "committee <meta-reviewers.csv> <reviewers.csv>",
	Short: "Render the Program Committee section from reviewer exports",
	Long: `Render the Program Committee section from reviewer exports.

Both files are reviewer exports from the submission platform. Only reviewers
who completed at least one review are listed, sorted by surname.
Meta-reviewers are printed with their organisation; reviewers are printed in
three columns without.

Examples:
  pp committee MetaReviewers.csv Reviewers.csv
  pp committee MetaReviewers.csv Reviewers.csv -o tex/committee.tex`,
	Args: cobra.ExactArgs(2),
	RunE: runCommittee,
}

// CommitteeResult is the response for the committee command.
type CommitteeResult struct {
	MetaReviewers int    `json:"meta_reviewers"`
	Reviewers     int    `json:"reviewers"`
	Output        string `json:"output"`
}

func runCommittee(cmd *cobra.Command, args []string) error {
	meta, err := committee.LoadReviewers(args[0])
	if err != nil {
		return err
	}
	reviewers, err := committee.LoadReviewers(args[1])
	if err != nil {
		return err
	}

	f, err := os.Create(committeeOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", committeeOutput, err)
	}
	if err := committee.WriteTeX(f, meta, reviewers); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", committeeOutput, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", committeeOutput, err)
	}

	out := CommitteeResult{MetaReviewers: len(meta), Reviewers: len(reviewers), Output: committeeOutput}
	if humanOutput {
		outputHuman("Wrote %d meta-reviewers and %d reviewers to %s\n", out.MetaReviewers, out.Reviewers, out.Output)
		return nil
	}
	return outputJSON(out)
}
