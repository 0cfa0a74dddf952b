package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/config"
	"github.com/matsen/proceedings/internal/deposit"
	"github.com/matsen/proceedings/internal/paper"
)

var (
	depositsCompleted string
	depositsRemaining string
	depositsCreated   string
	depositsSize      int
	depositsBaseURL   string
	depositsEnvFile   string
)

func init() {
	depositsCmd.Flags().StringVar(&depositsCompleted, "completed", "publications_completed.json", "Output for publications already uploaded")
	depositsCmd.Flags().StringVar(&depositsRemaining, "remaining", "publications_remaining.json", "Output for publications still to upload")
	depositsCmd.Flags().StringVar(&depositsCreated, "created", "", "Only count depositions created on this date (prefix such as 2024-11-05)")
	depositsCmd.Flags().IntVar(&depositsSize, "size", deposit.DefaultPageSize, "Number of depositions to list")
	depositsCmd.Flags().StringVar(&depositsBaseURL, "base-url", deposit.BaseURL, "Deposit API base URL (use the sandbox for trial runs)")
	depositsCmd.Flags().StringVar(&depositsEnvFile, "env-file", ".env", "Dotenv file to read ZENODO_TOKEN from")
	rootCmd.AddCommand(depositsCmd)
}

var depositsCmd = &cobra.Command{
	Use:   "deposits <publications.json>",
	Short: "Check which publications are already deposited on Zenodo",
	Long: `Check which publications are already deposited on Zenodo.

Lists the account's depositions and matches them to publications by the PDF
file name of each publication's ee link. Uploaded publications gain their
Zenodo id, DOI and links and are written to --completed; the rest are written
to --remaining so an interrupted upload can resume.

The access token is read from $ZENODO_TOKEN (a .env file is loaded first) or
from zenodo_token in the global config.

Examples:
  pp deposits output/2024.json
  pp deposits output/2024.json --created 2024-11-05 --human
  pp deposits output/2024.json --base-url https://sandbox.zenodo.org/api`,
	Args: cobra.ExactArgs(1),
	RunE: runDeposits,
}

// DepositsResult is the response for the deposits command.
type DepositsResult struct {
	Depositions   int    `json:"depositions"`
	Uploaded      int    `json:"uploaded"`
	Completed     int    `json:"completed"`
	Remaining     int    `json:"remaining"`
	CompletedPath string `json:"completed_path"`
	RemainingPath string `json:"remaining_path"`
}

func runDeposits(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(depositsEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", depositsEnvFile, err)
	}
	token := config.ZenodoToken()
	if token == "" {
		return fmt.Errorf("%w: no Zenodo token (set %s or zenodo_token in %s)",
			config.ErrInvalid, deposit.TokenEnv, config.GlobalConfigPath())
	}

	records, err := paper.LoadPublic(args[0])
	if err != nil {
		return err
	}

	client := deposit.NewClient(deposit.WithToken(token), deposit.WithBaseURL(depositsBaseURL))
	deps, err := client.ListDepositions(context.Background(), depositsSize)
	if err != nil {
		return err
	}
	uploaded := deposit.UploadedFiles(deps, depositsCreated)
	slog.Info("listed depositions", "count", len(deps), "uploaded", len(uploaded))

	completed, remaining, err := deposit.Partition(records, uploaded)
	if err != nil {
		return err
	}
	// Empty slices keep the files valid JSON arrays.
	if completed == nil {
		completed = []*paper.Record{}
	}
	if remaining == nil {
		remaining = []*paper.Record{}
	}
	if err := paper.WriteJSON(depositsCompleted, completed); err != nil {
		return err
	}
	if err := paper.WriteJSON(depositsRemaining, remaining); err != nil {
		return err
	}

	out := DepositsResult{
		Depositions:   len(deps),
		Uploaded:      len(uploaded),
		Completed:     len(completed),
		Remaining:     len(remaining),
		CompletedPath: depositsCompleted,
		RemainingPath: depositsRemaining,
	}
	if humanOutput {
		outputHuman("%d depositions, %d with a DOI and PDF\n", out.Depositions, out.Uploaded)
		outputHuman("  completed: %d -> %s\n", out.Completed, out.CompletedPath)
		outputHuman("  remaining: %d -> %s\n", out.Remaining, out.RemainingPath)
		return nil
	}
	return outputJSON(out)
}
