// Package main provides the pp CLI entry point.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matsen/proceedings/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// configPath overrides the proceedings.yml lookup
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := exitCode(err)
		var silent silentExitError
		if errors.As(err, &silent) {
			os.Exit(code)
		}
		if humanOutput {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		} else {
			outputJSON(ErrorResponse{Error: err.Error()})
		}
		os.Exit(code)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pp",
	Short: "Conference proceedings toolchain",
	Long: `pp builds a conference's proceedings from the submission platform's exports.

Pipeline:
  pp merge      CSV export + camera-ready PDFs -> metadata.json, session_order.json
  pp split      metadata + assembled proceedings PDF -> one PDF per paper
  pp generate   split metadata -> HTML, dblp, LaTeX, BibTeX, CSV and JSON artifacts
  pp qc         compare split PDFs against the metadata

Settings are read from proceedings.yml in the working directory (or --config),
overridden by PP_* environment variables and command flags.
All commands output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Project config file (default ./proceedings.yml)")
	rootCmd.Version = Version
}

// setupLogger configures the default slog logger from LOG_LEVEL.
func setupLogger() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	})))
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// flagAliases maps flags whose names differ from their config key.
var flagAliases = map[string]string{
	"patterns": "qc_patterns",
}

// loadProject reads the project config with cmd's flags layered on top. A
// flag named like a config key with "-" for "_" overrides that key.
func loadProject(cmd *cobra.Command) (*config.Project, error) {
	v := config.NewViper(configPath)
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagAliases[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		if !isProjectKey(key) || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	p, err := config.ReadProject(v)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("project config", "file", v.ConfigFileUsed(), "year", p.Year, "venue", p.Venue)
	return p, nil
}

func isProjectKey(key string) bool {
	for _, k := range config.ProjectKeys {
		if k == key {
			return true
		}
	}
	return false
}
