package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/proceedings/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show the effective configuration or set user settings",
	Long: `Show the effective configuration or set user settings.

Without arguments, prints the project settings as resolved from
proceedings.yml, PP_* environment variables and defaults, together with the
user settings from the global config file.

Usage:
  pp config                       # Show everything
  pp config start-page            # Get one value
  pp config pdf-reader zathura    # Set a user setting
  pp config zenodo-token <token>  # Store the deposit token

Project keys (read-only here, edit proceedings.yml):
  year, venue, book-title, start-page, pdf-offset, archive-url,
  csv-schema, file-layout, qc-patterns

User keys:
  pdf-reader     PDF viewer (system, skim, preview, zathura, evince, okular)
  zenodo-token   Zenodo access token`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigResponse is the response for config show.
type ConfigResponse struct {
	Project     *config.Project `json:"project"`
	GlobalPath  string          `json:"global_path"`
	PDFReader   string          `json:"pdf_reader"`
	ZenodoToken bool            `json:"zenodo_token_set"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		resp := ConfigResponse{
			Project:     project,
			GlobalPath:  config.GlobalConfigPath(),
			PDFReader:   config.PDFReader(),
			ZenodoToken: config.ZenodoToken() != "",
		}
		if humanOutput {
			for _, kv := range projectValues(project) {
				fmt.Printf("%-13s %s\n", kv[0]+":", kv[1])
			}
			fmt.Printf("%-13s %s\n", "pdf-reader:", resp.PDFReader)
			fmt.Printf("%-13s %t\n", "zenodo-token:", resp.ZenodoToken)
			fmt.Printf("\nUser settings: %s\n", resp.GlobalPath)
			return nil
		}
		return outputJSON(resp)
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		value, ok := lookupValue(project, key)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(map[string]string{strings.ReplaceAll(key, "-", "_"): value})
	}

	value := args[1]
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return err
	}
	updated := *cfg
	switch key {
	case "pdf-reader":
		if err := config.ValidatePDFReader(value); err != nil {
			return err
		}
		updated.PDFReader = value
	case "zenodo-token":
		updated.ZenodoToken = value
	default:
		if _, ok := lookupValue(project, key); ok {
			exitWithError(ExitError, "%s is a project setting; set it in %s.yml", key, config.ProjectConfigName)
		}
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}
	if err := config.SaveGlobalConfig(&updated); err != nil {
		return err
	}

	shown := value
	if key == "zenodo-token" {
		shown = "(hidden)"
	}
	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, shown)
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: shown})
}

// projectValues lists the project settings in file order as key/value pairs.
func projectValues(p *config.Project) [][2]string {
	return [][2]string{
		{"year", p.Year},
		{"venue", p.Venue},
		{"book-title", p.BookTitle},
		{"start-page", fmt.Sprint(p.StartPage)},
		{"pdf-offset", fmt.Sprint(p.PDFOffset)},
		{"archive-url", p.ArchiveURL},
		{"csv-schema", p.CSVSchema},
		{"file-layout", p.FileLayout},
		{"qc-patterns", p.QCPatterns},
	}
}

func lookupValue(p *config.Project, key string) (string, bool) {
	switch key {
	case "pdf-reader":
		return config.PDFReader(), true
	case "zenodo-token":
		if config.ZenodoToken() != "" {
			return "(set)", true
		}
		return "", true
	}
	for _, kv := range projectValues(p) {
		if kv[0] == key {
			return kv[1], true
		}
	}
	return "", false
}

// normalizeKey converts key formats (pdf-reader, pdf_reader, PDF_READER) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
