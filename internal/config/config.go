// Package config handles project and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Project holds per-proceedings settings read from proceedings.yml. Command
// line flags bound to the same keys take precedence.
type Project struct {
	Year       string `mapstructure:"year" json:"year"`
	Venue      string `mapstructure:"venue" json:"venue"`
	BookTitle  string `mapstructure:"book_title" json:"book_title"`
	StartPage  int    `mapstructure:"start_page" json:"start_page"`
	PDFOffset  int    `mapstructure:"pdf_offset" json:"pdf_offset"`
	ArchiveURL string `mapstructure:"archive_url" json:"archive_url"`
	CSVSchema  string `mapstructure:"csv_schema" json:"csv_schema"`
	FileLayout string `mapstructure:"file_layout" json:"file_layout"`
	QCPatterns string `mapstructure:"qc_patterns" json:"qc_patterns"` // YAML pattern set; empty uses the built-in set
}

const (
	// ProjectConfigName is the project config file name without extension.
	ProjectConfigName = "proceedings"
	// EnvPrefix prefixes environment overrides, PP_START_PAGE and so on.
	EnvPrefix = "PP"
)

// ProjectKeys lists the keys of Project, in file order.
var ProjectKeys = []string{
	"year", "venue", "book_title", "start_page", "pdf_offset",
	"archive_url", "csv_schema", "file_layout", "qc_patterns",
}

// ErrInvalid marks configuration errors.
var ErrInvalid = errors.New("invalid configuration")

// SetDefaults registers the default value of every project key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("venue", "ISMIR")
	v.SetDefault("start_page", 1)
	v.SetDefault("pdf_offset", 0)
	v.SetDefault("archive_url", "https://archives.ismir.net/ismir{year}/paper/{file}")
	v.SetDefault("csv_schema", "cmt")
	v.SetDefault("file_layout", "camera-ready")
}

// NewViper returns a viper instance set up for the project file. An explicit
// path wins; otherwise proceedings.yml is looked up in the working directory.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ProjectConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// ReadProject reads the config file, if any, and decodes the project. A
// missing file is not an error; everything can come from flags.
func ReadProject(v *viper.Viper) (*Project, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, v.ConfigFileUsed(), err)
		}
	}

	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding config: %v", ErrInvalid, err)
	}
	p.QCPatterns = ExpandPath(p.QCPatterns)
	return &p, nil
}

// Validate checks the fields every command relies on. The year is only
// required by commands that stamp it, so RequireYear is separate.
func (p *Project) Validate() error {
	if p.StartPage < 1 {
		return fmt.Errorf("%w: start_page must be at least 1, got %d", ErrInvalid, p.StartPage)
	}
	if p.Year != "" {
		if _, err := strconv.Atoi(p.Year); err != nil || len(p.Year) != 4 {
			return fmt.Errorf("%w: year must be four digits, got %q", ErrInvalid, p.Year)
		}
	}
	if p.ArchiveURL != "" && !strings.Contains(p.ArchiveURL, "{file}") {
		return fmt.Errorf("%w: archive_url must contain {file}", ErrInvalid)
	}
	return nil
}

// RequireYear fails when no year is configured.
func (p *Project) RequireYear() error {
	if p.Year == "" {
		return fmt.Errorf("%w: year is not set (use --year or the year key in %s.yml)", ErrInvalid, ProjectConfigName)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
