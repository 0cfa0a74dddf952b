package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadProjectDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	p, err := ReadProject(NewViper(""))
	if err != nil {
		t.Fatalf("ReadProject() error = %v", err)
	}
	if p.Venue != "ISMIR" || p.StartPage != 1 || p.CSVSchema != "cmt" || p.FileLayout != "camera-ready" {
		t.Errorf("defaults = %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := p.RequireYear(); !errors.Is(err, ErrInvalid) {
		t.Errorf("RequireYear() error = %v, want ErrInvalid", err)
	}
}

func TestReadProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "proceedings.yml"), `
year: 2024
start_page: 13
pdf_offset: 2
csv_schema: cmt2022
qc_patterns: ~/patterns.yml
`)

	p, err := ReadProject(NewViper(""))
	if err != nil {
		t.Fatalf("ReadProject() error = %v", err)
	}
	if p.Year != "2024" || p.StartPage != 13 || p.PDFOffset != 2 || p.CSVSchema != "cmt2022" {
		t.Errorf("project = %+v", p)
	}
	home, _ := os.UserHomeDir()
	if p.QCPatterns != filepath.Join(home, "patterns.yml") {
		t.Errorf("QCPatterns = %q, want expanded path", p.QCPatterns)
	}
}

func TestReadProjectEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PP_START_PAGE", "21")

	p, err := ReadProject(NewViper(""))
	if err != nil {
		t.Fatal(err)
	}
	if p.StartPage != 21 {
		t.Errorf("StartPage = %d, want 21 from environment", p.StartPage)
	}
}

func TestReadProjectExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	writeFile(t, path, "venue: TISMIR\n")

	p, err := ReadProject(NewViper(path))
	if err != nil {
		t.Fatalf("ReadProject() error = %v", err)
	}
	if p.Venue != "TISMIR" {
		t.Errorf("Venue = %q", p.Venue)
	}

	if _, err := ReadProject(NewViper(filepath.Join(t.TempDir(), "missing.yml"))); err != nil {
		t.Errorf("missing explicit file should fall back to defaults, got %v", err)
	}
}

func TestReadProjectMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	writeFile(t, path, "year: [unclosed\n")
	if _, err := ReadProject(NewViper(path)); !errors.Is(err, ErrInvalid) {
		t.Errorf("ReadProject() error = %v, want ErrInvalid", err)
	}
}

func TestProjectValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Project
		wantErr bool
	}{
		{"valid", Project{Year: "2024", StartPage: 1, ArchiveURL: "https://x/{file}"}, false},
		{"no year is fine", Project{StartPage: 3}, false},
		{"zero start", Project{StartPage: 0}, true},
		{"bad year", Project{Year: "24", StartPage: 1}, true},
		{"year not numeric", Project{Year: "20x4", StartPage: 1}, true},
		{"archive without file", Project{StartPage: 1, ArchiveURL: "https://x/"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "proceedings.yml"), "start_page: 13\n")

	v := NewViper("")
	v.Set("start_page", 99)
	p, err := ReadProject(v)
	if err != nil {
		t.Fatal(err)
	}
	if p.StartPage != 99 {
		t.Errorf("StartPage = %d, want override 99", p.StartPage)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	tests := []struct{ in, want string }{
		{"~/x.yml", filepath.Join(home, "x.yml")},
		{"/abs/x.yml", "/abs/x.yml"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
