package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// viewers maps a configured reader name to its command, per platform.
// "system" uses the desktop default.
var viewers = map[string]map[string][]string{
	"darwin": {
		"system":  {"open"},
		"skim":    {"open", "-a", "Skim"},
		"preview": {"open", "-a", "Preview"},
	},
	"linux": {
		"system":  {"xdg-open"},
		"zathura": {"zathura"},
		"evince":  {"evince"},
		"okular":  {"okular"},
	},
}

// Opener resolves split paper files and opens them in a viewer.
type Opener struct {
	dir    string
	reader string
	goos   string
}

// NewOpener creates an opener for files under dir using the named reader.
func NewOpener(dir, reader string) *Opener {
	if reader == "" {
		reader = "system"
	}
	return &Opener{dir: dir, reader: reader, goos: runtime.GOOS}
}

// ResolvePath returns the path of name inside the opener's directory and
// checks that it exists.
func (o *Opener) ResolvePath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("no PDF file specified")
	}
	path := name
	if !filepath.IsAbs(name) && o.dir != "" {
		path = filepath.Join(o.dir, name)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", path)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}
	return path, nil
}

// Command builds the viewer command for path without starting it.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	readers, ok := viewers[o.goos]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", o.goos)
	}
	argv, ok := readers[o.reader]
	if !ok {
		argv = readers["system"]
	}
	args := append(append([]string(nil), argv[1:]...), path)
	return exec.Command(argv[0], args...), nil
}

// Open starts the viewer on path and returns without waiting for it.
func (o *Opener) Open(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Start()
}
