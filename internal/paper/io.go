package paper

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidRecord marks metadata records that fail validation.
var ErrInvalidRecord = errors.New("invalid record")

// LoadRecords reads a metadata JSON array and validates every record.
func LoadRecords(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}

	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w %d in %s: null entry", ErrInvalidRecord, i+1, path)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%w %d (%q) in %s: %v", ErrInvalidRecord, i+1, r.Title, path, err)
		}
	}
	return records, nil
}

// LoadPublic reads a public metadata JSON array (records without extra).
func LoadPublic(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading publications: %w", err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing publications %s: %w", path, err)
	}
	return records, nil
}

// WriteJSON writes v as indented UTF-8 JSON. Struct field order and sorted map
// keys keep the output stable across runs.
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// LoadSessionOrder reads a JSON session order file.
func LoadSessionOrder(path string) (SessionOrder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session order: %w", err)
	}
	return parseSessionOrder(data, path)
}

func parseSessionOrder(data []byte, path string) (SessionOrder, error) {
	var order SessionOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("parsing session order %s: %w", path, err)
	}

	seen := make(map[string]bool, len(order))
	for i, s := range order {
		if s.Name == "" {
			return nil, fmt.Errorf("session %d in %s has no name", i+1, path)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("session %q declared twice in %s", s.Name, path)
		}
		seen[s.Name] = true
	}
	return order, nil
}

// SessionFile is the parsed content of a session ordering file. Exactly one of
// Names and Order is set: plain-text files only list session names, JSON files
// also fix the paper order inside each session.
type SessionFile struct {
	Names []string
	Order SessionOrder
}

// Explicit reports whether the file fixed the per-session paper order.
func (f *SessionFile) Explicit() bool {
	return f.Order != nil
}

// SessionNames returns the declared session names in file order.
func (f *SessionFile) SessionNames() []string {
	if f.Explicit() {
		return f.Order.Names()
	}
	return f.Names
}

// ReadSessionFile reads either a newline-delimited list of session names or a
// JSON array of {name, papers} objects.
func ReadSessionFile(path string) (*SessionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		order, err := parseSessionOrder(trimmed, path)
		if err != nil {
			return nil, err
		}
		return &SessionFile{Order: order}, nil
	}

	var names []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("session %q listed twice in %s", name, path)
		}
		seen[name] = true
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	return &SessionFile{Names: names}, nil
}
