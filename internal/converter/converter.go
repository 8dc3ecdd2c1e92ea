package converter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJSON is returned when the input cannot be decoded as JSON.
var ErrInvalidJSON = errors.New("invalid JSON document")

// Convert transcodes a JSON document into an equivalent YAML document.
func Convert(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, ErrInvalidJSON
	}
	// trailing garbage after the first document is not valid JSON
	if dec.More() {
		return nil, ErrInvalidJSON
	}

	doc = normalizeNumbers(doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// normalizeNumbers converts json.Number values into int64 where they fit and
// float64 otherwise, so the YAML encoder emits them as numbers, not strings.
func normalizeNumbers(doc any) any {
	switch v := doc.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, val := range v {
			v[k] = normalizeNumbers(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = normalizeNumbers(val)
		}
		return v
	default:
		return doc
	}
}

// FileStore persists converted documents under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the target directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("converted files dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create converted files dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the base directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// OutputName derives a unique .yaml file name from the uploaded file name.
func OutputName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		base = "converted"
	}
	stamp := time.Now().Format("2006-01-02_15-04-05")
	short := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s.yaml", base, stamp, short)
}

// Save writes the converted content under the store directory and returns the
// full path. The name must not escape the directory.
func (s *FileStore) Save(name string, content []byte) (string, error) {
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write converted file: %w", err)
	}
	return path, nil
}
