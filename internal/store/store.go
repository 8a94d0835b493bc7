// Package store persists query definitions as one YAML document per
// definition in a directory.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

const ext = ".yaml"

var (
	// ErrNotFound is returned when no document exists for a name.
	ErrNotFound = errors.New("definition not found")
	// ErrInvalidName is returned for names that cannot be used as file names.
	ErrInvalidName = errors.New("invalid definition name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName checks that name is usable as a definition key.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q (letters, digits, '.', '_' and '-' only)", ErrInvalidName, name)
	}
	return nil
}

// Store reads and writes definitions under a directory.
type Store struct {
	dir       string
	validator *validator
	mu        sync.Mutex // serializes writes
}

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	v, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("building definition schema: %w", err)
	}
	return &Store{dir: dir, validator: v}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

// Load reads and validates the named definition.
func (s *Store) Load(name string) (querydef.Definition, error) {
	if err := ValidateName(name); err != nil {
		return querydef.Definition{}, err
	}

	raw, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return querydef.Definition{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return querydef.Definition{}, fmt.Errorf("reading definition: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return querydef.Definition{}, fmt.Errorf("parsing definition %q: %w", name, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if problems := s.validator.validate(doc); len(problems) > 0 {
		return querydef.Definition{}, &ValidationError{Name: name, Problems: problems}
	}

	var def querydef.Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return querydef.Definition{}, fmt.Errorf("decoding definition %q: %w", name, err)
	}
	return def, nil
}

// LoadOrEmpty returns the named definition, or an empty one when none is
// stored yet.
func (s *Store) LoadOrEmpty(name string) (querydef.Definition, bool, error) {
	def, err := s.Load(name)
	if errors.Is(err, ErrNotFound) {
		return querydef.Definition{}, false, nil
	}
	if err != nil {
		return querydef.Definition{}, false, err
	}
	return def, true, nil
}

// Save writes def under name, replacing any previous document. The write goes
// through a temporary file so readers never observe a partial document.
func (s *Store) Save(name string, def querydef.Definition) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	raw, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("encoding definition: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing definition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing definition: %w", err)
	}

	slog.Debug("definition saved",
		slog.String("name", name),
		slog.Int("rules", len(def.Rules)),
		slog.Int("bytes", len(raw)),
	)
	return nil
}

// Delete removes the named definition.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// List returns the names of all stored definitions, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing store: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadAll loads every stored definition. Documents that fail to load are
// reported in the second map instead of aborting the whole load.
func (s *Store) LoadAll() (map[string]querydef.Definition, map[string]error, error) {
	names, err := s.List()
	if err != nil {
		return nil, nil, err
	}
	defs := make(map[string]querydef.Definition, len(names))
	failed := make(map[string]error)
	for _, name := range names {
		def, err := s.Load(name)
		if err != nil {
			failed[name] = err
			continue
		}
		defs[name] = def
	}
	return defs, failed, nil
}
