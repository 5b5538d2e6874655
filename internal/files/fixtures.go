package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Fixture is one named payload as an external decoder would have produced it.
type Fixture struct {
	Name    string `yaml:"name"`
	Payload string `yaml:"payload"`
	// File, when set, holds the payload instead of Payload. Relative paths
	// are resolved against the corpus file's directory.
	File string `yaml:"file,omitempty"`
}

// Corpus is a YAML document listing fixtures.
type Corpus struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// FixtureStore reads payload corpora from disk. It never writes.
type FixtureStore struct {
	filePath string
}

// NewFixtureStore creates a store for the corpus at filePath.
func NewFixtureStore(filePath string) *FixtureStore {
	return &FixtureStore{filePath: filePath}
}

// GetAll loads every fixture, resolving file references.
func (s *FixtureStore) GetAll() ([]Fixture, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fixtures, err := DecodeCorpus(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.filePath, err)
	}

	root, err := os.OpenRoot(filepath.Dir(s.filePath))
	if err != nil {
		return nil, err
	}
	defer root.Close()

	for i := range fixtures {
		if fixtures[i].File == "" {
			continue
		}
		data, err := root.ReadFile(fixtures[i].File)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", fixtures[i].Name, err)
		}
		fixtures[i].Payload = string(data)
	}
	return fixtures, nil
}

// DecodeCorpus parses a corpus document. Unknown keys are rejected so typos
// do not silently drop payloads.
func DecodeCorpus(r io.Reader) ([]Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Corpus
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	seen := make(map[string]bool, len(c.Fixtures))
	for i, fx := range c.Fixtures {
		if fx.Name == "" {
			c.Fixtures[i].Name = fmt.Sprintf("fixture-%d", i+1)
		}
		name := c.Fixtures[i].Name
		if seen[name] {
			return nil, fmt.Errorf("duplicate fixture name %q", name)
		}
		seen[name] = true
		if fx.File != "" && fx.Payload != "" {
			return nil, fmt.Errorf("fixture %q sets both payload and file", name)
		}
	}
	return c.Fixtures, nil
}
