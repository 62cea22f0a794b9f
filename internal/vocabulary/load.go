package vocabulary

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/resume-matcher/internal/schemas"
	"gopkg.in/yaml.v3"
)

//go:embed default_skills.yaml
var defaultSkills []byte

// document is the on-disk shape of a vocabulary file (YAML or JSON).
type document struct {
	Version string     `yaml:"version"`
	Skills  []entryDoc `yaml:"skills"`
}

// entryDoc accepts either a bare skill name or a {name, aliases, category} mapping.
type entryDoc struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases"`
	Category string   `yaml:"category"`
}

func (e *entryDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Name = node.Value
		return nil
	}
	type plain entryDoc
	return node.Decode((*plain)(e))
}

// Default returns the embedded skill taxonomy.
func Default() (*Vocabulary, error) {
	return Parse(defaultSkills)
}

// Load reads a vocabulary file. YAML and JSON are both accepted.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return nil, &ConfigurationError{Message: "vocabulary path is empty"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}

	return Parse(data)
}

// LoadOrDefault loads path when set, otherwise the embedded taxonomy.
func LoadOrDefault(path string) (*Vocabulary, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse validates a vocabulary document against the vocabulary schema and builds it.
func Parse(data []byte) (*Vocabulary, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Message: "vocabulary is not valid YAML/JSON", Cause: err}
	}
	if raw == nil {
		return nil, &ConfigurationError{Message: "vocabulary document is empty"}
	}

	if err := schemas.ValidateDocument(schemas.Vocabulary, raw); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &ConfigurationError{Message: "vocabulary does not match schema", Cause: err}
		}
		return nil, &ConfigurationError{Message: "vocabulary schema unavailable", Cause: err}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigurationError{Message: "failed to decode vocabulary", Cause: err}
	}

	entries := make([]Entry, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		entries = append(entries, Entry{Name: s.Name, Aliases: s.Aliases, Category: s.Category})
	}

	version := doc.Version
	if version == "" {
		version = "unversioned"
	}
	return New(version, entries)
}
