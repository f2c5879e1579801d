package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shivasurya/lineageflow/internal/lineage"
)

// descriptionsFile is the shape of descriptions.yaml: a flat mapping of
// endpoint-syntax procedure literal to human-readable description.
type descriptionsFile map[string]string

// YAMLDescriptionStore resolves procedures to descriptions loaded once
// from a YAML file, mirroring the teacher's own structured-data loading
// via yaml.v3.
type YAMLDescriptionStore struct {
	descriptions map[lineage.Procedure]string
}

// LoadYAMLDescriptionStore reads and parses path.
func LoadYAMLDescriptionStore(path string) (*YAMLDescriptionStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: reading descriptions file: %w", err)
	}

	var raw descriptionsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("store: parsing descriptions file: %w", err)
	}

	descriptions := make(map[lineage.Procedure]string, len(raw))
	for literal, description := range raw {
		p, err := lineage.ParseSanitizer(literal)
		if err != nil {
			return nil, fmt.Errorf("store: descriptions file: %q: %w", literal, err)
		}
		descriptions[p] = description
	}

	return &YAMLDescriptionStore{descriptions: descriptions}, nil
}

// Resolve implements lineage.DescriptionStore.
func (s *YAMLDescriptionStore) Resolve(p lineage.Procedure) (string, bool) {
	d, ok := s.descriptions[p]
	return d, ok
}
