// Package store implements lineage.SummaryStore and lineage.DescriptionStore
// over a directory of per-procedure JSON summary files and a single YAML
// description file, respectively.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/shivasurya/lineageflow/internal/lineage"
	"github.com/shivasurya/lineageflow/internal/shape"
)

const defaultCacheSize = 512

// rawSummary is the on-disk shape of one procedure's summary file.
type rawSummary struct {
	Procedure    string         `json:"procedure"`
	Dependencies []string       `json:"dependencies"`
	Partial      bool           `json:"partial"`
	Shape        *shape.Payload `json:"shape,omitempty"`
	Lineage      []edgeJSON     `json:"lineage"`
}

// JSONSummaryStore reads one JSON file per procedure out of a directory,
// caching decoded summaries in a bounded LRU so repeated Load calls for
// the same procedure skip the JSON decode (Forward loads each procedure
// once per run; Backward loads a procedure's shape for every work item
// in it).
type JSONSummaryStore struct {
	dir   string
	cache *lru.Cache[lineage.Procedure, *lineage.Summary]
}

// NewJSONSummaryStore opens a summary store rooted at dir.
func NewJSONSummaryStore(dir string) (*JSONSummaryStore, error) {
	cache, err := lru.New[lineage.Procedure, *lineage.Summary](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("store: building summary cache: %w", err)
	}
	return &JSONSummaryStore{dir: dir, cache: cache}, nil
}

// Load implements lineage.SummaryStore.
func (s *JSONSummaryStore) Load(p lineage.Procedure) (*lineage.Summary, bool) {
	if sum, ok := s.cache.Get(p); ok {
		return sum, sum != nil
	}

	sum, err := s.loadFromDisk(p)
	if err != nil {
		s.cache.Add(p, nil)
		return nil, false
	}
	s.cache.Add(p, sum)
	return sum, true
}

func (s *JSONSummaryStore) loadFromDisk(p lineage.Procedure) (*lineage.Summary, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileNameFor(p)))
	if err != nil {
		return nil, err
	}
	var raw rawSummary
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("store: decoding summary for %s: %w", p, err)
	}
	return rawToSummary(raw)
}

func rawToSummary(raw rawSummary) (*lineage.Summary, error) {
	deps, err := decodeDependencies(raw.Dependencies)
	if err != nil {
		return nil, err
	}

	g, err := decodeGraph(raw.Lineage)
	if err != nil {
		return nil, err
	}

	var shapeSummary lineage.ShapeSummary
	if raw.Shape != nil {
		shapeSummary = shape.New(*raw.Shape)
	}

	return &lineage.Summary{
		Dependencies: lineage.DependencySet{Procedures: deps, Partial: raw.Partial},
		Shape:        shapeSummary,
		Lineage:      g,
	}, nil
}

func decodeDependencies(deps []string) ([]lineage.Procedure, error) {
	if len(deps) == 0 {
		return nil, nil
	}
	out := make([]lineage.Procedure, 0, len(deps))
	for _, d := range deps {
		p, err := lineage.ParseSanitizer(d)
		if err != nil {
			return nil, fmt.Errorf("store: dependency %q: %w", d, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Iterate implements lineage.SummaryStore by walking the directory once
// and decoding every summary file's dependency set.
func (s *JSONSummaryStore) Iterate() ([]lineage.SummaryRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", s.dir, err)
	}

	var records []lineage.SummaryRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("store: reading %s: %w", entry.Name(), err)
		}

		var raw rawSummary
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("store: decoding %s: %w", entry.Name(), err)
		}

		proc, err := lineage.ParseSanitizer(raw.Procedure)
		if err != nil {
			return nil, fmt.Errorf("store: %s: procedure %q: %w", entry.Name(), raw.Procedure, err)
		}
		deps, err := decodeDependencies(raw.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", entry.Name(), err)
		}

		records = append(records, lineage.SummaryRecord{
			Procedure:    proc,
			Dependencies: lineage.DependencySet{Procedures: deps, Partial: raw.Partial},
		})
	}
	return records, nil
}

// fileNameFor is the deterministic on-disk name for p's summary file.
// An empty module is encoded as "_" so the file name never starts with
// the separator.
func fileNameFor(p lineage.Procedure) string {
	module := p.Module
	if module == "" {
		module = "_"
	}
	return fmt.Sprintf("%s__%s_%d.json", module, p.Function, p.Arity)
}
