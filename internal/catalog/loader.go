package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk YAML shape of a catalog override file.
type fileFormat struct {
	Types []RelationshipType `yaml:"types"`
}

// LoadFile reads a YAML catalog file and merges its entries over the built-in
// defaults: entries with a known key replace the default definition in place,
// new keys are appended after the defaults in file order. The merged catalog
// is validated as a whole.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read %s: %w", path, err)
	}

	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse %s: %w", path, err)
	}

	return Merge(defaultEntries, file.Types)
}

// Merge combines a base entry list with overrides, replacing by key and
// appending unknown keys, then builds the catalog.
func Merge(base []RelationshipType, overrides []RelationshipType) (*Catalog, error) {
	merged := make([]RelationshipType, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, e := range merged {
		index[e.Key] = i
	}

	for _, o := range overrides {
		if i, ok := index[o.Key]; ok {
			merged[i] = o
			continue
		}
		index[o.Key] = len(merged)
		merged = append(merged, o)
	}

	return New(merged)
}
