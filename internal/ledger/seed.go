package ledger

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fintrack/internal/core"
)

// seedFile is the on-disk shape of a category seed list:
//
//	categories:
//	  - id: "1"
//	    name: Salary
//	    type: income
type seedFile struct {
	Categories []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"categories"`
}

// LoadSeed reads first-run categories from a YAML file. An empty path or
// a missing file yields core.DefaultCategories with a nil error.
func LoadSeed(path string) ([]core.Category, error) {
	if path == "" {
		return core.DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return core.DefaultCategories(), nil
	}
	if err != nil {
		return core.DefaultCategories(), fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML seed list. Entries without an id get a fresh one.
// On error the defaults are returned alongside it.
func ParseSeed(data []byte) ([]core.Category, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return core.DefaultCategories(), fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Categories) == 0 {
		return core.DefaultCategories(), errors.New("seed file has no categories")
	}

	seen := make(map[string]bool, len(f.Categories))
	out := make([]core.Category, 0, len(f.Categories))
	for i, entry := range f.Categories {
		kind, err := core.ParseKind(entry.Type)
		if err != nil {
			return core.DefaultCategories(), fmt.Errorf("seed entry %d: %w", i, err)
		}
		c := core.Category{ID: entry.ID, Name: entry.Name, Kind: kind}
		if c.ID == "" {
			c.ID = core.NewID()
		}
		if err := c.Validate(); err != nil {
			return core.DefaultCategories(), fmt.Errorf("seed entry %d: %w", i, err)
		}
		if seen[c.ID] {
			return core.DefaultCategories(), fmt.Errorf("seed entry %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}
