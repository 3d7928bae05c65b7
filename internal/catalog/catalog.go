// Package catalog holds the static list of restaurant categories.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/restoboost/internal/model"
)

// AllID is the pseudo-category matching every restaurant.
const AllID = "all"

//go:embed categories.yaml
var categoriesYAML []byte

type file struct {
	Categories []entry `yaml:"categories"`
}

type entry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

// Parse decodes a category catalog document.
func Parse(data []byte) ([]model.Category, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	seen := make(map[string]bool, len(f.Categories))
	out := make([]model.Category, 0, len(f.Categories))
	for _, e := range f.Categories {
		if e.ID == "" {
			return nil, fmt.Errorf("parse categories: entry %q has no id", e.Name)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("parse categories: duplicate id %q", e.ID)
		}
		seen[e.ID] = true
		out = append(out, model.Category{ID: e.ID, Name: e.Name, Icon: e.Icon})
	}
	return out, nil
}

// Default returns the embedded catalog.
func Default() []model.Category {
	cats, err := Parse(categoriesYAML)
	if err != nil {
		panic(err)
	}
	return cats
}

// WithCounts returns a copy of cats with Count filled from counts.
// The "all" entry gets the total.
func WithCounts(cats []model.Category, counts map[string]int) []model.Category {
	total := 0
	for _, n := range counts {
		total += n
	}
	out := make([]model.Category, len(cats))
	for i, c := range cats {
		if c.ID == AllID {
			c.Count = total
		} else {
			c.Count = counts[c.ID]
		}
		out[i] = c
	}
	return out
}
