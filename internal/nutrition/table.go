// Package nutrition estimates macros for free-text food descriptions using a
// static per-100g food table.
package nutrition

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed foods.yaml
var defaultFoods []byte

// Food holds the macros of one table entry per 100 grams.
type Food struct {
	Name     string  `yaml:"name"     json:"name"              validate:"required"`
	Calories float64 `yaml:"calories" json:"calories_per_100g" validate:"min=0"`
	Protein  float64 `yaml:"protein"  json:"protein_g"         validate:"min=0"`
	Carbs    float64 `yaml:"carbs"    json:"carbs_g"           validate:"min=0"`
	Fat      float64 `yaml:"fat"      json:"fat_g"             validate:"min=0"`
}

// Table is an immutable, deduplicated set of foods kept in load order.
// It is safe for concurrent use.
type Table struct {
	foods  []Food
	byName map[string]int
}

// NewTable builds a table from foods. Names are trimmed and lower-cased;
// a repeated name keeps its first occurrence.
func NewTable(foods []Food, log *slog.Logger) *Table {
	if log == nil {
		log = slog.Default()
	}
	t := &Table{
		foods:  make([]Food, 0, len(foods)),
		byName: make(map[string]int, len(foods)),
	}
	for _, f := range foods {
		f.Name = strings.ToLower(strings.TrimSpace(f.Name))
		if f.Name == "" {
			continue
		}
		if _, dup := t.byName[f.Name]; dup {
			log.Warn("Duplicate food entry ignored", "component", "nutrition", "name", f.Name)
			continue
		}
		t.byName[f.Name] = len(t.foods)
		t.foods = append(t.foods, f)
	}
	return t
}

// LoadTable reads a YAML sequence of foods and validates every entry.
func LoadTable(r io.Reader, log *slog.Logger) (*Table, error) {
	var foods []Food
	if err := yaml.NewDecoder(r).Decode(&foods); err != nil {
		if errors.Is(err, io.EOF) {
			return NewTable(nil, log), nil
		}
		return nil, fmt.Errorf("failed to decode food table: %w", err)
	}

	v := validator.New()
	for i := range foods {
		if err := v.Struct(foods[i]); err != nil {
			return nil, fmt.Errorf("invalid food entry %d (%q): %w", i, foods[i].Name, err)
		}
	}
	return NewTable(foods, log), nil
}

// DefaultTable loads the food table embedded in the binary.
func DefaultTable(log *slog.Logger) (*Table, error) {
	return LoadTable(bytes.NewReader(defaultFoods), log)
}

// Len returns the number of foods.
func (t *Table) Len() int { return len(t.foods) }

// Lookup returns the food with exactly this name.
func (t *Table) Lookup(name string) (Food, bool) {
	i, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Food{}, false
	}
	return t.foods[i], true
}

// Foods returns a copy of the entries in table order.
func (t *Table) Foods() []Food {
	out := make([]Food, len(t.foods))
	copy(out, t.foods)
	return out
}

// Match finds the table entry whose name occurs in item, resolving
// overlaps with the given policy. item must already be lower-case.
func (t *Table) Match(item string, policy MatchPolicy) (Food, bool) {
	best := -1
	for i, f := range t.foods {
		if !strings.Contains(item, f.Name) {
			continue
		}
		if policy == MatchFirst {
			return f, true
		}
		if best < 0 || len(f.Name) > len(t.foods[best].Name) {
			best = i
		}
	}
	if best < 0 {
		return Food{}, false
	}
	return t.foods[best], true
}
