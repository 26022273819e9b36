// Package preset provides named filter presets: a saved combination of
// search text and facet selections that the ticket list can apply in one
// step.
package preset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

// Preset is a reusable list filter.
type Preset struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Filters     Filters `yaml:"filters,omitempty"`
}

// Filters mirrors the list query's fields.
type Filters struct {
	Search   string `yaml:"search,omitempty"`
	Category string `yaml:"category,omitempty"` // billing, technical, account, general
	Priority string `yaml:"priority,omitempty"` // low, medium, high, critical
	Status   string `yaml:"status,omitempty"`   // open, in_progress, resolved, closed
}

// Query converts the preset into a canonical list query.
func (p Preset) Query() query.Query {
	return query.Compose(
		p.Filters.Search,
		model.Category(p.Filters.Category),
		model.Priority(p.Filters.Priority),
		model.Status(p.Filters.Status),
	)
}

// Validate rejects presets with unknown facet values, which Compose would
// otherwise silently drop.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset has no name")
	}
	f := p.Filters
	if f.Category != "" && !model.Category(f.Category).IsValid() {
		return fmt.Errorf("preset %q: unknown category %q", p.Name, f.Category)
	}
	if f.Priority != "" && !model.Priority(f.Priority).IsValid() {
		return fmt.Errorf("preset %q: unknown priority %q", p.Name, f.Priority)
	}
	if f.Status != "" && !model.Status(f.Status).IsValid() {
		return fmt.Errorf("preset %q: unknown status %q", p.Name, f.Status)
	}
	return nil
}

// Builtin returns the presets available without a config file.
func Builtin() []Preset {
	return []Preset{
		{Name: "all", Description: "Every ticket"},
		{Name: "open", Description: "Tickets awaiting work", Filters: Filters{Status: "open"}},
		{Name: "urgent", Description: "Open critical tickets", Filters: Filters{Priority: "critical", Status: "open"}},
		{Name: "billing", Description: "Open billing questions", Filters: Filters{Category: "billing", Status: "open"}},
		{Name: "in-progress", Description: "Tickets being worked", Filters: Filters{Status: "in_progress"}},
	}
}

// file is the on-disk layout.
type file struct {
	Presets []Preset `yaml:"presets"`
}

// Parse decodes a presets document.
func Parse(data []byte) ([]Preset, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	for _, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Presets, nil
}

// Registry is an ordered set of presets keyed by name.
type Registry struct {
	order  []string
	byName map[string]Preset
}

// NewRegistry returns a registry holding presets in order. Later entries
// replace earlier ones with the same name, keeping the first position.
func NewRegistry(presets ...Preset) *Registry {
	r := &Registry{byName: map[string]Preset{}}
	r.Add(presets...)
	return r
}

// Add inserts or replaces presets.
func (r *Registry) Add(presets ...Preset) {
	for _, p := range presets {
		if _, exists := r.byName[p.Name]; !exists {
			r.order = append(r.order, p.Name)
		}
		r.byName[p.Name] = p
	}
}

// Get looks a preset up by name.
func (r *Registry) Get(name string) (Preset, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// List returns the presets in insertion order.
func (r *Registry) List() []Preset {
	out := make([]Preset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Names returns the preset names sorted alphabetically.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Len returns the number of presets.
func (r *Registry) Len() int { return len(r.order) }

// Load returns the builtin presets overlaid with those in path. An empty
// path yields the builtins only.
func Load(path string) (*Registry, error) {
	r := NewRegistry(Builtin()...)
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	user, err := Parse(data)
	if err != nil {
		return nil, err
	}
	r.Add(user...)
	return r, nil
}
