// Package continent holds the immutable continent membership table.
package continent

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed continents.yaml
var embedded []byte

// Continent is one named continent and its canonical member countries.
type Continent struct {
	Name      string   `yaml:"name"`
	Countries []string `yaml:"countries"`
}

// Deny forces a (country, continent) pair to never match.
type Deny struct {
	Country   string `yaml:"country"`
	Continent string `yaml:"continent"`
}

type document struct {
	Continents []Continent        `yaml:"continents"`
	Aliases    map[string]string `yaml:"aliases"`
	Deny       []Deny            `yaml:"deny"`
}

// Table is the continent classification table. It is never mutated after Parse.
type Table struct {
	continents []Continent
	members    map[string]map[string]struct{}
	aliases    map[string]string
	deny       map[Deny]struct{}
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table compiled into the binary.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("continent: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Load reads a table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read continent table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse continent table: %w", err)
	}
	t := &Table{
		continents: doc.Continents,
		members:    make(map[string]map[string]struct{}, len(doc.Continents)),
		aliases:    doc.Aliases,
		deny:       make(map[Deny]struct{}, len(doc.Deny)),
	}
	if t.aliases == nil {
		t.aliases = map[string]string{}
	}
	for _, c := range doc.Continents {
		set := make(map[string]struct{}, len(c.Countries))
		for _, name := range c.Countries {
			set[name] = struct{}{}
		}
		t.members[c.Name] = set
	}
	for _, d := range doc.Deny {
		t.deny[d] = struct{}{}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate rejects tables in which a country could belong to more than one continent.
func (t *Table) Validate() error {
	if len(t.continents) == 0 {
		return fmt.Errorf("continent table is empty")
	}
	seen := make(map[string]string)
	names := make(map[string]bool, len(t.continents))
	for _, c := range t.continents {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("continent with empty name")
		}
		if names[c.Name] {
			return fmt.Errorf("continent %q is defined twice", c.Name)
		}
		names[c.Name] = true
		for _, name := range c.Countries {
			if prev, dup := seen[name]; dup {
				if prev == c.Name {
					return fmt.Errorf("continent %q lists %q twice", c.Name, name)
				}
				return fmt.Errorf("country %q is in both %q and %q", name, prev, c.Name)
			}
			seen[name] = c.Name
		}
	}
	for from, to := range t.aliases {
		if _, ok := seen[to]; !ok {
			return fmt.Errorf("alias %q points at unknown country %q", from, to)
		}
		if _, ok := seen[from]; ok {
			return fmt.Errorf("alias %q shadows a canonical country name", from)
		}
	}
	for d := range t.deny {
		if _, ok := t.members[d.Continent]; !ok {
			return fmt.Errorf("deny entry names unknown continent %q", d.Continent)
		}
	}
	return nil
}

// Canonical maps a dataset spelling to the table's canonical country name.
func (t *Table) Canonical(country string) string {
	if to, ok := t.aliases[country]; ok {
		return to
	}
	return country
}

// IsCountryInContinent reports exact membership. Substrings never match.
func (t *Table) IsCountryInContinent(country, continent string) bool {
	name := t.Canonical(country)
	if _, denied := t.deny[Deny{Country: name, Continent: continent}]; denied {
		return false
	}
	_, ok := t.members[continent][name]
	return ok
}

// GetCountryContinent returns the first continent, in table order, containing the country.
func (t *Table) GetCountryContinent(country string) (string, bool) {
	for _, c := range t.continents {
		if t.IsCountryInContinent(country, c.Name) {
			return c.Name, true
		}
	}
	return "", false
}

// Continents returns continent names in table order.
func (t *Table) Continents() []string {
	out := make([]string, len(t.continents))
	for i, c := range t.continents {
		out[i] = c.Name
	}
	return out
}

// Members returns the canonical countries of a continent in table order.
func (t *Table) Members(continent string) []string {
	for _, c := range t.continents {
		if c.Name == continent {
			return append([]string(nil), c.Countries...)
		}
	}
	return nil
}

// Has reports whether the continent exists in the table.
func (t *Table) Has(continent string) bool {
	_, ok := t.members[continent]
	return ok
}
