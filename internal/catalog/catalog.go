// Package catalog reads the service catalog: countries with an active offering
// and their display-ready metrics.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceLocation is one country with an active service. Metrics are display strings.
type ServiceLocation struct {
	Country  string
	Lat      float64
	Lng      float64
	Located  bool // false when the catalog row has no coordinates; no marker is drawn
	Code     string
	Tax      string
	Duties   string
	LeadTime string
}

// Entry is a catalog row as stored in the services file.
type Entry struct {
	Country  string   `yaml:"country" json:"country"`
	Code     string   `yaml:"code" json:"code"`
	Active   bool     `yaml:"active" json:"active"`
	Lat      *float64 `yaml:"lat,omitempty" json:"lat,omitempty"`
	Lng      *float64 `yaml:"lng,omitempty" json:"lng,omitempty"`
	Tax      string   `yaml:"tax" json:"tax"`
	Duties   string   `yaml:"duties" json:"duties"`
	LeadTime string   `yaml:"lead_time" json:"leadTime"`
}

type Catalog struct {
	Entries []Entry `yaml:"services" json:"services"`
}

// Active returns the service locations of active entries, in file order.
func (c *Catalog) Active() []ServiceLocation {
	if c == nil {
		return nil
	}
	var out []ServiceLocation
	for _, e := range c.Entries {
		if !e.Active || strings.TrimSpace(e.Country) == "" {
			continue
		}
		loc := ServiceLocation{
			Country:  strings.TrimSpace(e.Country),
			Code:     strings.TrimSpace(e.Code),
			Tax:      e.Tax,
			Duties:   e.Duties,
			LeadTime: e.LeadTime,
		}
		if e.Lat != nil && e.Lng != nil {
			loc.Lat, loc.Lng, loc.Located = *e.Lat, *e.Lng, true
		}
		out = append(out, loc)
	}
	return out
}

// Load reads a catalog, choosing the format by file extension.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".yaml", ".yml", "":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported services format %q", filepath.Ext(path))
	}
}

func ParseYAML(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse services: %w", err)
	}
	return &c, nil
}

// ParseJSON accepts either {"services": [...]} or a bare array.
func ParseJSON(data []byte) (*Catalog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse services: %w", err)
		}
		return &Catalog{Entries: entries}, nil
	}
	var c Catalog
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("failed to parse services: %w", err)
	}
	return &c, nil
}

// Index finds service locations by canonical country name.
type Index struct {
	byName map[string]ServiceLocation
	canon  func(string) string
}

// NewIndex keys locations through canon, so dataset and catalog spellings meet.
// A nil canon keys by the name as given. The first row for a country wins.
func NewIndex(locs []ServiceLocation, canon func(string) string) *Index {
	if canon == nil {
		canon = func(s string) string { return s }
	}
	idx := &Index{byName: make(map[string]ServiceLocation, len(locs)), canon: canon}
	for _, l := range locs {
		key := canon(l.Country)
		if _, dup := idx.byName[key]; !dup {
			idx.byName[key] = l
		}
	}
	return idx
}

func (i *Index) Lookup(country string) (ServiceLocation, bool) {
	if i == nil {
		return ServiceLocation{}, false
	}
	l, ok := i.byName[i.canon(country)]
	return l, ok
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byName)
}

// Countries returns the indexed canonical names, sorted.
func (i *Index) Countries() []string {
	if i == nil {
		return nil
	}
	out := make([]string, 0, len(i.byName))
	for k := range i.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
