package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCSV reads a catalog with a header row.
// Column detection (case-insensitive): country|name, code|iso|iso2, active|enabled,
// lat|latitude|y, lon|lng|long|longitude|x, tax, duties|duty, lead_time|leadtime|lead.
func ParseCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse services csv: %w", err)
	}
	if len(recs) == 0 {
		return nil, errors.New("csv: empty services file")
	}

	idx := map[string]int{}
	for i, h := range recs[0] {
		var col string
		switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_") {
		case "country", "name":
			col = "country"
		case "code", "iso", "iso2":
			col = "code"
		case "active", "enabled":
			col = "active"
		case "lat", "latitude", "y":
			col = "lat"
		case "lon", "lng", "long", "longitude", "x":
			col = "lng"
		case "tax":
			col = "tax"
		case "duties", "duty":
			col = "duties"
		case "lead_time", "leadtime", "lead":
			col = "lead"
		default:
			continue
		}
		if _, seen := idx[col]; !seen {
			idx[col] = i
		}
	}
	if _, ok := idx["country"]; !ok {
		return nil, errors.New("csv: country column not found")
	}

	get := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var c Catalog
	for _, row := range recs[1:] {
		e := Entry{
			Country:  get(row, "country"),
			Code:     get(row, "code"),
			Tax:      get(row, "tax"),
			Duties:   get(row, "duties"),
			LeadTime: get(row, "lead"),
			Active:   true,
		}
		if e.Country == "" {
			continue
		}
		if _, ok := idx["active"]; ok {
			e.Active = parseBool(get(row, "active"))
		}
		lat, err1 := strconv.ParseFloat(get(row, "lat"), 64)
		lng, err2 := strconv.ParseFloat(get(row, "lng"), 64)
		if err1 == nil && err2 == nil {
			e.Lat, e.Lng = &lat, &lng
		}
		c.Entries = append(c.Entries, e)
	}
	return &c, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "active", "on":
		return true
	}
	return false
}
