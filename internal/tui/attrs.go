package tui

import (
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"

	"covermap/internal/catalog"
	"covermap/internal/drill"
)

// refreshAttrs rebuilds the services table for the selected continent,
// or for every continent in the overview.
func (m *Model) refreshAttrs() {
	cols, rows := m.buildAttributes()
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for i, c := range cols {
		w := len(c) + 2
		for _, r := range rows {
			if len(r[i])+2 > w {
				w = len(r[i]) + 2
			}
		}
		if w > maxColW {
			w = maxColW
		}
		tcols = append(tcols, table.Column{Title: c, Width: w})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// clear rows first so columns never outnumber cells mid-update
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
	if len(rows) == 0 {
		m.setStatus("no services here")
	}
}

// buildAttributes returns the table header and one row per service location.
func (m *Model) buildAttributes() ([]string, [][]string) {
	cols := []string{"Country", "Continent", "Tax", "Duties", "Lead time", "Located"}
	st := m.machine.State()
	locs := make([]catalog.ServiceLocation, 0, len(m.locations))
	for _, loc := range m.locations {
		if st.Mode == drill.Drilldown && !m.table.IsCountryInContinent(loc.Country, st.Continent) {
			continue
		}
		locs = append(locs, loc)
	}
	sort.SliceStable(locs, func(i, j int) bool { return locs[i].Country < locs[j].Country })

	rows := make([][]string, 0, len(locs))
	for _, loc := range locs {
		cont, _ := m.table.GetCountryContinent(loc.Country)
		located := "no"
		if loc.Located {
			located = fmt.Sprintf("%.2f, %.2f", loc.Lat, loc.Lng)
		}
		rows = append(rows, []string{loc.Country, cont, loc.Tax, loc.Duties, loc.LeadTime, located})
	}
	return cols, rows
}
