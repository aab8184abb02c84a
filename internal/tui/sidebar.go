package tui

import (
	"fmt"
	"sort"

	list "github.com/charmbracelet/bubbles/list"

	"covermap/internal/drill"
)

// sideItem is a continent in the overview or a country in the drilldown.
type sideItem struct {
	title, desc string
	continent   string
	country     string
}

func (s sideItem) Title() string       { return s.title }
func (s sideItem) Description() string { return s.desc }
func (s sideItem) FilterValue() string { return s.title }

func (m *Model) refreshSidebar() {
	st := m.machine.State()
	var items []list.Item
	if st.Mode == drill.Drilldown {
		m.l.Title = st.Continent
		for _, name := range m.countriesOf(st.Continent) {
			desc := "no service"
			if loc, ok := m.services.Lookup(name); ok {
				desc = fmt.Sprintf("tax %s, duties %s, %s", loc.Tax, loc.Duties, loc.LeadTime)
			}
			items = append(items, sideItem{title: name, desc: desc, continent: st.Continent, country: name})
		}
	} else {
		m.l.Title = "Continents"
		for _, name := range m.table.Continents() {
			n := 0
			for _, loc := range m.locations {
				if m.table.IsCountryInContinent(loc.Country, name) {
					n++
				}
			}
			items = append(items, sideItem{title: name, desc: fmt.Sprintf("%d services", n), continent: name})
		}
	}
	m.l.SetItems(items)
	m.l.ResetSelected()
}

// countriesOf lists a continent's countries as the dataset spells them,
// falling back to the table before the dataset arrives.
func (m *Model) countriesOf(continent string) []string {
	var out []string
	if m.dataset != nil {
		for _, f := range m.dataset.Features {
			if m.table.IsCountryInContinent(f.Name, continent) {
				out = append(out, f.Name)
			}
		}
	} else {
		out = append(out, m.table.Members(continent)...)
	}
	sort.Strings(out)
	return out
}
