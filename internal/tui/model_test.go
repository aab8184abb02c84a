package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covermap/internal/catalog"
	"covermap/internal/config"
	"covermap/internal/continent"
	"covermap/internal/drill"
	"covermap/internal/geom"
	"covermap/internal/projection"
	"covermap/internal/render"
	"covermap/internal/resolve"
	"covermap/internal/tooltip"
	"covermap/internal/viewport"
)

const testTable = `
continents:
  - name: Testland
    countries: [Lakeland, Dryland]
  - name: Otherland
    countries: [Farland]
`

const testServices = `
services:
  - country: Lakeland
    active: true
    lat: 12
    lng: 12
    tax: 5%
    duties: 12%
    lead_time: 12H
  - country: Farland
    active: false
`

func box(minLng, minLat, maxLng, maxLat float64) orb.Polygon {
	return orb.Polygon{{{minLng, minLat}, {maxLng, minLat}, {maxLng, maxLat}, {minLng, maxLat}, {minLng, minLat}}}
}

func testDataset() *geom.Dataset {
	return datasetOf(box(0, 0, 20, 20))
}

// elbowDataset replaces Lakeland with an L shape whose notch (lat 10..20, lng 10..20) is water.
func elbowDataset() *geom.Dataset {
	return datasetOf(orb.Polygon{{{0, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 20}, {0, 20}, {0, 0}}})
}

func datasetOf(lakeland orb.Polygon) *geom.Dataset {
	var fs []geom.Feature
	for _, f := range []struct {
		name string
		poly orb.Polygon
	}{
		{"Lakeland", lakeland},
		{"Dryland", box(20, 0, 40, 20)},
		{"Farland", box(-100, 10, -80, 30)},
	} {
		mp := orb.MultiPolygon{f.poly}
		fs = append(fs, geom.Feature{Name: f.name, Geometry: mp, Bound: mp.Bound()})
	}
	return geom.NewDataset(fs, 0)
}

func newModel(t *testing.T) Model {
	t.Helper()
	return newModelWith(t, testDataset())
}

func newModelWith(t *testing.T, ds *geom.Dataset) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Interaction.Transition = "50ms"
	cfg.Interaction.Debounce = "1ms"

	tbl, err := continent.Parse([]byte(testTable))
	require.NoError(t, err)
	cat, err := catalog.ParseYAML([]byte(testServices))
	require.NoError(t, err)

	m := New(Options{Config: cfg, Table: tbl, Catalog: cat})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, datasetMsg{dataset: ds})
	require.NotNil(t, m.frame)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// settle runs cmds, feeding animation frames and debounced resolutions back into the model.
func settle(t *testing.T, m Model, cmds ...tea.Cmd) Model {
	t.Helper()
	queue := append([]tea.Cmd(nil), cmds...)
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "commands never settled")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case viewport.FrameMsg, resolve.ResolveMsg:
			var next tea.Cmd
			m, next = update(t, m, msg)
			queue = append(queue, next)
		}
	}
	return m
}

// cellOf returns the terminal position showing (lat, lng) under the current transform.
func cellOf(m Model, lat, lng float64) (x, y int) {
	col, row := m.screen.ToCell(m.ctrl.Current().Apply(projection.Project(lat, lng)))
	ox, oy, _, _ := m.mapArea()
	return ox + col, oy + row
}

func move(t *testing.T, m Model, lat, lng float64) (Model, tea.Cmd) {
	t.Helper()
	x, y := cellOf(m, lat, lng)
	return update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
}

func clickAt(t *testing.T, m Model, lat, lng float64) (Model, tea.Cmd) {
	t.Helper()
	x, y := cellOf(m, lat, lng)
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	return update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drilled(t *testing.T) Model {
	t.Helper()
	m, cmd := clickAt(t, newModel(t), 10, 10)
	return settle(t, m, cmd)
}

func TestClick_DrillsIntoContinent(t *testing.T) {
	m := newModel(t)
	assert.False(t, m.interacted)

	m, cmd := clickAt(t, m, 10, 10)
	require.NotNil(t, cmd)
	assert.Equal(t, drill.State{Mode: drill.Drilldown, Continent: "Testland"}, m.State())
	assert.True(t, m.Locked())
	assert.True(t, m.interacted)

	want, err := m.ctrl.ZoomToContinent("Testland")
	require.NoError(t, err)

	m = settle(t, m, cmd)
	assert.False(t, m.Locked(), "lock is released by the last frame")
	assert.Equal(t, want, m.ctrl.Current())
}

func TestClick_SameContinentIsNoop(t *testing.T) {
	m := drilled(t)
	before := m.ctrl.Current()
	m, cmd := clickAt(t, m, 10, 30)
	assert.Nil(t, cmd)
	assert.False(t, m.Locked())
	assert.Equal(t, before, m.ctrl.Current())
}

func TestRapidZoomThenBack(t *testing.T) {
	m := newModel(t)
	m, first := clickAt(t, m, 10, 10)
	m, second := clickAt(t, m, 20, -90)
	assert.Equal(t, "Otherland", m.State().Continent)

	m, back := update(t, m, key("b"))
	require.NotNil(t, back)

	m = settle(t, m, first, second, back)
	assert.Equal(t, drill.State{Mode: drill.Overview}, m.State())
	assert.Equal(t, m.ctrl.Initial(), m.ctrl.Current())
	assert.False(t, m.Locked())
}

func TestNoTooltipWhileLocked(t *testing.T) {
	m, cmd := clickAt(t, newModel(t), 10, 10)
	require.True(t, m.Locked())

	for _, p := range [][2]float64{{4, 4}, {10, 30}, {12, 12}} {
		m, _ = move(t, m, p[0], p[1])
		assert.Equal(t, 0, m.tip.Count())
	}
	m = settle(t, m, cmd)
	m, _ = move(t, m, 4, 4)
	assert.Equal(t, 1, m.tip.Count())
}

func TestHover_TooltipContent(t *testing.T) {
	m := drilled(t)

	m, _ = move(t, m, 4, 4)
	require.NotNil(t, m.tip.Node())
	c := m.tip.Node().Content
	assert.Equal(t, "Lakeland", c.Country)
	require.True(t, c.HasMetrics())
	assert.Equal(t, "5%", c.Service.Tax)
	assert.Equal(t, "12%", c.Service.Duties)
	assert.Equal(t, "12H", c.Service.LeadTime)
	assert.Equal(t, 4, m.tip.Node().Lift())
	assert.Equal(t, "Lakeland", m.hoverCountry)

	// moving within the same country only repositions
	m, _ = move(t, m, 6, 5)
	x, y := cellOf(m, 6, 5)
	ox, oy, _, _ := m.mapArea()
	assert.Equal(t, x-ox, m.tip.Node().X)
	assert.Equal(t, y-oy, m.tip.Node().Y)

	m, _ = move(t, m, 10, 30)
	require.NotNil(t, m.tip.Node())
	assert.Equal(t, []string{"Dryland", tooltip.Unavailable}, m.tip.Node().Content.Lines())
	assert.Equal(t, 1, m.tip.Count())

	m, _ = move(t, m, -5, 20)
	assert.Equal(t, 0, m.tip.Count(), "ocean")
	assert.Empty(t, m.hoverCountry)
}

func TestHover_Marker(t *testing.T) {
	m := drilled(t)
	m, _ = move(t, m, 12, 12)
	require.NotNil(t, m.tip.Node())
	assert.Equal(t, "marker:Lakeland", m.tip.Tracking())
	assert.True(t, m.tip.Node().Content.HasMetrics())
}

func TestHover_OverviewHighlightsContinent(t *testing.T) {
	m := newModel(t)
	m, _ = move(t, m, 10, 30)
	assert.Equal(t, "Testland", m.hoverContinent)
	assert.Equal(t, 0, m.tip.Count(), "no tooltips in the overview")
	assert.Equal(t, []render.Role{render.RoleHighlight, render.RoleHighlight, render.RoleDim}, m.frame.Roles)

	m, _ = move(t, m, -60, 150)
	assert.Empty(t, m.hoverContinent)
	assert.Equal(t, render.RoleNeutral, m.frame.Roles[2])
}

func TestRaster_OceanRemovesTooltipImmediately(t *testing.T) {
	m := drilled(t)
	m, _ = update(t, m, key("s"))
	require.Equal(t, config.SurfaceRaster, m.surface)

	m, cmd := move(t, m, 4, 4)
	require.NotNil(t, cmd, "resolution is debounced")
	assert.Equal(t, 0, m.tip.Count())
	m = settle(t, m, cmd)
	require.Equal(t, "Lakeland", m.tip.Tracking())

	// same country: the node follows the pointer and stays
	m, cmd = move(t, m, 6, 5)
	require.NotNil(t, cmd)
	assert.Equal(t, "Lakeland", m.tip.Tracking())
	m = settle(t, m, cmd)
	assert.Equal(t, "Lakeland", m.tip.Tracking())

	m, cmd = move(t, m, -5, 20)
	assert.Nil(t, cmd, "ocean needs no debounce")
	assert.Equal(t, 0, m.tip.Count())
}

func TestRaster_SupersededResolutionIsDropped(t *testing.T) {
	m := drilled(t)
	m, _ = update(t, m, key("s"))

	m, stale := move(t, m, 4, 4)
	m, _ = move(t, m, -5, 20)
	m = settle(t, m, stale)
	assert.Equal(t, 0, m.tip.Count())
}

func TestRaster_WaterInsideBoundRemovesTooltipImmediately(t *testing.T) {
	m, cmd := clickAt(t, newModelWith(t, elbowDataset()), 4, 4)
	m = settle(t, m, cmd)
	m, _ = update(t, m, key("s"))

	m, cmd = move(t, m, 4, 4)
	m = settle(t, m, cmd)
	require.Equal(t, "Lakeland", m.tip.Tracking())

	// inside Lakeland's bound, outside its shape
	m, cmd = move(t, m, 17, 17)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.tip.Count())
	assert.Empty(t, m.hoverCountry)
}

func TestRaster_MarkerTooltipDoesNotFollowPointer(t *testing.T) {
	m := drilled(t)
	m, _ = update(t, m, key("s"))

	m, _ = move(t, m, 12, 12)
	require.Equal(t, "marker:Lakeland", m.tip.Tracking())

	m, cmd := move(t, m, 10, 30)
	require.NotNil(t, cmd, "resolution is debounced")
	assert.Equal(t, 0, m.tip.Count())

	m = settle(t, m, cmd)
	assert.Equal(t, "Dryland", m.tip.Tracking())
}

func TestWheel_ZoomsAndHidesTooltip(t *testing.T) {
	m := drilled(t)
	m, _ = move(t, m, 4, 4)
	require.Equal(t, 1, m.tip.Count())

	before := m.ctrl.Current().Scale
	x, y := cellOf(m, 4, 4)
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 0, m.tip.Count())
	assert.InDelta(t, before*m.cfg.Interaction.WheelFactor, m.ctrl.Current().Scale, 1e-9)
}

func TestDrag_PansAndCountsAsInteraction(t *testing.T) {
	m := newModel(t)
	before := m.ctrl.Current()
	m, _ = update(t, m, tea.MouseMsg{X: 50, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m, _ = update(t, m, tea.MouseMsg{X: 55, Y: 22, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, cmd := update(t, m, tea.MouseMsg{X: 55, Y: 22, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	assert.Nil(t, cmd, "a drag is not a click")
	assert.True(t, m.interacted)
	assert.Greater(t, m.ctrl.Current().TranslateX, before.TranslateX)
	assert.Greater(t, m.ctrl.Current().TranslateY, before.TranslateY)
	assert.Equal(t, drill.State{}, m.State())
}

func TestSearch_ActsAsClick(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, key("/"))
	require.True(t, m.searching)
	m, _ = update(t, m, key("Farland"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, drill.State{Mode: drill.Drilldown, Continent: "Otherland"}, m.State())

	m = settle(t, m, cmd)
	m, _ = update(t, m, key("/"))
	m, _ = update(t, m, key("Atlantis"))
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
	assert.Equal(t, "Otherland", m.State().Continent)
}

func TestSidebar_SelectsContinent(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.True(t, m.showSidebar)

	items := m.l.Items()
	require.Len(t, items, 2)
	first := items[0].(sideItem)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, drill.State{Mode: drill.Drilldown, Continent: first.continent}, m.State())

	m = settle(t, m, cmd)
	var names []string
	for _, it := range m.l.Items() {
		names = append(names, it.(sideItem).country)
	}
	assert.NotEmpty(t, names)
}

func TestServicesTable(t *testing.T) {
	m := newModel(t)
	cols, rows := m.buildAttributes()
	assert.Equal(t, []string{"Country", "Continent", "Tax", "Duties", "Lead time", "Located"}, cols)
	assert.Equal(t, [][]string{{"Lakeland", "Testland", "5%", "12%", "12H", "12.00, 12.00"}}, rows)

	m, _ = clickAt(t, m, 20, -90)
	_, rows = m.buildAttributes()
	assert.Empty(t, rows, "nothing active in Otherland")
}

func TestServicesReload(t *testing.T) {
	m := drilled(t)
	m, _ = move(t, m, 10, 30)
	require.Equal(t, 1, m.tip.Count())

	cat, err := catalog.ParseYAML([]byte(`
services:
  - country: Dryland
    active: true
    tax: 0%
    duties: 3%
    lead_time: 2D
`))
	require.NoError(t, err)
	m, _ = update(t, m, servicesMsg{Catalog: cat})
	_, ok := m.services.Lookup("Dryland")
	assert.True(t, ok)
	_, ok = m.services.Lookup("Lakeland")
	assert.False(t, ok)
	assert.Equal(t, 0, m.tip.Count(), "stale tooltip content is dropped")

	m, _ = update(t, m, servicesMsg{Err: errors.New("bad yaml")})
	assert.True(t, m.statusErr)
	_, ok = m.services.Lookup("Dryland")
	assert.True(t, ok, "previous catalog is kept")
}

func TestDatasetFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	m := New(Options{Config: cfg})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, m.View(), "loading boundary data")

	m, _ = update(t, m, datasetMsg{err: errors.New("connection refused")})
	assert.Equal(t, loadFailed, m.load)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.View(), "press r to retry")
	assert.Nil(t, m.frame)
}

func TestView(t *testing.T) {
	m := newModel(t)
	v := m.View()
	assert.Contains(t, v, "covermap")
	assert.Contains(t, v, "click a continent")

	m = drilled(t)
	m, _ = move(t, m, 4, 4)
	v = m.View()
	assert.Contains(t, v, "World › Testland")
	assert.Contains(t, v, "Lead time: 12H")
}

func TestResize_HidesTooltip(t *testing.T) {
	m := drilled(t)
	m, _ = move(t, m, 4, 4)
	require.Equal(t, 1, m.tip.Count())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 0, m.tip.Count())
	assert.Equal(t, viewport.Screen{Cols: 100, Rows: 27}, m.screen)
}
