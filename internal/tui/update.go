package tui

import (
	"context"
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"covermap/internal/catalog"
	"covermap/internal/config"
	"covermap/internal/drill"
	"covermap/internal/geom"
	"covermap/internal/projection"
	"covermap/internal/render"
	"covermap/internal/resolve"
	"covermap/internal/tooltip"
	"covermap/internal/viewport"
)

type datasetMsg struct {
	dataset *geom.Dataset
	err     error
}

type servicesMsg catalog.Update

func (m Model) fetchDataset() tea.Cmd {
	if m.loader == nil {
		return nil
	}
	loader, timeout := m.loader, m.cfg.GetDatasetTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ds, err := loader.Fetch(ctx)
		return datasetMsg{dataset: ds, err: err}
	}
}

// waitForServices delivers the next catalog reload. It is re-armed after each one.
func waitForServices(w *catalog.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-w.Updates()
		if !ok {
			return nil
		}
		return servicesMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.leave()
		m.resize()
		m.redraw()
		return m, nil

	case datasetMsg:
		m.setDataset(msg.dataset, msg.err)
		return m, nil

	case servicesMsg:
		if msg.Err != nil {
			m.setError("services reload failed: " + msg.Err.Error())
			m.log.Warn("services reload failed", zap.Error(msg.Err))
		} else {
			m.setServices(msg.Catalog)
			m.setStatus(fmt.Sprintf("services reloaded: %d active", m.services.Len()))
			m.redraw()
		}
		return m, waitForServices(m.watcher)

	case viewport.FrameMsg:
		t, done, cmd, ok := m.anim.Step(msg)
		if !ok {
			return m, nil
		}
		m.ctrl.Set(t)
		if done {
			m.locked = false
		}
		m.redraw()
		return m, cmd

	case resolve.ResolveMsg:
		cmd := m.resolved(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd
	}

	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.ti.Blur()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.ti.Value())
			m.searching = false
			m.ti.Blur()
			m.ti.SetValue("")
			cmd := m.search(q)
			return m, cmd
		}
		var cmd tea.Cmd
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}
	// a filtering sidebar owns the keyboard
	if m.showSidebar && m.l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	if m.showAttrs {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "a", "esc":
			m.showAttrs = false
			m.redraw()
			return m, nil
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.showSidebar = !m.showSidebar
		m.leave()
		m.resize()
		m.redraw()
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(sideItem); ok {
				cmd := m.pick(it)
				return m, cmd
			}
		}
	case "a":
		m.showAttrs = true
		m.leave()
		m.refreshAttrs()
	case "/":
		m.searching = true
		m.leave()
		cmd := m.ti.Focus()
		return m, cmd
	case "b", "esc":
		cmd := m.transition(m.machine.Back())
		return m, cmd
	case "0":
		m.recenter()
	case "s":
		if m.surface == config.SurfaceVector {
			m.surface = config.SurfaceRaster
		} else {
			m.surface = config.SurfaceVector
		}
		m.leave()
		m.setStatus("surface: " + m.surface)
	case "r":
		if m.load == loadFailed {
			m.load = loadPending
			m.setStatus("retrying boundary data")
			cmd := m.fetchDataset()
			return m, cmd
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "+", "=":
		m.zoomAtCenter(m.cfg.Interaction.WheelFactor)
	case "-", "_":
		m.zoomAtCenter(1 / m.cfg.Interaction.WheelFactor)
	case "up":
		m.panCells(0, -1)
	case "down":
		m.panCells(0, 1)
	case "left":
		m.panCells(-2, 0)
	case "right":
		m.panCells(2, 0)
	default:
		if m.showSidebar {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	col, row, inside := m.mapCell(msg.X, msg.Y)

	switch {
	case tea.MouseEvent(msg).IsWheel():
		// wheel is the terminal's scroll: the tooltip never survives it
		m.leave()
		if !inside || m.locked {
			return nil
		}
		factor := m.cfg.Interaction.WheelFactor
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			factor = 1 / factor
		case tea.MouseButtonWheelUp:
		default:
			return nil
		}
		p := m.screen.FromCell(col, row)
		m.ctrl.ZoomAt(factor, p[0], p[1])
		m.redraw()
		return nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if inside {
			m.pressed, m.dragged = true, false
			m.lastX, m.lastY = msg.X, msg.Y
		}
		return nil

	case msg.Action == tea.MouseActionRelease:
		wasClick := m.pressed && !m.dragged
		m.pressed = false
		if wasClick && inside {
			return m.click(col, row)
		}
		return nil

	case msg.Action == tea.MouseActionMotion && m.pressed:
		dx, dy := msg.X-m.lastX, msg.Y-m.lastY
		if dx == 0 && dy == 0 {
			return nil
		}
		m.lastX, m.lastY = msg.X, msg.Y
		m.dragged = true
		m.firstInteraction("drag")
		m.leave()
		if !m.locked {
			ux, uy := m.screen.CellDelta(dx, dy)
			m.ctrl.Pan(ux, uy)
			m.redraw()
		}
		return nil
	}
	return m.hover(col, row, inside)
}

// hover handles pointer motion over the map area.
func (m *Model) hover(col, row int, inside bool) tea.Cmd {
	m.pointerIn = inside
	m.pointerGeo = false
	if !inside || m.frame == nil {
		m.leave()
		return nil
	}
	v := m.view()
	m.pointerLat, m.pointerLng, m.pointerGeo = resolve.Geo(v, col, row)

	st := m.machine.State()
	if st.Mode == drill.Overview {
		// continent-wide highlight, read from the hit buffer on both surfaces
		name, _ := resolve.Shapes{}.Resolve(v, col, row)
		cont, _ := m.table.GetCountryContinent(name)
		if cont != m.hoverContinent {
			m.hoverContinent = cont
			m.redraw()
		}
		return nil
	}
	if m.locked {
		return nil
	}

	if loc, ok := m.frame.MarkerAt(col, row); ok {
		key := markerKey + loc.Country
		if !m.tip.Move(key, col, row) {
			m.tip.Show(key, tooltip.NewContent(loc.Country, loc, true), col, row, m.locked)
		}
		m.debounce.Cancel()
		return nil
	}

	r := m.resolver()
	if !r.MaybeLand(v, col, row) {
		m.leave()
		return nil
	}
	if r.Deferred() {
		// a marker tooltip never follows the pointer off its marker
		if k := m.tip.Tracking(); strings.HasPrefix(k, markerKey) {
			m.tip.Hide()
		} else {
			m.tip.Move(k, col, row)
		}
		return m.debounce.Schedule(col, row)
	}
	name, err := r.Resolve(v, col, row)
	if err != nil {
		m.log.Warn("resolve failed", zap.Int("col", col), zap.Int("row", row), zap.Error(err))
	}
	m.enterCountry(name, col, row)
	return nil
}

// resolved finishes a debounced resolution.
func (m *Model) resolved(msg resolve.ResolveMsg) tea.Cmd {
	if !m.debounce.Accept(msg) || m.locked || m.machine.State().Mode != drill.Drilldown {
		return nil
	}
	name, err := m.resolver().Resolve(m.view(), msg.Col, msg.Row)
	if err != nil {
		m.log.Warn("resolve failed", zap.Int("col", msg.Col), zap.Int("row", msg.Row), zap.Error(err))
	}
	m.enterCountry(name, msg.Col, msg.Row)
	return nil
}

// enterCountry shows or moves the tooltip for a country in the selected continent.
func (m *Model) enterCountry(name string, col, row int) {
	st := m.machine.State()
	if name == "" || !m.table.IsCountryInContinent(name, st.Continent) {
		m.leave()
		return
	}
	if name != m.hoverCountry {
		m.hoverCountry = name
		m.redraw()
	}
	if m.tip.Move(name, col, row) {
		return
	}
	loc, ok := m.services.Lookup(name)
	m.tip.Show(name, tooltip.NewContent(name, loc, ok), col, row, m.locked)
}

// leave tears down every hover side effect.
func (m *Model) leave() {
	m.tip.Hide()
	m.debounce.Cancel()
	if m.hoverCountry != "" || m.hoverContinent != "" {
		m.hoverCountry, m.hoverContinent = "", ""
		m.redraw()
	}
}

func (m *Model) click(col, row int) tea.Cmd {
	m.firstInteraction("click")
	if m.frame == nil {
		return nil
	}
	if loc, ok := m.frame.MarkerAt(col, row); ok {
		return m.transition(m.machine.Click(loc.Country))
	}
	name, err := m.resolver().Resolve(m.view(), col, row)
	if err != nil {
		m.log.Warn("resolve failed", zap.Error(err))
		return nil
	}
	if name == "" {
		return nil
	}
	return m.transition(m.machine.Click(name))
}

// transition applies a view state change: tooltip down, lock on, animate.
// The lock is released by the animation's last frame.
func (m *Model) transition(tr drill.Transition) tea.Cmd {
	if !tr.Changed() {
		return nil
	}
	m.leave()
	m.locked = true

	target := m.ctrl.Current()
	switch tr.Action {
	case drill.Zoom:
		t, err := m.ctrl.ZoomToContinent(tr.To.Continent)
		if err != nil {
			m.log.Warn("continent zoom failed", zap.String("continent", tr.To.Continent), zap.Error(err))
			m.setError(err.Error())
		} else {
			target = t
		}
	case drill.Reset:
		target = m.ctrl.Initial()
	}
	m.log.Info("view transition",
		zap.Stringer("from", tr.From.Mode),
		zap.String("from_continent", tr.From.Continent),
		zap.Stringer("to", tr.To.Mode),
		zap.String("to_continent", tr.To.Continent))

	if tr.To.Mode == drill.Drilldown {
		m.setStatus(tr.To.Continent)
	} else {
		m.setStatus("continents")
	}
	m.refreshSidebar()
	if m.showAttrs {
		m.refreshAttrs()
	}
	m.redraw()
	return m.anim.Start(m.ctrl.Current(), target)
}

// pick acts on a sidebar entry.
func (m *Model) pick(it sideItem) tea.Cmd {
	if it.country != "" {
		return m.transition(m.machine.Click(it.country))
	}
	return m.transition(m.machine.Select(it.continent))
}

// search treats a typed country as a click on its shape.
func (m *Model) search(q string) tea.Cmd {
	if q == "" {
		return nil
	}
	name := q
	if m.dataset != nil {
		if f, ok := m.dataset.Lookup(q); ok {
			name = f.Name
		}
	}
	if _, ok := m.table.GetCountryContinent(name); !ok {
		m.setError(fmt.Sprintf("no continent for %q", q))
		return nil
	}
	return m.transition(m.machine.Click(name))
}

func (m *Model) firstInteraction(kind string) {
	if m.interacted {
		return
	}
	m.interacted = true
	m.log.Info("first interaction", zap.String("kind", kind))
}

func (m *Model) zoomAtCenter(factor float64) {
	if m.locked {
		return
	}
	m.leave()
	m.ctrl.ZoomAt(factor, projection.Width/2, projection.Height/2)
	m.redraw()
}

func (m *Model) panCells(dcols, drows int) {
	if m.locked {
		return
	}
	m.leave()
	ux, uy := m.screen.CellDelta(dcols, drows)
	m.ctrl.Pan(ux, uy)
	m.redraw()
}

// recenter frames the current state again without a transition.
func (m *Model) recenter() {
	if m.locked {
		return
	}
	m.leave()
	st := m.machine.State()
	if st.Mode == drill.Drilldown {
		if t, err := m.ctrl.ZoomToContinent(st.Continent); err == nil {
			m.ctrl.Set(t)
		}
	} else {
		m.ctrl.Reset()
	}
	m.redraw()
}

func (m *Model) setDataset(ds *geom.Dataset, err error) {
	if err != nil {
		m.load = loadFailed
		m.loadErr = err
		m.setError("boundary data: " + err.Error())
		m.log.Error("boundary data unavailable", zap.Error(err))
		return
	}
	m.load = loadReady
	m.loadErr = nil
	m.dataset = ds
	m.scene = render.NewScene(ds)
	m.rays = resolve.NewRayCaster(ds, m.log)
	if m.cfg.Interaction.ZoomStrategy != config.StrategyFixed {
		m.ctrl.SetStrategy(viewport.Computed{
			Dataset: ds,
			Table:   m.table,
			Padding: m.cfg.Interaction.FitPadding,
			Min:     m.cfg.Interaction.ContinentScaleMin,
			Max:     m.cfg.Interaction.ContinentScaleMax,
		})
	}
	m.ti.SetSuggestions(ds.Names())
	m.setStatus(fmt.Sprintf("%d countries, %d services", len(ds.Features), m.services.Len()))
	m.refreshSidebar()
	m.redraw()
}

func (m *Model) setServices(c *catalog.Catalog) {
	m.locations = c.Active()
	m.services = catalog.NewIndex(m.locations, m.table.Canonical)
	m.tip.Hide()
	m.refreshSidebar()
	if m.showAttrs {
		m.refreshAttrs()
	}
}

// resolver picks the country resolution backend for the active surface.
func (m *Model) resolver() resolve.Resolver {
	if m.surface == config.SurfaceRaster && m.rays != nil {
		return m.rays
	}
	return resolve.Shapes{}
}

func (m *Model) view() resolve.View {
	return resolve.View{Frame: m.frame, Scene: m.scene, Transform: m.ctrl.Current(), Screen: m.screen}
}

// redraw re-runs the render pass for the current state.
func (m *Model) redraw() {
	_, _, w, h := m.mapArea()
	m.screen = viewport.Screen{Cols: w, Rows: h}
	if m.scene == nil {
		m.frame = nil
		return
	}
	st := m.machine.State()
	m.frame = render.Pass(render.Input{
		Scene:          m.scene,
		Table:          m.table,
		State:          st,
		Services:       m.services,
		Locations:      m.locations,
		Transform:      m.ctrl.Current(),
		Screen:         m.screen,
		HoverContinent: m.hoverContinent,
		HoverCountry:   m.hoverCountry,
		StrokeWidth:    m.ctrl.StrokeWidth(m.cfg.Interaction.StrokeWidth),
		MarkerRadius:   m.ctrl.MarkerRadius(m.cfg.Interaction.MarkerRadius),
	})
}

func (m *Model) setStatus(s string) { m.status, m.statusErr = s, false }
func (m *Model) setError(s string)  { m.status, m.statusErr = s, true }
