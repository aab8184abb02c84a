package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"covermap/internal/drill"
	"covermap/internal/tooltip"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	contentWidth := max(10, m.width)
	_, _, mapWidth, mapHeight := m.mapArea()

	// Header
	crumb := "World"
	if st := m.machine.State(); st.Mode == drill.Drilldown {
		crumb = "World › " + st.Continent
	}
	header := titleStyle.Render(" covermap ─ service coverage ") + dimStyle.Render(" "+crumb)
	header = lipgloss.NewStyle().Width(contentWidth).MaxHeight(headerHeight).Render(header)

	// Map area
	var mapView string
	switch {
	case m.showAttrs:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(mapWidth, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.load == loadFailed:
		msg := errStyle.Render("boundary data unavailable") + "\n" +
			dimStyle.Render(fmt.Sprint(m.loadErr)) + "\n\n" +
			dimStyle.Render("press r to retry")
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, boxStyle.MaxWidth(mapWidth).Render(msg))
	case m.frame == nil:
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, dimStyle.Render("loading boundary data…"))
	default:
		lines := m.frame.Lines(m.styles)
		lines = tooltip.Composite(lines, m.tip.Node(), tooltipStyle, mapWidth)
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).MaxHeight(mapHeight).Render(strings.Join(lines, "\n"))
	}

	body := mapView
	if m.showSidebar {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Height(mapHeight).MaxHeight(mapHeight).Render(m.l.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	footer := lipgloss.JoinVertical(lipgloss.Left, m.renderStatus(contentWidth), m.renderHelp(contentWidth))
	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).MaxHeight(m.height).Render(ui)
}

// renderStatus is the status line with pointer position and zoom at the right.
func (m Model) renderStatus(width int) string {
	status := dimStyle.Render(" " + m.status + " ")
	if m.statusErr {
		status = errStyle.Render(" " + m.status + " ")
	}
	coords := fmt.Sprintf("zoom %.2fx  ", m.ctrl.Current().Scale)
	if m.pointerIn && m.pointerGeo {
		coords = fmt.Sprintf("lat=%.3f lng=%.3f  ", m.pointerLat, m.pointerLng) + coords
	}
	if m.locked {
		coords = "… " + coords
	}
	right := dimStyle.Render(coords)
	spacer := max(0, width-lipgloss.Width(status)-lipgloss.Width(right))
	return lipgloss.NewStyle().MaxWidth(width).Render(status + strings.Repeat(" ", spacer) + right)
}

func (m Model) renderHelp(width int) string {
	if m.searching {
		return m.ti.View()
	}
	if !m.interacted && m.machine.State().Mode == drill.Overview {
		return hintStyle.Render(" click a continent to see where we deliver, drag to pan, scroll to zoom")
	}
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"b back",
		"0 recentre",
		"Tab list",
		"/ search",
		"a services",
		"s surface",
		"h help",
		"q quit",
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(dimStyle.Render("  " + strings.Join(keys, "  ")))
}
