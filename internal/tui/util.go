package tui

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2

	// tooltip key prefix for service markers; country tooltips are keyed by name
	markerKey = "marker:"
)

// mapArea returns the origin and size of the map canvas in terminal cells.
// It must match the View layout.
func (m Model) mapArea() (x, y, w, h int) {
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	w = contentWidth
	if m.showSidebar {
		x = sidebarWidth + 1
		w = contentWidth - x
	}
	return x, headerHeight, max(10, w), contentHeight
}

// mapCell converts a terminal position to a map cell.
func (m Model) mapCell(px, py int) (col, row int, inside bool) {
	x, y, w, h := m.mapArea()
	col, row = px-x, py-y
	return col, row, col >= 0 && col < w && row >= 0 && row < h
}

func (m *Model) resize() {
	_, _, _, h := m.mapArea()
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, h-2)
	}
	m.ti.Width = max(10, m.width-4)
}
