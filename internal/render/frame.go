package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"covermap/internal/catalog"
)

// Frame is one rendered map: braille cells plus the hit buffer.
type Frame struct {
	grid    *grid
	Roles   []Role                    // per feature, in scene order
	Markers []catalog.ServiceLocation // drawn markers, indexed by Cell.Marker
}

func (f *Frame) Size() (cols, rows int) { return f.grid.cols, f.grid.rows }

// At returns the cell at (col, row); out of range yields an empty cell.
func (f *Frame) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= f.grid.cols || row >= f.grid.rows {
		return Cell{Feature: -1, Marker: -1}
	}
	return f.grid.cells[row*f.grid.cols+col]
}

// FeatureAt returns the index of the feature owning the cell.
func (f *Frame) FeatureAt(col, row int) (int, bool) {
	c := f.At(col, row)
	return c.Feature, c.Feature >= 0
}

// MarkerAt returns the service location whose marker covers the cell.
func (f *Frame) MarkerAt(col, row int) (catalog.ServiceLocation, bool) {
	c := f.At(col, row)
	if c.Marker < 0 || c.Marker >= len(f.Markers) {
		return catalog.ServiceLocation{}, false
	}
	return f.Markers[c.Marker], true
}

// Plain renders the braille dots without styling.
func (f *Frame) Plain() []string {
	out := make([]string, f.grid.rows)
	for y := 0; y < f.grid.rows; y++ {
		row := make([]rune, f.grid.cols)
		for x := 0; x < f.grid.cols; x++ {
			row[x] = glyph(f.grid.cells[y*f.grid.cols+x].Mask)
		}
		out[y] = string(row)
	}
	return out
}

// Lines renders styled rows, grouping runs of cells that share a style.
func (f *Frame) Lines(st Styles) []string {
	out := make([]string, f.grid.rows)
	var sb, run strings.Builder
	for y := 0; y < f.grid.rows; y++ {
		sb.Reset()
		run.Reset()
		var cur styleKey
		for x := 0; x < f.grid.cols; x++ {
			c := f.grid.cells[y*f.grid.cols+x]
			key := styleKey{role: c.Role, edge: c.Edge}
			if c.Mask == 0 {
				key = styleKey{}
			}
			if x > 0 && key != cur {
				sb.WriteString(st.render(cur, run.String()))
				run.Reset()
			}
			cur = key
			run.WriteRune(glyph(c.Mask))
		}
		sb.WriteString(st.render(cur, run.String()))
		out[y] = sb.String()
	}
	return out
}

func glyph(mask uint8) rune {
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}

type styleKey struct {
	role Role
	edge bool
}

// Styles colours each role; edges use the border variant.
type Styles struct {
	Neutral, NeutralEdge     lipgloss.Style
	Highlight, HighlightEdge lipgloss.Style
	Dim                      lipgloss.Style
	Active, ActiveEdge       lipgloss.Style
	Inactive, InactiveEdge   lipgloss.Style
	Hover                    lipgloss.Style
	Marker                   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Neutral:       lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")),
		NeutralEdge:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6D28D9")),
		HighlightEdge: lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("#1F2937")),
		Active:        lipgloss.NewStyle().Foreground(lipgloss.Color("#047857")),
		ActiveEdge:    lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")).Bold(true),
		Inactive:      lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
		InactiveEdge:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Hover:         lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		Marker:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Bold(true),
	}
}

func (s Styles) render(k styleKey, text string) string {
	var st lipgloss.Style
	switch k.role {
	case RoleNeutral:
		st = pick(k.edge, s.Neutral, s.NeutralEdge)
	case RoleHighlight:
		st = pick(k.edge, s.Highlight, s.HighlightEdge)
	case RoleDim:
		st = s.Dim
	case RoleActive:
		st = pick(k.edge, s.Active, s.ActiveEdge)
	case RoleInactive:
		st = pick(k.edge, s.Inactive, s.InactiveEdge)
	case RoleHover:
		st = s.Hover
	case RoleMarker:
		st = s.Marker
	default:
		return text
	}
	return st.Render(text)
}

func pick(edge bool, fill, border lipgloss.Style) lipgloss.Style {
	if edge {
		return border
	}
	return fill
}
