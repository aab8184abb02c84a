package render

import (
	"math"
	"sort"
)

// dot bits of a braille cell, indexed [column][row] of the 2x4 micro grid
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Cell is one terminal cell of a frame.
type Cell struct {
	Mask    uint8 // braille dots
	Role    Role
	Feature int // owning feature, -1 for none
	Marker  int // marker index, -1 for none
	Edge    bool
}

// grid is the braille canvas plus the hit buffer that records which feature owns a cell.
type grid struct {
	cols, rows int
	cells      []Cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
	for i := range g.cells {
		g.cells[i].Feature = -1
		g.cells[i].Marker = -1
	}
	return g
}

func (g *grid) cell(mx, my int) *Cell {
	if mx < 0 || my < 0 {
		return nil
	}
	cx, cy := mx/2, my/4
	if cx >= g.cols || cy >= g.rows {
		return nil
	}
	return &g.cells[cy*g.cols+cx]
}

// setPixel sets a micro-pixel (2x4 per cell) and tags its cell.
// Role RoleBackground only claims the cell for hit testing and sets no dot.
// It never takes a cell from a drawn feature.
func (g *grid) setPixel(mx, my int, role Role, feature int) {
	c := g.cell(mx, my)
	if c == nil {
		return
	}
	if role == RoleBackground && c.Feature >= 0 && c.Role != RoleBackground {
		return
	}
	if role != RoleBackground {
		c.Mask |= dotBits[mx%2][my%4]
	}
	if c.Marker >= 0 {
		return
	}
	c.Role = role
	c.Feature = feature
}

func (g *grid) setEdge(mx, my int, role Role, feature int) {
	if role == RoleBackground {
		return
	}
	c := g.cell(mx, my)
	if c == nil {
		return
	}
	c.Mask |= dotBits[mx%2][my%4]
	if c.Marker >= 0 {
		return
	}
	c.Edge = true
	c.Role = role
	c.Feature = feature
}

func (g *grid) setMarker(mx, my, marker int) {
	c := g.cell(mx, my)
	if c == nil {
		return
	}
	c.Mask |= dotBits[mx%2][my%4]
	c.Role = RoleMarker
	c.Marker = marker
}

// drawLine draws a line on the micro grid using Bresenham.
func (g *grid) drawLine(x0, y0, x1, y1 int, role Role, feature int) {
	// keep runaway edges of off-screen geometry bounded
	if (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) ||
		(x0 >= g.cols*2 && x1 >= g.cols*2) || (y0 >= g.rows*4 && y1 >= g.rows*4) {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		g.setEdge(x0, y0, role, feature)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolygon fills rings with the even-odd rule, one scanline per micro row.
// Holes fall out of the rule because every ring contributes crossings.
func (g *grid) fillPolygon(rings [][][2]float64, role Role, feature int) {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, r := range rings {
		for _, p := range r {
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}
	hMic, wMic := g.rows*4, g.cols*2
	y0 := int(math.Max(0, math.Floor(minY)))
	y1 := int(math.Min(float64(hMic-1), math.Ceil(maxY)))

	var xs []float64
	for y := y0; y <= y1; y++ {
		sy := float64(y) + 0.5
		xs = xs[:0]
		for _, r := range rings {
			n := len(r)
			for i := 0; i < n; i++ {
				a, b := r[i], r[(i+1)%n]
				if a[1] == b[1] {
					continue
				}
				if (sy >= a[1] && sy < b[1]) || (sy >= b[1] && sy < a[1]) {
					t := (sy - a[1]) / (b[1] - a[1])
					xs = append(xs, a[0]+t*(b[0]-a[0]))
				}
			}
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			start := int(math.Max(0, math.Ceil(xs[i]-0.5)))
			end := int(math.Min(float64(wMic-1), math.Floor(xs[i+1]-0.5)))
			for x := start; x <= end; x++ {
				g.setPixel(x, y, role, feature)
			}
		}
	}
}

// fillDisc draws a filled circle of radius r micro-pixels; at least the centre dot.
func (g *grid) fillDisc(cx, cy, r float64, marker int) {
	g.setMarker(int(math.Floor(cx)), int(math.Floor(cy)), marker)
	if r < 1 {
		return
	}
	for y := int(math.Floor(cy - r)); y <= int(math.Ceil(cy+r)); y++ {
		for x := int(math.Floor(cx - r)); x <= int(math.Ceil(cx+r)); x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				g.setMarker(x, y, marker)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
