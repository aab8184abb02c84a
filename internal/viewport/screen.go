package viewport

import (
	"math"

	"github.com/paulmach/orb"

	"covermap/internal/projection"
)

// Screen maps view-space canvas units onto a braille micro-pixel grid
// of Cols*2 by Rows*4 dots, uniformly fitted and centred.
type Screen struct {
	Cols, Rows int
}

func (s Screen) Micro() (w, h int) { return s.Cols * 2, s.Rows * 4 }

// PixelsPerUnit is the number of micro-pixels per logical canvas unit.
func (s Screen) PixelsPerUnit() float64 {
	w, h := s.Micro()
	if w <= 0 || h <= 0 {
		return 0
	}
	return math.Min(float64(w)/projection.Width, float64(h)/projection.Height)
}

func (s Screen) offset() (ox, oy float64) {
	w, h := s.Micro()
	k := s.PixelsPerUnit()
	return (float64(w) - k*projection.Width) / 2, (float64(h) - k*projection.Height) / 2
}

// ToMicro maps a view-space point to micro-pixel coordinates.
func (s Screen) ToMicro(p orb.Point) (x, y float64) {
	k := s.PixelsPerUnit()
	ox, oy := s.offset()
	return ox + p[0]*k, oy + p[1]*k
}

// FromMicro maps micro-pixel coordinates back to a view-space point.
func (s Screen) FromMicro(x, y float64) orb.Point {
	k := s.PixelsPerUnit()
	if k == 0 {
		return orb.Point{}
	}
	ox, oy := s.offset()
	return orb.Point{(x - ox) / k, (y - oy) / k}
}

// FromCell returns the view-space point at the centre of a terminal cell.
func (s Screen) FromCell(col, row int) orb.Point {
	return s.FromMicro(float64(col*2)+1, float64(row*4)+2)
}

// ToCell returns the terminal cell containing a view-space point.
func (s Screen) ToCell(p orb.Point) (col, row int) {
	x, y := s.ToMicro(p)
	return int(math.Floor(x / 2)), int(math.Floor(y / 4))
}

// CellDelta converts a cell offset to view-space units, for drag panning.
func (s Screen) CellDelta(dcols, drows int) (dx, dy float64) {
	k := s.PixelsPerUnit()
	if k == 0 {
		return 0, 0
	}
	return float64(dcols*2) / k, float64(drows*4) / k
}
