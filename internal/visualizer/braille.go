package visualizer

import (
	"math"
	"strings"
)

// Canvas is a dot grid rendered with Unicode Braille characters. Each cell
// is a 2x4 dot grid, giving 2x horizontal and 4x vertical resolution. Every
// cell also carries a heat value in [0, 1] that picks its colour.
type Canvas struct {
	cols, rows int
	dots       []uint8   // one braille pattern per cell
	heat       []float64 // -1 marks an uncoloured cell
}

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// NewCanvas returns a blank canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize discards the drawing and changes the cell size.
func (c *Canvas) Resize(cols, rows int) {
	c.cols = max(cols, 1)
	c.rows = max(rows, 1)
	c.dots = make([]uint8, c.cols*c.rows)
	c.heat = make([]float64, c.cols*c.rows)
	c.Clear()
}

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.dots {
		c.dots[i] = 0
		c.heat[i] = -1
	}
}

// DotSize returns the canvas resolution in dots.
func (c *Canvas) DotSize() (w, h int) { return c.cols * 2, c.rows * 4 }

// Cells returns the canvas size in cells.
func (c *Canvas) Cells() (cols, rows int) { return c.cols, c.rows }

// Set lights the dot at (x, y). Out-of-range dots are ignored. A cell keeps
// the hottest value drawn into it.
func (c *Canvas) Set(x, y int, heat float64) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	i := (y/4)*c.cols + x/2
	c.dots[i] |= 1 << brailleBits[x%2][y%4]
	if heat > c.heat[i] {
		c.heat[i] = clamp01(heat)
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return false
	}
	return c.dots[(y/4)*c.cols+x/2]&(1<<brailleBits[x%2][y%4]) != 0
}

// Line draws a straight run of dots between two dot positions.
func (c *Canvas) Line(x0, y0, x1, y1 float64, heat float64) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.Set(int(math.Round(x0)), int(math.Round(y0)), heat)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.Set(int(math.Round(x0+dx*t)), int(math.Round(y0+dy*t)), heat)
	}
}

// Circle draws a ring of radius r dots around (cx, cy).
func (c *Canvas) Circle(cx, cy, r float64, heat float64) {
	if r <= 0 {
		return
	}
	n := max(int(2*math.Pi*r), 8)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		c.Set(int(math.Round(cx+r*math.Cos(a))), int(math.Round(cy+r*math.Sin(a))), heat)
	}
}

// Rect draws the outline of an axis-aligned rectangle.
func (c *Canvas) Rect(x0, y0, x1, y1 float64, heat float64) {
	c.Line(x0, y0, x1, y0, heat)
	c.Line(x1, y0, x1, y1, heat)
	c.Line(x1, y1, x0, y1, heat)
	c.Line(x0, y1, x0, y0, heat)
}

// String renders the canvas, coloured by heat when colour is true and the
// terminal supports it.
func (c *Canvas) String(color bool) string {
	rows := make([]string, c.rows)
	for row := range c.rows {
		var line strings.Builder
		ansi := newANSIState()
		if !color {
			ansi.profile = colorNone
		}
		for col := range c.cols {
			i := row*c.cols + col
			if c.dots[i] != 0 && c.heat[i] >= 0 {
				ansi.set(&line, heatColor(c.heat[i]))
			}
			line.WriteRune(rune(0x2800 + uint(c.dots[i])))
		}
		ansi.reset(&line)
		rows[row] = line.String()
	}
	return strings.Join(rows, "\n")
}
