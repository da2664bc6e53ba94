package viz

import (
	"strings"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid drawn on at Braille dot resolution:
// (2*Width) x (4*Height) dots.
type Canvas struct {
	Width, Height int
	cells         [][]rune
	marks         map[[2]int]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h), marks: make(map[[2]int]rune)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots returns the drawable resolution.
func (c *Canvas) Dots() (int, int) { return 2 * c.Width, 4 * c.Height }

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return
	}
	c.cells[y/4][x/2] |= dotBits[y%4][x%2]
}

// Mark places a full character over the cell containing dot (x, y).
func (c *Canvas) Mark(x, y int, r rune) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return
	}
	c.marks[[2]int{y / 4, x / 2}] = r
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBlank
		}
	}
	clear(c.marks)
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dashed draws every other run of three dots, for struts.
func (c *Canvas) Dashed(x0, y0, x1, y1 int) {
	n := max(absInt(x1-x0), absInt(y1-y0))
	if n == 0 {
		c.Set(x0, y0)
		return
	}
	for i := 0; i <= n; i++ {
		if (i/3)%2 == 1 {
			continue
		}
		x := x0 + (x1-x0)*i/n
		y := y0 + (y1-y0)*i/n
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		for j, r := range row {
			if m, ok := c.marks[[2]int{i, j}]; ok {
				r = m
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
