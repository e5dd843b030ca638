package viz

import "strings"

// dots maps a sub-pixel inside one braille cell (2 wide, 4 tall) to its bit.
var dots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const blank rune = 0x2800

// Canvas is a braille raster of Width x Height cells, i.e. 2*Width by
// 4*Height sub-pixels. The replay draws the lane on it.
type Canvas struct {
	Width, Height int
	cells         []rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([]rune, w*h)}
	c.Clear()
	return c
}

// Set lights sub-pixel (x, y). Points off the canvas are dropped, so cars
// partly past the right edge clip cleanly.
func (c *Canvas) Set(x, y int) {
	col, row := x/2, y/4
	if x < 0 || y < 0 || col >= c.Width || row >= c.Height {
		return
	}
	c.cells[row*c.Width+col] |= dots[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
}

// HLine draws a lane marking from x0 to x1 inclusive.
func (c *Canvas) HLine(x0, x1, y int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		c.Set(x, y)
	}
}

func (c *Canvas) FillRect(x, y, w, h int) {
	for j := y; j < y+h; j++ {
		c.HLine(x, x+w-1, j)
	}
}

// DashedVLine marks a distance across the lane, every other sub-pixel.
func (c *Canvas) DashedVLine(x, y0, y1 int) {
	for y := y0; y <= y1; y += 2 {
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(len(c.cells)*3 + c.Height)
	for row := 0; row < c.Height; row++ {
		b.WriteString(string(c.cells[row*c.Width : (row+1)*c.Width]))
		b.WriteByte('\n')
	}
	return b.String()
}
