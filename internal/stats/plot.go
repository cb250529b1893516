package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is a named curve of probabilities indexed by armies lost.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "100%"
	axisLabelMid        = "50%"
	axisLabelBottom     = "0%"
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

// brailleBits maps a dot at (row, col) inside a 2x4 braille cell to its bit.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// PlotCurves draws probability curves on a fixed 0-100% scale using braille
// dots. A width or height of zero picks a size from the terminal.
func PlotCurves(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	kept := series[:0:0]
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	width = max(width, minPlotWidth)

	c := newCanvas(width, height)
	for i, s := range kept {
		c.curve(s.Values, i)
	}

	lines := make([]string, 0, height+3)
	if title != "" {
		lines = append(lines, title)
	}
	labelWidth := utf8.RuneCountInString(axisLabelTop)
	for y := 0; y < height; y++ {
		lines = append(lines, fmt.Sprintf("%*s%s%s", labelWidth, axisLabel(y, height), axisSeparator, c.row(y, useColor)))
	}
	lines = append(lines, strings.Repeat(" ", labelWidth+1)+"└"+strings.Repeat("─", width+1))
	lines = append(lines, legend(kept, useColor))
	return writeLines(w, lines)
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

// TerminalWidth returns the stdout width, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func axisLabel(y, height int) string {
	switch {
	case y == 0:
		return axisLabelTop
	case y == height-1:
		return axisLabelBottom
	case height > 2 && y == height/2:
		return axisLabelMid
	default:
		return ""
	}
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := "⣿ " + s.Name
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// canvas is a grid of braille cells, each 2 dots wide and 4 dots tall.
type canvas struct {
	width  int
	height int
	masks  [][]uint8
	owner  [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.masks = make([][]uint8, height)
	c.owner = make([][]int, height)
	for y := range c.masks {
		c.masks[y] = make([]uint8, width)
		c.owner[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

func (c *canvas) dotsWide() int { return c.width * 2 }
func (c *canvas) dotsHigh() int { return c.height * 4 }

// curve samples values as a step function across the canvas and joins the
// samples with straight segments.
func (c *canvas) curve(values []float64, series int) {
	prevX, prevY := -1, -1
	for x := 0; x < c.dotsWide(); x++ {
		v := values[x*len(values)/c.dotsWide()]
		v = math.Min(math.Max(v, 0), 1)
		y := int(math.Round((1 - v) * float64(c.dotsHigh()-1)))
		if prevX < 0 {
			c.set(x, y, series)
		} else {
			c.line(prevX, prevY, x, y, series)
		}
		prevX, prevY = x, y
	}
}

func (c *canvas) set(x, y, series int) {
	if x < 0 || y < 0 || x >= c.dotsWide() || y >= c.dotsHigh() {
		return
	}
	cx, cy := x/2, y/4
	c.masks[cy][cx] |= brailleBits[y%4][x%2]
	if c.owner[cy][cx] < 0 {
		c.owner[cy][cx] = series
	}
}

// line draws a Bresenham segment between two dots.
func (c *canvas) line(x0, y0, x1, y1, series int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, series)
		if x0 == x1 && y0 == y1 {
			return
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

func (c *canvas) row(y int, useColor bool) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		ch := rune(0x2800 + int(c.masks[y][x]))
		owner := c.owner[y][x]
		if useColor && owner >= 0 {
			b.WriteString(colorPalette[owner%len(colorPalette)])
			b.WriteRune(ch)
			b.WriteString(colorReset)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
