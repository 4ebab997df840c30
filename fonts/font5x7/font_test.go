package font5x7

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"tinygo.org/x/tinyfont"
)

type canvas struct {
	w, h int16
	px   map[[2]int16]bool
}

func newCanvas(w, h int16) *canvas { return &canvas{w: w, h: h, px: map[[2]int16]bool{}} }

func (c *canvas) Size() (int16, int16) { return c.w, c.h }
func (c *canvas) SetPixel(x, y int16, _ color.RGBA) {
	c.px[[2]int16{x, y}] = true
}
func (c *canvas) Display() error { return nil }

func TestGlyphInfo(t *testing.T) {
	info := Font.GetGlyph('A').Info()
	assert.Equal(t, 'A', info.Rune)
	assert.EqualValues(t, Advance, info.XAdvance)
	assert.EqualValues(t, -Ascent, info.YOffset)
	assert.EqualValues(t, LineHeight, Font.GetYAdvance())
}

func TestColumnsFallback(t *testing.T) {
	assert.Equal(t, Columns('?'), Columns('é'))
	assert.Equal(t, Columns('?'), Columns('\n'))
	assert.Equal(t, [5]uint8{}, Columns(' '))
}

func TestDrawCharI(t *testing.T) {
	c := newCanvas(16, 16)
	tinyfont.DrawChar(c, Font, 0, 7, 'I', color.RGBA{A: 255})

	// 'I' is a full-height bar in the middle column.
	for y := int16(0); y < 7; y++ {
		assert.True(t, c.px[[2]int16{2, y}], "row %d", y)
	}
	assert.True(t, c.px[[2]int16{1, 0}])
	assert.True(t, c.px[[2]int16{3, 6}])
	assert.False(t, c.px[[2]int16{0, 3}])
}

func TestWriteLineAdvances(t *testing.T) {
	c := newCanvas(64, 16)
	tinyfont.WriteLine(c, Font, 0, 7, "..", color.RGBA{A: 255})
	assert.True(t, c.px[[2]int16{1, 5}])
	assert.True(t, c.px[[2]int16{1 + Advance, 5}])
}
