package app

import (
	"fmt"
	"image/color"
	"sort"
	"unicode/utf8"

	"tickos/fonts/font5x7"
	"tickos/hal"
	"tickos/internal/buildinfo"
	"tickos/kernel"

	"tinygo.org/x/tinyfont"
)

// statusEvery is the number of frames between process table redraws.
const statusEvery = 10

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	green = color.RGBA{R: 80, G: 220, B: 80, A: 255}
	amber = color.RGBA{R: 255, G: 176, A: 255}
	red   = color.RGBA{R: 200, A: 255}
)

// fbDisplay adapts an RGB565 framebuffer to drivers.Displayer so tinyfont
// can draw on it.
type fbDisplay struct {
	fb hal.Framebuffer
}

func (d fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if buf == nil || ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	pixel := hal.RGB565(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d fbDisplay) Display() error { return nil }

// console writes rows of fixed-width text from the top of the screen.
type console struct {
	d    fbDisplay
	cols int
	rows int
	row  int
}

func newConsole(fb hal.Framebuffer) *console {
	return &console{
		d:    fbDisplay{fb: fb},
		cols: max(fb.Width()/font5x7.Advance, 1),
		rows: fb.Height() / font5x7.LineHeight,
	}
}

// full reports whether the screen has no room for another row.
func (c *console) full() bool { return c.row >= c.rows }

// println draws s on the next row, wrapping long lines. It returns false
// once the screen is full.
func (c *console) println(fg color.RGBA, s string) bool {
	for {
		if c.full() {
			return false
		}
		chunk, rest := takeRunes(s, c.cols)
		y := int16(c.row*font5x7.LineHeight + font5x7.Ascent)
		x := int16(0)
		for _, r := range chunk {
			tinyfont.DrawChar(c.d, font5x7.Font, x, y, r, fg)
			x += font5x7.Advance
		}
		c.row++
		if rest == "" {
			return true
		}
		s = rest
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}

func (s *System) framebuffer() hal.Framebuffer {
	d := s.h.Display()
	if d == nil {
		return nil
	}
	return d.Framebuffer()
}

func (s *System) drawBanner() {
	fb := s.framebuffer()
	if fb == nil {
		return
	}
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	fb.ClearRGB(0, 0, 0)
	con := newConsole(fb)
	con.println(green, "tickos "+buildinfo.Short())
	con.println(white, fmt.Sprintf("HZ=%d tasks=%d timers=%d",
		s.cfg.Kernel.HZ, s.cfg.Kernel.Tasks, s.cfg.Kernel.TimerRequests))
	con.println(white, "boot "+s.bootID)
	con.println(white, fmt.Sprintf("%d processes spawned", len(s.stats)))
	_ = fb.Present()
}

// drawStatus renders the process table.
func (s *System) drawStatus() {
	fb := s.framebuffer()
	if fb == nil {
		return
	}
	s.drawMu.Lock()
	defer s.drawMu.Unlock()
	if s.k.Halted() {
		return
	}

	procs := s.k.Processes()
	slots := make([]kernel.Slot, 0, len(procs))
	for slot := range procs {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	fb.ClearRGB(0, 0, 0)
	con := newConsole(fb)
	con.println(green, fmt.Sprintf("tickos %s jiffies %d switches %d",
		buildinfo.Short(), s.k.Jiffies(), s.k.Switches()))
	con.println(amber, " SL  PID NAME     S CNT PRI   UTIME  STIME")
	cur := s.k.Current()
	for _, slot := range slots {
		p := procs[slot]
		fg := white
		if slot == cur {
			fg = green
		}
		line := fmt.Sprintf("%3d %4d %-8.8s %s %3d %3d %7d %6d",
			slot, p.PID, p.Name, stateCode(p.State), p.Counter, p.Priority, p.UTime, p.STime)
		if !con.println(fg, line) {
			break
		}
	}
	_ = fb.Present()
}

func stateCode(st kernel.State) string {
	switch st {
	case kernel.Running:
		return "R"
	case kernel.Interruptible:
		return "S"
	case kernel.Uninterruptible:
		return "D"
	case kernel.Zombie:
		return "Z"
	case kernel.Stopped:
		return "T"
	default:
		return "?"
	}
}
