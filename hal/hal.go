package hal

import "errors"

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time provides the clock interrupt source: one value per tick, carrying
// the platform's own tick sequence number.
type Time interface {
	Ticks() <-chan uint64
}

// Speaker is the console beeper: a single square-wave tone.
type Speaker interface {
	Tone(hz int) error
	Stop() error
}

// Ports is byte-wide port I/O for legacy device registers.
type Ports interface {
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// HAL provides the only contact point between the kernel and the outside world.
type HAL interface {
	Display() Display
	Time() Time
	Speaker() Speaker
	Ports() Ports
}
