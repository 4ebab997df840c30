//go:build !tinygo

package hal

import "sync"

// hostFramebuffer is an RGB565 surface with two buffers. The console draws
// into back; Present publishes it to front, which is all the window ever
// shows, so a process table that is halfway through a redraw never
// reaches the screen.
type hostFramebuffer struct {
	width  int
	height int
	stride int
	back   []byte

	mu    sync.Mutex
	front []byte
	frame uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		back:   make([]byte, stride*height),
		front:  make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Width() int          { return f.width }
func (f *hostFramebuffer) Height() int         { return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { return f.back }

// Present publishes the back buffer as the next frame.
func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	copy(f.front, f.back)
	f.frame++
	f.mu.Unlock()
	return nil
}

// ClearRGB fills the back buffer with one color.
func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	if len(f.back) < 2 {
		return
	}
	pixel := RGB565(r, g, b)
	f.back[0] = byte(pixel)
	f.back[1] = byte(pixel >> 8)
	for n := 2; n < len(f.back); n *= 2 {
		copy(f.back[n:], f.back[:n])
	}
}

// frames returns the number of frames presented so far.
func (f *hostFramebuffer) frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// snapshot copies the front buffer into dst if a frame newer than seen has
// been presented. It returns the frame number dst now holds.
func (f *hostFramebuffer) snapshot(dst []byte, seen uint64) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frame == seen {
		return seen, false
	}
	copy(dst, f.front)
	return f.frame, true
}
