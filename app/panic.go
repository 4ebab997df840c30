package app

import (
	"fmt"
	"strings"

	"tickos/kernel"
)

// drawHalt replaces the screen with the halt report. It runs once, on the
// goroutine that halted.
func (s *System) drawHalt(info kernel.PanicInfo) {
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line != "" {
			s.logger.Debug(line, "slot", info.Slot)
		}
	}

	fb := s.framebuffer()
	if fb == nil {
		return
	}
	s.drawMu.Lock()
	defer s.drawMu.Unlock()

	fb.ClearRGB(255, 255, 255)
	con := newConsole(fb)

	lines := []string{
		fmt.Sprintf("slot: %d  pid: %d", info.Slot, info.PID),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	con.println(red, "tickos halted")
	for _, line := range lines {
		if !con.println(black, line) {
			break
		}
	}
	_ = fb.Present()
}
