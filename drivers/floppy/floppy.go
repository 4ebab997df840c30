// Package floppy drives the motor and select lines of a four-drive floppy
// controller through its digital output register (DOR).
//
// DOR layout: bits 0-1 select the drive, bit 2 releases reset, bit 3
// enables DMA and bits 4-7 switch the motors of drives 0-3.
package floppy

import (
	"log/slog"
	"sync"

	"tickos/hal"
	"tickos/kernel"
)

const (
	// Drives is the number of drives on the controller.
	Drives = 4

	// PortDOR is the digital output register.
	PortDOR uint16 = 0x3f2

	dorInit   = 0x0c
	motorMask = 0xf0

	// motorHold keeps an idle motor running until Off is called.
	motorHold = 10000
)

// Controller tracks motor state and sleeps callers until spin-up
// completes. Poll must be installed as the kernel's device timer.
type Controller struct {
	k      *kernel.Kernel
	ports  hal.Ports
	hz     int
	logger *slog.Logger

	mu        sync.Mutex
	dor       uint8
	selected  bool
	monTimer  [Drives]int
	moffTimer [Drives]int

	waitMotor  [Drives]kernel.WaitSlot
	waitSelect kernel.WaitSlot
}

// New returns a controller with all motors off and drive 0 selected in
// the DOR, and writes that state to the port.
func New(k *kernel.Kernel, ports hal.Ports, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		k:      k,
		ports:  ports,
		hz:     k.Config().HZ,
		logger: logger.With("component", "floppy"),
		dor:    dorInit,
	}
	c.ports.Out(PortDOR, c.dor)
	return c
}

// DOR returns the current digital output register value.
func (c *Controller) DOR() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dor
}

// TicksToOn starts the motor of drive nr if needed and returns how many
// ticks remain until it is up to speed. A drive number above 3 is fatal.
func (c *Controller) TicksToOn(nr int) int {
	if nr < 0 || nr >= Drives {
		panic(&kernel.Fatal{Slot: kernel.NoSlot, Reason: "floppy_on: nr>3"})
	}
	mask := uint8(0x10) << nr

	c.mu.Lock()
	defer c.mu.Unlock()

	c.moffTimer[nr] = motorHold
	mask |= c.dor
	if !c.selected {
		mask &= 0xfc
		mask |= uint8(nr)
	}
	if mask != c.dor {
		c.ports.Out(PortDOR, mask)
		if (mask^c.dor)&motorMask != 0 {
			c.monTimer[nr] = c.hz / 2
		} else if c.monTimer[nr] < 2 {
			c.monTimer[nr] = 2
		}
		c.dor = mask
	}
	return c.monTimer[nr]
}

// On blocks the calling process until drive nr's motor is up to speed.
func (c *Controller) On(ctx *kernel.Context, nr int) {
	for c.TicksToOn(nr) > 0 {
		ctx.Sleep(&c.waitMotor[nr])
	}
}

// Off schedules drive nr's motor to stop in three seconds.
func (c *Controller) Off(nr int) {
	if nr < 0 || nr >= Drives {
		return
	}
	c.mu.Lock()
	c.moffTimer[nr] = 3 * c.hz
	c.mu.Unlock()
}

// Select claims the controller for drive nr, sleeping while another
// caller holds it.
func (c *Controller) Select(ctx *kernel.Context, nr int) {
	if nr < 0 || nr >= Drives {
		panic(&kernel.Fatal{Slot: ctx.Slot(), Reason: "floppy_select: nr>3"})
	}
	for {
		c.mu.Lock()
		if !c.selected {
			c.selected = true
			c.dor = c.dor&0xfc | uint8(nr)
			c.ports.Out(PortDOR, c.dor)
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		ctx.Sleep(&c.waitSelect)
	}
}

// Deselect releases the controller and wakes the next caller of Select.
func (c *Controller) Deselect(nr int) {
	c.mu.Lock()
	if uint8(nr) != c.dor&3 {
		c.logger.Warn("deselect of unselected drive", "drive", nr, "selected", c.dor&3)
	}
	c.selected = false
	c.mu.Unlock()
	c.k.Wake(&c.waitSelect)
}

// Poll is the per-tick device hook. For every running motor it counts
// down the spin-up timer, waking waiters when it expires, and otherwise
// counts down the motor-off timer, stopping the motor when it expires.
func (c *Controller) Poll() {
	var wake []int

	c.mu.Lock()
	mask := uint8(0x10)
	for i := 0; i < Drives; i, mask = i+1, mask<<1 {
		if c.dor&mask == 0 {
			continue
		}
		switch {
		case c.monTimer[i] > 0:
			c.monTimer[i]--
			if c.monTimer[i] == 0 {
				wake = append(wake, i)
			}
		case c.moffTimer[i] == 0:
			c.dor &^= mask
			c.ports.Out(PortDOR, c.dor)
			c.logger.Debug("motor off", "drive", i)
		default:
			c.moffTimer[i]--
		}
	}
	c.mu.Unlock()

	for _, i := range wake {
		c.k.Wake(&c.waitMotor[i])
	}
}
