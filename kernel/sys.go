package kernel

import "fmt"

// Alarm arms SIGALRM for the caller seconds from now, or disarms it when
// seconds is not positive. It returns the whole seconds that were left on
// the previous alarm, or 0 if none was armed.
func (c *Context) Alarm(seconds int64) int64 {
	k := c.k
	k.mu.Lock()
	defer k.mu.Unlock()

	p := k.table.procs[c.slot]
	var old int64
	if p.Alarm != 0 {
		old = (int64(p.Alarm) - int64(k.jiffies)) / int64(k.cfg.HZ)
	}
	if seconds > 0 {
		p.Alarm = k.jiffies + uint64(seconds)*uint64(k.cfg.HZ)
	} else {
		p.Alarm = 0
	}
	return old
}

// Nice lowers the caller's priority by dec, never below 1. A non-positive
// dec is ignored.
func (c *Context) Nice(dec int) {
	if dec <= 0 {
		return
	}
	k := c.k
	k.mu.Lock()
	defer k.mu.Unlock()

	p := k.table.procs[c.slot]
	p.Priority -= dec
	if p.Priority < 1 {
		p.Priority = 1
	}
}

// Getpid and the other identity getters read the caller's own entry.
func (c *Context) Getpid() int     { return c.self().PID }
func (c *Context) Getppid() int    { return c.self().PPID }
func (c *Context) Getuid() uint16  { return c.self().UID }
func (c *Context) Geteuid() uint16 { return c.self().EUID }
func (c *Context) Getgid() uint16  { return c.self().GID }
func (c *Context) Getegid() uint16 { return c.self().EGID }

// Times returns the ticks the caller has spent in user and kernel mode.
func (c *Context) Times() (utime, stime uint64) {
	k := c.k
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.table.procs[c.slot]
	return p.UTime, p.STime
}

// Signals returns the caller's deliverable pending signals and clears them.
func (c *Context) Signals() Mask {
	k := c.k
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.table.procs[c.slot]
	m := deliverable(p)
	p.Signal &^= m
	return m
}

// SetBlocked replaces the caller's blocked mask and returns the old one.
// SIGKILL and SIGSTOP cannot be blocked.
func (c *Context) SetBlocked(m Mask) Mask {
	k := c.k
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.table.procs[c.slot]
	old := p.Blocked
	p.Blocked = m &^ Unblockable
	return old
}

// Kill marks sig pending on the process in slot s. Delivery happens at the
// next scheduling decision.
func (k *Kernel) Kill(s Slot, sig Signal) error {
	if !sig.Valid() {
		return fmt.Errorf("kill slot %d: %w", s, ErrBadSignal)
	}
	k.mu.Lock()
	p, ok := k.table.Get(s)
	if !ok || p.State == Zombie {
		k.mu.Unlock()
		return fmt.Errorf("kill slot %d: %w", s, ErrNoProcess)
	}
	p.Signal |= Bit(sig)
	k.mu.Unlock()
	k.kick()
	return nil
}

func (c *Context) self() Process {
	k := c.k
	k.mu.Lock()
	defer k.mu.Unlock()
	return *k.table.procs[c.slot]
}
