package kernel

// WaitSlot holds at most one sleeping process. The zero value is empty.
//
// A second sleeper displaces the first; the displaced process is made
// runnable again when the one that displaced it resumes, so a single Wake
// releases the whole chain, newest first.
type WaitSlot struct {
	s Slot
}

// Sleep blocks the caller uninterruptibly on ws until a Wake.
//
// The idle process may never sleep; doing so halts the kernel.
func (c *Context) Sleep(ws *WaitSlot) {
	if c.slot == IdleSlot {
		panic(&Fatal{Slot: c.slot, Reason: "task[0] trying to sleep"})
	}
	k := c.k
	k.mu.Lock()
	tmp := ws.s
	ws.s = c.slot
	k.table.procs[c.slot].State = Uninterruptible
	k.schedule()
	k.makeRunnable(tmp)
	k.mu.Unlock()
}

// SleepInterruptible blocks the caller on ws until a Wake or a deliverable
// signal. If another process has taken the slot by the time the caller
// resumes, that process is made runnable and the caller sleeps again.
func (c *Context) SleepInterruptible(ws *WaitSlot) {
	if c.slot == IdleSlot {
		panic(&Fatal{Slot: c.slot, Reason: "task[0] trying to sleep"})
	}
	k := c.k
	k.mu.Lock()
	tmp := ws.s
	ws.s = c.slot
	for {
		k.table.procs[c.slot].State = Interruptible
		k.schedule()
		if ws.s == IdleSlot || ws.s == c.slot {
			break
		}
		k.makeRunnable(ws.s)
	}
	ws.s = IdleSlot
	k.makeRunnable(tmp)
	k.mu.Unlock()
}

// Wake makes the process in ws runnable and empties the slot. Waking an
// empty slot does nothing. Wake may be called from any goroutine.
func (k *Kernel) Wake(ws *WaitSlot) {
	k.mu.Lock()
	if ws.s != IdleSlot {
		k.makeRunnable(ws.s)
		ws.s = IdleSlot
	}
	k.mu.Unlock()
	k.kick()
}

// Waiting returns the process currently held by ws.
func (k *Kernel) Waiting(ws *WaitSlot) (Slot, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ws.s == IdleSlot {
		return NoSlot, false
	}
	return ws.s, true
}

// Pause gives up the CPU until a deliverable signal arrives.
//
// The idle process pauses without changing state; it is always eligible.
func (c *Context) Pause() {
	k := c.k
	k.mu.Lock()
	if c.slot != IdleSlot {
		k.table.procs[c.slot].State = Interruptible
	}
	k.schedule()
	k.mu.Unlock()
}

func (k *Kernel) makeRunnable(s Slot) {
	if s == IdleSlot {
		return
	}
	if p, ok := k.table.Get(s); ok && p.State != Zombie {
		p.State = Running
	}
}
