package kernel

import "runtime"

// Raise posts one clock interrupt. It is the platform's interrupt line and
// may be called from any goroutine.
func (k *Kernel) Raise() {
	k.irq.Add(1)
	k.kick()
}

// kick nudges whichever process is waiting for an interrupt so it
// re-examines kernel state.
func (k *Kernel) kick() {
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// take claims one pending interrupt.
func (k *Kernel) take() bool {
	for {
		n := k.irq.Load()
		if n <= 0 {
			return false
		}
		if k.irq.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

func (k *Kernel) waitIRQ() {
	select {
	case <-k.wake:
	case <-k.quit:
		runtime.Goexit()
	}
}

func (k *Kernel) checkQuit() {
	select {
	case <-k.quit:
		runtime.Goexit()
	default:
	}
}

func (k *Kernel) execute(ticks int, mode Mode) {
	for ticks > 0 {
		k.checkQuit()
		if !k.take() {
			k.waitIRQ()
			continue
		}
		k.OnClockTick(mode)
		ticks--
	}
}

// switchTo hands the CPU to next. Called with k.mu held; the lock is
// released while the caller is off the CPU and held again on return.
func (k *Kernel) switchTo(next Slot) {
	prev := k.current
	if next == prev {
		return
	}
	np := k.table.procs[next]
	pp := k.table.procs[prev]
	k.current = next
	k.switches++
	j := k.jiffies
	k.mu.Unlock()

	k.switched(prev, next, j)
	np.run <- struct{}{}
	select {
	case <-pp.run:
	case <-k.quit:
		runtime.Goexit()
	}
	k.mu.Lock()
}

func (k *Kernel) switched(prev, next Slot, jiffies uint64) {
	k.logger.Debug("context switch", "from", prev, "to", next, "jiffies", jiffies)
	if k.onSwitch != nil {
		k.onSwitch(prev, next, jiffies)
	}
}

// launch starts the goroutine backing slot s. The process waits for the CPU
// before running its task.
func (k *Kernel) launch(s Slot, p *Process) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				k.halt(s, r)
			}
		}()

		select {
		case <-p.run:
		case <-k.quit:
			return
		}
		p.task.Run(&Context{k: k, slot: s})
		k.exit(s)
	}()
}

// exit turns the caller into a zombie and gives the CPU away for good.
func (k *Kernel) exit(s Slot) {
	k.mu.Lock()
	p := k.table.procs[s]
	p.State = Zombie
	p.Alarm = 0
	k.logger.Info("process exited",
		"slot", s, "pid", p.PID, "name", p.Name,
		"utime", p.UTime, "stime", p.STime)

	k.wakeSweep()
	next := k.pick()
	np := k.table.procs[next]
	k.current = next
	k.switches++
	j := k.jiffies
	k.mu.Unlock()

	k.switched(s, next, j)
	np.run <- struct{}{}
}
