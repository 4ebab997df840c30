package kernel

// schedule runs the wake sweep, picks the next process and switches to it.
// It must be called with k.mu held by the process that owns the CPU and
// returns with k.mu held once that process is chosen again.
func (k *Kernel) schedule() {
	k.wakeSweep()
	k.switchTo(k.pick())
}

// wakeSweep expires alarms and wakes interruptible sleepers with a
// deliverable signal.
func (k *Kernel) wakeSweep() {
	for _, p := range k.table.All() {
		if p.Alarm != 0 && p.Alarm < k.jiffies {
			p.Signal |= Bit(SIGALRM)
			p.Alarm = 0
		}
		if p.State == Interruptible && deliverable(p) != 0 {
			p.State = Running
		}
	}
}

// pick returns the eligible slot with the greatest counter, lowest slot on
// ties. When the best counter is exhausted every process is aged and the
// scan repeats. The idle process is always eligible and has a positive
// priority, so the loop ends after at most one aging pass for it.
func (k *Kernel) pick() Slot {
	for {
		best, c := NoSlot, 0
		for s, p := range k.table.All() {
			if !eligible(s, p) {
				continue
			}
			if best == NoSlot || p.Counter > c {
				best, c = s, p.Counter
			}
		}
		if best != NoSlot && c > 0 {
			return best
		}
		k.age()
	}
}

// age halves every counter and adds the base priority, so sleepers
// accumulate credit bounded by twice their priority.
func (k *Kernel) age() {
	for _, p := range k.table.All() {
		p.Counter = p.Counter>>1 + p.Priority
	}
}

func eligible(s Slot, p *Process) bool {
	return s == IdleSlot || p.State == Running
}
