package kernel

import (
	"fmt"
	"runtime/debug"
)

// Fatal is a condition the kernel cannot continue from. It is raised with
// panic and turned into a halt at the root of the process goroutine.
type Fatal struct {
	Slot   Slot
	Reason string
}

func (f *Fatal) Error() string {
	if f.Slot == NoSlot {
		return "kernel panic: " + f.Reason
	}
	return fmt.Sprintf("kernel panic: %s (slot %d)", f.Reason, f.Slot)
}

// PanicInfo contains details about a halt.
type PanicInfo struct {
	Slot  Slot
	PID   int
	Value any
	Stack []byte
}

// Halted reports whether the kernel has halted.
func (k *Kernel) Halted() bool { return k.halted.Load() }

// Err returns the condition that halted the kernel, or nil.
func (k *Kernel) Err() error {
	if f := k.err.Load(); f != nil {
		return f
	}
	return nil
}

// halt stops the kernel after a panic on the goroutine of slot s. Only the
// first halt is reported.
func (k *Kernel) halt(s Slot, v any) {
	k.haltOnce.Do(func() {
		f, ok := v.(*Fatal)
		if !ok {
			f = &Fatal{Slot: s, Reason: fmt.Sprint(v)}
		}
		info := PanicInfo{Slot: s, Value: v, Stack: debug.Stack()}
		if k.mu.TryLock() {
			if p, ok := k.table.Get(s); ok {
				info.PID = p.PID
			}
			k.mu.Unlock()
		}

		k.halted.Store(true)
		k.err.Store(f)
		k.logger.Error("kernel halted", "slot", s, "pid", info.PID, "reason", f.Reason)
		if k.onHalt != nil {
			k.onHalt(info)
		}
		k.stop()
	})
}
