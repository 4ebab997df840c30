package kernel

// Mode is the privilege level the CPU was in when a tick arrived.
type Mode uint8

const (
	UserMode Mode = iota
	KernelMode
)

func (m Mode) String() string {
	if m == KernelMode {
		return "kernel"
	}
	return "user"
}

// Speaker produces the console beep.
type Speaker interface {
	Tone(hz int) error
	Stop() error
}

// OnClockTick handles one clock interrupt. It must run on the goroutine of
// the process that owns the CPU; Compute, KernelWork and Halt call it for
// every interrupt they service.
//
// It is the only place the tick counter advances. A process whose slice
// runs out is rescheduled only if it was interrupted in user mode.
func (k *Kernel) OnClockTick(mode Mode) {
	k.mu.Lock()
	stopBeep := false
	if k.beepCount > 0 {
		k.beepCount--
		stopBeep = k.beepCount == 0
	}
	cur := k.table.procs[k.current]
	if mode == UserMode {
		cur.UTime++
	} else {
		cur.STime++
	}
	k.jiffies++
	device := k.deviceTimer
	k.mu.Unlock()

	if stopBeep && k.speaker != nil {
		if err := k.speaker.Stop(); err != nil {
			k.logger.Debug("speaker stop failed", "error", err)
		}
	}
	k.timers.Tick()
	if device != nil {
		device()
	}

	k.mu.Lock()
	cur.Counter--
	if cur.Counter > 0 {
		k.mu.Unlock()
		return
	}
	cur.Counter = 0
	if mode == KernelMode {
		k.mu.Unlock()
		return
	}
	k.schedule()
	k.mu.Unlock()
}

// Beep sounds the speaker at hz for the given number of ticks.
func (k *Kernel) Beep(hz int, ticks int) {
	if k.speaker == nil || hz <= 0 || ticks <= 0 {
		return
	}
	k.mu.Lock()
	k.beepCount = ticks
	k.mu.Unlock()
	if err := k.speaker.Tone(hz); err != nil {
		k.logger.Debug("speaker tone failed", "hz", hz, "error", err)
	}
}

// SetDeviceTimer installs the per-tick device poll hook. It runs after the
// timer queue with no kernel lock held.
func (k *Kernel) SetDeviceTimer(fn func()) {
	k.mu.Lock()
	k.deviceTimer = fn
	k.mu.Unlock()
}

// AddTimer arms fn to run delay ticks from now. See TimerQueue.Add.
func (k *Kernel) AddTimer(delay int64, fn func()) {
	k.timers.Add(delay, fn)
}
