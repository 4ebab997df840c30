package kernel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	ErrTableFull = errors.New("process table full")
	ErrNoProcess = errors.New("no such process")
	ErrNotZombie = errors.New("process still running")
	ErrBadSignal = errors.New("invalid signal")
	ErrNilTask   = errors.New("nil task")
	ErrRunning   = errors.New("kernel already running")
	ErrBadConfig = errors.New("invalid kernel config")
)

// Config sizes the kernel.
type Config struct {
	// HZ is the clock interrupt rate in ticks per second.
	HZ int
	// Tasks is the process table capacity, idle slot included.
	Tasks int
	// TimerRequests is the timer queue pool size.
	TimerRequests int
	// Priority is the default priority and initial counter of new processes.
	Priority int
	// IdlePriority is the idle process's priority. It must be positive for
	// selection to terminate when nothing else is runnable.
	IdlePriority int
}

// DefaultConfig returns the classic sizing: 100 Hz, 64 slots, 64 timers.
func DefaultConfig() Config {
	return Config{
		HZ:            100,
		Tasks:         64,
		TimerRequests: 64,
		Priority:      15,
		IdlePriority:  1,
	}
}

// Validate checks the structural limits the scheduler relies on.
func (c Config) Validate() error {
	switch {
	case c.HZ <= 0:
		return fmt.Errorf("%w: hz must be positive, got %d", ErrBadConfig, c.HZ)
	case c.Tasks < 2:
		return fmt.Errorf("%w: tasks must be at least 2, got %d", ErrBadConfig, c.Tasks)
	case c.TimerRequests <= 0:
		return fmt.Errorf("%w: timer requests must be positive, got %d", ErrBadConfig, c.TimerRequests)
	case c.Priority <= 0:
		return fmt.Errorf("%w: priority must be positive, got %d", ErrBadConfig, c.Priority)
	case c.IdlePriority <= 0:
		return fmt.Errorf("%w: idle priority must be positive, got %d", ErrBadConfig, c.IdlePriority)
	}
	return nil
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the kernel logger.
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) {
		if l != nil {
			k.logger = l.With("component", "kernel")
		}
	}
}

// WithSpeaker attaches the beep device.
func WithSpeaker(s Speaker) Option {
	return func(k *Kernel) { k.speaker = s }
}

// WithSwitchHook observes every context switch. The hook runs on the
// outgoing process's goroutine with no kernel lock held.
func WithSwitchHook(fn func(from, to Slot, jiffies uint64)) Option {
	return func(k *Kernel) { k.onSwitch = fn }
}

// WithHaltHandler is invoked once when the kernel halts.
func WithHaltHandler(fn func(PanicInfo)) Option {
	return func(k *Kernel) { k.onHalt = fn }
}

// ProcAttr describes a process to spawn.
type ProcAttr struct {
	Name string
	// Priority defaults to Config.Priority when not positive.
	Priority int
	PPID     int
	UID      uint16
	// EUID defaults to UID when zero.
	EUID uint16
	GID  uint16
	// EGID defaults to GID when zero.
	EGID uint16
}

// Kernel is a single-CPU, tick-driven process scheduler. Every process
// runs on its own goroutine and exactly one of them owns the CPU at a time.
type Kernel struct {
	cfg    Config
	logger *slog.Logger

	// mu stands in for interrupt masking.
	mu        sync.Mutex
	table     *Table
	current   Slot
	jiffies   uint64
	beepCount int
	lastPID   int
	switches  uint64
	running   bool

	timers      *TimerQueue
	deviceTimer func()
	speaker     Speaker
	onSwitch    func(from, to Slot, jiffies uint64)
	onHalt      func(PanicInfo)

	irq  atomic.Int64
	wake chan struct{}

	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup

	haltOnce sync.Once
	halted   atomic.Bool
	err      atomic.Pointer[Fatal]
}

// New builds a kernel with the idle process installed in slot 0.
// A config that breaks the scheduler's structural limits is fatal.
func New(cfg Config, opts ...Option) *Kernel {
	if err := cfg.Validate(); err != nil {
		panic(&Fatal{Slot: NoSlot, Reason: err.Error()})
	}
	k := &Kernel{
		cfg:     cfg,
		logger:  slog.Default().With("component", "kernel"),
		table:   newTable(cfg.Tasks),
		current: IdleSlot,
		timers:  NewTimerQueue(cfg.TimerRequests),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.table.install(IdleSlot, &Process{
		Name:     "idle",
		State:    Running,
		Counter:  cfg.IdlePriority,
		Priority: cfg.IdlePriority,
		task:     TaskFunc(idleTask),
		run:      make(chan struct{}, 1),
	})
	return k
}

// Config returns the kernel's sizing.
func (k *Kernel) Config() Config { return k.cfg }

// Spawn installs a runnable process in the lowest free slot. If the kernel
// is running the process starts competing for the CPU immediately.
func (k *Kernel) Spawn(attr ProcAttr, t Task) (Slot, error) {
	if t == nil {
		return NoSlot, ErrNilTask
	}
	prio := attr.Priority
	if prio <= 0 {
		prio = k.cfg.Priority
	}
	euid, egid := attr.EUID, attr.EGID
	if euid == 0 {
		euid = attr.UID
	}
	if egid == 0 {
		egid = attr.GID
	}

	k.mu.Lock()
	s := k.table.free()
	if s == NoSlot {
		k.mu.Unlock()
		return NoSlot, fmt.Errorf("spawn %q: %w", attr.Name, ErrTableFull)
	}
	k.lastPID++
	p := &Process{
		Name:     attr.Name,
		State:    Running,
		Counter:  prio,
		Priority: prio,
		PID:      k.lastPID,
		PPID:     attr.PPID,
		UID:      attr.UID,
		EUID:     euid,
		GID:      attr.GID,
		EGID:     egid,
		task:     t,
		run:      make(chan struct{}, 1),
	}
	k.table.install(s, p)
	running := k.running
	k.mu.Unlock()

	if running {
		k.launch(s, p)
	}
	k.logger.Info("process spawned", "slot", s, "pid", p.PID, "name", p.Name, "priority", prio)
	return s, nil
}

// Release frees the slot of an exited process.
func (k *Kernel) Release(s Slot) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.table.Get(s)
	if !ok || s == IdleSlot {
		return fmt.Errorf("release slot %d: %w", s, ErrNoProcess)
	}
	if p.State != Zombie {
		return fmt.Errorf("release slot %d: %w", s, ErrNotZombie)
	}
	k.table.clear(s)
	return nil
}

// Run boots the kernel: every process gets a goroutine and the idle
// process takes the CPU first. Run returns nil once ctx is done, or the
// *Fatal that halted the kernel.
func (k *Kernel) Run(ctx context.Context) error {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return ErrRunning
	}
	k.running = true
	for s, p := range k.table.All() {
		k.launch(s, p)
	}
	k.current = IdleSlot
	idle := k.table.procs[IdleSlot]
	k.mu.Unlock()

	k.logger.Info("kernel started", "hz", k.cfg.HZ, "tasks", k.cfg.Tasks, "timer_requests", k.cfg.TimerRequests)
	idle.run <- struct{}{}

	select {
	case <-ctx.Done():
		k.stop()
	case <-k.quit:
	}
	k.wg.Wait()

	if f := k.err.Load(); f != nil {
		return f
	}
	k.logger.Info("kernel stopped", "jiffies", k.Jiffies(), "switches", k.Switches())
	return nil
}

func (k *Kernel) stop() {
	k.quitOnce.Do(func() { close(k.quit) })
}

// Process returns a copy of the entry in slot s.
func (k *Kernel) Process(s Slot) (Process, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.table.Get(s)
	if !ok {
		return Process{}, false
	}
	return *p, true
}

// Processes returns copies of every occupied entry, indexed by slot.
func (k *Kernel) Processes() map[Slot]Process {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make(map[Slot]Process, k.table.Len())
	for s, p := range k.table.All() {
		out[s] = *p
	}
	return out
}

// Jiffies returns the number of clock ticks handled since boot.
func (k *Kernel) Jiffies() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.jiffies
}

// Current returns the slot that owns the CPU.
func (k *Kernel) Current() Slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// Switches returns the number of context switches since boot.
func (k *Kernel) Switches() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.switches
}

// PendingTimers returns the number of armed timer callbacks.
func (k *Kernel) PendingTimers() int { return k.timers.Len() }
