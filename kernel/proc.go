package kernel

import "iter"

// Slot is a stable index into the process table.
type Slot int

const (
	// IdleSlot always holds the idle process.
	IdleSlot Slot = 0
	// NoSlot is returned when no slot applies.
	NoSlot Slot = -1
)

// State is the scheduling state of a process.
type State uint8

const (
	// Running means eligible to be chosen, not necessarily on the CPU.
	Running State = iota
	Interruptible
	Uninterruptible
	Zombie
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Interruptible:
		return "interruptible"
	case Uninterruptible:
		return "uninterruptible"
	case Zombie:
		return "zombie"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Process is one process table entry.
//
// Fields are guarded by the kernel lock. Callers outside the kernel get
// copies via Kernel.Process and Kernel.Processes.
type Process struct {
	Name string

	State    State
	Counter  int
	Priority int

	Signal  Mask
	Blocked Mask
	// Alarm is an absolute tick deadline; 0 means disarmed.
	Alarm uint64

	PID  int
	PPID int
	UID  uint16
	EUID uint16
	GID  uint16
	EGID uint16

	UTime uint64
	STime uint64

	task Task
	run  chan struct{}
}

// Table is the fixed-capacity process arena.
type Table struct {
	procs []*Process
	n     int
}

func newTable(capacity int) *Table {
	return &Table{procs: make([]*Process, capacity)}
}

// Cap returns the number of slots.
func (t *Table) Cap() int { return len(t.procs) }

// Len returns the number of occupied slots.
func (t *Table) Len() int { return t.n }

// Get returns the process in slot s.
func (t *Table) Get(s Slot) (*Process, bool) {
	if s < 0 || int(s) >= len(t.procs) {
		return nil, false
	}
	p := t.procs[s]
	return p, p != nil
}

// All yields occupied slots in ascending order.
func (t *Table) All() iter.Seq2[Slot, *Process] {
	return func(yield func(Slot, *Process) bool) {
		for i, p := range t.procs {
			if p == nil {
				continue
			}
			if !yield(Slot(i), p) {
				return
			}
		}
	}
}

// free returns the lowest empty slot above the idle slot.
func (t *Table) free() Slot {
	for i := 1; i < len(t.procs); i++ {
		if t.procs[i] == nil {
			return Slot(i)
		}
	}
	return NoSlot
}

func (t *Table) install(s Slot, p *Process) {
	if t.procs[s] == nil {
		t.n++
	}
	t.procs[s] = p
}

func (t *Table) clear(s Slot) {
	if t.procs[s] != nil {
		t.n--
	}
	t.procs[s] = nil
}
