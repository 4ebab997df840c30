package kernel

import (
	"strconv"
	"unsafe"
)

// Signal is a signal number in [1, NSIG].
type Signal uint8

// NSIG is the number of signals a Mask can carry.
const NSIG = 32

// Build fails if Mask is too narrow to hold NSIG signals.
const _ = uint(unsafe.Sizeof(Mask(0))*8 - NSIG)

const (
	SIGHUP  Signal = 1
	SIGINT  Signal = 2
	SIGQUIT Signal = 3
	SIGILL  Signal = 4
	SIGABRT Signal = 6
	SIGFPE  Signal = 8
	SIGKILL Signal = 9
	SIGUSR1 Signal = 10
	SIGSEGV Signal = 11
	SIGUSR2 Signal = 12
	SIGPIPE Signal = 13
	SIGALRM Signal = 14
	SIGTERM Signal = 15
	SIGCHLD Signal = 17
	SIGCONT Signal = 18
	SIGSTOP Signal = 19
	SIGTSTP Signal = 20
)

var signalNames = map[Signal]string{
	SIGHUP:  "SIGHUP",
	SIGINT:  "SIGINT",
	SIGQUIT: "SIGQUIT",
	SIGILL:  "SIGILL",
	SIGABRT: "SIGABRT",
	SIGFPE:  "SIGFPE",
	SIGKILL: "SIGKILL",
	SIGUSR1: "SIGUSR1",
	SIGSEGV: "SIGSEGV",
	SIGUSR2: "SIGUSR2",
	SIGPIPE: "SIGPIPE",
	SIGALRM: "SIGALRM",
	SIGTERM: "SIGTERM",
	SIGCHLD: "SIGCHLD",
	SIGCONT: "SIGCONT",
	SIGSTOP: "SIGSTOP",
	SIGTSTP: "SIGTSTP",
}

func (s Signal) String() string {
	if n, ok := signalNames[s]; ok {
		return n
	}
	return "signal " + strconv.Itoa(int(s))
}

// Valid reports whether s fits in a Mask.
func (s Signal) Valid() bool { return s >= 1 && s <= NSIG }

// Mask is a set of signals; signal n is bit n-1.
type Mask uint32

// Bit returns the mask bit for sig, or 0 for an invalid signal.
func Bit(sig Signal) Mask {
	if !sig.Valid() {
		return 0
	}
	return 1 << (sig - 1)
}

// Unblockable signals ignore the blocked mask.
const Unblockable = Mask(1<<(SIGKILL-1) | 1<<(SIGSTOP-1))

// Has reports whether sig is in m.
func (m Mask) Has(sig Signal) bool { return m&Bit(sig) != 0 }

// Signals returns the members of m in ascending order.
func (m Mask) Signals() []Signal {
	var out []Signal
	for s := Signal(1); s <= NSIG; s++ {
		if m.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func deliverable(p *Process) Mask {
	return p.Signal &^ (p.Blocked &^ Unblockable)
}
