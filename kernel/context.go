package kernel

// Task is the program a process runs. Returning from Run exits the process.
type Task interface {
	Run(*Context)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(*Context)

func (f TaskFunc) Run(c *Context) { f(c) }

// Context is a process's handle on the kernel. It is only valid on the
// goroutine running that process.
type Context struct {
	k    *Kernel
	slot Slot
}

// Slot returns the caller's process table slot.
func (c *Context) Slot() Slot { return c.slot }

// Kernel returns the kernel the process runs on.
func (c *Context) Kernel() *Kernel { return c.k }

// Now returns the current tick count.
func (c *Context) Now() uint64 { return c.k.Jiffies() }

// Compute runs user code for the given number of clock ticks. The process
// may be preempted while computing.
func (c *Context) Compute(ticks int) { c.k.execute(ticks, UserMode) }

// KernelWork spends the given number of clock ticks in kernel mode. Ticks
// are charged to system time and never preempt.
func (c *Context) KernelWork(ticks int) { c.k.execute(ticks, KernelMode) }

// Halt waits for the next interrupt and services everything pending. The
// idle process halts between scheduling passes.
func (c *Context) Halt() {
	k := c.k
	k.checkQuit()
	if k.irq.Load() == 0 {
		k.waitIRQ()
	}
	for k.take() {
		k.OnClockTick(UserMode)
	}
}

// Spawn creates a child of the caller.
func (c *Context) Spawn(attr ProcAttr, t Task) (Slot, error) {
	attr.PPID = c.Getpid()
	return c.k.Spawn(attr, t)
}

func idleTask(c *Context) {
	for {
		c.Pause()
		c.Halt()
	}
}
