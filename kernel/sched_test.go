package kernel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// install places a process straight into the table without a goroutine.
func install(k *Kernel, s Slot, st State, counter, priority int) *Process {
	p := &Process{State: st, Counter: counter, Priority: priority, run: make(chan struct{}, 1)}
	k.table.install(s, p)
	return p
}

func TestPickGreatestCounterLowestSlot(t *testing.T) {
	k := newTestKernel(t, nil)
	install(k, 1, Running, 4, 15)
	install(k, 2, Running, 9, 15)
	install(k, 3, Running, 9, 15)
	install(k, 4, Interruptible, 12, 15)

	assert.Equal(t, Slot(2), k.pick())
}

func TestPickAgesWhenExhausted(t *testing.T) {
	k := newTestKernel(t, nil)
	k.table.procs[IdleSlot].Counter = 0
	a := install(k, 1, Running, 0, 3)
	b := install(k, 2, Uninterruptible, 6, 4)

	assert.Equal(t, Slot(1), k.pick())
	assert.Equal(t, 3, a.Counter)
	assert.Equal(t, 7, b.Counter)
	assert.Equal(t, 1, k.table.procs[IdleSlot].Counter)
}

func TestPickFallsBackToIdle(t *testing.T) {
	k := newTestKernel(t, nil)
	install(k, 1, Uninterruptible, 30, 15)
	install(k, 2, Zombie, 30, 15)
	install(k, 3, Stopped, 30, 15)

	assert.Equal(t, IdleSlot, k.pick())
}

func TestPickIgnoresIdleState(t *testing.T) {
	k := newTestKernel(t, nil)
	k.table.procs[IdleSlot].State = Interruptible
	assert.Equal(t, IdleSlot, k.pick())
}

func TestPickProperty(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	states := []State{Running, Running, Interruptible, Uninterruptible, Zombie, Stopped}

	for round := 0; round < 500; round++ {
		k := newTestKernel(t, func(c *Config) { c.Tasks = 16 })
		for s := Slot(1); s < 16; s++ {
			if r.Intn(3) == 0 {
				continue
			}
			install(k, s, states[r.Intn(len(states))], r.Intn(20), 1+r.Intn(15))
		}

		got := k.pick()
		gp, ok := k.table.Get(got)
		require.True(t, ok)
		require.True(t, eligible(got, gp), "round %d: picked ineligible slot %d", round, got)
		require.Positive(t, gp.Counter, "round %d", round)
		for s, p := range k.table.All() {
			if !eligible(s, p) {
				continue
			}
			if s < got {
				require.Less(t, p.Counter, gp.Counter, "round %d: slot %d beats %d", round, s, got)
			} else {
				require.LessOrEqual(t, p.Counter, gp.Counter, "round %d", round)
			}
		}
	}
}

func TestAgingIsMonotoneAndBounded(t *testing.T) {
	k := newTestKernel(t, nil)
	p := install(k, 1, Uninterruptible, 0, 15)

	prev := p.Counter
	for i := 0; i < 20; i++ {
		k.age()
		assert.GreaterOrEqual(t, p.Counter, prev)
		assert.Less(t, p.Counter, 2*p.Priority)
		prev = p.Counter
	}
	assert.Equal(t, 29, p.Counter)
}

func TestWakeSweepExpiresAlarm(t *testing.T) {
	k := newTestKernel(t, nil)
	p := install(k, 1, Interruptible, 5, 15)
	p.Alarm = 10

	k.jiffies = 10
	k.wakeSweep()
	assert.Equal(t, Interruptible, p.State, "alarm fires only once the deadline has passed")
	assert.Equal(t, uint64(10), p.Alarm)

	k.jiffies = 11
	k.wakeSweep()
	assert.Equal(t, Running, p.State)
	assert.Zero(t, p.Alarm)
	assert.True(t, p.Signal.Has(SIGALRM))

	p.Signal = 0
	p.State = Interruptible
	k.jiffies = 50
	k.wakeSweep()
	assert.Equal(t, Interruptible, p.State, "alarm delivered exactly once")
}

func TestWakeSweepRespectsBlocked(t *testing.T) {
	k := newTestKernel(t, nil)
	blocked := install(k, 1, Interruptible, 5, 15)
	blocked.Signal = Bit(SIGUSR1)
	blocked.Blocked = Bit(SIGUSR1)

	killed := install(k, 2, Interruptible, 5, 15)
	killed.Signal = Bit(SIGKILL)
	killed.Blocked = ^Mask(0)

	deep := install(k, 3, Uninterruptible, 5, 15)
	deep.Signal = Bit(SIGKILL)

	k.wakeSweep()
	assert.Equal(t, Interruptible, blocked.State)
	assert.Equal(t, Running, killed.State)
	assert.Equal(t, Uninterruptible, deep.State)
}
