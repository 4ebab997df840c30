package kernel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSpeaker struct {
	mu    sync.Mutex
	tones []int
	stops int
}

func (s *fakeSpeaker) Tone(hz int) error {
	s.mu.Lock()
	s.tones = append(s.tones, hz)
	s.mu.Unlock()
	return nil
}

func (s *fakeSpeaker) Stop() error {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
	return nil
}

func TestClockTickAccounting(t *testing.T) {
	k := newTestKernel(t, nil)
	p := install(k, 1, Running, 10, 15)
	k.current = 1

	k.OnClockTick(UserMode)
	k.OnClockTick(UserMode)
	k.OnClockTick(KernelMode)

	assert.Equal(t, uint64(3), k.jiffies)
	assert.Equal(t, uint64(2), p.UTime)
	assert.Equal(t, uint64(1), p.STime)
	assert.Equal(t, 7, p.Counter)
}

func TestClockTickKernelModeClampsCounter(t *testing.T) {
	k := newTestKernel(t, nil)
	p := install(k, 1, Running, 1, 15)
	install(k, 2, Running, 15, 15)
	k.current = 1

	for i := 0; i < 3; i++ {
		k.OnClockTick(KernelMode)
	}
	assert.Zero(t, p.Counter)
	assert.Equal(t, Slot(1), k.current)
}

func TestClockTickUserModeOnIdle(t *testing.T) {
	k := newTestKernel(t, nil)

	k.OnClockTick(UserMode)
	assert.Equal(t, IdleSlot, k.current)
	assert.Equal(t, 1, k.table.procs[IdleSlot].Counter, "idle is aged back to its priority")
	assert.Equal(t, uint64(1), k.table.procs[IdleSlot].UTime)
}

func TestClockTickRunsTimersThenDevice(t *testing.T) {
	k := newTestKernel(t, nil)
	var order []string
	k.AddTimer(2, func() { order = append(order, "timer") })
	k.SetDeviceTimer(func() { order = append(order, "device") })

	k.OnClockTick(KernelMode)
	k.OnClockTick(KernelMode)
	assert.Equal(t, []string{"device", "timer", "device"}, order)
}

func TestBeepStopsAfterCountdown(t *testing.T) {
	spk := &fakeSpeaker{}
	k := newTestKernel(t, nil, WithSpeaker(spk))

	k.Beep(750, 3)
	assert.Equal(t, []int{750}, spk.tones)

	k.OnClockTick(KernelMode)
	k.OnClockTick(KernelMode)
	assert.Zero(t, spk.stops)
	k.OnClockTick(KernelMode)
	assert.Equal(t, 1, spk.stops)
	k.OnClockTick(KernelMode)
	assert.Equal(t, 1, spk.stops)

	k.Beep(0, 5)
	k.Beep(440, 0)
	assert.Len(t, spk.tones, 1)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "user", UserMode.String())
	assert.Equal(t, "kernel", KernelMode.String())
}
