package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerQueueOrder(t *testing.T) {
	q := NewTimerQueue(8)
	var fired []int
	var at []int
	tick := 0

	for _, d := range []int{5, 2, 8} {
		d := d
		q.Add(int64(d), func() {
			fired = append(fired, d)
			at = append(at, tick)
		})
	}
	require.Equal(t, 3, q.Len())

	for tick = 1; tick <= 10; tick++ {
		q.Tick()
	}
	assert.Equal(t, []int{2, 5, 8}, fired)
	assert.Equal(t, []int{2, 5, 8}, at)
	assert.Zero(t, q.Len())
}

func TestTimerQueueSameDelayKeepsInsertionOrder(t *testing.T) {
	q := NewTimerQueue(4)
	var fired []string
	q.Add(3, func() { fired = append(fired, "a") })
	q.Add(3, func() { fired = append(fired, "b") })
	q.Add(1, func() { fired = append(fired, "c") })

	q.Tick()
	assert.Equal(t, []string{"c"}, fired)
	q.Tick()
	q.Tick()
	assert.Equal(t, []string{"c", "a", "b"}, fired)
}

func TestTimerQueueImmediate(t *testing.T) {
	q := NewTimerQueue(1)
	n := 0
	q.Add(0, func() { n++ })
	q.Add(-4, func() { n++ })
	assert.Equal(t, 2, n)
	assert.Zero(t, q.Len())

	q.Add(5, nil)
	assert.Zero(t, q.Len())
}

func TestTimerQueueReusesEntries(t *testing.T) {
	q := NewTimerQueue(1)
	n := 0
	for i := 0; i < 3; i++ {
		q.Add(1, func() { n++ })
		q.Tick()
	}
	assert.Equal(t, 3, n)
}

func TestTimerQueueCallbackMayRearm(t *testing.T) {
	q := NewTimerQueue(1)
	var fired int
	var rearm func()
	rearm = func() {
		fired++
		if fired < 3 {
			q.Add(2, rearm)
		}
	}
	q.Add(2, rearm)

	for i := 0; i < 6; i++ {
		q.Tick()
	}
	assert.Equal(t, 3, fired)
}

func TestTimerQueueExhaustion(t *testing.T) {
	q := NewTimerQueue(2)
	q.Add(1, func() {})
	q.Add(2, func() {})

	defer func() {
		f, ok := recover().(*Fatal)
		require.True(t, ok)
		assert.Equal(t, "no more time requests", f.Reason)
		assert.Equal(t, 2, q.Len())
	}()
	q.Add(3, func() {})
	t.Fatal("Add did not panic")
}

func TestTimerQueueTickEmpty(t *testing.T) {
	q := NewTimerQueue(2)
	q.Tick()
	assert.Zero(t, q.Len())
}
