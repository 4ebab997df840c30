//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostTimeStepN(t *testing.T) {
	ht := newHostTime(100)
	assert.Equal(t, 10*time.Millisecond, ht.tickDur)

	ht.stepN(3)
	for want := uint64(1); want <= 3; want++ {
		assert.Equal(t, want, <-ht.Ticks())
	}
}

func TestHostTimeDropsWhenFull(t *testing.T) {
	ht := newHostTime(0)
	ht.stepN(uint64(cap(ht.ch) + 10))
	assert.Len(t, ht.ch, cap(ht.ch))
	assert.Equal(t, uint64(cap(ht.ch)+10), ht.seq)
}

func TestHostTimeStepPrimes(t *testing.T) {
	ht := newHostTime(1000)
	ht.step(2)
	assert.Len(t, ht.ch, 2)

	ht.last = ht.last.Add(-5 * time.Millisecond)
	ht.step(1)
	assert.GreaterOrEqual(t, len(ht.ch), 7)
}

func TestHostPortsLatch(t *testing.T) {
	p := newHostPorts()
	assert.Zero(t, p.In(0x3f2))
	p.Out(0x3f2, 0x1c)
	assert.Equal(t, uint8(0x1c), p.In(0x3f2))
}

func TestFramebufferClear(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	fb.ClearRGB(255, 0, 0)
	for i := 0; i < len(fb.back); i += 2 {
		require.Equal(t, uint16(0xF800), uint16(fb.back[i])|uint16(fb.back[i+1])<<8, "pixel %d", i/2)
	}

	dst := make([]byte, 4*4*2)
	rgbaFrom565(dst, fb.back)
	assert.Equal(t, []byte{255, 0, 0, 255}, dst[:4])
}

func TestFramebufferPresentPublishesWholeFrames(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	dst := make([]byte, len(fb.back))

	_, ok := fb.snapshot(dst, 0)
	assert.False(t, ok, "nothing presented yet")

	fb.ClearRGB(255, 255, 255)
	require.NoError(t, fb.Present())
	fb.ClearRGB(0, 0, 0)

	seen, ok := fb.snapshot(dst, 0)
	require.True(t, ok)
	assert.Equal(t, uint64(1), seen)
	assert.Equal(t, byte(0xff), dst[0], "undrawn back buffer stays off screen")

	_, ok = fb.snapshot(dst, seen)
	assert.False(t, ok, "same frame is not copied twice")

	require.NoError(t, fb.Present())
	assert.Equal(t, uint64(2), fb.frames())
	_, ok = fb.snapshot(dst, seen)
	require.True(t, ok)
	assert.Zero(t, dst[0])
}

func TestRGB565RoundTrip(t *testing.T) {
	r, g, b := rgb888From565(RGB565(255, 255, 255))
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
	r, g, b = rgb888From565(RGB565(0, 0, 0))
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	var steps int
	var got HAL
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		got = h
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Hz: 1000, Ticks: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, steps)
	assert.Len(t, got.Time().Ticks(), 5)
}

func TestRunHeadlessStepError(t *testing.T) {
	boom := errors.New("boom")
	err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return boom }
	}, HeadlessConfig{Hz: 1000})
	assert.ErrorIs(t, err, boom)
}

func TestRunHeadlessCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunHeadless(ctx, func(HAL) func() error { return nil }, HeadlessConfig{Hz: 10})
	assert.ErrorIs(t, err, context.Canceled)
}
