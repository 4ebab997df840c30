// Package app boots the scheduler on a HAL: it builds the kernel and its
// devices from config, spawns the demo workload and keeps a live process
// table on the framebuffer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"tickos/drivers/floppy"
	"tickos/hal"
	"tickos/internal/config"
	"tickos/internal/logging"
	"tickos/internal/tracing"
	"tickos/kernel"
)

// ErrStarted is returned by Start on a system that is already running.
var ErrStarted = errors.New("app: system already started")

// System is one booted machine.
type System struct {
	h      hal.HAL
	cfg    config.Config
	logger *slog.Logger
	bootID string

	k  *kernel.Kernel
	fc *floppy.Controller

	// drawMu serialises framebuffer writers: Step and the halt handler.
	drawMu sync.Mutex
	frames uint64

	stats map[kernel.Slot]*procStats
	run   *tracing.Run

	started  atomic.Bool
	cancel   context.CancelFunc
	done     chan error
	stopOnce sync.Once
	stopErr  error
}

// New builds the kernel, devices and workload described by cfg. Nothing
// runs until Start.
func New(h hal.HAL, cfg config.Config, logger *slog.Logger) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	logger, bootID := logging.WithBoot(logger)

	s := &System{
		h:      h,
		cfg:    cfg,
		logger: logger,
		bootID: bootID,
		stats:  make(map[kernel.Slot]*procStats),
		done:   make(chan error, 1),
	}

	opts := []kernel.Option{
		kernel.WithLogger(logger),
		kernel.WithSwitchHook(s.onSwitch),
		kernel.WithHaltHandler(s.onHalt),
	}
	if spk := h.Speaker(); spk != nil {
		opts = append(opts, kernel.WithSpeaker(spk))
	}
	s.k = kernel.New(cfg.KernelConfig(), opts...)

	if ports := h.Ports(); ports != nil {
		s.fc = floppy.New(s.k, ports, logger)
		s.k.SetDeviceTimer(s.fc.Poll)
	}

	if err := s.spawnWorkload(); err != nil {
		return nil, err
	}

	s.drawBanner()
	logger.Info("system ready",
		"hz", cfg.Kernel.HZ,
		"tasks", cfg.Kernel.Tasks,
		"processes", len(s.stats),
	)
	return s, nil
}

// Kernel exposes the scheduler.
func (s *System) Kernel() *kernel.Kernel { return s.k }

// BootID is the id tagged on every log line of this boot.
func (s *System) BootID() string { return s.bootID }

// Start runs the kernel in the background and forwards HAL clock ticks to
// its interrupt line until ctx is cancelled or Stop is called.
func (s *System) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)
	ctx, s.run = tracing.StartRun(ctx, s.bootID, s.cfg.Kernel.HZ)

	if t := s.h.Time(); t != nil {
		if ch := t.Ticks(); ch != nil {
			go s.forwardTicks(ctx, ch)
		}
	}
	go func() { s.done <- s.k.Run(ctx) }()
	return nil
}

func (s *System) forwardTicks(ctx context.Context, ch <-chan uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			s.k.Raise()
		}
	}
}

// Stop cancels the run, waits for the kernel to come down and logs the
// accounting summary. It returns the halt condition if the kernel halted.
func (s *System) Stop() error {
	if !s.started.Load() {
		return nil
	}
	s.stopOnce.Do(func() {
		s.cancel()
		s.stopErr = <-s.done
		s.run.End(s.k.Jiffies(), s.stopErr)
		s.logSummary()
	})
	return s.stopErr
}

// Step is called once per host frame. It redraws the process table and
// reports a halt as an error.
func (s *System) Step() error {
	if err := s.k.Err(); err != nil {
		return err
	}
	s.frames++
	if s.frames%statusEvery == 1 {
		s.drawStatus()
	}
	return nil
}

func (s *System) onSwitch(from, to kernel.Slot, jiffies uint64) {
	s.run.Switch(int(from), int(to), jiffies)
}

func (s *System) onHalt(info kernel.PanicInfo) {
	reason := fmt.Sprint(info.Value)
	if f, ok := info.Value.(*kernel.Fatal); ok {
		reason = f.Reason
	}
	s.run.Halt(int(info.Slot), reason)
	s.drawHalt(info)
}
