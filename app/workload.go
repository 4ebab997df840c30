package app

import (
	"fmt"
	"sync/atomic"

	"tickos/internal/config"
	"tickos/kernel"
)

// procStats counts what a demo process got done. Rounds is bumped by the
// process goroutine and read by the summary.
type procStats struct {
	name   string
	kind   string
	rounds atomic.Uint64
	events atomic.Uint64
}

const beepHz = 880

func (s *System) spawnWorkload() error {
	for _, pc := range s.cfg.Workload {
		for i := 0; i < pc.Count; i++ {
			name := pc.Name
			if name == "" {
				name = pc.Kind
			}
			if pc.Count > 1 {
				name = fmt.Sprintf("%s%d", name, i)
			}
			st := &procStats{name: name, kind: pc.Kind}
			task, err := s.task(pc, st)
			if err != nil {
				return err
			}
			slot, err := s.k.Spawn(kernel.ProcAttr{Name: name, Priority: pc.Priority}, task)
			if err != nil {
				return fmt.Errorf("spawn %s: %w", name, err)
			}
			s.stats[slot] = st
		}
	}
	return nil
}

func (s *System) task(pc config.ProcessConfig, st *procStats) (kernel.Task, error) {
	var body func(*kernel.Context)
	switch pc.Kind {
	case config.KindCPU:
		body = func(c *kernel.Context) { c.Compute(pc.Burst) }
	case config.KindNice:
		reniced := false
		body = func(c *kernel.Context) {
			if !reniced {
				c.Nice(pc.Nice)
				reniced = true
			}
			c.Compute(pc.Burst)
		}
	case config.KindIO:
		if s.fc == nil {
			return nil, fmt.Errorf("workload %q: io needs port access", pc.Name)
		}
		burst := max(pc.Burst, 1)
		body = func(c *kernel.Context) {
			s.fc.Select(c, pc.Drive)
			s.fc.On(c, pc.Drive)
			c.KernelWork(burst)
			s.fc.Off(pc.Drive)
			s.fc.Deselect(pc.Drive)
			st.events.Add(1)
			c.Compute(1)
		}
	case config.KindAlarm:
		hz := s.cfg.Kernel.HZ
		body = func(c *kernel.Context) {
			c.Alarm(int64(pc.Seconds))
			for !c.Signals().Has(kernel.SIGALRM) {
				c.Pause()
			}
			st.events.Add(1)
			c.Kernel().Beep(beepHz, max(hz/10, 1))
		}
	case config.KindTimer:
		var ws kernel.WaitSlot
		body = func(c *kernel.Context) {
			k := c.Kernel()
			var fired atomic.Bool
			k.AddTimer(int64(pc.Burst), func() {
				fired.Store(true)
				k.Wake(&ws)
			})
			for !fired.Load() {
				c.Sleep(&ws)
			}
			st.events.Add(1)
			c.Compute(1)
		}
	default:
		return nil, fmt.Errorf("workload %q: unknown kind %q", pc.Name, pc.Kind)
	}

	rounds := pc.Rounds
	return kernel.TaskFunc(func(c *kernel.Context) {
		for rounds == 0 || int(st.rounds.Load()) < rounds {
			body(c)
			st.rounds.Add(1)
		}
	}), nil
}
