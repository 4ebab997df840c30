package app

import (
	"sort"

	"github.com/dustin/go-humanize"

	"tickos/kernel"
)

// logSummary writes one accounting line per demo process plus a total.
func (s *System) logSummary() {
	procs := s.k.Processes()
	slots := make([]kernel.Slot, 0, len(s.stats))
	for slot := range s.stats {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	jiffies := s.k.Jiffies()
	for _, slot := range slots {
		st := s.stats[slot]
		p, ok := procs[slot]
		if !ok {
			continue
		}
		share := 0.0
		if jiffies > 0 {
			share = float64(p.UTime+p.STime) / float64(jiffies) * 100
		}
		s.logger.Info("process summary",
			"slot", slot,
			"pid", p.PID,
			"name", st.name,
			"kind", st.kind,
			"state", p.State,
			"priority", p.Priority,
			"utime", humanize.Comma(int64(p.UTime)),
			"stime", humanize.Comma(int64(p.STime)),
			"cpu_share", humanize.FtoaWithDigits(share, 1)+"%",
			"rounds", humanize.Comma(int64(st.rounds.Load())),
			"events", humanize.Comma(int64(st.events.Load())),
		)
	}

	hz := uint64(s.cfg.Kernel.HZ)
	s.logger.Info("run summary",
		"jiffies", humanize.Comma(int64(jiffies)),
		"virtual_seconds", humanize.Comma(int64(jiffies/hz)),
		"switches", humanize.Comma(int64(s.k.Switches())),
		"pending_timers", s.k.PendingTimers(),
	)
}
