// Package config loads the tickos run configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tickos/kernel"
)

// Workload kinds.
const (
	KindCPU   = "cpu"
	KindIO    = "io"
	KindAlarm = "alarm"
	KindNice  = "nice"
	KindTimer = "timer"
)

// Config is the full run configuration. The zero value is not useful;
// start from Default.
type Config struct {
	Kernel   KernelConfig    `yaml:"kernel"`
	Log      LogConfig       `yaml:"log"`
	Run      RunConfig       `yaml:"run"`
	Workload []ProcessConfig `yaml:"workload"`
}

// KernelConfig sizes the scheduler.
type KernelConfig struct {
	HZ            int `yaml:"hz"`
	Tasks         int `yaml:"tasks"`
	TimerRequests int `yaml:"timer_requests"`
	Priority      int `yaml:"priority"`
	IdlePriority  int `yaml:"idle_priority"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// RunConfig controls the host runner.
type RunConfig struct {
	Headless bool   `yaml:"headless"`
	Ticks    uint64 `yaml:"ticks"` // stop after N ticks, 0 = run until interrupted
	Trace    string `yaml:"trace"` // span output file, empty = tracing off
	Scale    int    `yaml:"scale"` // window scale factor
}

// ProcessConfig describes one group of identical demo processes.
type ProcessConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Count    int    `yaml:"count"`
	Priority int    `yaml:"priority"`

	// Burst is in ticks: the compute burst for cpu and nice, the transfer
	// time for io and the timer delay for timer.
	Burst int `yaml:"burst"`

	// Seconds is the alarm period for the alarm kind.
	Seconds int `yaml:"seconds"`

	// Drive is the floppy drive for the io kind.
	Drive int `yaml:"drive"`

	// Nice is the priority decrement for the nice kind.
	Nice int `yaml:"nice"`

	// Rounds bounds the work loop; 0 loops forever.
	Rounds int `yaml:"rounds"`
}

// Default returns the built-in configuration: classic kernel sizing and a
// mixed workload.
func Default() Config {
	kc := kernel.DefaultConfig()
	return Config{
		Kernel: KernelConfig{
			HZ:            kc.HZ,
			Tasks:         kc.Tasks,
			TimerRequests: kc.TimerRequests,
			Priority:      kc.Priority,
			IdlePriority:  kc.IdlePriority,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Run: RunConfig{Scale: 2},
		Workload: []ProcessConfig{
			{Name: "cruncher", Kind: KindCPU, Count: 2, Burst: 40},
			{Name: "fdread", Kind: KindIO, Count: 1, Drive: 0, Burst: 5},
			{Name: "cron", Kind: KindAlarm, Count: 1, Seconds: 1},
			{Name: "batch", Kind: KindNice, Count: 1, Burst: 40, Nice: 10},
			{Name: "poller", Kind: KindTimer, Count: 1, Burst: 2},
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// KernelConfig converts the kernel section for kernel.New.
func (c Config) KernelConfig() kernel.Config {
	return kernel.Config{
		HZ:            c.Kernel.HZ,
		Tasks:         c.Kernel.Tasks,
		TimerRequests: c.Kernel.TimerRequests,
		Priority:      c.Kernel.Priority,
		IdlePriority:  c.Kernel.IdlePriority,
	}
}

// Processes returns the total number of demo processes.
func (c Config) Processes() int {
	n := 0
	for _, p := range c.Workload {
		n += p.Count
	}
	return n
}

// Validate returns every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if err := c.KernelConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Run.Scale < 0 {
		errs = append(errs, fmt.Errorf("run.scale must not be negative, got %d", c.Run.Scale))
	}

	for i, p := range c.Workload {
		if p.Count < 0 {
			errs = append(errs, fmt.Errorf("workload[%d].count must not be negative", i))
		}
		switch p.Kind {
		case KindCPU, KindNice, KindTimer:
			if p.Burst <= 0 {
				errs = append(errs, fmt.Errorf("workload[%d].burst must be positive", i))
			}
		case KindIO:
			if p.Drive < 0 || p.Drive > 3 {
				errs = append(errs, fmt.Errorf("workload[%d].drive must be 0-3, got %d", i, p.Drive))
			}
		case KindAlarm:
			if p.Seconds <= 0 {
				errs = append(errs, fmt.Errorf("workload[%d].seconds must be positive", i))
			}
		default:
			errs = append(errs, fmt.Errorf("workload[%d].kind %q is not one of cpu, io, alarm, nice, timer", i, p.Kind))
		}
		if p.Kind == KindNice && p.Nice <= 0 {
			errs = append(errs, fmt.Errorf("workload[%d].nice must be positive", i))
		}
	}
	if n := c.Processes(); n > c.Kernel.Tasks-1 {
		errs = append(errs, fmt.Errorf("workload needs %d slots, kernel has %d", n, c.Kernel.Tasks-1))
	}
	return errors.Join(errs...)
}
