package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tickos/app"
	"tickos/hal"
	"tickos/internal/buildinfo"
	"tickos/internal/config"
	"tickos/internal/logging"
	"tickos/internal/tracing"
	"tickos/kernel"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot the scheduler with the configured workload",
		Long: `Boot the scheduler and run the workload from the config file (or the
built-in default). Without --headless a window shows the live process
table; --ticks only applies to headless runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			applyFlags(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			runLogger := logger
			if !cmd.Flags().Changed("log-level") && !cmd.Flags().Changed("log-format") && !flagDebug {
				runLogger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cmd.ErrOrStderr())
			}
			return runSystem(cmd.Context(), cfg, runLogger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.Bool("headless", false, "Run without a window")
	f.Uint64("ticks", 0, "Stop after N clock ticks (headless only, 0 = until interrupted)")
	f.Int("hz", 0, "Clock interrupts per second (overrides kernel.hz)")
	f.String("trace", "", "Write OpenTelemetry spans to this file")
	f.Int("scale", 0, "Window scale factor")
	return cmd
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("headless") {
		cfg.Run.Headless, _ = fs.GetBool("headless")
	}
	if fs.Changed("ticks") {
		cfg.Run.Ticks, _ = fs.GetUint64("ticks")
	}
	if fs.Changed("hz") {
		cfg.Kernel.HZ, _ = fs.GetInt("hz")
	}
	if fs.Changed("trace") {
		cfg.Run.Trace, _ = fs.GetString("trace")
	}
	if fs.Changed("scale") {
		cfg.Run.Scale, _ = fs.GetInt("scale")
	}
	if fs.Changed("log-level") {
		cfg.Log.Level, _ = fs.GetString("log-level")
	}
	if fs.Changed("log-format") {
		cfg.Log.Format, _ = fs.GetString("log-format")
	}
}

func runSystem(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Run.Trace != "" {
		tp, err := tracing.Open("tickos", buildinfo.Short(), cfg.Run.Trace)
		if err != nil {
			return err
		}
		defer func() {
			if serr := tp.Shutdown(context.Background()); serr != nil {
				logger.Warn("trace shutdown failed", "error", serr)
			}
		}()
	}

	var sys *app.System
	boot := func(h hal.HAL) func() error {
		s, err := app.New(h, cfg, logger)
		if err != nil {
			return func() error { return err }
		}
		if err := s.Start(ctx); err != nil {
			return func() error { return err }
		}
		sys = s
		return s.Step
	}

	var runErr error
	if cfg.Run.Headless {
		runErr = hal.RunHeadless(ctx, boot, hal.HeadlessConfig{Hz: cfg.Kernel.HZ, Ticks: cfg.Run.Ticks})
	} else {
		runErr = hal.RunWindow(func(h hal.HAL) func() error {
			step := boot(h)
			return func() error {
				// Keep the window open on the halt screen.
				var f *kernel.Fatal
				if err := step(); err != nil && !errors.As(err, &f) {
					return err
				}
				return nil
			}
		}, hal.WindowConfig{Hz: cfg.Kernel.HZ, Scale: cfg.Run.Scale})
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if sys != nil {
		if stopErr := sys.Stop(); runErr == nil {
			runErr = stopErr
		}
	}
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	return nil
}
