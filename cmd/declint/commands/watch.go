package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/JNZader/declint/internal/cache"
	"github.com/JNZader/declint/internal/config"
	"github.com/JNZader/declint/internal/logger"
	"github.com/JNZader/declint/internal/metrics"
	"github.com/JNZader/declint/internal/profiler"
	"github.com/JNZader/declint/internal/report"
	"github.com/JNZader/declint/internal/runner"
	"github.com/JNZader/declint/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-check declarations whenever they change",
	Long: `Check the given paths, then watch them and check again after every
change. Results of unchanged files are reused from an in-memory cache.

Examples:
  # Watch the current directory
  declint watch

  # Watch Sources and expose Prometheus metrics
  declint watch Sources --metrics-addr :9090`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	// Output flags
	watchCmd.Flags().StringP("format", "f", "", "Output format (text, table, markdown, json, sarif)")
	watchCmd.Flags().String("min-severity", "", "Hide violations below this severity")
	watchCmd.Flags().Bool("no-color", false, "Disable colored output")

	// Style flags
	addStyleFlags(watchCmd)

	// Behavior flags
	watchCmd.Flags().Int("concurrency", 0, "Max concurrent file checks (0=auto)")
	watchCmd.Flags().String("baseline", "", "Baseline file of accepted violations")
	watchCmd.Flags().Duration("debounce", 300*time.Millisecond, "Quiet period before re-checking")

	// Observability flags
	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	watchCmd.Flags().Bool("pprof", false, "Also serve /debug/pprof/ on the metrics address")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := currentConfig()

	// Apply flag overrides
	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}

	recorder := metrics.Global()
	options := []runner.Option{runner.WithMetrics(recorder)}

	// Results survive between checks in memory only
	if cfg.Cache.Enabled {
		options = append(options, runner.WithCache(cache.NewLRUCache(cfg.Cache.MaxEntries, 0)))
	}

	engine, err := newEngine(cfg, false, options...)
	if err != nil {
		return err
	}

	reporter, err := report.NewReporter(cfg.Output.Format,
		report.WithColor(cfg.Output.Color),
		report.WithVersion(Version))
	if err != nil {
		return usageError(err)
	}

	ctx := cmd.Context()

	if cfg.Metrics.Addr != "" {
		withPprof, _ := cmd.Flags().GetBool("pprof")
		stop, err := serveMetrics(cfg.Metrics.Addr, recorder, withPprof)
		if err != nil {
			return err
		}
		defer stop()
	}

	// Initial check, then again on every debounced change
	out := cmd.OutOrStdout()
	check := func(ctx context.Context) error {
		result, err := engine.Run(ctx, args)
		if err != nil {
			return err
		}
		return renderWatch(out, reporter, cfg, result)
	}

	if err := check(ctx); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	w, err := watch.New(watch.Config{
		Roots:      roots,
		Extensions: cfg.Run.Extensions,
		Ignore:     cfg.Run.IgnorePatterns,
		Debounce:   durationFlag(cmd, "debounce"),
		Logger:     logger.Default(),
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("%d files changed, checking again", len(changed))
			return check(ctx)
		},
	})
	if err != nil {
		return usageError(err)
	}

	return w.Run(ctx)
}

func renderWatch(out io.Writer, reporter report.Reporter, cfg *config.Config, result *runner.Result) error {
	output, err := reporter.Generate(result.Filter(minSeverity(cfg)))
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	_, err = io.WriteString(out, output)
	return err
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(addr string, recorder *metrics.Recorder, withPprof bool) (func(), error) {
	mux := http.NewServeMux()
	recorder.RegisterEndpoint(mux)
	if withPprof {
		profiler.RegisterHandlers(mux)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Surface an immediate bind failure.
	select {
	case err := <-errCh:
		return nil, usageError(fmt.Errorf("serving metrics on %s: %w", addr, err))
	case <-time.After(50 * time.Millisecond):
	}
	logger.Info("Serving metrics on %s/metrics", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Stopping metrics server: %v", err)
		}
	}, nil
}

func durationFlag(cmd *cobra.Command, name string) time.Duration {
	d, _ := cmd.Flags().GetDuration(name)
	return d
}
