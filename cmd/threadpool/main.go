// Command threadpool runs a demo workload on a fixed-size pool: every job
// index is dispatched -repeat times and each job prints its index.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jzx17/threadpool/internal/config"
	"github.com/jzx17/threadpool/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const usage = `Usage: threadpool [options] <pool-size> <max-number-of-jobs>

Options:
`

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain runs the driver and returns the process exit code
func runMain(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, args, stdout, stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	return 0
}

// lockedWriter serializes writes from concurrently running jobs
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("threadpool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		configFile  = fs.String("config", "", "config file path (YAML/JSON)")
		repeat      = fs.Int("repeat", 0, "dispatches per job index (default 3)")
		interval    = fs.Duration("interval", 0, "pause after each dispatch (default 1s)")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
		logLevel    = fs.String("log-level", "", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		fc, err := config.LoadFile(*configFile)
		if err != nil {
			return err
		}
		if cfg, err = fc.Apply(cfg); err != nil {
			return err
		}
	}

	// flags and positional arguments override the file
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "repeat":
			cfg.Repeat = *repeat
		case "interval":
			cfg.Interval = *interval
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "log-level":
			level, err := config.ParseLevel(*logLevel)
			if err != nil {
				flagErr = err
			}
			cfg.LogLevel = level
		}
	})
	if flagErr != nil {
		return flagErr
	}

	switch {
	case fs.NArg() == 1 || fs.NArg() > 2:
		fs.Usage()
		return fmt.Errorf("expected <pool-size> and <max-number-of-jobs>, got %d argument(s)", fs.NArg())
	case fs.NArg() == 2:
		size, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid <pool-size>: %w", err)
		}
		jobs, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid <max-number-of-jobs>: %w", err)
		}
		cfg.PoolSize, cfg.Jobs = size, jobs
	case *configFile == "":
		fs.Usage()
		return errors.New("missing <pool-size> and <max-number-of-jobs>")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	poolConfig := worker.DefaultPoolConfig()
	poolConfig.PoolSize = cfg.PoolSize
	poolConfig.Logger = logger

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics, err := worker.NewMetrics(cfg.MetricsNamespace, "pool", reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		poolConfig.Metrics = metrics

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	pool, err := worker.NewPool(poolConfig)
	if err != nil {
		return err
	}

	out := &lockedWriter{w: stdout}
	printJob := func(arg interface{}) {
		fmt.Fprintf(out, "%d\n", arg)
	}

	dispatchErr := dispatchAll(ctx, pool, cfg, printJob)

	if err := pool.Shutdown(); err != nil {
		return err
	}
	logger.Info("done", "completed", pool.Stats().Completed)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	return dispatchErr
}

// dispatchAll submits every job index cfg.Repeat times, pausing cfg.Interval
// after each dispatch. It stops early when ctx is cancelled.
func dispatchAll(ctx context.Context, pool *worker.Pool, cfg config.Config, action func(interface{})) error {
	for i := 0; i < cfg.Jobs; i++ {
		for j := 0; j < cfg.Repeat; j++ {
			if err := pool.Dispatch(action, i); err != nil {
				return fmt.Errorf("dispatch job %d: %w", i, err)
			}

			if cfg.Interval <= 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
		}
	}
	return nil
}
