package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/harveysanders/picostatus/internal/config"
	"github.com/harveysanders/picostatus/internal/logging"
	"github.com/harveysanders/picostatus/internal/metrics"
	"github.com/harveysanders/picostatus/internal/periphlines"
	"github.com/harveysanders/picostatus/internal/statusfile"
	"github.com/harveysanders/picostatus/statusled"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the status LED until interrupted",
		Long: `Opens the configured GPIO pins, starts the blink timer and applies status words ` +
			`from the status file. Runs until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path, cmd.Flags().Changed("config"), cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lines, err := periphlines.Open(cfg.GPIO.Red, cfg.GPIO.Green, cfg.GPIO.Blue, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := lines.Halt(); err != nil {
					logger.Warn("Failed to release GPIO", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return newDaemon(cfg, lines, logger).run(ctx)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// daemon owns one LED and everything that feeds it.
type daemon struct {
	cfg     config.Config
	logger  *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	ticker  *statusled.Ticker
	led     *statusled.LED

	ready       chan struct{} // closed once run has started everything
	metricsAddr net.Addr
}

func newDaemon(cfg config.Config, lines statusled.Lines, logger *slog.Logger) *daemon {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ticker := &statusled.Ticker{Period: cfg.LED.TickPeriod.Duration}
	return &daemon{
		cfg:     cfg,
		logger:  logger,
		reg:     reg,
		metrics: m,
		ticker:  ticker,
		led:     statusled.New(lines, m.Timer(ticker), statusled.WithLogger(logger)),
		ready:   make(chan struct{}),
	}
}

func (d *daemon) apply(w statusled.Word) {
	d.led.SetStatus(w)
	d.metrics.ObserveStatus(statusled.Decode(w).Word())
}

// run initializes the LED and blocks until ctx is done. The blink timer,
// file watcher and metrics server are stopped before it returns.
func (d *daemon) run(ctx context.Context) error {
	d.led.Initialize()
	defer d.ticker.Stop()

	if s := d.cfg.LED.InitialStatus; s != "" {
		w, err := statusled.ParseWord(s)
		if err != nil {
			return fmt.Errorf("initial status: %w", err)
		}
		d.apply(w)
	} else {
		d.metrics.ObserveStatus(d.led.Status().Word())
	}

	if path := d.cfg.Status.File; path != "" {
		watcher := statusfile.New(path, d.apply, d.logger)
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				d.logger.Warn("Failed to stop status file watcher", "error", err)
			}
		}()
	}

	if addr := d.cfg.Metrics.Listen; addr != "" {
		shutdown, err := d.serveMetrics(addr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	d.logger.Info("statusledd running",
		"status", d.led.Status().String(),
		"tick_period", d.cfg.LED.TickPeriod.String(),
	)
	close(d.ready)
	<-ctx.Done()
	d.logger.Info("statusledd stopping")
	return nil
}

func (d *daemon) serveMetrics(addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}
	d.metricsAddr = ln.Addr()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(d.reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("Metrics server failed", "error", err)
		}
	}()
	d.logger.Info("Serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			d.logger.Warn("Metrics server shutdown", "error", err)
		}
		<-done
	}, nil
}
