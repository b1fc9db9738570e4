// Command rtsched runs the real-time scheduling testbed: the same six
// periodic workloads under either the time-triggered cyclic executive or the
// preemptive rate-monotonic scheduler.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StillLYOU/IL2235-lab1/config"
	"github.com/StillLYOU/IL2235-lab1/core"
	obs "github.com/StillLYOU/IL2235-lab1/observability/prometheus"
	"github.com/StillLYOU/IL2235-lab1/observability/zlog"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "rtsched",
		Usage: "run the periodic workload mix under a chosen scheduling model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config `FILE` (default: built-in reference configuration)",
			},
			&cli.IntFlag{
				Name:  "sensor",
				Value: -1,
				Usage: "override the 8-bit sensor `VALUE` (0-255)",
			},
			&cli.IntFlag{
				Name:    "hyperperiods",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "number of hyperperiods to run (0 = until interrupted)",
			},
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "serve Prometheus metrics on `ADDR` (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "cyclic",
				Usage:  "run the time-triggered cyclic executive",
				Action: func(c *cli.Context) error { return run(c, "cyclic") },
			},
			{
				Name:   "rm",
				Usage:  "run the preemptive rate-monotonic scheduler",
				Action: func(c *cli.Context) error { return run(c, "rate_monotonic") },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context, model string) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	cfg.Model = model

	tasks, table, err := cfg.Build()
	if err != nil {
		return err
	}

	sensorValue := cfg.Sensor.Value
	if v := c.Int("sensor"); v >= 0 {
		if v > 255 {
			return fmt.Errorf("sensor value %d out of range 0-255", v)
		}
		sensorValue = uint8(v)
	}

	logger := zlog.New(os.Stderr)
	execLog := core.NewExecutionLog(cfg.LogCapacity)
	clock := core.NewSystemClock()
	sensor := core.NewStaticSensor(sensorValue)
	indicator := &core.CountingIndicator{}

	var metrics core.Metrics = core.NopMetrics{}
	var poller *obs.SnapshotPoller
	listen := cfg.Metrics.Listen
	if addr := c.String("metrics-listen"); addr != "" {
		cfg.Metrics.Enabled = true
		listen = addr
	}
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		exporter, err := obs.NewMetricsExporter("rtsched", reg, obs.ExporterOptions{})
		if err != nil {
			return err
		}
		metrics = exporter

		poller, err = obs.NewSnapshotPoller(reg, time.Second)
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("metrics endpoint", core.F("listen", listen))
			if err := http.ListenAndServe(listen, mux); err != nil {
				logger.Error("metrics server", core.F("error", err))
			}
		}()
	}

	reporter := core.NewReporter(execLog, os.Stdout, logger, metrics, indicator)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hyperperiods := c.Int("hyperperiods")

	switch model {
	case "cyclic":
		exec, err := core.NewCyclicExecutive(table, tasks, execLog, clock, sensor, core.CyclicOptions{
			Scale:     cfg.Scale(),
			Indicator: indicator,
			Reporter:  reporter,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		if poller != nil {
			poller.AddScheduler("cyclic", exec)
			poller.Start(ctx)
			defer poller.Stop()
		}
		if err := exec.Run(ctx, hyperperiods); err != nil && ctx.Err() == nil {
			return err
		}

	case "rate_monotonic":
		sched, err := core.NewRateMonotonicScheduler(tasks, execLog, clock, sensor, core.RateMonotonicOptions{
			Scale:     cfg.Scale(),
			Indicator: indicator,
			Reporter:  reporter,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		if poller != nil {
			poller.AddScheduler("rate_monotonic", sched)
			poller.Start(ctx)
			defer poller.Stop()
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		if hyperperiods > 0 {
			deadline := time.Duration(int64(hyperperiods)*sched.Hyperperiod()) * time.Microsecond
			select {
			case <-ctx.Done():
			case <-time.After(deadline + 10*time.Millisecond):
			}
		} else {
			<-ctx.Done()
		}
		sched.Stop()
	}

	logger.Info("run complete",
		core.F("overrun_toggles", indicator.Overruns()),
		core.F("hyperperiod_toggles", indicator.Hyperperiods()),
		core.F("misses_total", execLog.MissesTotal()),
	)
	return nil
}
