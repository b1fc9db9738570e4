package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/StillLYOU/IL2235-lab1/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SnapshotPoller periodically exports scheduler Stats() snapshots into
// Prometheus gauges. Polling pulls from the schedulers' own counters, so it
// adds no work to the dispatch path.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]core.StatsProvider

	schedTicks        *prom.GaugeVec
	schedHyperperiods *prom.GaugeVec
	schedMissesTotal  *prom.GaugeVec
	schedLogDepth     *prom.GaugeVec
	schedRunning      *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	ticks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtsched",
		Name:      "scheduler_ticks",
		Help:      "Frames dispatched (cyclic) or jobs released (rate-monotonic).",
	}, []string{"scheduler", "model"})
	hyperperiods := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtsched",
		Name:      "scheduler_hyperperiods",
		Help:      "Completed hyperperiods snapshot.",
	}, []string{"scheduler", "model"})
	missesTotal := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtsched",
		Name:      "scheduler_misses_total",
		Help:      "Deadline misses (including skips) since process start.",
	}, []string{"scheduler", "model"})
	logDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtsched",
		Name:      "scheduler_log_depth",
		Help:      "Execution log records buffered since the last drain.",
	}, []string{"scheduler", "model"})
	running := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtsched",
		Name:      "scheduler_running",
		Help:      "Scheduler running state (1=running, 0=stopped).",
	}, []string{"scheduler", "model"})

	var err error
	if ticks, err = registerCollector(reg, ticks); err != nil {
		return nil, err
	}
	if hyperperiods, err = registerCollector(reg, hyperperiods); err != nil {
		return nil, err
	}
	if missesTotal, err = registerCollector(reg, missesTotal); err != nil {
		return nil, err
	}
	if logDepth, err = registerCollector(reg, logDepth); err != nil {
		return nil, err
	}
	if running, err = registerCollector(reg, running); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:          interval,
		providers:         make(map[string]core.StatsProvider),
		schedTicks:        ticks,
		schedHyperperiods: hyperperiods,
		schedMissesTotal:  missesTotal,
		schedLogDepth:     logDepth,
		schedRunning:      running,
	}, nil
}

// AddScheduler adds or replaces a stats provider by name.
func (p *SnapshotPoller) AddScheduler(name string, provider core.StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.providersMu.Lock()
	p.providers[name] = provider
	p.providersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.providers {
		stats := provider.Stats()
		model := normalizeLabel(stats.Model, "unknown")
		p.schedTicks.WithLabelValues(name, model).Set(float64(stats.Ticks))
		p.schedHyperperiods.WithLabelValues(name, model).Set(float64(stats.Hyperperiods))
		p.schedMissesTotal.WithLabelValues(name, model).Set(float64(stats.MissesTotal))
		p.schedLogDepth.WithLabelValues(name, model).Set(float64(stats.LogDepth))
		if stats.Running {
			p.schedRunning.WithLabelValues(name, model).Set(1)
		} else {
			p.schedRunning.WithLabelValues(name, model).Set(0)
		}
	}
}
