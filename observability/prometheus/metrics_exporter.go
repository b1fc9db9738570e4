package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/StillLYOU/IL2235-lab1/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	ExecTimeBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors. It is fed by
// the reporting aggregator once per hyperperiod, off the hot timing path.
type MetricsExporter struct {
	jobOutcomeTotal  *prom.CounterVec
	execTimeSeconds  *prom.HistogramVec
	logDepth         prom.Gauge
	hyperperiodTotal *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "rtsched"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.ExecTimeBuckets
	if len(buckets) == 0 {
		// Reference workloads run 0-8ms; sub-millisecond resolution there,
		// coarser above.
		buckets = []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.05, 0.1}
	}

	outcomeVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "job_outcome_total",
		Help:      "Total job attempts by task and outcome.",
	}, []string{"task", "outcome"})
	execTimeVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "job_exec_time_seconds",
		Help:      "Measured job execution time in seconds.",
		Buckets:   buckets,
	}, []string{"task"})
	logDepthGauge := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "execution_log_depth",
		Help:      "Records drained from the execution log at the last report.",
	})
	hyperperiodVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "hyperperiod_total",
		Help:      "Completed hyperperiods by scheduling model.",
	}, []string{"model"})

	var err error
	if outcomeVec, err = registerCollector(reg, outcomeVec); err != nil {
		return nil, err
	}
	if execTimeVec, err = registerCollector(reg, execTimeVec); err != nil {
		return nil, err
	}
	if logDepthGauge, err = registerCollector(reg, logDepthGauge); err != nil {
		return nil, err
	}
	if hyperperiodVec, err = registerCollector(reg, hyperperiodVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		jobOutcomeTotal:  outcomeVec,
		execTimeSeconds:  execTimeVec,
		logDepth:         logDepthGauge,
		hyperperiodTotal: hyperperiodVec,
	}, nil
}

// RecordJobOutcome counts one classified job attempt.
func (m *MetricsExporter) RecordJobOutcome(taskName string, outcome core.Outcome) {
	if m == nil {
		return
	}
	m.jobOutcomeTotal.WithLabelValues(normalizeLabel(taskName, "unknown"), outcomeLabel(outcome)).Inc()
}

// RecordExecTime records a completed job's execution time.
func (m *MetricsExporter) RecordExecTime(taskName string, execTime time.Duration) {
	if m == nil {
		return
	}
	m.execTimeSeconds.WithLabelValues(normalizeLabel(taskName, "unknown")).Observe(execTime.Seconds())
}

// RecordLogDepth records the drained record count.
func (m *MetricsExporter) RecordLogDepth(depth int) {
	if m == nil {
		return
	}
	m.logDepth.Set(float64(depth))
}

// RecordHyperperiod counts one completed hyperperiod.
func (m *MetricsExporter) RecordHyperperiod(model string) {
	if m == nil {
		return
	}
	m.hyperperiodTotal.WithLabelValues(normalizeLabel(model, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func outcomeLabel(outcome core.Outcome) string {
	switch outcome {
	case core.OutcomeOK:
		return "ok"
	case core.OutcomeMiss:
		return "miss"
	case core.OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
