package prometheus

import (
	"testing"
	"time"

	"github.com/StillLYOU/IL2235-lab1/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsExporter tests the core.Metrics adaptation
// Main test items:
// 1. Job outcomes land in the counter vec under the right labels
// 2. Execution times feed the per-task histogram
// 3. Log depth is a gauge holding the last drained count
// 4. Hyperperiods count per scheduling model
func TestMetricsExporter(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordJobOutcome("Task_B", core.OutcomeOK)
	exporter.RecordJobOutcome("Task_B", core.OutcomeOK)
	exporter.RecordJobOutcome("Task_E", core.OutcomeMiss)
	exporter.RecordJobOutcome("Task_C", core.OutcomeSkipped)

	if got := testutil.ToFloat64(exporter.jobOutcomeTotal.WithLabelValues("Task_B", "ok")); got != 2 {
		t.Errorf("Task_B ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.jobOutcomeTotal.WithLabelValues("Task_E", "miss")); got != 1 {
		t.Errorf("Task_E miss count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.jobOutcomeTotal.WithLabelValues("Task_C", "skipped")); got != 1 {
		t.Errorf("Task_C skipped count = %v, want 1", got)
	}

	exporter.RecordExecTime("Task_B", time.Millisecond)
	exporter.RecordExecTime("Task_E", 4*time.Millisecond)
	if got := testutil.CollectAndCount(exporter.execTimeSeconds); got != 2 {
		t.Errorf("exec time series count = %d, want 2", got)
	}

	exporter.RecordLogDepth(43)
	if got := testutil.ToFloat64(exporter.logDepth); got != 43 {
		t.Errorf("log depth gauge = %v, want 43", got)
	}
	exporter.RecordLogDepth(0)
	if got := testutil.ToFloat64(exporter.logDepth); got != 0 {
		t.Errorf("log depth gauge = %v, want 0 after empty drain", got)
	}

	exporter.RecordHyperperiod("cyclic")
	exporter.RecordHyperperiod("cyclic")
	exporter.RecordHyperperiod("rate_monotonic")
	if got := testutil.ToFloat64(exporter.hyperperiodTotal.WithLabelValues("cyclic")); got != 2 {
		t.Errorf("cyclic hyperperiod count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.hyperperiodTotal.WithLabelValues("rate_monotonic")); got != 1 {
		t.Errorf("rate_monotonic hyperperiod count = %v, want 1", got)
	}
}

// TestMetricsExporter_Reregistration tests collector reuse
// Main test items:
// 1. Creating a second exporter on the same registry succeeds
// 2. Both exporters share the already-registered collectors
func TestMetricsExporter_Reregistration(t *testing.T) {
	reg := prom.NewRegistry()

	first, err := NewMetricsExporter("rtsched", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first exporter failed: %v", err)
	}
	second, err := NewMetricsExporter("rtsched", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second exporter failed: %v", err)
	}

	first.RecordJobOutcome("Task_A", core.OutcomeOK)
	second.RecordJobOutcome("Task_A", core.OutcomeOK)

	if got := testutil.ToFloat64(first.jobOutcomeTotal.WithLabelValues("Task_A", "ok")); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

// TestMetricsExporter_NilSafe tests the nil receiver contract
func TestMetricsExporter_NilSafe(t *testing.T) {
	var exporter *MetricsExporter
	exporter.RecordJobOutcome("Task_A", core.OutcomeOK)
	exporter.RecordExecTime("Task_A", time.Millisecond)
	exporter.RecordLogDepth(1)
	exporter.RecordHyperperiod("cyclic")
}

func TestOutcomeLabel(t *testing.T) {
	cases := map[core.Outcome]string{
		core.OutcomeOK:      "ok",
		core.OutcomeMiss:    "miss",
		core.OutcomeSkipped: "skipped",
		core.Outcome(99):    "unknown",
	}
	for outcome, want := range cases {
		if got := outcomeLabel(outcome); got != want {
			t.Errorf("outcomeLabel(%v) = %q, want %q", outcome, got, want)
		}
	}
}
