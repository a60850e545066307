package regulations

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics_RegistersAllCountersAndTheHistogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.JobsClaimed.Inc()
	m.JobsSucceeded.Inc()
	m.ParseDuration.Observe(1.5)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	for _, name := range []string{
		"peraturan_jobs_claimed_total",
		"peraturan_jobs_succeeded_total",
		"peraturan_jobs_failed_total",
		"peraturan_discovery_pages_total",
		"peraturan_pasals_parsed_total",
		"peraturan_parse_duration_seconds",
	} {
		if _, ok := byName[name]; !ok {
			t.Errorf("expected metric %q to be registered", name)
		}
	}

	if got := byName["peraturan_jobs_claimed_total"].GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Errorf("got JobsClaimed value %v, want 1", got)
	}
}

func TestNewMetrics_DoublyRegisteringPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	defer func() {
		if recover() == nil {
			t.Error("expected a panic from registering duplicate collectors on the same registry")
		}
	}()
	NewMetrics(registry)
}
