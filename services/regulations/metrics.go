package regulations

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instrumentation exposed by the admin server.
// DiscoveryPages is registered but nothing increments it: the Discoverer
// holds no Metrics, so the counter stays at zero.
type Metrics struct {
	JobsClaimed        prometheus.Counter
	JobsSucceeded      prometheus.Counter
	JobsFailed         prometheus.Counter
	DiscoveryPages     prometheus.Counter
	PasalsParsed       prometheus.Counter
	ParseDuration      prometheus.Histogram
}

// NewMetrics registers and returns a fresh Metrics bound to registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peraturan_jobs_claimed_total",
			Help: "Total crawl jobs claimed by this worker process.",
		}),
		JobsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peraturan_jobs_succeeded_total",
			Help: "Total crawl jobs that completed successfully.",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peraturan_jobs_failed_total",
			Help: "Total crawl jobs that failed.",
		}),
		DiscoveryPages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peraturan_discovery_pages_total",
			Help: "Total listing pages crawled by the discoverer.",
		}),
		PasalsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peraturan_pasals_parsed_total",
			Help: "Total pasal nodes produced by the structure parser.",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "peraturan_parse_duration_seconds",
			Help:    "Time spent parsing a regulation's structure.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(m.JobsClaimed, m.JobsSucceeded, m.JobsFailed,
		m.DiscoveryPages, m.PasalsParsed, m.ParseDuration)

	return m
}
