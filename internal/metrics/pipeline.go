package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aithena",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.25, 1, 5, 15, 60},
		},
		[]string{"stage"}, // fetch, ingest, retrieve, rank, summarize, deliver
	)

	PipelineArticlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aithena",
			Name:      "pipeline_articles_total",
			Help:      "Articles counted per pipeline outcome",
		},
		[]string{"outcome"}, // added, duplicate, skipped, ranked, summary_fallback
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aithena",
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs",
		},
		[]string{"status"}, // success, error
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineArticlesTotal)
	prometheus.MustRegister(PipelineRunsTotal)
	pipelineMetricsRegistered = true
}
