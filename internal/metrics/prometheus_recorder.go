package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	refreshes       *prom.CounterVec
	refreshDuration *prom.HistogramVec
	stageResults    *prom.CounterVec
	docsWritten     *prom.CounterVec
	cacheReads      *prom.CounterVec
	fetchFailures   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.refreshes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "refreshes_total",
			Help:      "Refreshes started per project",
		}, []string{"project"})
		pr.refreshDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserve",
			Name:      "refresh_duration_seconds",
			Help:      "End-to-end refresh duration by outcome",
			Buckets:   prom.DefBuckets,
		}, []string{"project", "outcome"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "refresh_stage_results_total",
			Help:      "Refresh stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.docsWritten = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "documents_written_total",
			Help:      "Documents written to the cache per project",
		}, []string{"project"})
		pr.cacheReads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "cache_reads_total",
			Help:      "Cache point reads by key family and result",
		}, []string{"family", "result"})
		pr.fetchFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserve",
			Name:      "source_fetch_failures_total",
			Help:      "Source fetch failures per project",
		}, []string{"project"})
		reg.MustRegister(pr.refreshes, pr.refreshDuration, pr.stageResults,
			pr.docsWritten, pr.cacheReads, pr.fetchFailures)
	})
	return pr
}

func (p *PrometheusRecorder) RefreshStarted(project string) {
	if p == nil || p.refreshes == nil {
		return
	}
	p.refreshes.WithLabelValues(project).Inc()
}

func (p *PrometheusRecorder) ObserveRefreshDuration(project string, d time.Duration, outcome string) {
	if p == nil || p.refreshDuration == nil {
		return
	}
	p.refreshDuration.WithLabelValues(project, outcome).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStage(stage string, result string) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, result).Inc()
}

func (p *PrometheusRecorder) AddDocsWritten(project string, n int) {
	if p == nil || p.docsWritten == nil {
		return
	}
	p.docsWritten.WithLabelValues(project).Add(float64(n))
}

func (p *PrometheusRecorder) CacheHit(family string) {
	if p == nil || p.cacheReads == nil {
		return
	}
	p.cacheReads.WithLabelValues(family, "hit").Inc()
}

func (p *PrometheusRecorder) CacheMiss(family string) {
	if p == nil || p.cacheReads == nil {
		return
	}
	p.cacheReads.WithLabelValues(family, "miss").Inc()
}

func (p *PrometheusRecorder) FetchFailure(project string) {
	if p == nil || p.fetchFailures == nil {
		return
	}
	p.fetchFailures.WithLabelValues(project).Inc()
}
