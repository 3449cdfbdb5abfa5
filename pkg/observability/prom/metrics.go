// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	m.Register()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/re3facet/pkg/observability"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900}

// Metrics holds the re3facet collectors and implements
// observability.PipelineHooks, observability.CacheHooks and
// observability.HTTPHooks.
type Metrics struct {
	HarvestDuration  *prometheus.HistogramVec
	HarvestDocuments prometheus.Gauge
	Records          prometheus.Gauge
	SkippedRecords   prometheus.Counter
	Subjects         prometheus.Gauge
	MalformedSubject prometheus.Counter
	CacheEvents      *prometheus.CounterVec
	CacheBytes       prometheus.Counter
	Requests         *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	RequestErrors    prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HarvestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "re3facet_harvest_duration_seconds",
			Help:    "Duration of document loads, by source (cache or registry)",
			Buckets: durationBuckets,
		}, []string{"source"}),
		HarvestDocuments: f.NewGauge(prometheus.GaugeOpts{
			Name: "re3facet_harvest_documents",
			Help: "Documents returned by the last harvest",
		}),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Name: "re3facet_table_records",
			Help: "Records in the last built table",
		}),
		SkippedRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "re3facet_skipped_records_total",
			Help: "Malformed records skipped by lenient builds",
		}),
		Subjects: f.NewGauge(prometheus.GaugeOpts{
			Name: "re3facet_subjects",
			Help: "Distinct subjects in the last classification",
		}),
		MalformedSubject: f.NewCounter(prometheus.CounterOpts{
			Name: "re3facet_malformed_subjects_total",
			Help: "Subject strings excluded from the hierarchy",
		}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "re3facet_cache_events_total",
			Help: "Cache hits, misses and writes",
		}, []string{"event", "key_type"}),
		CacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "re3facet_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "re3facet_registry_requests_total",
			Help: "Registry responses by status code",
		}, []string{"code"}),
		RequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "re3facet_registry_request_duration_seconds",
			Help:    "Duration of registry requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RequestErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "re3facet_registry_request_errors_total",
			Help: "Registry requests that received no response",
		}),
	}
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnHarvestStart(context.Context, string) {}

func (m *Metrics) OnHarvestComplete(_ context.Context, _ string, documents int, cacheHit bool, d time.Duration, err error) {
	if err != nil {
		return
	}
	source := "registry"
	if cacheHit {
		source = "cache"
	}
	m.HarvestDuration.WithLabelValues(source).Observe(d.Seconds())
	m.HarvestDocuments.Set(float64(documents))
}

func (m *Metrics) OnBuildComplete(_ context.Context, records, skipped int, _ time.Duration, err error) {
	if err != nil {
		return
	}
	m.Records.Set(float64(records))
	m.SkippedRecords.Add(float64(skipped))
}

func (m *Metrics) OnClassifyComplete(_ context.Context, subjects, malformed int, _ time.Duration) {
	m.Subjects.Set(float64(subjects))
	m.MalformedSubject.Add(float64(malformed))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues("hit", keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues("miss", keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEvents.WithLabelValues("set", keyType).Inc()
	m.CacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, _, _ string, statusCode int, d time.Duration) {
	m.Requests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.Observe(d.Seconds())
}

func (m *Metrics) OnError(context.Context, string, string, string, error) {
	m.RequestErrors.Inc()
}
