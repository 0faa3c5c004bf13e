package service

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the matcher and
// provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	matchQueries      prometheus.Counter
	matchesReturned   prometheus.Counter
	scoresComputed    prometheus.Counter
	sessionsScheduled prometheus.Counter
	matchDuration     prometheus.Histogram
	solveDuration     prometheus.Histogram
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHitRatio     prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter

	cacheHitCount    uint64
	cacheMissCount   uint64
	matchQueryCount  uint64
	matchResultCount uint64
	sessionCount     uint64
	scoreCount       uint64
}

// MetricsSnapshot is a point-in-time view of the matcher counters.
type MetricsSnapshot struct {
	MatchQueries      uint64  `json:"match_queries"`
	MatchesReturned   uint64  `json:"matches_returned"`
	ScoresComputed    uint64  `json:"scores_computed"`
	SessionsScheduled uint64  `json:"sessions_scheduled"`
	CacheHits         uint64  `json:"cache_hits"`
	CacheMisses       uint64  `json:"cache_misses"`
	CacheHitRatio     float64 `json:"cache_hit_ratio"`
}

// NewMetricsService registers the matcher's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	matchQueries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_queries_total",
		Help: "Total number of match queries served",
	})
	matchesReturned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_results_total",
		Help: "Total number of matches returned to callers",
	})
	scoresComputed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compatibility_scores_total",
		Help: "Total number of pairwise compatibility scores computed",
	})
	sessionsScheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "study_sessions_scheduled_total",
		Help: "Total number of study sessions committed by the solver",
	})
	matchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_query_duration_seconds",
		Help:    "Duration of match queries in seconds",
		Buckets: prometheus.DefBuckets,
	})
	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_solve_duration_seconds",
		Help:    "Duration of scheduling runs in seconds",
		Buckets: prometheus.DefBuckets,
	})
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})
	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	})

	registry.MustRegister(matchQueries, matchesReturned, scoresComputed, sessionsScheduled, matchDuration, solveDuration, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		matchQueries:      matchQueries,
		matchesReturned:   matchesReturned,
		scoresComputed:    scoresComputed,
		sessionsScheduled: sessionsScheduled,
		matchDuration:     matchDuration,
		solveDuration:     solveDuration,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
	}
}

// Handler exposes the registry for whichever embedding process serves it.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// RecordMatchQuery tracks one served match query and the number of matches it
// returned.
func (s *MetricsService) RecordMatchQuery(duration time.Duration, matches int) {
	if s == nil {
		return
	}
	s.matchQueries.Inc()
	s.matchDuration.Observe(duration.Seconds())
	atomic.AddUint64(&s.matchQueryCount, 1)
	if matches > 0 {
		s.matchesReturned.Add(float64(matches))
		atomic.AddUint64(&s.matchResultCount, uint64(matches))
	}
}

// RecordScores tracks pairwise score computations.
func (s *MetricsService) RecordScores(count int) {
	if s == nil || count <= 0 {
		return
	}
	s.scoresComputed.Add(float64(count))
	atomic.AddUint64(&s.scoreCount, uint64(count))
}

// RecordSolve tracks one scheduling run and its committed session count.
func (s *MetricsService) RecordSolve(duration time.Duration, sessions int) {
	if s == nil {
		return
	}
	s.solveDuration.Observe(duration.Seconds())
	if sessions > 0 {
		s.sessionsScheduled.Add(float64(sessions))
		atomic.AddUint64(&s.sessionCount, uint64(sessions))
	}
}

// RecordCacheOperation tracks a cache lookup outcome.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if s == nil {
		return
	}
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
		atomic.AddUint64(&s.cacheHitCount, 1)
	} else {
		s.cacheMisses.Inc()
		atomic.AddUint64(&s.cacheMissCount, 1)
	}
	s.updateHitRatio()
}

// ObserveCacheWrite tracks a cache set latency.
func (s *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if s == nil {
		return
	}
	s.cacheWrite.Observe(duration.Seconds())
}

// Snapshot returns current counter values.
func (s *MetricsService) Snapshot() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&s.cacheHitCount)
	misses := atomic.LoadUint64(&s.cacheMissCount)
	ratio := 0.0
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return MetricsSnapshot{
		MatchQueries:      atomic.LoadUint64(&s.matchQueryCount),
		MatchesReturned:   atomic.LoadUint64(&s.matchResultCount),
		ScoresComputed:    atomic.LoadUint64(&s.scoreCount),
		SessionsScheduled: atomic.LoadUint64(&s.sessionCount),
		CacheHits:         hits,
		CacheMisses:       misses,
		CacheHitRatio:     ratio,
	}
}

func (s *MetricsService) updateHitRatio() {
	hits := atomic.LoadUint64(&s.cacheHitCount)
	misses := atomic.LoadUint64(&s.cacheMissCount)
	if hits+misses == 0 {
		return
	}
	s.cacheHitRatio.Set(float64(hits) / float64(hits+misses))
}
