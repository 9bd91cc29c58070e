package kinship

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	anomaliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kinship_anomalies_total",
		Help: "Family data anomalies resolved during graph traversal, by kind",
	}, []string{"kind"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kinship_cache_lookups_total",
		Help: "Relationship cache lookups, by result (hit, miss)",
	}, []string{"result"})

	cacheSharedWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kinship_cache_shared_waits_total",
		Help: "Cache misses served by an in-flight computation of another caller",
	})

	computationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kinship_computations_total",
		Help: "Relationship computations, by outcome (self, blood, affinal, none, error)",
	}, []string{"outcome"})

	computeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kinship_compute_duration_seconds",
		Help:    "Time to compute one relationship",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	invalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kinship_cache_invalidations_total",
		Help: "Graph mutation invalidations applied to the relationship cache",
	})

	invalidatedRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kinship_cache_invalidated_rows_total",
		Help: "Relationship cache rows deleted by invalidations",
	})

	generationsChangedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kinship_generations_changed_total",
		Help: "Persons whose generation number changed on reassignment",
	})
)

// ObserveGenerationChanges records the size of a reassignment diff
func ObserveGenerationChanges(n int) {
	generationsChangedTotal.Add(float64(n))
}
