package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "fetch_total",
		Help:      "Total category fetches by category and result status.",
	}, []string{"category", "status"})

	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marquee",
		Name:      "fetch_duration_seconds",
		Help:      "Category fetch duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"category"})

	CategoriesLoading = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "marquee",
		Name:      "categories_loading",
		Help:      "Number of categories with a fetch in flight.",
	})

	SearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "search_total",
		Help:      "Total executed searches by outcome (hit, miss).",
	}, []string{"outcome"})

	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "api_requests_total",
		Help:      "Total movie API requests by endpoint and status code.",
	}, []string{"endpoint", "status"})

	APICacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "marquee",
		Name:      "api_cache_hits_total",
		Help:      "Total movie API responses served from the shared cache.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		FetchTotal,
		FetchDuration,
		CategoriesLoading,
		SearchTotal,
		APIRequestsTotal,
		APICacheHitsTotal,
	)
}
