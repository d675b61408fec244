package identity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitsTotal tracks identity cache hits.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_identity_cache_hits_total",
		Help: "Total number of identity cache hits",
	})

	// CacheMissesTotal tracks identity cache misses.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradeboard_identity_cache_misses_total",
		Help: "Total number of identity cache misses",
	})
)
