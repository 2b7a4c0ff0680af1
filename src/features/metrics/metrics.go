package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the listening-stats pipeline. There is no retry queue for
// failed appends, so AppendsDropped is the signal that distinguishes systemic
// storage failure from genuine zero activity.
var (
	SessionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finsight",
		Name:      "sessions_recorded_total",
		Help:      "Listening sessions appended to the event log.",
	})

	AppendsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finsight",
		Name:      "appends_dropped_total",
		Help:      "Listening sessions dropped because the append failed.",
	})

	PartitionsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "finsight",
		Name:      "partitions_skipped_total",
		Help:      "Partition files skipped as unreadable or corrupt during queries.",
	})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finsight",
		Name:      "stats_query_duration_seconds",
		Help:      "Wall time of stats aggregation queries.",
		Buckets:   prometheus.DefBuckets,
	})
)
