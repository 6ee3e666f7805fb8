package analyzer

import (
	"errors"
	"time"

	"github.com/JonMunkholm/coursestats/internal/course"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queryDuration tracks how long each report takes, including dataset load.
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursestats_query_duration_seconds",
			Help:    "Duration of course report queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"query"},
	)

	// queryErrorsTotal counts failed queries by error kind.
	queryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursestats_query_errors_total",
			Help: "Total number of failed course report queries",
		},
		[]string{"query", "kind"},
	)

	// datasetLoadsTotal counts dataset reads by outcome: hit, miss or error.
	datasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursestats_dataset_loads_total",
			Help: "Total number of dataset reads by outcome",
		},
		[]string{"result"},
	)

	datasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursestats_dataset_rows",
			Help: "Number of records in the most recently parsed dataset",
		},
	)
)

// observe records duration and, on failure, the error kind of one query.
func observe(query string, start time.Time, err error) {
	queryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err != nil {
		queryErrorsTotal.WithLabelValues(query, errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	var (
		fileErr      *course.FileAccessError
		malformedErr *course.MalformedRecordError
		argErr       *InvalidArgumentError
	)
	switch {
	case errors.As(err, &argErr):
		return "invalid_argument"
	case errors.As(err, &malformedErr):
		return "malformed_record"
	case errors.As(err, &fileErr):
		return "file_access"
	default:
		return "other"
	}
}
