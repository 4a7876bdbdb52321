package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "tapstations_"

const (
	SearchResultRanked   = "ranked"
	SearchResultReset    = "reset"
	SearchResultNotFound = "not_found"
	SearchResultError    = "error"
)

var (
	registerOnce sync.Once

	snapshotsApplied prometheus.Counter
	recordsDropped   prometheus.Counter
	searchesTotal    *prometheus.CounterVec
	geocodeLookups   *prometheus.CounterVec
)

// Init registers the process metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		snapshotsApplied = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "directory_snapshots_total",
			Help: "Directory snapshots applied to the local cache",
		})
		recordsDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "directory_records_dropped_total",
			Help: "Raw records rejected by the validity filter",
		})
		searchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "searches_total",
			Help: "Nearest-station searches by result",
		}, []string{"result"})
		geocodeLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "geocode_lookups_total",
			Help: "Forward-geocode lookups by cache outcome",
		}, []string{"outcome"})

		prometheus.MustRegister(snapshotsApplied, recordsDropped, searchesTotal, geocodeLookups)
	})
}

func SnapshotApplied() {
	if snapshotsApplied != nil {
		snapshotsApplied.Inc()
	}
}

func RecordsDropped(n int) {
	if recordsDropped != nil && n > 0 {
		recordsDropped.Add(float64(n))
	}
}

func SearchCompleted(result string) {
	if searchesTotal != nil {
		searchesTotal.WithLabelValues(result).Inc()
	}
}

func GeocodeLookup(outcome string) {
	if geocodeLookups != nil {
		geocodeLookups.WithLabelValues(outcome).Inc()
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
