package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pincheck_checkins_total",
			Help: "Check-in requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	geocodeCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pincheck_geocode_cache_lookups_total",
			Help: "Geocode cache lookups by result",
		},
		[]string{"result"},
	)

	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pincheck_geocode_upstream_requests_total",
			Help: "Requests sent to the geocoding provider by outcome",
		},
		[]string{"provider", "outcome"},
	)

	upstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pincheck_geocode_upstream_duration_seconds",
			Help:    "Geocoding provider latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	throttleRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pincheck_throttle_rejections_total",
			Help: "Check-ins dropped by an active cooldown window",
		},
		[]string{"window"},
	)

	pinsDesc = prometheus.NewDesc(
		"pincheck_pins",
		"Pins currently held in the pin store",
		nil, nil,
	)

	geocodeEntriesDesc = prometheus.NewDesc(
		"pincheck_geocode_cache_entries",
		"Entries currently held in the geocode cache",
		nil, nil,
	)
)

// Sizer is anything that can report how many entries it holds.
type Sizer interface {
	Len() int
}

// StoreCollector reports the pin store and geocode cache sizes on each scrape.
type StoreCollector struct {
	pins    Sizer
	geocode Sizer
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pinsDesc
	ch <- geocodeEntriesDesc
}

// Collect reads the current sizes.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(pinsDesc, prometheus.GaugeValue, float64(c.pins.Len()))
	ch <- prometheus.MustNewConstMetric(geocodeEntriesDesc, prometheus.GaugeValue, float64(c.geocode.Len()))
}

var registerOnce sync.Once

// Init registers the store collector. Must be called once at startup.
func Init(pins, geocode Sizer) {
	registerOnce.Do(func() {
		prometheus.MustRegister(&StoreCollector{pins: pins, geocode: geocode})
	})
}

// RecordCheckin counts a check-in outcome.
func RecordCheckin(outcome string) {
	checkinsTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup counts a geocode cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		geocodeCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	geocodeCacheLookups.WithLabelValues("miss").Inc()
}

// RecordUpstream counts a provider request and observes its latency.
func RecordUpstream(provider, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(provider, outcome).Inc()
	upstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordThrottled counts a check-in rejected by the named window.
func RecordThrottled(window string) {
	throttleRejections.WithLabelValues(window).Inc()
}
