package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records batch-run outcomes in Prometheus collectors. A nil
// *Metrics is valid and records nothing, so callers never need guards.
type Metrics struct {
	runs       *prometheus.CounterVec
	geoFail    *prometheus.CounterVec
	transition *prometheus.CounterVec
	duration   prometheus.Histogram
}

// New registers batch metrics on the provided registerer. A nil registerer
// defaults to the global Prometheus registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_batch_runs_total",
		Help: "Total number of batch runs by result",
	}, []string{"result"})
	geoFail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_batch_geocode_failures_total",
		Help: "Orders that could not be geolocated, by reason",
	}, []string{"reason"})
	transition := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_batch_order_transitions_total",
		Help: "Order status transitions applied by batch runs",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_batch_run_duration_seconds",
		Help:    "Wall-clock duration of batch runs",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(geoFail); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			geoFail = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(transition); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			transition = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &Metrics{runs: runs, geoFail: geoFail, transition: transition, duration: duration}, nil
}

func (m *Metrics) RecordRun(result string, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) RecordGeocodeFailure(reason string) {
	if m == nil {
		return
	}
	m.geoFail.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordTransition(status string) {
	if m == nil {
		return
	}
	m.transition.WithLabelValues(status).Inc()
}
