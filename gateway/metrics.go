package gateway

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "session",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Requests issued through the gateway by method and response code (\"error\" when no response).",
	}, []string{"method", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "session",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Time from sending a request to reading its full response body.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	if err := reg.Register(requests); err != nil {
		existing, ok := alreadyRegistered[*prometheus.CounterVec](err)
		if !ok {
			return nil, errors.Wrap(err, "[gateway metrics] requests_total")
		}
		requests = existing
	}
	if err := reg.Register(duration); err != nil {
		existing, ok := alreadyRegistered[*prometheus.HistogramVec](err)
		if !ok {
			return nil, errors.Wrap(err, "[gateway metrics] request_duration_seconds")
		}
		duration = existing
	}

	return &metrics{
		requests: requests,
		duration: duration,
	}, nil
}

// alreadyRegistered lets two clients share one registry.
func alreadyRegistered[T prometheus.Collector](err error) (T, bool) {
	var zero T
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return zero, false
	}
	existing, ok := are.ExistingCollector.(T)
	return existing, ok
}

func (m *metrics) observe(method, code string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
