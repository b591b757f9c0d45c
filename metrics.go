package client

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "starter_api_client"

// Metrics holds Prometheus collectors for outgoing API requests.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlight        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of outgoing API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of outgoing API requests.",
		}, []string{"method", "route", "status_code"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of outgoing API requests awaiting a response.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlight)
	return m
}

// Middleware records one observation per request, labelled with the path
// template rather than the expanded path. Requests that got no response
// are labelled "error" or "canceled".
func (m *Metrics) Middleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*Response, error) {
			m.InFlight.Inc()
			defer m.InFlight.Dec()

			start := time.Now()
			resp, err := next(ctx, req)

			status := "error"
			switch {
			case IsCanceled(err):
				status = "canceled"
			case resp != nil:
				status = strconv.Itoa(resp.StatusCode)
			}

			m.RequestDuration.WithLabelValues(req.Method, req.Path, status).Observe(time.Since(start).Seconds())
			m.RequestsTotal.WithLabelValues(req.Method, req.Path, status).Inc()

			return resp, err
		}
	}
}
