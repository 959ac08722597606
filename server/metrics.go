package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nihei9/charscope/dispatcher"
)

const (
	outcomeParsed = "parsed"
	outcomeError  = "error"
)

type metrics struct {
	requests    prometheus.Counter
	outcomes    *prometheus.CounterVec
	duration    prometheus.Histogram
	payloadSize prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "charscope",
			Name:      "requests_total",
			Help:      "Number of decode requests.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "charscope",
			Name:      "engine_outcomes_total",
			Help:      "Number of engine results by engine and outcome.",
		}, []string{"engine", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "charscope",
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a decode request.",
			Buckets:   prometheus.DefBuckets,
		}),
		payloadSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "charscope",
			Name:      "payload_bytes",
			Help:      "Size of decode request payloads.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.outcomes, m.duration, m.payloadSize} {
		err := reg.Register(c)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(payloadLen int, res dispatcher.Response, seconds float64) {
	m.requests.Inc()
	m.payloadSize.Observe(float64(payloadLen))
	m.duration.Observe(seconds)
	for name, o := range res {
		outcome := outcomeParsed
		if o.Failed() {
			outcome = outcomeError
		}
		m.outcomes.WithLabelValues(name, outcome).Inc()
	}
}
