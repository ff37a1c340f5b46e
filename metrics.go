// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package sweepdd

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	sweeps    *prometheus.CounterVec
	requests  prometheus.Counter
	forwarded prometheus.Counter
	spilled   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sweepdd",
			Name:      "sweeps_total",
			Help:      "Number of sweeps, by kind.",
		}, []string{"kind"}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweepdd",
			Name:      "requests_total",
			Help:      "Number of requests processed by sweeps.",
		}),
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweepdd",
			Name:      "forwarded_total",
			Help:      "Number of requests forwarded through a secondary queue.",
		}),
		spilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sweepdd",
			Name:      "spilled_runs_total",
			Help:      "Number of sorted runs written to disk by priority queues.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.sweeps, m.requests, m.forwarded, m.spilled} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering metrics")
		}
	}
	return m, nil
}

func (m *metrics) observe(s SweepStats) {
	m.sweeps.WithLabelValues(s.Kind).Inc()
	m.requests.Add(float64(s.Requests))
	m.forwarded.Add(float64(s.Forwarded))
}
