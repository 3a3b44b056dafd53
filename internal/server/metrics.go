package server

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sadopc/timetrax/internal/accounting"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

func newMetrics(engine *accounting.Engine) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetrax_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
	}

	// NaN while the ledger has an inconsistent day.
	netTime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "timetrax_net_time_seconds",
		Help: "Worked minus expected time over all closed days, including the account start baseline.",
	}, func() float64 {
		d, err := engine.TimeDiff()
		if err != nil {
			return math.NaN()
		}
		return d.Seconds()
	})

	m.registry.MustRegister(m.requests, netTime)
	return m
}
