package explorer

import (
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_explorer_requests_total",
		Help: "Explorer HTTP attempts by API action and outcome (ok, error)",
	}, []string{"action", "outcome"})
	requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hunter_explorer_request_seconds",
		Help:    "Explorer HTTP attempt latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	exhaustedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hunter_explorer_retries_exhausted_total",
		Help: "Explorer calls that failed on every attempt",
	}, []string{"action"})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestLatency, exhaustedTotal)
}

func observe(action string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(action, outcome).Inc()
	requestLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// actionOf names a request by its module/action query, e.g. "account.tokentx".
func actionOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "unknown"
	}
	q := u.Query()
	if q.Get("action") == "" {
		return "unknown"
	}
	return q.Get("module") + "." + q.Get("action")
}
