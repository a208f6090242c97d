// Package metrics exposes Prometheus counters for the homies service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultEmpty = "empty"
)

type Metrics struct {
	ActionsTotal      *prometheus.CounterVec
	FeedRequestsTotal *prometheus.CounterVec
	MessagesSentTotal prometheus.Counter
}

// New registers the collectors on the default registry once and returns
// the same instance on every call.
//
// Metrics:
//   - homies_actions_total{action,result}
//   - homies_feed_requests_total{result}
//   - homies_messages_sent_total
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ActionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "homies_actions_total",
					Help: "Relationship actions by outcome",
				},
				[]string{"action", "result"},
			),
			FeedRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "homies_feed_requests_total",
					Help: "Next-candidate requests by outcome",
				},
				[]string{"result"}, // ok, empty, error
			),
			MessagesSentTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "homies_messages_sent_total",
					Help: "Messages accepted by the messaging gate",
				},
			),
		}
	})
	return globalMetrics
}

// Action records the outcome of a relationship action.
func (m *Metrics) Action(action string, err error) {
	m.ActionsTotal.WithLabelValues(action, result(err)).Inc()
}

func (m *Metrics) Feed(result string) {
	m.FeedRequestsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) MessageSent() {
	m.MessagesSentTotal.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
