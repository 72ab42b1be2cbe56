package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus counters a Manager updates. The counter
// types and label shape follow linchenxuan-strix's metrics package
// (CounterVec per concern, label set kept small); that package always
// registers against the default registry, so the registerer parameter
// here is not grounded on it. It exists so tests and multi-Manager
// processes can register against an isolated prometheus.Registerer
// instead of colliding on the default one.
type metrics struct {
	drops         *prometheus.CounterVec
	processed     *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		drops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kolog",
			Subsystem: "queue",
			Name:      "drops_total",
			Help:      "Records dropped by the queue manager, by logger name and reason.",
		}, []string{"logger", "reason"}),
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kolog",
			Subsystem: "queue",
			Name:      "processed_total",
			Help:      "Records successfully dispatched to at least one handler, by logger name.",
		}, []string{"logger"}),
		handlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kolog",
			Subsystem: "queue",
			Name:      "handler_errors_total",
			Help:      "Errors returned by a handler's async emit, by handler id.",
		}, []string{"handler"}),
	}
}
