package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// intentsTotal counts classified user turns. emotion is "" for
	// non-emotion intents, which keeps the label set closed.
	intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intents_total",
			Help: "Classified user turns by intent type and emotion.",
		},
		[]string{"type", "emotion"},
	)

	// persistenceFailures counts swallowed storage errors by operation
	// (load, save, session_get, session_create, session_append).
	persistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_persistence_failures_total",
			Help: "Storage failures logged and suppressed by the context manager.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(intentsTotal, persistenceFailures)
}
