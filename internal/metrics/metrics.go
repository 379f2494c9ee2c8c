package metrics

import (
	"net/http"
	"strconv"

	"CoverBot/bot/journey"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Journey counts interpreter events on its own registry.
type Journey struct {
	registry    *prometheus.Registry
	started     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	responses   *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
}

func New() *Journey {
	m := &Journey{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverbot",
			Name:      "journeys_started_total",
			Help:      "Journeys started or reset.",
		}, []string{"product"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverbot",
			Name:      "step_transitions_total",
			Help:      "Step transitions by target step.",
		}, []string{"product", "to"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverbot",
			Name:      "responses_total",
			Help:      "Widget responses by widget and acceptance.",
		}, []string{"product", "widget", "accepted"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coverbot",
			Name:      "fallbacks_total",
			Help:      "Journeys diverted to the support fallback.",
		}, []string{"product", "reason"}),
	}
	m.registry.MustRegister(
		m.started,
		m.transitions,
		m.responses,
		m.fallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Journey) JourneyStarted(product string) {
	m.started.WithLabelValues(product).Inc()
}

// Transition is labelled by target only; from/to pairs would explode cardinality.
func (m *Journey) Transition(product string, _, to journey.StepID) {
	m.transitions.WithLabelValues(product, string(to)).Inc()
}

func (m *Journey) Response(product string, widget journey.WidgetType, accepted bool) {
	m.responses.WithLabelValues(product, string(widget), strconv.FormatBool(accepted)).Inc()
}

func (m *Journey) Fallback(product, reason string) {
	m.fallbacks.WithLabelValues(product, reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Journey) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
