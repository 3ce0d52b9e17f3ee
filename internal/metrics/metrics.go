// Package metrics exposes Prometheus counters for the telnet listener.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"telwire/pkg/telnet"
)

const otherLabel = "other"

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	connectionsTotal  prometheus.Counter
	activeConnections prometheus.Gauge
	rejectedTotal     prometheus.Counter
	eventsTotal       *prometheus.CounterVec
	negotiationsTotal *prometheus.CounterVec
	bytesReceived     prometheus.Counter
	bytesSent         prometheus.Counter
}

// New registers the collectors on a fresh registry under namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "telwire"
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of accepted telnet connections",
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of open telnet connections",
		}),

		rejectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_connections_total",
			Help:      "Connections turned away because every node was taken",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Telnet events produced by the parser, by kind",
		}, []string{"kind"}),

		negotiationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiations_total",
			Help:      "Negotiation commands received, by command and option",
		}, []string{"command", "option"}),

		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Raw bytes read from telnet peers",
		}),

		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Raw bytes written to telnet peers",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ConnectionOpened records an accepted connection.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsTotal.Inc()
	m.activeConnections.Inc()
}

// ConnectionClosed records a connection ending.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// ConnectionRejected records a connection refused for lack of a node.
func (m *Metrics) ConnectionRejected() {
	if m == nil {
		return
	}
	m.rejectedTotal.Inc()
}

// ObserveEvents counts a batch returned by Session.Receive.
func (m *Metrics) ObserveEvents(events []telnet.Event) {
	if m == nil {
		return
	}
	for _, ev := range events {
		m.eventsTotal.WithLabelValues(ev.Kind().String()).Inc()
		if neg, ok := ev.(telnet.NegotiationEvent); ok {
			m.negotiationsTotal.WithLabelValues(negotiationLabels(neg)).Inc()
		}
	}
}

// negotiationLabels keeps label values to a fixed set. Peers can send any
// command and option byte.
func negotiationLabels(neg telnet.NegotiationEvent) (command, option string) {
	command, option = otherLabel, otherLabel
	if neg.Command.IsNegotiation() {
		command = neg.Command.String()
	}
	if _, ok := telnet.OptionNames[neg.Option]; ok {
		option = neg.Option.String()
	}
	return command, option
}

// BytesReceived adds n to the received byte counter.
func (m *Metrics) BytesReceived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesReceived.Add(float64(n))
}

// BytesSent adds n to the sent byte counter.
func (m *Metrics) BytesSent(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesSent.Add(float64(n))
}
