// Package exporter polls Minecraft servers and exposes their status as
// Prometheus metrics.
package exporter

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/realDragonium/mcquery/query"
)

const namespace = "mcquery"

const (
	resultSuccess    = "success"
	resultConnection = "connection_error"
	resultProtocol   = "protocol_error"
	resultTimeout    = "timeout"
	resultOther      = "error"
)

var queryResults = []string{resultSuccess, resultConnection, resultProtocol, resultTimeout, resultOther}

type Metrics struct {
	Up              *prometheus.GaugeVec
	PlayersOnline   *prometheus.GaugeVec
	PlayersMax      *prometheus.GaugeVec
	Latency         *prometheus.GaugeVec
	ProtocolVersion *prometheus.GaugeVec
	Queries         *prometheus.CounterVec

	mu       sync.Mutex
	versions map[string]string
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Up: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "up",
			Help:      "Whether the last status query of the target succeeded",
		}, []string{"target"}),
		PlayersOnline: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online",
			Help:      "The number of players online as reported by the target",
		}, []string{"target"}),
		PlayersMax: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_max",
			Help:      "The player limit as reported by the target",
		}, []string{"target"}),
		Latency: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latency_seconds",
			Help:      "Duration of the last status query of the target",
		}, []string{"target"}),
		ProtocolVersion: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "protocol_version",
			Help:      "The protocol version the target reports",
		}, []string{"target", "version"}),
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "The total number of status queries by result",
		}, []string{"target", "result"}),
		versions: make(map[string]string),
	}
}

func (m *Metrics) Observe(target string, result query.Result) {
	m.Up.WithLabelValues(target).Set(1)
	m.PlayersOnline.WithLabelValues(target).Set(float64(result.OnlinePlayers()))
	m.PlayersMax.WithLabelValues(target).Set(float64(result.MaxPlayers()))
	m.Latency.WithLabelValues(target).Set(result.Latency().Seconds())
	m.setProtocolVersion(target, result.Version(), result.ProtocolVersion())
	m.Queries.WithLabelValues(target, resultSuccess).Inc()
}

// ObserveFailure marks target as down. Player and latency gauges keep their
// last value.
func (m *Metrics) ObserveFailure(target string, err error) {
	m.Up.WithLabelValues(target).Set(0)
	m.Queries.WithLabelValues(target, resultLabel(err)).Inc()
}

// Forget removes every series of target.
func (m *Metrics) Forget(target string) {
	m.Up.DeleteLabelValues(target)
	m.PlayersOnline.DeleteLabelValues(target)
	m.PlayersMax.DeleteLabelValues(target)
	m.Latency.DeleteLabelValues(target)
	m.deleteProtocolVersion(target)
	for _, result := range queryResults {
		m.Queries.DeleteLabelValues(target, result)
	}
}

// setProtocolVersion keeps a single series per target, the old one is
// dropped when the reported version name changes.
func (m *Metrics) setProtocolVersion(target, version string, protocol int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.versions[target]; ok && old != version {
		m.ProtocolVersion.DeleteLabelValues(target, old)
	}
	m.versions[target] = version
	m.ProtocolVersion.WithLabelValues(target, version).Set(float64(protocol))
}

func (m *Metrics) deleteProtocolVersion(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version, ok := m.versions[target]; ok {
		m.ProtocolVersion.DeleteLabelValues(target, version)
		delete(m.versions, target)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, query.ErrConnection):
		return resultConnection
	case errors.Is(err, query.ErrProtocol):
		return resultProtocol
	case errors.Is(err, query.ErrTimeout):
		return resultTimeout
	}
	return resultOther
}
