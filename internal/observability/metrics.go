package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation engine and
// implements the simulator's RunRecorder interface so runs can drive the
// values directly.
type SimCollector struct {
	gatherer prometheus.Gatherer

	RunsTotal     *prometheus.CounterVec
	MessagesTotal *prometheus.CounterVec
	HopLatency    prometheus.Histogram

	Peers prometheus.Gauge
	Edges prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meshsim_runs_total",
		Help: "Total number of completed simulation runs, labeled by scenario.",
	}, []string{"scenario"})
	runs, err := registerCounterVec(reg, runs, "meshsim_runs_total")
	if err != nil {
		return nil, err
	}

	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meshsim_messages_total",
		Help: "Total number of simulated messages, labeled by delivery result.",
	}, []string{"result"})
	messages, err = registerCounterVec(reg, messages, "meshsim_messages_total")
	if err != nil {
		return nil, err
	}

	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "meshsim_hop_latency_seconds",
		Help:    "Mean per-hop latency of simulated messages in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	latency, err = registerHistogram(reg, latency, "meshsim_hop_latency_seconds")
	if err != nil {
		return nil, err
	}

	peers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "meshsim_peers",
		Help: "Peer count of the most recent simulation run.",
	}), "meshsim_peers")
	if err != nil {
		return nil, err
	}
	edges, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "meshsim_edges",
		Help: "Edge count of the most recent simulation run.",
	}), "meshsim_edges")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:      gatherer,
		RunsTotal:     runs,
		MessagesTotal: messages,
		HopLatency:    latency,
		Peers:         peers,
		Edges:         edges,
	}, nil
}

// RecordRun counts a completed run and updates the population gauges.
func (c *SimCollector) RecordRun(scenario string, peers, edges int) {
	if c == nil {
		return
	}
	if scenario == "" {
		scenario = "unknown"
	}
	if c.RunsTotal != nil {
		c.RunsTotal.WithLabelValues(scenario).Inc()
	}
	if c.Peers != nil {
		c.Peers.Set(float64(peers))
	}
	if c.Edges != nil {
		c.Edges.Set(float64(edges))
	}
}

// RecordMessage counts one simulated message by its delivery result.
func (c *SimCollector) RecordMessage(delivered bool) {
	if c == nil || c.MessagesTotal == nil {
		return
	}
	result := "dropped"
	if delivered {
		result = "delivered"
	}
	c.MessagesTotal.WithLabelValues(result).Inc()
}

// ObserveHopLatency records a per-hop latency observation in seconds.
func (c *SimCollector) ObserveHopLatency(seconds float64) {
	if c == nil || c.HopLatency == nil {
		return
	}
	c.HopLatency.Observe(seconds)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
