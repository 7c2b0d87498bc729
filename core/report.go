package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/meshworks/mesh-simulator/model"
)

// ChaosStats aggregates the fault-injection outcomes of one run. It is only
// attached to a report when the run used a non-none chaos configuration.
type ChaosStats struct {
	Level          ChaosLevel
	PacketsDropped int
	DroppedByChaos int
	DroppedNoRoute int
	MinHopLatency  time.Duration
	AvgHopLatency  time.Duration
	MaxHopLatency  time.Duration
}

// SimulationReport is the terminal artifact of a run: delivery outcomes,
// chaos statistics, and detected bottlenecks.
type SimulationReport struct {
	Scenario          model.Scenario
	PeerCount         int
	EdgeCount         int
	MessagesAttempted int
	MessagesDelivered int
	DeliveryRate      float64
	// DroppedByPeer counts losses caused by offline or unreliable peers.
	// These are populated regardless of chaos level; the chaos engine is
	// not involved in them.
	DroppedByPeer int
	Chaos         *ChaosStats
	Bottlenecks       []Bottleneck
	Elapsed           time.Duration
}

// Verdict classifies the run's delivery rate into a coarse human-readable
// bucket, mirroring how link quality is bucketed elsewhere in the system.
func (r *SimulationReport) Verdict() string {
	switch {
	case r.MessagesAttempted == 0:
		return "INCONCLUSIVE - no traffic generated"
	case r.DeliveryRate >= 0.99:
		return "EXCELLENT - mesh is fully healthy"
	case r.DeliveryRate >= 0.90:
		return "GOOD - minor loss under current conditions"
	case r.DeliveryRate >= 0.60:
		return "DEGRADED - noticeable loss, investigate relays"
	default:
		return "POOR - mesh is failing under these conditions"
	}
}

// Summary renders the multi-line human-readable report.
func (r *SimulationReport) Summary() string {
	var b strings.Builder
	b.WriteString("==== MESH SIMULATION REPORT ====\n")
	fmt.Fprintf(&b, "Scenario:   %s\n", r.Scenario)
	fmt.Fprintf(&b, "Peers:      %d (edges: %d)\n", r.PeerCount, r.EdgeCount)
	fmt.Fprintf(&b, "Messages:   %d attempted, %d delivered\n", r.MessagesAttempted, r.MessagesDelivered)
	fmt.Fprintf(&b, "Delivery:   %.1f%%\n", r.DeliveryRate*100)

	if r.DroppedByPeer > 0 {
		fmt.Fprintf(&b, "Peer loss:  %d dropped by offline or unreliable peers\n", r.DroppedByPeer)
	}
	if r.Chaos != nil {
		fmt.Fprintf(&b, "Chaos:      level=%s dropped=%d (chaos=%d, no-route=%d)\n",
			r.Chaos.Level, r.Chaos.PacketsDropped, r.Chaos.DroppedByChaos, r.Chaos.DroppedNoRoute)
		fmt.Fprintf(&b, "Latency:    min=%s avg=%s max=%s\n",
			r.Chaos.MinHopLatency, r.Chaos.AvgHopLatency, r.Chaos.MaxHopLatency)
	}

	if len(r.Bottlenecks) == 0 {
		b.WriteString("Bottlenecks: none detected\n")
	} else {
		b.WriteString("Bottlenecks:\n")
		for _, bn := range r.Bottlenecks {
			fmt.Fprintf(&b, "  - %s relays=%d avg_latency=%s\n", bn.PeerID, bn.RelayCount, bn.AvgLatency)
		}
	}

	fmt.Fprintf(&b, "VERDICT: %s\n", r.Verdict())
	return b.String()
}
