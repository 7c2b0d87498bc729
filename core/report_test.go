package core

import (
	"strings"
	"testing"
	"time"

	"github.com/meshworks/mesh-simulator/model"
)

func TestReportVerdictBuckets(t *testing.T) {
	for _, tc := range []struct {
		name      string
		attempted int
		rate      float64
		want      string
	}{
		{name: "no traffic", attempted: 0, rate: 0, want: "INCONCLUSIVE"},
		{name: "perfect", attempted: 100, rate: 1.0, want: "EXCELLENT"},
		{name: "boundary excellent", attempted: 100, rate: 0.99, want: "EXCELLENT"},
		{name: "good", attempted: 100, rate: 0.95, want: "GOOD"},
		{name: "boundary good", attempted: 100, rate: 0.90, want: "GOOD"},
		{name: "degraded", attempted: 100, rate: 0.75, want: "DEGRADED"},
		{name: "boundary degraded", attempted: 100, rate: 0.60, want: "DEGRADED"},
		{name: "poor", attempted: 100, rate: 0.20, want: "POOR"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := SimulationReport{MessagesAttempted: tc.attempted, DeliveryRate: tc.rate}
			if got := r.Verdict(); !strings.HasPrefix(got, tc.want) {
				t.Errorf("Verdict() = %q, want prefix %q", got, tc.want)
			}
		})
	}
}

func TestReportSummaryMarkers(t *testing.T) {
	r := SimulationReport{
		Scenario:          model.ScenarioCoffeeShop,
		PeerCount:         8,
		EdgeCount:         28,
		MessagesAttempted: 30,
		MessagesDelivered: 29,
		DeliveryRate:      29.0 / 30.0,
		Elapsed:           15 * time.Second,
	}
	summary := r.Summary()

	for _, want := range []string{
		"==== MESH SIMULATION REPORT ====",
		"VERDICT: ",
		"coffee_shop",
		"30 attempted, 29 delivered",
		"Bottlenecks: none detected",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "Chaos:") {
		t.Error("Summary() printed a chaos section without chaos stats")
	}
	if strings.Contains(summary, "Peer loss:") {
		t.Error("Summary() printed a peer-loss line without peer drops")
	}
}

func TestReportSummaryPeerLoss(t *testing.T) {
	r := SimulationReport{
		Scenario:          model.ScenarioCoffeeShop,
		PeerCount:         8,
		MessagesAttempted: 30,
		MessagesDelivered: 26,
		DeliveryRate:      26.0 / 30.0,
		DroppedByPeer:     4,
	}
	if summary := r.Summary(); !strings.Contains(summary, "Peer loss:  4 dropped") {
		t.Errorf("Summary() missing peer-loss line:\n%s", summary)
	}
}

func TestReportSummaryWithChaosAndBottlenecks(t *testing.T) {
	r := SimulationReport{
		Scenario:          model.ScenarioConference,
		PeerCount:         40,
		EdgeCount:         780,
		MessagesAttempted: 120,
		MessagesDelivered: 95,
		DeliveryRate:      95.0 / 120.0,
		Chaos: &ChaosStats{
			Level:          ChaosModerate,
			PacketsDropped: 25,
			DroppedByChaos: 22,
			DroppedNoRoute: 3,
			MinHopLatency:  100 * time.Millisecond,
			AvgHopLatency:  420 * time.Millisecond,
			MaxHopLatency:  880 * time.Millisecond,
		},
		Bottlenecks: []Bottleneck{
			{PeerID: "relay-hub", RelayCount: 60, AvgLatency: 500 * time.Millisecond},
		},
	}
	summary := r.Summary()

	for _, want := range []string{
		"level=moderate",
		"dropped=25 (chaos=22, no-route=3)",
		"relay-hub relays=60",
		"VERDICT: DEGRADED",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() missing %q:\n%s", want, summary)
		}
	}
}
