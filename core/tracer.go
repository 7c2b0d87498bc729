package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/meshworks/mesh-simulator/model"
)

// DropReason classifies why a traced message never reached its recipient.
type DropReason string

const (
	// DropReasonChaos means the chaos engine dropped the packet mid-route.
	DropReasonChaos DropReason = "chaos"
	// DropReasonNoRoute means no path existed between sender and recipient.
	DropReasonNoRoute DropReason = "no_route"
	// DropReasonPeer means an offline or unreliable peer lost the packet;
	// the chaos engine made no decision.
	DropReasonPeer DropReason = "peer"
)

// HopRecord is one relay traversal inside a message trace. Records are
// ordered by call sequence: insertion order is traversal order.
type HopRecord struct {
	PeerID  model.PeerID
	Latency time.Duration
	Relayed bool
}

// MessageTrace tracks one logical message's journey across zero or more
// relays and its terminal outcome.
type MessageTrace struct {
	PacketID    string
	SenderID    model.PeerID
	RecipientID model.PeerID
	Hops        []HopRecord
	Delivered   bool
	Dropped     bool
	DropReason  DropReason
}

// MessageFlowTracer aggregates per-message traces for a single simulation
// run and derives delivery and congestion statistics from them. A tracer
// must not be shared between concurrent runs.
type MessageFlowTracer struct {
	traces map[string]*MessageTrace
	// order preserves trace creation order for stable reporting.
	order []string

	attempted int
	delivered int
}

// NewMessageFlowTracer builds an empty tracer.
func NewMessageFlowTracer() *MessageFlowTracer {
	return &MessageFlowTracer{traces: make(map[string]*MessageTrace)}
}

// StartTrace creates a trace keyed by the packet's ID and counts the
// message as attempted. Starting a duplicate ID is rejected so counters
// stay consistent.
func (t *MessageFlowTracer) StartTrace(pkt model.RoutablePacket) error {
	if _, exists := t.traces[pkt.ID]; exists {
		return fmt.Errorf("trace %q already started", pkt.ID)
	}
	t.traces[pkt.ID] = &MessageTrace{
		PacketID:    pkt.ID,
		SenderID:    pkt.SenderID,
		RecipientID: pkt.RecipientID,
	}
	t.order = append(t.order, pkt.ID)
	t.attempted++
	return nil
}

// RecordHop appends a hop record to the trace. Asking about an unknown
// message ID is an invariant violation fatal to that single operation; it
// never corrupts counters for other in-flight traces.
func (t *MessageFlowTracer) RecordHop(messageID string, peerID model.PeerID, latency time.Duration, relayed bool) error {
	trace, ok := t.traces[messageID]
	if !ok {
		return fmt.Errorf("record hop for %q: %w", messageID, ErrTraceNotFound)
	}
	trace.Hops = append(trace.Hops, HopRecord{PeerID: peerID, Latency: latency, Relayed: relayed})
	return nil
}

// MarkDelivered marks the trace's terminal state delivered.
func (t *MessageFlowTracer) MarkDelivered(messageID string) error {
	trace, ok := t.traces[messageID]
	if !ok {
		return fmt.Errorf("mark delivered for %q: %w", messageID, ErrTraceNotFound)
	}
	if trace.Delivered {
		return nil
	}
	trace.Delivered = true
	trace.Dropped = false
	trace.DropReason = ""
	t.delivered++
	return nil
}

// MarkDropped records a terminal drop with its reason.
func (t *MessageFlowTracer) MarkDropped(messageID string, reason DropReason) error {
	trace, ok := t.traces[messageID]
	if !ok {
		return fmt.Errorf("mark dropped for %q: %w", messageID, ErrTraceNotFound)
	}
	if trace.Delivered {
		return fmt.Errorf("mark dropped for %q: already delivered", messageID)
	}
	trace.Dropped = true
	trace.DropReason = reason
	return nil
}

// Trace returns the trace for a message ID, or nil if unknown.
func (t *MessageFlowTracer) Trace(messageID string) *MessageTrace {
	return t.traces[messageID]
}

// MessagesAttempted returns the number of traces started.
func (t *MessageFlowTracer) MessagesAttempted() int { return t.attempted }

// MessagesDelivered returns the number of traces marked delivered.
func (t *MessageFlowTracer) MessagesDelivered() int { return t.delivered }

// DeliveryRate returns delivered/attempted, or 0 when nothing was attempted.
func (t *MessageFlowTracer) DeliveryRate() float64 {
	if t.attempted == 0 {
		return 0
	}
	return float64(t.delivered) / float64(t.attempted)
}

// DroppedByReason counts terminal drops grouped by reason.
func (t *MessageFlowTracer) DroppedByReason() map[DropReason]int {
	out := make(map[DropReason]int)
	for _, id := range t.order {
		trace := t.traces[id]
		if trace.Dropped {
			out[trace.DropReason]++
		}
	}
	return out
}

// HopLatencyStats aggregates latency over every recorded hop. ok is false
// when no hops were recorded at all.
func (t *MessageFlowTracer) HopLatencyStats() (total, min, max time.Duration, count int, ok bool) {
	for _, id := range t.order {
		for _, hop := range t.traces[id].Hops {
			if count == 0 || hop.Latency < min {
				min = hop.Latency
			}
			if hop.Latency > max {
				max = hop.Latency
			}
			total += hop.Latency
			count++
		}
	}
	return total, min, max, count, count > 0
}

// Bottleneck flags a peer whose relay load or latency significantly exceeds
// its population, indicating a potential congestion point.
type Bottleneck struct {
	PeerID     model.PeerID
	RelayCount int
	AvgLatency time.Duration
}

// Bottleneck thresholds: a peer is flagged when its relay count exceeds
// three times the population median (with a floor so tiny runs don't flag
// everything), or its mean hop latency exceeds three times the median of
// the per-peer means.
const (
	bottleneckRelayFactor   = 3
	bottleneckLatencyFactor = 3
	bottleneckMinRelays     = 5
)

// DetectBottlenecks aggregates hop records across all traces by peer and
// returns the flagged peers, ordered by relay count descending.
func (t *MessageFlowTracer) DetectBottlenecks() []Bottleneck {
	type peerLoad struct {
		relays  int
		total   time.Duration
		touched int
	}
	loads := make(map[model.PeerID]*peerLoad)
	for _, id := range t.order {
		for _, hop := range t.traces[id].Hops {
			load := loads[hop.PeerID]
			if load == nil {
				load = &peerLoad{}
				loads[hop.PeerID] = load
			}
			if hop.Relayed {
				load.relays++
			}
			load.total += hop.Latency
			load.touched++
		}
	}
	if len(loads) == 0 {
		return nil
	}

	relayCounts := make([]int, 0, len(loads))
	avgLatencies := make([]time.Duration, 0, len(loads))
	for _, load := range loads {
		relayCounts = append(relayCounts, load.relays)
		avgLatencies = append(avgLatencies, load.total/time.Duration(load.touched))
	}
	relayMedian := medianInt(relayCounts)
	latencyMedian := medianDuration(avgLatencies)

	relayThreshold := relayMedian * bottleneckRelayFactor
	if relayThreshold < bottleneckMinRelays {
		relayThreshold = bottleneckMinRelays
	}

	var flagged []Bottleneck
	for peerID, load := range loads {
		avg := load.total / time.Duration(load.touched)
		overRelayed := load.relays > relayThreshold
		overLatency := latencyMedian > 0 && avg > latencyMedian*bottleneckLatencyFactor
		if overRelayed || overLatency {
			flagged = append(flagged, Bottleneck{PeerID: peerID, RelayCount: load.relays, AvgLatency: avg})
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].RelayCount != flagged[j].RelayCount {
			return flagged[i].RelayCount > flagged[j].RelayCount
		}
		return flagged[i].PeerID < flagged[j].PeerID
	})
	return flagged
}

// Medians take the lower middle element for even-length inputs. An outlier
// in a small population must not pull the baseline up to itself.
func medianInt(values []int) int {
	sort.Ints(values)
	return values[(len(values)-1)/2]
}

func medianDuration(values []time.Duration) time.Duration {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values[(len(values)-1)/2]
}
