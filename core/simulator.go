package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meshworks/mesh-simulator/internal/logging"
	"github.com/meshworks/mesh-simulator/model"
	"github.com/meshworks/mesh-simulator/timectrl"
)

var validate = validator.New()

// SimulatorConfig describes one simulation run.
type SimulatorConfig struct {
	PeerCount int            `json:"peer_count" yaml:"peer_count" validate:"gt=0"`
	Duration  time.Duration  `json:"duration" yaml:"duration" validate:"gt=0"`
	Scenario  model.Scenario `json:"scenario" yaml:"scenario"`
	Chaos     ChaosConfig    `json:"chaos" yaml:"chaos"`
	// MessageRate is the number of send events per simulated second.
	MessageRate float64 `json:"message_rate" yaml:"message_rate" validate:"gt=0"`
	// Topology defaults to a full mesh when empty.
	Topology TopologyPreset `json:"topology,omitempty" yaml:"topology,omitempty"`
	// Seed makes a run reproducible. Nil draws a fresh seed, which the
	// report's log line records so any run can be replayed.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Validate checks the config and reports the first violation as a
// ConfigError. It runs before any peer or topology construction.
func (c SimulatorConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{Field: fe.Field(), Reason: fmt.Sprintf("failed %q constraint", fe.Tag())}
		}
		return &ConfigError{Field: "config", Reason: err.Error()}
	}
	if c.Scenario != "" && !c.Scenario.Valid() {
		return &ConfigError{Field: "Scenario", Reason: fmt.Sprintf("unknown scenario %q", c.Scenario)}
	}
	if c.Topology != "" && c.Topology != PresetMesh && c.Topology != PresetChain {
		return &ConfigError{Field: "Topology", Reason: fmt.Sprintf("unknown preset %q", c.Topology)}
	}
	if c.Chaos.PacketLossRate != nil {
		if rate := *c.Chaos.PacketLossRate; rate < 0 || rate > 1 {
			return &ConfigError{Field: "Chaos.PacketLossRate", Reason: fmt.Sprintf("must be within [0,1], got %v", rate)}
		}
	}
	return nil
}

// RunRecorder receives aggregate outcomes of completed runs. The
// observability collector implements it; a nil recorder is skipped.
type RunRecorder interface {
	RecordRun(scenario string, peers, edges int)
	RecordMessage(delivered bool)
	ObserveHopLatency(seconds float64)
}

// MeshSimulator orchestrates simulation runs. Every run owns its own
// topology controller, tracer, and chaos engine; a single simulator value
// can serve concurrent Run calls because it keeps no per-run state.
type MeshSimulator struct {
	log     logging.Logger
	builder ScenarioBuilder

	// Identity supplies per-peer identities; nil uses the local provider.
	Identity IdentityProvider
	// Metrics, when set, receives aggregate run outcomes.
	Metrics RunRecorder
}

// NewMeshSimulator builds a simulator that logs through the given logger.
func NewMeshSimulator(log logging.Logger) *MeshSimulator {
	if log == nil {
		log = logging.Noop()
	}
	return &MeshSimulator{log: log}
}

// RunScenario is a convenience entry point that resolves a config through
// the scenario builder before running it.
func (s *MeshSimulator) RunScenario(ctx context.Context, peers int, scenario model.Scenario, duration time.Duration) (*SimulationReport, error) {
	cfg, err := s.builder.BuildFor(peers, scenario, duration)
	if err != nil {
		return nil, &ConfigError{Field: "Scenario", Reason: err.Error()}
	}
	return s.Run(ctx, cfg)
}

// Run executes one simulation run and returns its report. The run is pure
// logical-time computation: it never blocks proportionally to the simulated
// duration. Invalid configs fail fast with a ConfigError and no partial
// state; per-message routing and chaos outcomes are always folded into the
// report, never surfaced as errors.
func (s *MeshSimulator) Run(ctx context.Context, cfg SimulatorConfig) (*SimulationReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx, run := logging.WithRunLogger(ctx, s.log)

	seed := resolveSeed(cfg.Seed)
	rng := rand.New(rand.NewSource(seed))

	tracerProvider := otel.Tracer("meshsim")
	ctx, span := tracerProvider.Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.String("scenario", string(cfg.Scenario)),
		attribute.Int("peer_count", cfg.PeerCount),
		attribute.Int64("seed", seed),
	))
	defer span.End()

	started := time.Now()
	run.Info(ctx, "simulation starting",
		logging.String("scenario", string(cfg.Scenario)),
		logging.Int("peers", cfg.PeerCount),
		logging.String("chaos", string(cfg.Chaos.levelOrNone())),
		logging.Int64("seed", seed),
	)

	// Population and topology.
	factory := NewVirtualPeerFactory(rng, s.Identity)
	peers := factory.PopulationFor(cfg.Scenario, cfg.PeerCount)

	topo := NewTopologyController()
	if err := topo.AddPeers(peers); err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}
	preset := cfg.Topology
	if preset == "" {
		preset = PresetMesh
	}
	if err := topo.Apply(preset); err != nil {
		return nil, fmt.Errorf("apply topology: %w", err)
	}

	chaos := NewChaosEngine(cfg.Chaos, rng)
	flow := NewMessageFlowTracer()

	timeline, err := timectrl.NewTimeline(cfg.Duration, cfg.MessageRate)
	if err != nil {
		return nil, &ConfigError{Field: "Duration", Reason: err.Error()}
	}

	dropped := 0
	droppedChaos := 0
	droppedNoRoute := 0
	droppedPeer := 0

	replayErr := timectrl.Replay(ctx, timeline.Times(), timectrl.Accelerated, func(i int, at time.Duration) {
		sender, recipient := pickPair(rng, peers)
		pkt := model.RoutablePacket{
			ID:          uuid.NewString(),
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Payload:     []byte("simulated payload"),
			Type:        model.PacketTypeMessage,
		}
		if err := flow.StartTrace(pkt); err != nil {
			run.Warn(ctx, "duplicate packet id, skipping event", logging.String("packet_id", pkt.ID))
			return
		}

		outcome := s.routeMessage(topo, chaos, flow, rng, pkt)
		switch outcome {
		case routeDelivered:
			if err := flow.MarkDelivered(pkt.ID); err != nil {
				run.Warn(ctx, "mark delivered failed", logging.String("packet_id", pkt.ID), logging.Any("error", err))
			}
		case routeDroppedChaos:
			dropped++
			droppedChaos++
			_ = flow.MarkDropped(pkt.ID, DropReasonChaos)
		case routeNoPath:
			dropped++
			droppedNoRoute++
			_ = flow.MarkDropped(pkt.ID, DropReasonNoRoute)
		case routeDroppedPeer:
			droppedPeer++
			_ = flow.MarkDropped(pkt.ID, DropReasonPeer)
		}
	})
	if replayErr != nil {
		return nil, fmt.Errorf("run cancelled: %w", replayErr)
	}

	report := &SimulationReport{
		Scenario:          cfg.Scenario,
		PeerCount:         topo.PeerCount(),
		EdgeCount:         topo.EdgeCount(),
		MessagesAttempted: flow.MessagesAttempted(),
		MessagesDelivered: flow.MessagesDelivered(),
		DeliveryRate:      flow.DeliveryRate(),
		DroppedByPeer:     droppedPeer,
		Bottlenecks:       flow.DetectBottlenecks(),
		Elapsed:           time.Since(started),
	}
	if cfg.Chaos.Enabled() {
		stats := &ChaosStats{
			Level:          cfg.Chaos.levelOrNone(),
			PacketsDropped: dropped,
			DroppedByChaos: droppedChaos,
			DroppedNoRoute: droppedNoRoute,
		}
		if total, min, max, count, ok := flow.HopLatencyStats(); ok {
			stats.MinHopLatency = min
			stats.MaxHopLatency = max
			stats.AvgHopLatency = total / time.Duration(count)
		}
		report.Chaos = stats
	}

	s.publishMetrics(cfg, report, flow)

	run.Info(ctx, "simulation finished",
		logging.Int("attempted", report.MessagesAttempted),
		logging.Int("delivered", report.MessagesDelivered),
		logging.Any("delivery_rate", report.DeliveryRate),
		logging.Any("elapsed", report.Elapsed),
	)
	return report, nil
}

type routeOutcome int

const (
	routeDelivered routeOutcome = iota
	routeDroppedChaos
	routeDroppedPeer
	routeNoPath
)

// Behavioral per-hop adjustments. Behavior is advisory from the peer's
// perspective; the simulator applies it while routing.
const (
	slowPeerExtraLatencyMin = 50 * time.Millisecond
	slowPeerExtraLatencyMax = 250 * time.Millisecond
	unreliableExtraDropRate = 0.10
)

// routeMessage walks the packet along the shortest path from sender to
// recipient, consulting the chaos engine at every hop. A drop at any hop
// terminates the journey; no further hops are recorded for it.
func (s *MeshSimulator) routeMessage(topo *TopologyController, chaos *ChaosEngine, flow *MessageFlowTracer, rng *rand.Rand, pkt model.RoutablePacket) routeOutcome {
	path, err := topo.FindPath(pkt.SenderID, pkt.RecipientID)
	if err != nil {
		return routeNoPath
	}

	// path[0] is the sender; every later element receives the packet once.
	for i := 1; i < len(path); i++ {
		hopPeer := topo.Peer(path[i])
		relayed := i < len(path)-1

		if !hopPeer.Online {
			return routeDroppedPeer
		}
		if chaos.ShouldDropPacket() {
			return routeDroppedChaos
		}
		if hopPeer.Behavior == model.BehaviorUnreliable && rng.Float64() < unreliableExtraDropRate {
			return routeDroppedPeer
		}

		latency := chaos.InjectLatency()
		if hopPeer.Behavior == model.BehaviorSlow {
			span := slowPeerExtraLatencyMax - slowPeerExtraLatencyMin
			latency += slowPeerExtraLatencyMin + time.Duration(rng.Int63n(int64(span)))
		}
		_ = flow.RecordHop(pkt.ID, hopPeer.ID, latency, relayed)
	}
	return routeDelivered
}

func (s *MeshSimulator) publishMetrics(cfg SimulatorConfig, report *SimulationReport, flow *MessageFlowTracer) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.RecordRun(string(cfg.Scenario), report.PeerCount, report.EdgeCount)
	for i := 0; i < report.MessagesDelivered; i++ {
		s.Metrics.RecordMessage(true)
	}
	for i := 0; i < report.MessagesAttempted-report.MessagesDelivered; i++ {
		s.Metrics.RecordMessage(false)
	}
	if total, _, _, count, ok := flow.HopLatencyStats(); ok && count > 0 {
		s.Metrics.ObserveHopLatency((total / time.Duration(count)).Seconds())
	}
}

// pickPair chooses a uniformly random distinct sender/recipient pair.
func pickPair(rng *rand.Rand, peers []*VirtualPeer) (*VirtualPeer, *VirtualPeer) {
	sender := peers[rng.Intn(len(peers))]
	if len(peers) == 1 {
		return sender, sender
	}
	for {
		recipient := peers[rng.Intn(len(peers))]
		if recipient.ID != sender.ID {
			return sender, recipient
		}
	}
}

func resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}
