package core

import (
	"fmt"
	"time"

	"github.com/meshworks/mesh-simulator/model"
)

// ScenarioBuilder maps a named scenario to a concrete simulation
// configuration. The numbers are fixed policy: they describe what each
// venue realistically looks like, and callers who want different values
// construct a SimulatorConfig directly.
type ScenarioBuilder struct{}

// Build resolves a scenario into a runnable config. Unknown scenarios fall
// back to the coffee-shop profile so every defined scenario (and the zero
// value) yields a valid config.
func (ScenarioBuilder) Build(scenario model.Scenario) SimulatorConfig {
	switch scenario {
	case model.ScenarioConference:
		// Dense venue: big mesh, heavy traffic, congested airtime.
		return SimulatorConfig{
			PeerCount:   40,
			Duration:    30 * time.Second,
			Scenario:    model.ScenarioConference,
			Chaos:       ChaosConfig{Level: ChaosModerate},
			MessageRate: 4,
			Topology:    PresetMesh,
		}
	case model.ScenarioHackathon:
		// Mid-size crowd sitting in rows: chain-shaped reachability with
		// mild interference.
		return SimulatorConfig{
			PeerCount:   15,
			Duration:    20 * time.Second,
			Scenario:    model.ScenarioHackathon,
			Chaos:       ChaosConfig{Level: ChaosMild},
			MessageRate: 3,
			Topology:    PresetChain,
		}
	default:
		// Coffee shop: a small room where everyone hears everyone.
		return SimulatorConfig{
			PeerCount:   8,
			Duration:    15 * time.Second,
			Scenario:    model.ScenarioCoffeeShop,
			Chaos:       ChaosConfig{Level: ChaosMild},
			MessageRate: 2,
			Topology:    PresetMesh,
		}
	}
}

// BuildFor resolves a scenario but pins the peer count and duration, used
// by the convenience run entry point.
func (b ScenarioBuilder) BuildFor(peers int, scenario model.Scenario, duration time.Duration) (SimulatorConfig, error) {
	if !scenario.Valid() && scenario != "" {
		return SimulatorConfig{}, fmt.Errorf("unknown scenario %q", scenario)
	}
	cfg := b.Build(scenario)
	cfg.PeerCount = peers
	cfg.Duration = duration
	return cfg, nil
}
