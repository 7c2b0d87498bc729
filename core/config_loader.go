package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meshworks/mesh-simulator/model"
)

// internal JSON shapes - kept unexported so we're free to evolve them.
// Durations are expressed in (fractional) seconds so config files stay
// human-writable.
type simulatorConfigJSON struct {
	PeerCount       int      `json:"peer_count"`
	DurationSeconds float64  `json:"duration_seconds"`
	Scenario        string   `json:"scenario"`
	MessageRate     float64  `json:"message_rate"`
	Topology        string   `json:"topology"`
	Seed            *int64   `json:"seed"`
	Chaos           struct {
		Level          string   `json:"level"`
		PacketLossRate *float64 `json:"packet_loss_rate"`
	} `json:"chaos"`
}

// LoadSimulatorConfig reads a JSON run configuration from r. It fails only
// on JSON and structural errors; semantic validation happens in
// SimulatorConfig.Validate at run time, the same way directly-constructed
// configs are checked.
func LoadSimulatorConfig(r io.Reader) (SimulatorConfig, error) {
	var payload simulatorConfigJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return SimulatorConfig{}, fmt.Errorf("LoadSimulatorConfig: decode failed: %w", err)
	}

	cfg := SimulatorConfig{
		PeerCount:   payload.PeerCount,
		Duration:    time.Duration(payload.DurationSeconds * float64(time.Second)),
		Scenario:    scenarioFromString(payload.Scenario),
		MessageRate: payload.MessageRate,
		Topology:    presetFromString(payload.Topology),
		Seed:        payload.Seed,
		Chaos: ChaosConfig{
			Level:          levelFromString(payload.Chaos.Level),
			PacketLossRate: payload.Chaos.PacketLossRate,
		},
	}
	return cfg, nil
}

// scenarioFromString maps the JSON scenario string to a model.Scenario.
// Kept tolerant: unknown or empty values default to the coffee shop, the
// smallest and most forgiving venue.
func scenarioFromString(s string) model.Scenario {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conference":
		return model.ScenarioConference
	case "hackathon":
		return model.ScenarioHackathon
	case "coffee_shop", "coffeeshop", "coffee-shop", "":
		return model.ScenarioCoffeeShop
	default:
		return model.ScenarioCoffeeShop
	}
}

func presetFromString(s string) TopologyPreset {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chain", "line":
		return PresetChain
	case "mesh", "":
		return PresetMesh
	default:
		return PresetMesh
	}
}

func levelFromString(s string) ChaosLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mild":
		return ChaosMild
	case "moderate":
		return ChaosModerate
	case "severe":
		return ChaosSevere
	case "none", "":
		return ChaosNone
	default:
		return ChaosNone
	}
}
