package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshworks/mesh-simulator/core"
)

// suiteYAML is the on-disk shape of a multi-run suite file. Durations are in
// fractional seconds, matching the JSON config loader.
type suiteYAML struct {
	Runs []suiteRunYAML `yaml:"runs"`
}

type suiteRunYAML struct {
	Name            string  `yaml:"name"`
	PeerCount       int     `yaml:"peer_count"`
	DurationSeconds float64 `yaml:"duration_seconds"`
	Scenario        string  `yaml:"scenario"`
	MessageRate     float64 `yaml:"message_rate"`
	Topology        string  `yaml:"topology"`
	Seed            *int64  `yaml:"seed"`
	Chaos           struct {
		Level          string   `yaml:"level"`
		PacketLossRate *float64 `yaml:"packet_loss_rate"`
	} `yaml:"chaos"`
}

// loadSuite parses a YAML suite file into named run configs. Fields that a
// run leaves unset fall back to its scenario's defaults.
func loadSuite(path string) ([]string, []core.SimulatorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open suite %q: %w", path, err)
	}
	var suite suiteYAML
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, nil, fmt.Errorf("parse suite %q: %w", path, err)
	}
	if len(suite.Runs) == 0 {
		return nil, nil, fmt.Errorf("suite %q defines no runs", path)
	}

	names := make([]string, 0, len(suite.Runs))
	configs := make([]core.SimulatorConfig, 0, len(suite.Runs))
	for i, run := range suite.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		names = append(names, name)
		configs = append(configs, suiteRunToConfig(run))
	}
	return names, configs, nil
}

func suiteRunToConfig(run suiteRunYAML) core.SimulatorConfig {
	scenario := scenarioFromFlag(run.Scenario)
	cfg := core.ScenarioBuilder{}.Build(scenario)
	if run.PeerCount > 0 {
		cfg.PeerCount = run.PeerCount
	}
	if run.DurationSeconds > 0 {
		cfg.Duration = time.Duration(run.DurationSeconds * float64(time.Second))
	}
	if run.MessageRate > 0 {
		cfg.MessageRate = run.MessageRate
	}
	if run.Topology != "" {
		cfg.Topology = topologyFromFlag(run.Topology)
	}
	if run.Chaos.Level != "" {
		cfg.Chaos.Level = chaosFromFlag(run.Chaos.Level)
	}
	if run.Chaos.PacketLossRate != nil {
		cfg.Chaos.PacketLossRate = run.Chaos.PacketLossRate
	}
	cfg.Seed = run.Seed
	return cfg
}

func topologyFromFlag(s string) core.TopologyPreset {
	switch s {
	case "chain", "line":
		return core.PresetChain
	default:
		return core.PresetMesh
	}
}

// runSuite executes every run in the suite sequentially and prints each
// summary. The first configuration error aborts the suite; individual runs
// have no other failure mode.
func runSuite(ctx context.Context, sim *core.MeshSimulator, path string) error {
	names, configs, err := loadSuite(path)
	if err != nil {
		return err
	}
	for i, cfg := range configs {
		report, err := sim.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("suite run %q: %w", names[i], err)
		}
		fmt.Printf("--- %s ---\n%s\n", names[i], report.Summary())
	}
	return nil
}
