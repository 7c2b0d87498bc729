package core

import (
	"testing"
	"time"

	"github.com/meshworks/mesh-simulator/model"
)

func TestScenarioBuilderCoversAllScenarios(t *testing.T) {
	var builder ScenarioBuilder
	for _, scenario := range model.Scenarios() {
		cfg := builder.Build(scenario)
		if cfg.PeerCount <= 0 {
			t.Errorf("%s: PeerCount = %d, want > 0", scenario, cfg.PeerCount)
		}
		if cfg.Duration <= 0 {
			t.Errorf("%s: Duration = %v, want > 0", scenario, cfg.Duration)
		}
		if cfg.MessageRate <= 0 {
			t.Errorf("%s: MessageRate = %v, want > 0", scenario, cfg.MessageRate)
		}
		if cfg.Scenario != scenario {
			t.Errorf("%s: config carries scenario %s", scenario, cfg.Scenario)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: built config failed validation: %v", scenario, err)
		}
	}
}

func TestScenarioBuilderConferenceIsDense(t *testing.T) {
	var builder ScenarioBuilder
	conference := builder.Build(model.ScenarioConference)
	coffee := builder.Build(model.ScenarioCoffeeShop)
	if conference.PeerCount <= coffee.PeerCount {
		t.Errorf("conference peers (%d) not above coffee shop (%d)", conference.PeerCount, coffee.PeerCount)
	}
	if conference.PeerCount <= 30 {
		t.Errorf("conference peers = %d, want > 30", conference.PeerCount)
	}
}

func TestScenarioBuilderUnknownFallsBack(t *testing.T) {
	var builder ScenarioBuilder
	cfg := builder.Build(model.Scenario("underwater"))
	if cfg.Scenario != model.ScenarioCoffeeShop {
		t.Errorf("unknown scenario resolved to %s, want coffee_shop", cfg.Scenario)
	}
}

func TestScenarioBuilderBuildFor(t *testing.T) {
	var builder ScenarioBuilder
	cfg, err := builder.BuildFor(12, model.ScenarioHackathon, 5*time.Second)
	if err != nil {
		t.Fatalf("BuildFor: %v", err)
	}
	if cfg.PeerCount != 12 || cfg.Duration != 5*time.Second {
		t.Errorf("BuildFor did not pin peers/duration: %+v", cfg)
	}
	if cfg.Topology != PresetChain {
		t.Errorf("hackathon topology = %v, want chain", cfg.Topology)
	}

	if _, err := builder.BuildFor(12, model.Scenario("underwater"), 5*time.Second); err == nil {
		t.Fatal("BuildFor accepted an unknown scenario")
	}
}
