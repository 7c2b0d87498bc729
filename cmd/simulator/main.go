package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/meshworks/mesh-simulator/core"
	"github.com/meshworks/mesh-simulator/internal/logging"
	"github.com/meshworks/mesh-simulator/internal/observability"
	"github.com/meshworks/mesh-simulator/model"
)

func main() {
	peers := flag.Int("peers", 0, "peer count (0 uses the scenario default)")
	scenario := flag.String("scenario", "coffee_shop", "scenario: coffee_shop | conference | hackathon")
	duration := flag.Duration("duration", 0, "simulated duration (0 uses the scenario default)")
	rate := flag.Float64("rate", 0, "message events per simulated second (0 uses the scenario default)")
	chaos := flag.String("chaos", "", "chaos level override: none | mild | moderate | severe")
	loss := flag.Float64("loss", -1, "explicit packet loss rate in [0,1]; overrides the level default")
	seed := flag.Int64("seed", 0, "random seed; 0 draws a fresh one")
	configPath := flag.String("config", "", "path to a JSON run configuration")
	suitePath := flag.String("suite", "", "path to a YAML suite of runs")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.Any("error", err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	sim := core.NewMeshSimulator(log)
	if *metricsAddr != "" {
		collector, err := observability.NewSimCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.Any("error", err))
			os.Exit(1)
		}
		sim.Metrics = collector
		go func() {
			http.Handle("/metrics", collector.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Error(ctx, "metrics listener stopped", logging.Any("error", err))
			}
		}()
	}

	if *suitePath != "" {
		if err := runSuite(ctx, sim, *suitePath); err != nil {
			log.Error(ctx, "suite failed", logging.Any("error", err))
			os.Exit(1)
		}
		return
	}

	cfg, err := resolveConfig(*configPath, *scenario, *peers, *duration, *rate, *chaos, *loss, *seed)
	if err != nil {
		log.Error(ctx, "config resolution failed", logging.Any("error", err))
		os.Exit(1)
	}

	report, err := sim.Run(ctx, cfg)
	if err != nil {
		log.Error(ctx, "simulation failed", logging.Any("error", err))
		os.Exit(1)
	}
	fmt.Print(report.Summary())
}

// resolveConfig layers CLI flags on top of either a JSON config file or the
// scenario defaults. Only explicitly-set flags override.
func resolveConfig(configPath, scenario string, peers int, duration time.Duration, rate float64, chaos string, loss float64, seed int64) (core.SimulatorConfig, error) {
	var cfg core.SimulatorConfig
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return core.SimulatorConfig{}, fmt.Errorf("open config %q: %w", configPath, err)
		}
		defer f.Close()
		cfg, err = core.LoadSimulatorConfig(f)
		if err != nil {
			return core.SimulatorConfig{}, err
		}
	} else {
		cfg = core.ScenarioBuilder{}.Build(scenarioFromFlag(scenario))
	}

	if peers > 0 {
		cfg.PeerCount = peers
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if rate > 0 {
		cfg.MessageRate = rate
	}
	if chaos != "" {
		cfg.Chaos.Level = chaosFromFlag(chaos)
	}
	if loss >= 0 {
		rate := loss
		cfg.Chaos.PacketLossRate = &rate
	}
	if seed != 0 {
		s := seed
		cfg.Seed = &s
	}
	return cfg, nil
}

func scenarioFromFlag(s string) model.Scenario {
	switch s {
	case "conference":
		return model.ScenarioConference
	case "hackathon":
		return model.ScenarioHackathon
	default:
		return model.ScenarioCoffeeShop
	}
}

func chaosFromFlag(s string) core.ChaosLevel {
	switch s {
	case "mild":
		return core.ChaosMild
	case "moderate":
		return core.ChaosModerate
	case "severe":
		return core.ChaosSevere
	default:
		return core.ChaosNone
	}
}
