package core

import (
	"math/rand"
	"time"
)

// ChaosLevel names a fault-injection severity. Levels order strictly:
// none < mild < moderate < severe in both loss rate and injected latency.
type ChaosLevel string

const (
	ChaosNone     ChaosLevel = "none"
	ChaosMild     ChaosLevel = "mild"
	ChaosModerate ChaosLevel = "moderate"
	ChaosSevere   ChaosLevel = "severe"
)

// chaosProfile carries the per-level defaults.
type chaosProfile struct {
	lossRate   float64
	minLatency time.Duration
	maxLatency time.Duration
}

var chaosProfiles = map[ChaosLevel]chaosProfile{
	ChaosNone:     {lossRate: 0, minLatency: 0, maxLatency: 0},
	ChaosMild:     {lossRate: 0.05, minLatency: 10 * time.Millisecond, maxLatency: 100 * time.Millisecond},
	ChaosModerate: {lossRate: 0.15, minLatency: 100 * time.Millisecond, maxLatency: 900 * time.Millisecond},
	ChaosSevere:   {lossRate: 0.40, minLatency: 500 * time.Millisecond, maxLatency: 3 * time.Second},
}

// ChaosConfig parameterises a ChaosEngine. A named level supplies default
// loss and latency ranges; an explicit PacketLossRate overrides the level's
// loss default but never its latency range.
type ChaosConfig struct {
	Level ChaosLevel `json:"level" yaml:"level"`
	// PacketLossRate, when set, is the per-packet drop probability in
	// [0,1]. Nil means "use the level default".
	PacketLossRate *float64 `json:"packet_loss_rate,omitempty" yaml:"packet_loss_rate,omitempty"`
}

// Enabled reports whether this configuration injects any faults.
func (c ChaosConfig) Enabled() bool {
	return c.Level != "" && c.Level != ChaosNone
}

// lossRate resolves the effective drop probability.
func (c ChaosConfig) lossRate() float64 {
	if c.PacketLossRate != nil {
		rate := *c.PacketLossRate
		if rate < 0 {
			return 0
		}
		if rate > 1 {
			return 1
		}
		return rate
	}
	return chaosProfiles[c.levelOrNone()].lossRate
}

func (c ChaosConfig) levelOrNone() ChaosLevel {
	if _, ok := chaosProfiles[c.Level]; ok {
		return c.Level
	}
	return ChaosNone
}

// ChaosEngine is a stateless fault-injection policy: every call is an
// independent stochastic decision parameterised by the immutable config.
type ChaosEngine struct {
	cfg ChaosConfig
	rng *rand.Rand
}

// NewChaosEngine builds an engine for the given config and random source.
func NewChaosEngine(cfg ChaosConfig, rng *rand.Rand) *ChaosEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &ChaosEngine{cfg: cfg, rng: rng}
}

// ShouldDropPacket performs one Bernoulli trial with the effective loss
// rate. A none-level config without an override never drops; an explicit
// rate of 1.0 always drops.
func (e *ChaosEngine) ShouldDropPacket() bool {
	rate := e.cfg.lossRate()
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	return e.rng.Float64() < rate
}

// InjectLatency draws a latency uniformly from the level's range. The range
// comes from the level alone; a loss-rate override does not touch it.
func (e *ChaosEngine) InjectLatency() time.Duration {
	p := chaosProfiles[e.cfg.levelOrNone()]
	if p.maxLatency <= p.minLatency {
		return p.minLatency
	}
	span := p.maxLatency - p.minLatency
	return p.minLatency + time.Duration(e.rng.Int63n(int64(span)))
}
