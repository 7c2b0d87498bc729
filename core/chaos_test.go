package core

import (
	"math/rand"
	"testing"
	"time"
)

func chaosEngine(level ChaosLevel, seed int64) *ChaosEngine {
	return NewChaosEngine(ChaosConfig{Level: level}, rand.New(rand.NewSource(seed)))
}

func TestChaosNoneNeverDrops(t *testing.T) {
	eng := chaosEngine(ChaosNone, 1)
	for i := 0; i < 100; i++ {
		if eng.ShouldDropPacket() {
			t.Fatalf("none-level engine dropped a packet on call %d", i)
		}
	}
}

func TestChaosFullLossAlwaysDrops(t *testing.T) {
	rate := 1.0
	eng := NewChaosEngine(ChaosConfig{Level: ChaosMild, PacketLossRate: &rate}, rand.New(rand.NewSource(2)))
	for i := 0; i < 100; i++ {
		if !eng.ShouldDropPacket() {
			t.Fatalf("engine with loss rate 1.0 delivered a packet on call %d", i)
		}
	}
}

func TestChaosModerateLatencyRange(t *testing.T) {
	eng := chaosEngine(ChaosModerate, 3)
	for i := 0; i < 1000; i++ {
		d := eng.InjectLatency()
		if d <= 0 || d >= time.Second {
			t.Fatalf("moderate latency %v outside (0, 1s)", d)
		}
	}
}

func TestChaosNoneLatencyIsZero(t *testing.T) {
	eng := chaosEngine(ChaosNone, 4)
	if d := eng.InjectLatency(); d != 0 {
		t.Fatalf("none-level latency = %v, want 0", d)
	}
}

func TestChaosLevelOrdering(t *testing.T) {
	levels := []ChaosLevel{ChaosNone, ChaosMild, ChaosModerate, ChaosSevere}
	for i := 1; i < len(levels); i++ {
		prev := chaosProfiles[levels[i-1]]
		cur := chaosProfiles[levels[i]]
		if cur.lossRate <= prev.lossRate {
			t.Errorf("loss rate for %s (%v) not above %s (%v)", levels[i], cur.lossRate, levels[i-1], prev.lossRate)
		}
		if cur.maxLatency <= prev.maxLatency {
			t.Errorf("max latency for %s (%v) not above %s (%v)", levels[i], cur.maxLatency, levels[i-1], prev.maxLatency)
		}
	}
}

func TestChaosLossOverridePrecedence(t *testing.T) {
	rate := 0.0
	cfg := ChaosConfig{Level: ChaosSevere, PacketLossRate: &rate}
	eng := NewChaosEngine(cfg, rand.New(rand.NewSource(5)))
	for i := 0; i < 100; i++ {
		if eng.ShouldDropPacket() {
			t.Fatal("explicit zero loss rate must override the severe default")
		}
	}
	// The override never touches the latency range.
	profile := chaosProfiles[ChaosSevere]
	for i := 0; i < 100; i++ {
		d := eng.InjectLatency()
		if d < profile.minLatency || d >= profile.maxLatency {
			t.Fatalf("latency %v outside severe range [%v, %v)", d, profile.minLatency, profile.maxLatency)
		}
	}
}

func TestChaosLossRateClamped(t *testing.T) {
	for _, tc := range []struct {
		raw  float64
		want float64
	}{
		{raw: -0.5, want: 0},
		{raw: 1.5, want: 1},
		{raw: 0.3, want: 0.3},
	} {
		rate := tc.raw
		cfg := ChaosConfig{Level: ChaosMild, PacketLossRate: &rate}
		if got := cfg.lossRate(); got != tc.want {
			t.Errorf("lossRate(%v) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestChaosConfigEnabled(t *testing.T) {
	if (ChaosConfig{}).Enabled() {
		t.Error("empty config reported enabled")
	}
	if (ChaosConfig{Level: ChaosNone}).Enabled() {
		t.Error("none-level config reported enabled")
	}
	if !(ChaosConfig{Level: ChaosMild}).Enabled() {
		t.Error("mild-level config reported disabled")
	}
}

func TestChaosSeedDeterminism(t *testing.T) {
	a := chaosEngine(ChaosModerate, 42)
	b := chaosEngine(ChaosModerate, 42)
	for i := 0; i < 200; i++ {
		if a.ShouldDropPacket() != b.ShouldDropPacket() {
			t.Fatalf("drop decision diverged on call %d for identical seeds", i)
		}
		if a.InjectLatency() != b.InjectLatency() {
			t.Fatalf("latency draw diverged on call %d for identical seeds", i)
		}
	}
}
