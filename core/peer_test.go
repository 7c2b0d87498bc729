package core

import (
	"testing"

	"github.com/meshworks/mesh-simulator/model"
)

// TestFreshPeerInvariants verifies that a freshly created peer is online
// with an empty connection set.
func TestFreshPeerInvariants(t *testing.T) {
	p := NewVirtualPeer("p1", "anchovy", model.Identity{Ref: "id-1"}, model.BehaviorResponsive)

	if !p.Online {
		t.Fatalf("expected fresh peer to be online")
	}
	if got := p.ConnectionCount(); got != 0 {
		t.Fatalf("expected empty connection set, got %d connections", got)
	}
}

// TestConnectIsDirected verifies the connection primitive is asymmetric:
// connecting a to b must not create the reverse edge on b.
func TestConnectIsDirected(t *testing.T) {
	a := NewVirtualPeer("a", "anchovy", model.Identity{}, model.BehaviorResponsive)
	b := NewVirtualPeer("b", "barnacle", model.Identity{}, model.BehaviorResponsive)

	a.Connect(b.ID)

	if !a.IsConnectedTo(b.ID) {
		t.Fatalf("expected a to be connected to b")
	}
	if b.IsConnectedTo(a.ID) {
		t.Fatalf("connect must not create the reverse edge")
	}
}

func TestDisconnectRemovesEdge(t *testing.T) {
	a := NewVirtualPeer("a", "anchovy", model.Identity{}, model.BehaviorResponsive)
	a.Connect("b")
	a.Connect("c")

	a.Disconnect("b")

	if a.IsConnectedTo("b") {
		t.Fatalf("expected edge to b removed")
	}
	if !a.IsConnectedTo("c") {
		t.Fatalf("edge to c should be untouched")
	}
}

func TestConnectIgnoresSelfEdge(t *testing.T) {
	a := NewVirtualPeer("a", "anchovy", model.Identity{}, model.BehaviorResponsive)
	a.Connect("a")
	if got := a.ConnectionCount(); got != 0 {
		t.Fatalf("self edge should be ignored, got %d connections", got)
	}
}
