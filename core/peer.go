package core

import (
	"sort"

	"github.com/meshworks/mesh-simulator/model"
)

// VirtualPeer is an in-memory stand-in for a mesh participant. It tracks
// identity, online state, a behavioral profile, and the set of peers it has
// an outbound edge to.
//
// Connections are directed at this level: Connect only records the edge in
// the source peer's own set. Topology presets are responsible for issuing
// the mutual Connect calls that make edges bidirectional; the primitive is
// deliberately not symmetric.
type VirtualPeer struct {
	ID       model.PeerID
	Handle   string
	Identity model.Identity
	Online   bool
	Behavior model.Behavior

	connections map[model.PeerID]struct{}
}

// NewVirtualPeer constructs a peer that is online with an empty connection
// set, the invariant every freshly created peer satisfies.
func NewVirtualPeer(id model.PeerID, handle string, identity model.Identity, behavior model.Behavior) *VirtualPeer {
	return &VirtualPeer{
		ID:          id,
		Handle:      handle,
		Identity:    identity,
		Online:      true,
		Behavior:    behavior,
		connections: make(map[model.PeerID]struct{}),
	}
}

// Connect records an outbound edge to the target peer. It does not add the
// reverse edge. Self-edges are ignored.
func (p *VirtualPeer) Connect(to model.PeerID) {
	if to == p.ID {
		return
	}
	p.connections[to] = struct{}{}
}

// Disconnect removes the outbound edge to the target peer, if present.
func (p *VirtualPeer) Disconnect(from model.PeerID) {
	delete(p.connections, from)
}

// IsConnectedTo reports whether this peer has an outbound edge to the target.
func (p *VirtualPeer) IsConnectedTo(to model.PeerID) bool {
	_, ok := p.connections[to]
	return ok
}

// ConnectionCount returns the number of outbound edges.
func (p *VirtualPeer) ConnectionCount() int {
	return len(p.connections)
}

// Connections returns a sorted snapshot of the peer's outbound edges. The
// sort keeps iteration deterministic for seeded runs.
func (p *VirtualPeer) Connections() []model.PeerID {
	ids := make([]model.PeerID, 0, len(p.connections))
	for id := range p.connections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ClearConnections drops every outbound edge.
func (p *VirtualPeer) ClearConnections() {
	p.connections = make(map[model.PeerID]struct{})
}
