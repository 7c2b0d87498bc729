package core

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/meshworks/mesh-simulator/model"
)

// TopologyPreset names a canonical connection layout.
type TopologyPreset string

const (
	// PresetMesh connects every unordered pair of peers bidirectionally.
	PresetMesh TopologyPreset = "mesh"
	// PresetChain connects peer i to peer i+1 bidirectionally.
	PresetChain TopologyPreset = "chain"
)

// pathCacheSize bounds the shortest-path cache. Simulation runs route many
// messages between a fixed population, so repeated pairs are the common case.
const pathCacheSize = 1024

type pathKey struct {
	from, to model.PeerID
	gen      uint64
}

// TopologyController owns the peer collection and the connection graph for
// one simulation run. Edges live on the peers themselves (directed sets);
// the controller derives every graph-level view from them.
//
// Path finding, component discovery, and diameter all share a single
// undirected adjacency snapshot so their answers never disagree: two peers
// are mutually reachable whenever a connection exists in either direction.
type TopologyController struct {
	peers map[model.PeerID]*VirtualPeer
	// order is the stable peer ordering (insertion order). Partitioning
	// slices over it so a fixed population always splits the same way.
	order []model.PeerID

	partitioned bool
	// removedEdges remembers cross-cluster edges dropped by the most recent
	// Partition so Reconnect can restore them structurally.
	removedEdges [][2]model.PeerID

	// generation increments on every mutation; stale path cache entries are
	// keyed by older generations and simply stop being found.
	generation uint64
	pathCache  *lru.Cache[pathKey, []model.PeerID]
}

// NewTopologyController builds an empty controller.
func NewTopologyController() *TopologyController {
	cache, _ := lru.New[pathKey, []model.PeerID](pathCacheSize)
	return &TopologyController{
		peers:     make(map[model.PeerID]*VirtualPeer),
		pathCache: cache,
	}
}

// AddPeer registers a peer with the controller. It returns an error if the
// ID is already present.
func (tc *TopologyController) AddPeer(p *VirtualPeer) error {
	if p == nil {
		return fmt.Errorf("add peer: %w", ErrPeerNotFound)
	}
	if _, exists := tc.peers[p.ID]; exists {
		return fmt.Errorf("add peer %q: %w", p.ID, ErrPeerExists)
	}
	tc.peers[p.ID] = p
	tc.order = append(tc.order, p.ID)
	tc.generation++
	return nil
}

// AddPeers registers a batch of peers.
func (tc *TopologyController) AddPeers(peers []*VirtualPeer) error {
	for _, p := range peers {
		if err := tc.AddPeer(p); err != nil {
			return err
		}
	}
	return nil
}

// Peer returns the peer with the given ID, or nil if unknown.
func (tc *TopologyController) Peer(id model.PeerID) *VirtualPeer {
	return tc.peers[id]
}

// Peers returns the peers in their stable ordering.
func (tc *TopologyController) Peers() []*VirtualPeer {
	out := make([]*VirtualPeer, 0, len(tc.order))
	for _, id := range tc.order {
		out = append(out, tc.peers[id])
	}
	return out
}

// PeerCount returns the number of registered peers.
func (tc *TopologyController) PeerCount() int { return len(tc.peers) }

// IsPartitioned reports whether the most recent structural operation was a
// partition that has not been reconnected yet.
func (tc *TopologyController) IsPartitioned() bool { return tc.partitioned }

// Apply lays out the named preset. Any prior connections are cleared first,
// so re-applying a preset is idempotent.
func (tc *TopologyController) Apply(preset TopologyPreset) error {
	switch preset {
	case PresetMesh:
		tc.applyMesh()
	case PresetChain:
		tc.applyChain()
	default:
		return fmt.Errorf("unknown topology preset %q", preset)
	}
	tc.partitioned = false
	tc.removedEdges = nil
	tc.generation++
	return nil
}

func (tc *TopologyController) applyMesh() {
	tc.clearAll()
	for i := 0; i < len(tc.order); i++ {
		for j := i + 1; j < len(tc.order); j++ {
			tc.connectBoth(tc.order[i], tc.order[j])
		}
	}
}

func (tc *TopologyController) applyChain() {
	tc.clearAll()
	for i := 0; i+1 < len(tc.order); i++ {
		tc.connectBoth(tc.order[i], tc.order[i+1])
	}
}

// CreateStar connects the hub bidirectionally to every spoke. Unlike Apply
// it is additive: existing edges outside the star are left alone.
func (tc *TopologyController) CreateStar(hub model.PeerID, spokes []model.PeerID) error {
	if _, ok := tc.peers[hub]; !ok {
		return fmt.Errorf("star hub %q: %w", hub, ErrPeerNotFound)
	}
	for _, s := range spokes {
		if _, ok := tc.peers[s]; !ok {
			return fmt.Errorf("star spoke %q: %w", s, ErrPeerNotFound)
		}
	}
	for _, s := range spokes {
		tc.connectBoth(hub, s)
	}
	tc.generation++
	return nil
}

func (tc *TopologyController) connectBoth(a, b model.PeerID) {
	tc.peers[a].Connect(b)
	tc.peers[b].Connect(a)
}

// EdgeCount returns the number of distinct unordered pairs with at least
// one directed connection recorded between them. Bidirectional presets make
// this equal to a simple undirected edge count.
func (tc *TopologyController) EdgeCount() int {
	seen := make(map[[2]model.PeerID]struct{})
	for id, p := range tc.peers {
		for _, to := range p.Connections() {
			key := orderedPair(id, to)
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}

func orderedPair(a, b model.PeerID) [2]model.PeerID {
	if a < b {
		return [2]model.PeerID{a, b}
	}
	return [2]model.PeerID{b, a}
}

// ClearConnections resets every peer's connection set to empty.
func (tc *TopologyController) ClearConnections() {
	tc.clearAll()
	tc.partitioned = false
	tc.removedEdges = nil
	tc.generation++
}

func (tc *TopologyController) clearAll() {
	for _, p := range tc.peers {
		p.ClearConnections()
	}
}

// Partition splits the peer set into k clusters of roughly equal size by
// contiguous slicing over the stable ordering, then removes every edge whose
// endpoints fall in different clusters. The removed edges are remembered so
// Reconnect can restore them. Deterministic for a fixed population and k.
func (tc *TopologyController) Partition(k int) error {
	n := len(tc.order)
	if k <= 0 {
		return fmt.Errorf("partition: cluster count must be positive, got %d", k)
	}
	if k > n {
		return fmt.Errorf("partition: cannot split %d peers into %d clusters", n, k)
	}

	cluster := make(map[model.PeerID]int, n)
	// Contiguous slices: the first n%k clusters get one extra peer.
	size := n / k
	extra := n % k
	idx := 0
	for c := 0; c < k; c++ {
		span := size
		if c < extra {
			span++
		}
		for i := 0; i < span; i++ {
			cluster[tc.order[idx]] = c
			idx++
		}
	}

	tc.removedEdges = nil
	for _, id := range tc.order {
		p := tc.peers[id]
		for _, to := range p.Connections() {
			if cluster[id] != cluster[to] {
				p.Disconnect(to)
				tc.removedEdges = append(tc.removedEdges, [2]model.PeerID{id, to})
			}
		}
	}

	tc.partitioned = true
	tc.generation++
	return nil
}

// Reconnect restores full connectivity. When the controller still has the
// edges removed by the most recent Partition it re-establishes exactly
// those; otherwise it falls back to a full mesh. Either way the graph ends
// up as a single connected component.
func (tc *TopologyController) Reconnect() {
	if len(tc.removedEdges) > 0 {
		for _, e := range tc.removedEdges {
			tc.peers[e[0]].Connect(e[1])
		}
		tc.removedEdges = nil
		tc.partitioned = false
		tc.generation++
		return
	}
	tc.applyMesh()
	tc.partitioned = false
	tc.generation++
}

// adjacency builds the undirected reachability view shared by FindPath,
// ConnectedComponents, and NetworkDiameter.
func (tc *TopologyController) adjacency() map[model.PeerID][]model.PeerID {
	adj := make(map[model.PeerID][]model.PeerID, len(tc.peers))
	seen := make(map[[2]model.PeerID]struct{})
	for id, p := range tc.peers {
		if _, ok := adj[id]; !ok {
			adj[id] = nil
		}
		for _, to := range p.Connections() {
			key := orderedPair(id, to)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			adj[id] = append(adj[id], to)
			adj[to] = append(adj[to], id)
		}
	}
	for id := range adj {
		neighbors := adj[id]
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
	}
	return adj
}

// ConnectedComponents groups peers into reachability components over the
// undirected view. Components come back in stable-order of their first
// member, each sorted internally.
func (tc *TopologyController) ConnectedComponents() [][]model.PeerID {
	adj := tc.adjacency()
	visited := make(map[model.PeerID]bool, len(tc.peers))
	var components [][]model.PeerID

	for _, start := range tc.order {
		if visited[start] {
			continue
		}
		var component []model.PeerID
		queue := []model.PeerID{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, next := range adj[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Slice(component, func(i, j int) bool { return component[i] < component[j] })
		components = append(components, component)
	}
	return components
}

// FindPath returns the shortest path by hop count between two peers over
// the undirected view, including both endpoints. It returns ErrNoPath when
// the peers are in different components and ErrPeerNotFound for unknown IDs.
func (tc *TopologyController) FindPath(from, to model.PeerID) ([]model.PeerID, error) {
	if _, ok := tc.peers[from]; !ok {
		return nil, fmt.Errorf("path source %q: %w", from, ErrPeerNotFound)
	}
	if _, ok := tc.peers[to]; !ok {
		return nil, fmt.Errorf("path destination %q: %w", to, ErrPeerNotFound)
	}
	if from == to {
		return []model.PeerID{from}, nil
	}

	key := pathKey{from: from, to: to, gen: tc.generation}
	if cached, ok := tc.pathCache.Get(key); ok {
		return append([]model.PeerID(nil), cached...), nil
	}

	path, ok := bfsPath(tc.adjacency(), from, to)
	if !ok {
		return nil, fmt.Errorf("%q -> %q: %w", from, to, ErrNoPath)
	}
	tc.pathCache.Add(key, append([]model.PeerID(nil), path...))
	return path, nil
}

// bfsPath runs a breadth-first search over adj and reconstructs the hop
// sequence from parent pointers.
func bfsPath(adj map[model.PeerID][]model.PeerID, from, to model.PeerID) ([]model.PeerID, bool) {
	parent := map[model.PeerID]model.PeerID{from: from}
	queue := []model.PeerID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, next := range adj[cur] {
			if _, seen := parent[next]; !seen {
				parent[next] = cur
				queue = append(queue, next)
			}
		}
	}
	if _, reached := parent[to]; !reached {
		return nil, false
	}

	var path []model.PeerID
	for cur := to; ; cur = parent[cur] {
		path = append(path, cur)
		if cur == from {
			break
		}
	}
	// Reverse into source -> destination order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// NetworkDiameter returns the maximum shortest-path length (in hops) over
// all mutually reachable pairs. A graph with no edges has diameter 0.
func (tc *TopologyController) NetworkDiameter() int {
	adj := tc.adjacency()
	diameter := 0
	for _, start := range tc.order {
		dist := map[model.PeerID]int{start: 0}
		queue := []model.PeerID{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if _, seen := dist[next]; !seen {
					dist[next] = dist[cur] + 1
					if dist[next] > diameter {
						diameter = dist[next]
					}
					queue = append(queue, next)
				}
			}
		}
	}
	return diameter
}
