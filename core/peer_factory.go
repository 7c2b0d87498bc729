package core

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/meshworks/mesh-simulator/model"
)

// handlePool is a themed pool of display names. CreatePeers draws from it
// and disambiguates with numeric suffixes once the pool is exhausted.
var handlePool = []string{
	"anchovy", "barnacle", "cuttlefish", "dogwatch", "ensign",
	"fathom", "galley", "halyard", "icebreaker", "jetsam",
	"keelhaul", "lighthouse", "mainsail", "nautilus", "orca",
	"pelican", "quartermaster", "rigging", "sextant", "tradewind",
	"umiak", "vanguard", "windlass", "xebec", "yawl", "zephyr",
}

// VirtualPeerFactory constructs peer populations for simulation runs. It
// owns a pseudo-random source so that a seeded run produces the same
// handles and behavior assignments every time, and delegates identity
// material to an external provider.
type VirtualPeerFactory struct {
	rng      *rand.Rand
	identity IdentityProvider
}

// NewVirtualPeerFactory builds a factory around the given random source.
// A nil provider falls back to LocalIdentityProvider.
func NewVirtualPeerFactory(rng *rand.Rand, provider IdentityProvider) *VirtualPeerFactory {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if provider == nil {
		provider = LocalIdentityProvider{}
	}
	return &VirtualPeerFactory{rng: rng, identity: provider}
}

// CreatePeer constructs a single responsive peer with a fresh unique ID and
// an identity obtained from the provider.
func (f *VirtualPeerFactory) CreatePeer(handle string) *VirtualPeer {
	return f.createPeer(handle, model.BehaviorResponsive)
}

func (f *VirtualPeerFactory) createPeer(handle string, behavior model.Behavior) *VirtualPeer {
	id := model.PeerID(uuid.NewString())
	return NewVirtualPeer(id, handle, f.identity.IdentityFor(handle), behavior)
}

// CreatePeers returns count peers with guaranteed-unique IDs and non-empty
// handles. Handles are drawn from the themed pool in shuffled order; once
// the pool runs out, a numeric suffix keeps them distinct.
func (f *VirtualPeerFactory) CreatePeers(count int) []*VirtualPeer {
	if count <= 0 {
		return nil
	}
	names := append([]string(nil), handlePool...)
	f.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	peers := make([]*VirtualPeer, 0, count)
	for i := 0; i < count; i++ {
		handle := names[i%len(names)]
		if i >= len(names) {
			handle = fmt.Sprintf("%s-%d", handle, i/len(names))
		}
		peers = append(peers, f.createPeer(handle, model.BehaviorResponsive))
	}
	return peers
}

// CreateWithBehaviors returns exactly responsive+slow+unreliable peers, with
// behaviors assigned so that filtering by each class yields the requested
// counts. The combined population is shuffled so behavior does not correlate
// with creation order.
func (f *VirtualPeerFactory) CreateWithBehaviors(responsive, slow, unreliable int) []*VirtualPeer {
	total := responsive + slow + unreliable
	if total <= 0 {
		return nil
	}
	peers := f.CreatePeers(total)
	idx := 0
	for i := 0; i < responsive; i++ {
		peers[idx].Behavior = model.BehaviorResponsive
		idx++
	}
	for i := 0; i < slow; i++ {
		peers[idx].Behavior = model.BehaviorSlow
		idx++
	}
	for i := 0; i < unreliable; i++ {
		peers[idx].Behavior = model.BehaviorUnreliable
		idx++
	}
	f.rng.Shuffle(len(peers), func(i, j int) { peers[i], peers[j] = peers[j], peers[i] })
	return peers
}

// Scenario population bands. These are fixed policy describing realistic
// venue densities, not user-configurable knobs.
const (
	coffeeShopMinPeers = 5
	coffeeShopMaxPeers = 15
	conferenceMinPeers = 31
	conferenceMaxPeers = 60
	hackathonMinPeers  = 11
	hackathonMaxPeers  = 25
)

// CoffeeShopScenario returns a small population of 5-15 peers, mostly
// responsive with the occasional phone in a pocket.
func (f *VirtualPeerFactory) CoffeeShopScenario() []*VirtualPeer {
	n := coffeeShopMinPeers + f.rng.Intn(coffeeShopMaxPeers-coffeeShopMinPeers+1)
	return f.populationFor(n, 0.7, 0.2)
}

// ConferenceScenario returns a dense population of more than 30 peers.
// Congested venues skew slow and unreliable.
func (f *VirtualPeerFactory) ConferenceScenario() []*VirtualPeer {
	n := conferenceMinPeers + f.rng.Intn(conferenceMaxPeers-conferenceMinPeers+1)
	return f.populationFor(n, 0.5, 0.3)
}

// HackathonScenario returns a population of more than 10 peers.
func (f *VirtualPeerFactory) HackathonScenario() []*VirtualPeer {
	n := hackathonMinPeers + f.rng.Intn(hackathonMaxPeers-hackathonMinPeers+1)
	return f.populationFor(n, 0.6, 0.25)
}

// PopulationFor builds a population of exactly n peers for the named
// scenario. The simulator uses this when a config pins the peer count.
func (f *VirtualPeerFactory) PopulationFor(scenario model.Scenario, n int) []*VirtualPeer {
	switch scenario {
	case model.ScenarioConference:
		return f.populationFor(n, 0.5, 0.3)
	case model.ScenarioHackathon:
		return f.populationFor(n, 0.6, 0.25)
	default:
		return f.populationFor(n, 0.7, 0.2)
	}
}

// populationFor splits n peers into behavior classes by the given responsive
// and slow fractions; the remainder is unreliable.
func (f *VirtualPeerFactory) populationFor(n int, responsiveFrac, slowFrac float64) []*VirtualPeer {
	if n <= 0 {
		return nil
	}
	responsive := int(float64(n) * responsiveFrac)
	slow := int(float64(n) * slowFrac)
	if responsive+slow > n {
		slow = n - responsive
	}
	unreliable := n - responsive - slow
	return f.CreateWithBehaviors(responsive, slow, unreliable)
}
