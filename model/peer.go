package model

// PeerID uniquely identifies a virtual peer within a simulation. IDs are
// generated at peer creation and never change afterwards.
type PeerID string

// Identity is an opaque reference to a peer's cryptographic identity. It is
// supplied by an external identity provider; the simulator never inspects
// its contents.
type Identity struct {
	// Ref is the provider's handle for the identity material (fingerprint,
	// key reference, etc.). Treated as an opaque token here.
	Ref string
}

// Behavior classifies how a peer acts under load during a simulation run.
// It is advisory: the simulator consults it when deriving per-hop latency
// and drop probability, the peer itself does not enforce it.
type Behavior int

const (
	// BehaviorResponsive peers relay promptly with nominal loss.
	BehaviorResponsive Behavior = iota
	// BehaviorSlow peers add extra per-hop latency.
	BehaviorSlow
	// BehaviorUnreliable peers drop relayed packets more often.
	BehaviorUnreliable
)

func (b Behavior) String() string {
	switch b {
	case BehaviorResponsive:
		return "responsive"
	case BehaviorSlow:
		return "slow"
	case BehaviorUnreliable:
		return "unreliable"
	default:
		return "unknown"
	}
}
