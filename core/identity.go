package core

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/meshworks/mesh-simulator/model"
)

// IdentityProvider supplies opaque per-peer identities. The real system owns
// encryption and signing keys behind this boundary; the simulator only needs
// a stable opaque value per peer.
type IdentityProvider interface {
	IdentityFor(handle string) model.Identity
}

// LocalIdentityProvider mints random identity references in-process. It is
// the default collaborator when no external provider is wired in.
type LocalIdentityProvider struct{}

func (LocalIdentityProvider) IdentityFor(handle string) model.Identity {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is not recoverable in any useful way here;
		// fall back to a handle-derived marker so peers stay constructible.
		return model.Identity{Ref: "id-" + handle}
	}
	return model.Identity{Ref: hex.EncodeToString(b[:])}
}
