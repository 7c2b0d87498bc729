package model

// PacketType mirrors the envelope kinds of the application protocol. It
// carries no semantic weight inside the simulator beyond classification.
type PacketType string

const (
	PacketTypeMessage PacketType = "message"
	PacketTypeReceipt PacketType = "receipt"
	PacketTypeTyping  PacketType = "typing"
)

// RoutablePacket models one logical message travelling across the mesh.
// Sender and recipient need not be directly connected; the topology decides
// which relays the packet traverses.
type RoutablePacket struct {
	ID          string
	SenderID    PeerID
	RecipientID PeerID
	Payload     []byte
	Type        PacketType
}
