package sync

import "context"

// ClipboardBroadcaster relays a message to every known partner.
type ClipboardBroadcaster interface {
	RelayToPartners(ctx context.Context, msg Message) int
}

// ClipboardApplier writes text received from the network to the local
// clipboard and remembers it so it is not echoed back.
type ClipboardApplier interface {
	ApplyRemoteClipboard(text string) error
}

type PeerManager interface {
	Register(addr string) bool
	Contains(addr string) bool
	Snapshot() []string
	Count() int
}

// Discoverer sends the "who's there" broadcast.
type Discoverer interface {
	Discover(ctx context.Context)
}
