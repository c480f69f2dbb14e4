package p2p

import (
	"context"

	"github.com/rs/zerolog"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
	"github.com/victorvcruz/netclip/internal/logger"
	"github.com/victorvcruz/netclip/internal/network/ip"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

// Settings are the addressing parameters of one node.
type Settings struct {
	// LocalAddress is carried in discovery messages and excluded from the
	// registry.
	LocalAddress string
	// BroadcastAddress overrides the /24 address derived from LocalAddress.
	BroadcastAddress string
	// ListenAddress is the host the listener binds; empty means all.
	ListenAddress string
	Port          int
	MaxPayload    int
}

// ClipboardSync is the network side of a node: it owns the UDP listener and
// every outbound datagram.
type ClipboardSync struct {
	settings Settings
	registry *Registry
	applier  syncTypes.ClipboardApplier
	sender   Sender
	log      zerolog.Logger
}

var (
	_ syncTypes.ClipboardBroadcaster = (*ClipboardSync)(nil)
	_ syncTypes.Discoverer           = (*ClipboardSync)(nil)
	_ syncTypes.PeerManager          = (*Registry)(nil)
)

type Option func(*ClipboardSync)

func WithSender(s Sender) Option {
	return func(p2p *ClipboardSync) {
		p2p.sender = s
	}
}

func NewClipboardSync(settings Settings, registry *Registry, applier syncTypes.ClipboardApplier, opts ...Option) *ClipboardSync {
	if settings.Port == 0 {
		settings.Port = syncTypes.DefaultPort
	}
	if settings.MaxPayload <= 0 {
		settings.MaxPayload = syncTypes.DefaultMaxPayload
	}
	if settings.LocalAddress == "" {
		settings.LocalAddress = ip.UnknownAddress
	}
	if registry == nil {
		registry = NewRegistry(settings.LocalAddress)
	}

	p2p := &ClipboardSync{
		settings: settings,
		registry: registry,
		applier:  applier,
		sender:   UDPSender{},
		log:      logger.Component("transport"),
	}
	for _, opt := range opts {
		opt(p2p)
	}
	return p2p
}

func (p2p *ClipboardSync) Registry() *Registry {
	return p2p.registry
}

func (p2p *ClipboardSync) LocalAddress() string {
	return p2p.settings.LocalAddress
}

// SendTo sends msg to host on the node port. Failures are logged and
// reported only through the boolean; nothing is retried.
func (p2p *ClipboardSync) SendTo(ctx context.Context, host string, msg syncTypes.Message) bool {
	payload := msg.Encode()
	if err := p2p.sender.Send(ctx, host, p2p.settings.Port, payload); err != nil {
		p2p.log.Warn().
			Err(neterrors.SendError(host, err)).
			Str("kind", msg.Kind.String()).
			Msg("Send failed")
		return false
	}

	p2p.log.Debug().
		Str("to", host).
		Str("kind", msg.Kind.String()).
		Int("bytes", len(payload)).
		Str("payload", logger.Preview(msg.Payload, 20)).
		Msg("Sent datagram")
	return true
}

// BroadcastTarget is the configured broadcast address, or LocalAddress with
// its last octet set to 255.
func (p2p *ClipboardSync) BroadcastTarget() (string, error) {
	if p2p.settings.BroadcastAddress != "" {
		return p2p.settings.BroadcastAddress, nil
	}
	return ip.BroadcastAddress(p2p.settings.LocalAddress)
}

func (p2p *ClipboardSync) Broadcast(ctx context.Context, msg syncTypes.Message) bool {
	target, err := p2p.BroadcastTarget()
	if err != nil {
		p2p.log.Warn().Err(neterrors.Wrap(err, "cannot broadcast")).Msg("Broadcast skipped")
		return false
	}
	return p2p.SendTo(ctx, target, msg)
}

// RelayToPartners sends msg to every registered partner in turn and returns
// how many sends succeeded. A failing partner does not stop the rest.
func (p2p *ClipboardSync) RelayToPartners(ctx context.Context, msg syncTypes.Message) int {
	partners := p2p.registry.Snapshot()
	if len(partners) == 0 {
		p2p.log.Info().Msg("No partners available to relay clipboard")
		return 0
	}

	sent := 0
	for _, host := range partners {
		p2p.log.Info().Int("bytes", len(msg.Payload)).Str("to", host).Msg("Transfer")
		if p2p.SendTo(ctx, host, msg) {
			sent++
		}
	}
	return sent
}
