package p2p

import (
	"context"
	"net"
	"strings"

	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

// Discover broadcasts a "who's there" request carrying the local address.
// Partners already running register this node and answer directly.
func (p2p *ClipboardSync) Discover(ctx context.Context) {
	msg := syncTypes.NewDiscoveryRequest(p2p.settings.LocalAddress)
	if p2p.Broadcast(ctx, msg) {
		target, _ := p2p.BroadcastTarget()
		p2p.log.Info().Str("to", target).Str("addr", msg.Payload).Msg("Sent discovery broadcast")
	}
}

// RegisterStatic registers partners known up front from configuration.
func (p2p *ClipboardSync) RegisterStatic(hosts []string) int {
	added := 0
	for _, host := range hosts {
		if p2p.registry.Register(strings.TrimSpace(host)) {
			added++
		}
	}
	return added
}

func (p2p *ClipboardSync) handleDiscoveryRequest(ctx context.Context, payload string) {
	sender, ok := p2p.senderAddress(payload)
	if !ok {
		return
	}

	p2p.registry.Register(sender)
	p2p.SendTo(ctx, sender, syncTypes.NewDiscoveryReply(p2p.settings.LocalAddress))
}

func (p2p *ClipboardSync) handleDiscoveryReply(payload string) {
	sender, ok := p2p.senderAddress(payload)
	if !ok {
		return
	}
	p2p.registry.Register(sender)
}

func (p2p *ClipboardSync) senderAddress(payload string) (string, bool) {
	addr := strings.TrimSpace(payload)
	if net.ParseIP(addr) == nil {
		p2p.log.Warn().Str("payload", payload).Msg("Discovery message without a valid address")
		return "", false
	}
	return addr, true
}
