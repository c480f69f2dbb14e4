package p2p

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/sourcegraph/conc/panics"

	"github.com/victorvcruz/netclip/internal/logger"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

// listenConfig sets SO_REUSEADDR so a node bound to one address and a node
// bound to the wildcard address can share the port on one host.
func listenConfig() *net.ListenConfig {
	return &net.ListenConfig{Control: reuseAddress}
}

// Listen binds the node port and serves datagrams until ctx is done.
func (p2p *ClipboardSync) Listen(ctx context.Context) error {
	addr := net.JoinHostPort(p2p.settings.ListenAddress, strconv.Itoa(p2p.settings.Port))

	conn, err := listenConfig().ListenPacket(ctx, "udp4", addr)
	if err != nil {
		return err
	}

	p2p.log.Info().Str("addr", conn.LocalAddr().String()).Msg("UDP listener started")
	return p2p.Serve(ctx, conn)
}

// Serve reads datagrams from conn into a buffer of MaxPayload+1 bytes and
// dispatches each one. A bad datagram is logged and skipped. Serve closes
// conn and returns once ctx is done.
func (p2p *ClipboardSync) Serve(ctx context.Context, conn net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() {
		conn.Close() //nolint:errcheck
	})
	defer stop()

	buffer := make([]byte, p2p.settings.MaxPayload+1)
	for {
		n, from, err := conn.ReadFrom(buffer)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			p2p.log.Warn().Err(err).Msg("Error reading UDP datagram")
			continue
		}

		data := buffer[:n]
		recovered := panics.Try(func() { p2p.HandlePacket(ctx, data) })
		if recovered != nil {
			p2p.log.Error().
				Err(recovered.AsError()).
				Stringer("from", from).
				Msg("Datagram dispatch panicked")
		}
	}
}

// HandlePacket decodes one datagram and acts on it by tag.
func (p2p *ClipboardSync) HandlePacket(ctx context.Context, data []byte) {
	msg, err := syncTypes.Decode(data)
	if err != nil {
		p2p.log.Warn().Err(err).Msg("Dropping datagram")
		return
	}

	p2p.log.Debug().
		Str("kind", msg.Kind.String()).
		Str("payload", logger.Preview(msg.Payload, 20)).
		Msg("Got UDP packet")

	switch msg.Kind {
	case syncTypes.KindClipboard:
		p2p.handleClipboard(msg.Payload)
	case syncTypes.KindDiscoveryRequest:
		p2p.handleDiscoveryRequest(ctx, msg.Payload)
	case syncTypes.KindDiscoveryReply:
		p2p.handleDiscoveryReply(msg.Payload)
	default:
		p2p.log.Debug().Str("kind", msg.Kind.String()).Msg("Ignoring unknown message")
	}
}

// handleClipboard applies text as received, empty text included, so a
// partner that clears its clipboard clears ours too.
func (p2p *ClipboardSync) handleClipboard(text string) {
	if p2p.applier == nil {
		return
	}
	if err := p2p.applier.ApplyRemoteClipboard(text); err != nil {
		p2p.log.Warn().Err(err).Msg("Failed to set clipboard")
	}
}
