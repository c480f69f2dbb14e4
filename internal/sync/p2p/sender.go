package p2p

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Sender puts one datagram on the wire. UDPSender is the real one; tests
// swap in an in-memory network.
type Sender interface {
	Send(ctx context.Context, host string, port int, payload []byte) error
}

// UDPSender opens a transient socket per datagram. Go enables SO_BROADCAST
// on UDP sockets, so subnet broadcast targets need nothing extra.
type UDPSender struct{}

func (UDPSender) Send(ctx context.Context, host string, port int, payload []byte) error {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}

	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return fmt.Errorf("open socket: %w", err)
	}
	defer conn.Close() //nolint:errcheck

	if _, err := conn.WriteTo(payload, addr); err != nil {
		return err
	}
	return nil
}
