//go:build linux || darwin || windows

package p2p

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListenSharesPortWithWildcardNode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wildcard, err := listenConfig().ListenPacket(ctx, "udp4", "0.0.0.0:0")
	require.NoError(t, err)
	defer wildcard.Close() //nolint:errcheck
	port := wildcard.LocalAddr().(*net.UDPAddr).Port

	settings := Settings{LocalAddress: "192.168.1.10", ListenAddress: "127.0.0.1", Port: port, MaxPayload: 1200}
	p2p := NewClipboardSync(settings, nil, &recordingApplier{}, WithSender(&recordingSender{}))

	done := make(chan error, 1)
	go func() { done <- p2p.Listen(ctx) }()

	client, err := net.Dial("udp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck

	require.Eventually(t, func() bool {
		_, _ = client.Write([]byte("P192.168.1.44"))
		return p2p.Registry().Contains("192.168.1.44")
	}, 2*time.Second, 20*time.Millisecond, "listener did not bind next to the wildcard socket")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
