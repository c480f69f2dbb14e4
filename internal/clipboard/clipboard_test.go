package clipboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

type fakeDevice struct {
	mu       sync.Mutex
	text     string
	readErr  error
	writeErr error
	writes   []string
}

func (d *fakeDevice) ReadText() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readErr != nil {
		return "", d.readErr
	}
	return d.text, nil
}

func (d *fakeDevice) WriteText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.text = text
	d.writes = append(d.writes, text)
	return nil
}

func (d *fakeDevice) set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

type fakeRelay struct {
	mu   sync.Mutex
	sent []syncTypes.Message
}

func (r *fakeRelay) RelayToPartners(_ context.Context, msg syncTypes.Message) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return 1
}

func (r *fakeRelay) messages() []syncTypes.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]syncTypes.Message(nil), r.sent...)
}

func newTestManager(t *testing.T, opts ...Option) (*ClipboardManager, *fakeDevice, *fakeRelay) {
	t.Helper()
	device := &fakeDevice{}
	relay := &fakeRelay{}
	cm := NewClipboardManager(device, NewSnapshot(), opts...)
	cm.SetRelay(relay)
	return cm, device, relay
}

func TestPollRelaysGenuineChange(t *testing.T) {
	cm, device, relay := newTestManager(t)
	ctx := context.Background()

	device.set("hello")
	require.Equal(t, PollRelayed, cm.Poll(ctx))
	require.Equal(t, []syncTypes.Message{syncTypes.NewClipboard("hello")}, relay.messages())

	// Same content on the next tick is not a change.
	require.Equal(t, PollUnchanged, cm.Poll(ctx))
	require.Len(t, relay.messages(), 1)
}

func TestPollSizeLimit(t *testing.T) {
	tests := []struct {
		name string
		size int
		want PollResult
	}{
		{name: "below limit", size: 9, want: PollRelayed},
		{name: "at limit", size: 10, want: PollOversized},
		{name: "above limit", size: 11, want: PollOversized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, device, relay := newTestManager(t, WithMaxPayload(10))
			device.set(strings.Repeat("x", tt.size))

			require.Equal(t, tt.want, cm.Poll(context.Background()))
			if tt.want == PollOversized {
				require.Empty(t, relay.messages())
				// The oversized text still becomes the observed baseline.
				require.Equal(t, strings.Repeat("x", tt.size), cm.State().LastObserved())
			} else {
				require.Len(t, relay.messages(), 1)
			}
		})
	}
}

func TestPollSuppressesEcho(t *testing.T) {
	cm, device, relay := newTestManager(t)
	ctx := context.Background()

	device.set("before")
	require.Equal(t, PollRelayed, cm.Poll(ctx))

	require.NoError(t, cm.ApplyRemoteClipboard("hello"))
	require.Equal(t, "hello", device.text)

	require.Equal(t, PollEchoSuppressed, cm.Poll(ctx))
	require.Len(t, relay.messages(), 1)
}

func TestPollRelaysAfterLocalChangeFollowingRemote(t *testing.T) {
	cm, device, relay := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.ApplyRemoteClipboard("remote"))
	require.Equal(t, PollEchoSuppressed, cm.Poll(ctx))

	device.set("local")
	require.Equal(t, PollRelayed, cm.Poll(ctx))

	// Copying the remote text again locally is indistinguishable from an echo.
	device.set("remote")
	require.Equal(t, PollEchoSuppressed, cm.Poll(ctx))
	require.Equal(t, []syncTypes.Message{syncTypes.NewClipboard("local")}, relay.messages())
}

func TestPollReadFailure(t *testing.T) {
	cm, device, relay := newTestManager(t)
	device.readErr = errors.New("xclip: exit status 1")

	require.Equal(t, PollReadFailed, cm.Poll(context.Background()))
	require.Empty(t, relay.messages())

	device.readErr = nil
	device.set("recovered")
	require.Equal(t, PollRelayed, cm.Poll(context.Background()))
}

func TestPollIgnoresEmptyClipboard(t *testing.T) {
	cm, device, relay := newTestManager(t)
	ctx := context.Background()

	device.set("text")
	require.Equal(t, PollRelayed, cm.Poll(ctx))

	device.set("")
	require.Equal(t, PollEmpty, cm.Poll(ctx))

	device.set("text")
	require.Equal(t, PollUnchanged, cm.Poll(ctx))
	require.Len(t, relay.messages(), 1)
}

func TestApplyRemoteClipboardWriteFailure(t *testing.T) {
	cm, device, _ := newTestManager(t)

	require.NoError(t, cm.ApplyRemoteClipboard("first"))

	device.writeErr = errors.New("clipboard locked")
	err := cm.ApplyRemoteClipboard("second")
	require.Error(t, err)
	require.True(t, neterrors.IsKind(err, neterrors.KindClipboardAccess))

	remote, ok := cm.State().LastRemote()
	require.True(t, ok)
	require.Equal(t, "first", remote)
}

func TestUnavailableDeviceFailsEveryAccess(t *testing.T) {
	reason := errors.New("no clipboard utility found")
	cm := NewClipboardManager(UnavailableDevice{Reason: reason}, nil)
	relay := &fakeRelay{}
	cm.SetRelay(relay)

	require.Equal(t, PollReadFailed, cm.Poll(context.Background()))
	require.Empty(t, relay.messages())

	err := cm.ApplyRemoteClipboard("from a partner")
	require.True(t, neterrors.IsKind(err, neterrors.KindClipboardAccess))
	require.ErrorIs(t, err, reason)

	_, ok := cm.State().LastRemote()
	require.False(t, ok)
}

func TestStartMonitoringSeedsBaseline(t *testing.T) {
	cm, device, relay := newTestManager(t, WithPollInterval(5*time.Millisecond))
	device.set("already there")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cm.StartMonitoring(ctx) }()

	require.Eventually(t, func() bool {
		return cm.State().LastObserved() == "already there"
	}, time.Second, 5*time.Millisecond)

	device.set("new text")
	require.Eventually(t, func() bool {
		return len(relay.messages()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, []syncTypes.Message{syncTypes.NewClipboard("new text")}, relay.messages())
}

type panickingRelay struct{ calls int }

func (p *panickingRelay) RelayToPartners(context.Context, syncTypes.Message) int {
	p.calls++
	panic("relay exploded")
}

func TestStartMonitoringSurvivesPanic(t *testing.T) {
	device := &fakeDevice{}
	cm := NewClipboardManager(device, nil, WithPollInterval(5*time.Millisecond))
	relay := &panickingRelay{}
	cm.SetRelay(relay)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cm.StartMonitoring(ctx) }()

	device.set("one")
	require.Eventually(t, func() bool { return cm.State().LastObserved() == "one" }, time.Second, 5*time.Millisecond)
	device.set("two")
	require.Eventually(t, func() bool { return cm.State().LastObserved() == "two" }, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
