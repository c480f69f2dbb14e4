package clipboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
	"github.com/victorvcruz/netclip/internal/logger"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

const DefaultPollInterval = time.Second

// PollResult is what one monitor tick decided to do.
type PollResult int

const (
	PollUnchanged PollResult = iota
	PollReadFailed
	PollEmpty
	PollOversized
	PollEchoSuppressed
	PollRelayed
)

func (r PollResult) String() string {
	switch r {
	case PollUnchanged:
		return "unchanged"
	case PollReadFailed:
		return "read-failed"
	case PollEmpty:
		return "empty"
	case PollOversized:
		return "oversized"
	case PollEchoSuppressed:
		return "echo-suppressed"
	case PollRelayed:
		return "relayed"
	default:
		return "unknown"
	}
}

type ClipboardManager struct {
	device     Device
	deviceMu   sync.Mutex
	state      *Snapshot
	relay      syncTypes.ClipboardBroadcaster
	maxPayload int
	interval   time.Duration
	log        zerolog.Logger
}

type Option func(*ClipboardManager)

func WithPollInterval(d time.Duration) Option {
	return func(cm *ClipboardManager) {
		if d > 0 {
			cm.interval = d
		}
	}
}

// WithMaxPayload sets the text length at or above which a local change is
// dropped instead of relayed.
func WithMaxPayload(n int) Option {
	return func(cm *ClipboardManager) {
		if n > 0 {
			cm.maxPayload = n
		}
	}
}

func NewClipboardManager(device Device, state *Snapshot, opts ...Option) *ClipboardManager {
	if state == nil {
		state = NewSnapshot()
	}
	cm := &ClipboardManager{
		device:     device,
		state:      state,
		maxPayload: syncTypes.DefaultMaxPayload,
		interval:   DefaultPollInterval,
		log:        logger.Component("monitor"),
	}
	for _, opt := range opts {
		opt(cm)
	}
	return cm
}

// SetRelay wires the transport that receives genuine local changes. It must
// be called before StartMonitoring.
func (cm *ClipboardManager) SetRelay(relay syncTypes.ClipboardBroadcaster) {
	cm.relay = relay
}

func (cm *ClipboardManager) GetClipboard() (string, error) {
	cm.deviceMu.Lock()
	defer cm.deviceMu.Unlock()

	text, err := cm.device.ReadText()
	if err != nil {
		return "", neterrors.ClipboardAccessError("read", err)
	}
	return text, nil
}

// StartMonitoring polls the clipboard every interval until ctx is done. The
// content present at start is the baseline and is not relayed.
func (cm *ClipboardManager) StartMonitoring(ctx context.Context) error {
	cm.log.Info().Dur("interval", cm.interval).Msg("Starting clipboard monitoring")

	if initial, err := cm.GetClipboard(); err != nil {
		cm.log.Warn().Err(err).Msg("Cannot read initial clipboard content")
	} else {
		cm.state.Seed(initial)
	}

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			recovered := panics.Try(func() { cm.Poll(ctx) })
			if recovered != nil {
				cm.log.Error().Err(recovered.AsError()).Msg("Clipboard poll panicked")
			}
		}
	}
}

// Poll runs one monitor tick: read, detect change, drop oversized text,
// suppress echoes of network-applied text, otherwise relay.
func (cm *ClipboardManager) Poll(ctx context.Context) PollResult {
	text, err := cm.GetClipboard()
	if err != nil {
		cm.log.Warn().Err(err).Msg("Clipboard read failed")
		return PollReadFailed
	}

	// Empty text also covers a clipboard holding only non-text content.
	if text == "" {
		return PollEmpty
	}

	if !cm.state.Observe(text) {
		return PollUnchanged
	}

	cm.log.Info().Str("text", logger.Preview(text, 40)).Msg("Change detected")

	if len(text) >= cm.maxPayload {
		cm.log.Warn().
			Int("size", len(text)).
			Int("max", cm.maxPayload).
			Msg("Clipboard text too large, not relayed")
		return PollOversized
	}

	if cm.state.IsEcho(text) {
		cm.log.Info().Msg("Resend bypassed")
		return PollEchoSuppressed
	}

	if cm.relay == nil {
		cm.log.Debug().Msg("No relay configured")
		return PollRelayed
	}
	sent := cm.relay.RelayToPartners(ctx, syncTypes.NewClipboard(text))
	cm.log.Debug().Int("partners", sent).Msg("Clipboard relayed")
	return PollRelayed
}

// ApplyRemoteClipboard writes text received from a partner and records it as
// the last remote value. Both happen under the device lock so a concurrent
// poll never sees the new text before it is known to be remote.
func (cm *ClipboardManager) ApplyRemoteClipboard(text string) error {
	cm.deviceMu.Lock()
	defer cm.deviceMu.Unlock()

	prev, hadPrev := cm.state.SetRemote(text)
	if err := cm.device.WriteText(text); err != nil {
		cm.state.restoreRemote(prev, hadPrev)
		return neterrors.ClipboardAccessError("write", err)
	}

	cm.log.Info().Str("text", logger.Preview(text, 40)).Msg("Applied clipboard from partner")
	return nil
}

func (cm *ClipboardManager) State() *Snapshot {
	return cm.state
}
