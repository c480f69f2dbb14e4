package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"golang.org/x/term"

	"github.com/victorvcruz/netclip/internal/clipboard"
	"github.com/victorvcruz/netclip/internal/logger"
	"github.com/victorvcruz/netclip/internal/network/ip"
	"github.com/victorvcruz/netclip/internal/sync"
	"github.com/victorvcruz/netclip/internal/sync/p2p"
)

type App struct {
	version     string
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	newDevice   func() (clipboard.Device, error)
}

func New(version string) *App {
	return &App{
		version:     version,
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		newDevice: func() (clipboard.Device, error) {
			return clipboard.NewNativeClipboard()
		},
	}
}

// Run starts one node and blocks until ctx is cancelled or the operator
// quits from the console.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	nodeID := uuid.NewString()
	logger.SetNode(nodeID[:8])
	log := logger.Component("node")

	if rendered, err := cfg.YAML(); err == nil {
		log.Debug().Str("node_id", nodeID).Msg("Effective configuration:\n" + rendered)
	}

	device, err := a.newDevice()
	if err != nil {
		log.Warn().Err(err).Msg("Clipboard unavailable, only discovery and relay will work")
		device = clipboard.UnavailableDevice{Reason: err}
	}

	local := a.resolveLocalAddress(cfg, log)

	monitor := clipboard.NewClipboardManager(device, clipboard.NewSnapshot(),
		clipboard.WithPollInterval(cfg.PollInterval),
		clipboard.WithMaxPayload(cfg.MaxPayload),
	)
	registry := p2p.NewRegistry(local)
	transport := p2p.NewClipboardSync(p2p.Settings{
		LocalAddress:     local,
		BroadcastAddress: cfg.BroadcastAddress,
		ListenAddress:    cfg.ListenAddress,
		Port:             cfg.Port,
		MaxPayload:       cfg.MaxPayload,
	}, registry, monitor)
	monitor.SetRelay(transport)

	if added := transport.RegisterStatic(cfg.Partners); added > 0 {
		log.Info().Int("partners", added).Msg("Registered configured partners")
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := transport.Listen(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Int("port", cfg.Port).Msg("UDP listener unavailable, running send-only")
		}
	})
	wg.Go(func() {
		if err := monitor.StartMonitoring(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Clipboard monitoring error")
		}
	})
	if cfg.PeerReportInterval > 0 {
		wg.Go(func() { a.reportPeers(ctx, registry, cfg.PeerReportInterval) })
	}

	transport.Discover(ctx)
	a.printStartupInfo(local, cfg.Port)

	if a.interactive {
		// Control blocks on input and cannot be interrupted, so it is not
		// part of the wait group.
		go func() {
			if err := Control(ctx, a.in, transport); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("Console input failed")
			}
			cancel()
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down...")
	cancel()
	wg.Wait()
	log.Info().Msg("Goodbye!")
	return nil
}

func (a *App) resolveLocalAddress(cfg *Config, log zerolog.Logger) string {
	if cfg.LocalAddress != "" {
		return cfg.LocalAddress
	}

	local, err := ip.LocalAddress()
	if err != nil {
		log.Warn().Err(err).Msg("Discovery broadcast will be skipped until an address is configured")
		return ip.UnknownAddress
	}
	return local
}

func (a *App) printStartupInfo(local string, port int) {
	title := color.New(color.FgGreen, color.Bold)
	hint := color.New(color.FgHiBlack)

	title.Fprintf(a.out, "NetClip %s daemon started on %s:%d\n", a.version, local, port) //nolint:errcheck
	hint.Fprintln(a.out, "Press 'w' to re-send discovery, 'x' or 'q' to quit")          //nolint:errcheck
}

func (a *App) reportPeers(ctx context.Context, peers sync.PeerManager, interval time.Duration) {
	log := logger.Component("node")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count := peers.Count(); count > 0 {
				log.Info().Int("partners", count).Msg(fmt.Sprintf("Connected to %d partner(s)", count))
			} else {
				log.Info().Msg("No partners discovered yet...")
			}
		}
	}
}
