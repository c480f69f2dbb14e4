package app

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/victorvcruz/netclip/internal/logger"
	syncTypes "github.com/victorvcruz/netclip/internal/sync"
)

// Control reads operator keys from r one byte at a time. 'x' or 'q' (or end
// of input) ends the loop, 'w' re-sends the discovery broadcast, anything
// else is ignored.
func Control(ctx context.Context, r io.Reader, discoverer syncTypes.Discoverer) error {
	log := logger.Component("console")
	in := bufio.NewReader(r)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key, err := in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info().Msg("Console input closed")
				return nil
			}
			return err
		}

		switch key {
		case 'x', 'q':
			log.Info().Str("key", string(key)).Msg("Quit requested")
			return nil
		case 'w':
			log.Info().Msg("Re-sending discovery broadcast")
			discoverer.Discover(ctx)
		case '\n', '\r':
			log.Debug().Msg("Ignoring newline")
		default:
			log.Info().Str("key", string(key)).Msg("Unknown command")
		}
	}
}
