package sync

import (
	"fmt"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
)

const (
	DefaultPort       = 2345
	DefaultMaxPayload = 1200
)

// Kind is the leading tag byte of every datagram.
type Kind byte

const (
	KindClipboard        Kind = 'C'
	KindDiscoveryRequest Kind = 'W'
	KindDiscoveryReply   Kind = 'P'
)

func (k Kind) String() string {
	switch k {
	case KindClipboard:
		return "clipboard"
	case KindDiscoveryRequest:
		return "discovery-request"
	case KindDiscoveryReply:
		return "discovery-reply"
	default:
		return fmt.Sprintf("unknown(%q)", byte(k))
	}
}

// Known reports whether k is one of the tags this node dispatches on.
func (k Kind) Known() bool {
	switch k {
	case KindClipboard, KindDiscoveryRequest, KindDiscoveryReply:
		return true
	}
	return false
}

// Message is one datagram: clipboard text for KindClipboard, the sender's
// address for the discovery kinds.
type Message struct {
	Kind    Kind
	Payload string
}

func NewClipboard(text string) Message {
	return Message{Kind: KindClipboard, Payload: text}
}

func NewDiscoveryRequest(sender string) Message {
	return Message{Kind: KindDiscoveryRequest, Payload: sender}
}

func NewDiscoveryReply(sender string) Message {
	return Message{Kind: KindDiscoveryReply, Payload: sender}
}

// Encode writes the tag byte followed by the raw payload. The datagram
// boundary is the payload boundary, so there is no length prefix.
func (m Message) Encode() []byte {
	buf := make([]byte, 0, len(m.Payload)+1)
	buf = append(buf, byte(m.Kind))
	return append(buf, m.Payload...)
}

// Decode splits a datagram into tag and payload. Unknown tags are not an
// error here; callers ignore kinds they do not know.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return Message{}, neterrors.DecodeError(neterrors.ErrEmptyPacket)
	}
	return Message{
		Kind:    Kind(data[0]),
		Payload: string(data[1:]),
	}, nil
}
