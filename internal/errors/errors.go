package errors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindGeneral Kind = iota
	KindClipboardAccess
	KindDecode
	KindSend
	KindAddressResolution
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindClipboardAccess:
		return "clipboard access"
	case KindDecode:
		return "decode"
	case KindSend:
		return "send"
	case KindAddressResolution:
		return "address resolution"
	case KindConfig:
		return "config"
	default:
		return "general"
	}
}

// ErrEmptyPacket is returned when a zero-length datagram is decoded.
var ErrEmptyPacket = New(KindDecode, "empty packet")

type Error struct {
	Kind       Kind
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches another *Error of the same kind. A target with a message only
// matches when the messages are equal too, so sentinels stay distinct.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func NewWithError(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		Underlying: err,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var wrapped *Error
	if errors.As(err, &wrapped) {
		return &Error{
			Kind:       wrapped.Kind,
			Message:    message,
			Underlying: err,
		}
	}

	return &Error{
		Kind:       KindGeneral,
		Message:    message,
		Underlying: err,
	}
}

func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func ClipboardAccessError(op string, err error) *Error {
	return &Error{
		Kind:       KindClipboardAccess,
		Message:    fmt.Sprintf("cannot %s clipboard", op),
		Underlying: err,
	}
}

func DecodeError(err error) *Error {
	return &Error{
		Kind:       KindDecode,
		Message:    "cannot decode datagram",
		Underlying: err,
	}
}

func SendError(target string, err error) *Error {
	return &Error{
		Kind:       KindSend,
		Message:    fmt.Sprintf("cannot send to %s", target),
		Underlying: err,
	}
}

func AddressResolutionError(err error) *Error {
	return &Error{
		Kind:       KindAddressResolution,
		Message:    "cannot determine local address",
		Underlying: err,
	}
}

func ConfigError(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}
