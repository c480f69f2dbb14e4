package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{name: "clipboard", msg: NewClipboard("hello"), want: "Chello"},
		{name: "discovery request", msg: NewDiscoveryRequest("10.0.0.5"), want: "W10.0.0.5"},
		{name: "discovery reply", msg: NewDiscoveryReply("10.0.0.9"), want: "P10.0.0.9"},
		{name: "empty clipboard payload", msg: NewClipboard(""), want: "C"},
		{name: "utf-8 payload", msg: NewClipboard("naïve ☃"), want: "Cnaïve ☃"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, []byte(tt.want), tt.msg.Encode())
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		wantKind  Kind
		wantText  string
		wantKnown bool
	}{
		{name: "clipboard", data: []byte("Chello"), wantKind: KindClipboard, wantText: "hello", wantKnown: true},
		{name: "request", data: []byte("W10.0.0.5"), wantKind: KindDiscoveryRequest, wantText: "10.0.0.5", wantKnown: true},
		{name: "reply", data: []byte("P10.0.0.9"), wantKind: KindDiscoveryReply, wantText: "10.0.0.9", wantKnown: true},
		{name: "tag only", data: []byte("C"), wantKind: KindClipboard, wantText: "", wantKnown: true},
		{name: "unknown tag", data: []byte("Zpayload"), wantKind: Kind('Z'), wantText: "payload", wantKnown: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.wantKind, msg.Kind)
			require.Equal(t, tt.wantText, msg.Payload)
			require.Equal(t, tt.wantKnown, msg.Kind.Known())
		})
	}
}

func TestDecodeEmptyPacket(t *testing.T) {
	for _, data := range [][]byte{nil, {}} {
		_, err := Decode(data)
		require.Error(t, err)
		require.True(t, errors.Is(err, neterrors.ErrEmptyPacket))
		require.True(t, neterrors.IsKind(err, neterrors.KindDecode))
	}
}

func TestKindString(t *testing.T) {
	require.Equal(t, "clipboard", KindClipboard.String())
	require.Equal(t, "discovery-request", KindDiscoveryRequest.String())
	require.Equal(t, "discovery-reply", KindDiscoveryReply.String())
	require.Equal(t, "unknown('x')", Kind('x').String())
}
