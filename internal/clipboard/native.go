package clipboard

import (
	atotto "github.com/atotto/clipboard"

	neterrors "github.com/victorvcruz/netclip/internal/errors"
)

// Device is the OS clipboard as seen by a node: plain text in, plain text out.
type Device interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// NativeClipboard talks to the system clipboard (xclip/xsel/wl-clipboard on
// Linux, pbcopy on macOS, the Win32 API on Windows).
type NativeClipboard struct{}

func NewNativeClipboard() (*NativeClipboard, error) {
	if atotto.Unsupported {
		return nil, neterrors.New(neterrors.KindClipboardAccess,
			"no clipboard utility found, install xclip, xsel or wl-clipboard")
	}
	return &NativeClipboard{}, nil
}

func (nc *NativeClipboard) ReadText() (string, error) {
	return atotto.ReadAll()
}

func (nc *NativeClipboard) WriteText(text string) error {
	return atotto.WriteAll(text)
}

// UnavailableDevice stands in when no clipboard backend can be opened. Every
// read and write fails with Reason, which ClipboardManager reports as a
// ClipboardAccessError, so the node keeps serving the network.
type UnavailableDevice struct {
	Reason error
}

func (d UnavailableDevice) ReadText() (string, error) {
	return "", d.Reason
}

func (d UnavailableDevice) WriteText(string) error {
	return d.Reason
}
