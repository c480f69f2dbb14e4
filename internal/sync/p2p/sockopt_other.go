//go:build !unix && !windows

package p2p

import "syscall"

func reuseAddress(_, _ string, _ syscall.RawConn) error {
	return nil
}
