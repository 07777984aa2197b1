// Package netutil provides listener binding and network error classification
// shared by fanoutd and fanoutctl.
//
// This file implements type-based detection of the two network errors the
// binaries react to. Error strings differ between platforms and Go versions,
// so matching is done on the syscall errno wrapped in *net.OpError.
//
// USAGE:
//   - Address in use: fanoutd falls back to the next free API port
//   - Connection refused: fanoutctl retries, then reports that the daemon is
//     not running
package netutil

import (
	"errors"
	"net"
	"syscall"
)

// IsAddressInUseError reports whether err is an "address already in use"
// failure from a bind. Type based, so it behaves the same across platforms.
func IsAddressInUseError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.EADDRINUSE)
	}
	return false
}

// IsConnectionRefusedError reports whether err is a refused TCP connection,
// typically fanoutctl talking to a daemon that is not running.
func IsConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}
	return false
}
