// Package netutil provides listener binding and network error classification
// shared by fanoutd and fanoutctl.
//
// This file implements pre-binding of service listeners. The daemon binds
// its API port itself and hands the open listener to the HTTP server, so a
// port reported as free is actually held, with no window between checking
// and binding in which another process could take it.
//
// BINDING MODES:
//   - Explicit port: BindTCP binds exactly the requested port and reports
//     an *AddressInUseError when it is taken
//   - Preferred port: BindTCPWithFallback walks upward from the preferred
//     port until it finds a free one
package netutil

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// DefaultMaxAttempts bounds the port search in BindTCPWithFallback.
const DefaultMaxAttempts = 100

// AddressInUseError is returned by BindTCP when the port is taken. It wraps
// the underlying error so IsAddressInUseError still matches.
type AddressInUseError struct {
	Port    int
	Address string
	Err     error
}

// Error returns a message naming the port and address.
func (e *AddressInUseError) Error() string {
	return fmt.Sprintf("port %d is already in use on %s", e.Port, e.Address)
}

// Unwrap returns the bind error, so errors.Is still sees EADDRINUSE.
func (e *AddressInUseError) Unwrap() error {
	return e.Err
}

// BindTCP binds a TCP listener on address:port and holds it, so the port is
// reserved before the HTTP server is handed the listener.
func BindTCP(address string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(address, strconv.Itoa(port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if IsAddressInUseError(err) {
			return nil, &AddressInUseError{Port: port, Address: address, Err: err}
		}
		return nil, fmt.Errorf("failed to bind TCP to %s: %w", addr, err)
	}
	return listener, nil
}

// BindTCPWithFallback tries preferredPort first and walks upward while ports
// are in use, at most maxAttempts ports. Any other bind error stops the
// search. Returns the listener and the port actually bound.
func BindTCPWithFallback(address string, preferredPort, maxAttempts int) (net.Listener, int, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for port := preferredPort; port < preferredPort+maxAttempts && port <= 65535; port++ {
		listener, err := BindTCP(address, port)
		if err != nil {
			var inUse *AddressInUseError
			if errors.As(err, &inUse) {
				continue
			}
			return nil, 0, fmt.Errorf("failed to bind TCP starting from port %d: %w", preferredPort, err)
		}
		return listener, port, nil
	}

	return nil, 0, fmt.Errorf("no available TCP port found in range %d-%d on %s",
		preferredPort, preferredPort+maxAttempts-1, address)
}

// ListenerPort returns the port a TCP listener is bound to.
func ListenerPort(listener net.Listener) (int, error) {
	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("listener is not a TCP listener: %T", listener.Addr())
	}
	return tcpAddr.Port, nil
}
