// Package utils contains startup helpers for the fanout daemon.
// This includes listener pre-binding used between config validation and
// server startup.
package utils

import (
	"fmt"
	"net"

	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/netutil"
)

// PreBindServiceListener binds the listener for a service before it starts,
// so the port is held from validation through startup.
//
// An explicitly configured port must be free. Otherwise the search walks up
// from port, at most maxPorts ports. Returns the listener and the bound port.
func PreBindServiceListener(serviceName string, explicitlySet bool, addr string, port, maxPorts int) (net.Listener, int, error) {
	if explicitlySet {
		listener, err := netutil.BindTCP(addr, port)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to bind %s listener: %w", serviceName, err)
		}
		logging.Info("Pre-bound %s listener to %s:%d", serviceName, addr, port)
		return listener, port, nil
	}

	logging.Info("Pre-binding %s listener starting from port %d", serviceName, port)
	listener, actualPort, err := netutil.BindTCPWithFallback(addr, port, maxPorts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to pre-bind %s listener: %w", serviceName, err)
	}
	if actualPort != port {
		logging.Warn("Default %s port %d was busy, pre-bound to port %d", serviceName, port, actualPort)
	} else {
		logging.Info("Pre-bound %s listener to port %d", serviceName, actualPort)
	}
	return listener, actualPort, nil
}
