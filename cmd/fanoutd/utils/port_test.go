package utils

import (
	"errors"
	"testing"

	"github.com/concave-dev/fanout/internal/netutil"
)

// TestPreBindServiceListener_Explicit tests that a busy explicit port fails
func TestPreBindServiceListener_Explicit(t *testing.T) {
	busy, _, err := PreBindServiceListener("test", false, "127.0.0.1", 0, 1)
	if err != nil {
		t.Fatalf("PreBindServiceListener() error = %v", err)
	}
	defer busy.Close()

	port, err := netutil.ListenerPort(busy)
	if err != nil {
		t.Fatalf("ListenerPort() error = %v", err)
	}

	_, _, err = PreBindServiceListener("test", true, "127.0.0.1", port, 10)
	var inUse *netutil.AddressInUseError
	if !errors.As(err, &inUse) {
		t.Errorf("PreBindServiceListener() on busy explicit port error = %v, want AddressInUseError", err)
	}
}
