// Package remote talks to the remote service that dispatched actions and
// counter reads are sent to.
//
// The Client interface is what the dispatch engine and the measurement reader
// depend on; HTTPClient is the production implementation over resty. Payloads
// are produced by a Codec, which encodes the binary request messages and
// decodes counter responses.
//
// This file implements the outcome taxonomy every call is classified into.
//
// OUTCOME CODES:
//   - success: the service answered 200
//   - rejected: any other status; the status is kept on the Outcome
//   - timeout: the per-call deadline expired before an answer
//   - transport_error: connection failures, TLS errors and blank tokens
//
// Only success counts as a succeeded call. The code names are used as
// metric labels and as keys of the dispatch report's counts.
package remote

import "fmt"

// Code classifies the outcome of one remote call.
type Code int

const (
	// Success means the remote service answered 200.
	Success Code = iota
	// RemoteRejected means the service answered with any other status.
	RemoteRejected
	// TimedOut means the per-call deadline expired.
	TimedOut
	// TransportError covers connection failures and unusable credentials.
	TransportError
)

// Codes lists every outcome code in a stable order, for tallies and metrics.
var Codes = []Code{Success, RemoteRejected, TimedOut, TransportError}

// String returns the code name used in logs, metrics and JSON.
func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case RemoteRejected:
		return "rejected"
	case TimedOut:
		return "timeout"
	case TransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// MarshalText encodes the code by name.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Outcome is the classified result of one call. Status holds the HTTP status
// when the service answered, zero otherwise.
type Outcome struct {
	Code   Code  `json:"code"`
	Status int   `json:"status,omitempty"`
	Err    error `json:"-"`
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Code == Success
}

func (o Outcome) String() string {
	switch {
	case o.Status != 0:
		return fmt.Sprintf("%s (%d)", o.Code, o.Status)
	case o.Err != nil:
		return fmt.Sprintf("%s: %v", o.Code, o.Err)
	default:
		return o.Code.String()
	}
}

// StatusOutcome classifies an HTTP status.
func StatusOutcome(status int) Outcome {
	if status == 200 {
		return Outcome{Code: Success, Status: status}
	}
	return Outcome{Code: RemoteRejected, Status: status}
}
