// Package remote talks to the remote service that dispatched actions and
// counter reads are sent to.
//
// This file implements the transport-neutral call types. The dispatch engine
// and the measurement reader only see Client, so both are tested against
// in-process fakes built with ClientFunc.
package remote

import (
	"context"

	"github.com/concave-dev/fanout/internal/credential"
)

// Kind selects which remote operation a call performs.
type Kind int

const (
	// KindAction sends the dispatched action.
	KindAction Kind = iota
	// KindCounter reads the counter for a target.
	KindCounter
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	if k == KindCounter {
		return "counter"
	}
	return "action"
}

// Call is one remote request. Payload is already encoded, and sealed if the
// codec seals; the client sends it as is.
type Call struct {
	Kind       Kind                  // Action or counter read
	Group      string                // Selects the endpoint for the call
	Credential credential.Credential // Sent as the bearer token
	Payload    []byte                // Encoded request body
}

// Result carries the classified outcome and, for answered calls, the body.
type Result struct {
	Outcome Outcome // Classified result of the call
	Body    []byte  // Response body; nil when the call got no answer
}

// Client performs remote calls. Implementations never return errors: every
// failure is reported through Result.Outcome. Do must honour ctx deadlines.
type Client interface {
	Do(ctx context.Context, call Call) Result
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, call Call) Result

// Do calls f.
func (f ClientFunc) Do(ctx context.Context, call Call) Result {
	return f(ctx, call)
}
