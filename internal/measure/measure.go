// Package measure reads the remote counter around a dispatch and computes the
// observed delta.
//
// The remote counter is not always available. A failed read is never fatal:
// it yields a zero reading flagged unreliable together with a
// *MeasurementError, and the caller decides how to degrade.
//
// MEASUREMENT FLOW:
//  1. Encode the counter query for the target through the codec
//  2. Send it with the group's measurement credential, one remote call
//  3. Decode the reply into count, account id and display name
//
// Any failure along the way (encoding, transport, timeout, a non-200 status
// or an undecodable body) produces the same unreliable reading. The counter
// is read once before and once after each dispatch; ComputeDelta turns the
// pair into a signed delta and a Status.
package measure

import (
	"context"
	"errors"
	"fmt"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/remote"
)

// ErrMeasurementUnreliable matches every *MeasurementError.
var ErrMeasurementUnreliable = errors.New("counter measurement unreliable")

// MeasurementError describes a failed counter read.
type MeasurementError struct {
	Group  string
	Target uint64
	Err    error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("counter read for %d in %s failed: %v", e.Target, e.Group, e.Err)
}

func (e *MeasurementError) Unwrap() error { return e.Err }

// Is reports ErrMeasurementUnreliable as a match.
func (e *MeasurementError) Is(target error) bool {
	return target == ErrMeasurementUnreliable
}

// Reading is one counter observation. The zero value is the unreliable
// reading returned on failure.
type Reading struct {
	Count     int64  // Counter value at read time
	AccountID uint64 // Account id reported by the remote, 0 if absent
	Name      string // Display name reported by the remote, may be empty
	Reliable  bool   // False when the read failed and Count is meaningless
}

// Status classifies a delta. The numeric values are part of the response
// format.
type Status int

const (
	Increased Status = 1 // after > before
	Unchanged Status = 2 // after == before
	Decreased Status = 3 // after < before
)

// String returns the lower-case status name shown by the CLI.
func (s Status) String() string {
	switch s {
	case Increased:
		return "increased"
	case Unchanged:
		return "unchanged"
	case Decreased:
		return "decreased"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ComputeDelta returns after minus before and its direction. For example
// (10, 15) gives (5, Increased) and (10, 7) gives (-3, Decreased).
func ComputeDelta(before, after int64) (int64, Status) {
	delta := after - before
	switch {
	case delta > 0:
		return delta, Increased
	case delta == 0:
		return delta, Unchanged
	default:
		return delta, Decreased
	}
}

// Reader performs counter reads through a remote client.
type Reader struct {
	client remote.Client
	codec  remote.Codec
}

// NewReader creates a counter reader. The client is usually the same one
// the dispatch engine uses; counter calls are told apart by their Kind.
func NewReader(client remote.Client, codec remote.Codec) *Reader {
	return &Reader{client: client, codec: codec}
}

// ReadCounter reads target's counter in group with cred.
//
// On success the reading is marked reliable. On failure it returns the zero
// Reading and a *MeasurementError matching ErrMeasurementUnreliable, after
// logging a warning; it never panics and never retries.
func (r *Reader) ReadCounter(ctx context.Context, group string, target uint64, cred credential.Credential) (Reading, error) {
	fail := func(err error) (Reading, error) {
		merr := &MeasurementError{Group: group, Target: target, Err: err}
		logging.Warn("%v", merr)
		return Reading{}, merr
	}

	payload, err := r.codec.EncodeCounterQuery(target)
	if err != nil {
		return fail(fmt.Errorf("encode query: %w", err))
	}

	result := r.client.Do(ctx, remote.Call{
		Kind:       remote.KindCounter,
		Group:      group,
		Credential: cred,
		Payload:    payload,
	})
	if !result.Outcome.OK() {
		return fail(fmt.Errorf("remote call: %s", result.Outcome))
	}

	info, err := r.codec.DecodeCounter(result.Body)
	if err != nil {
		return fail(err)
	}

	return Reading{
		Count:     info.Count,
		AccountID: info.AccountID,
		Name:      info.Name,
		Reliable:  true,
	}, nil
}
