package measure

import (
	"context"
	"errors"
	"testing"

	"github.com/concave-dev/fanout/internal/credential"
	"github.com/concave-dev/fanout/internal/remote"
)

// fakeCodec passes bodies through a fixed decode result
type fakeCodec struct {
	info remote.CounterInfo
	err  error
}

func (f fakeCodec) EncodeAction(target uint64, region string) ([]byte, error) {
	return []byte("a"), nil
}
func (f fakeCodec) EncodeCounterQuery(target uint64) ([]byte, error)      { return []byte("q"), nil }
func (f fakeCodec) DecodeCounter(body []byte) (remote.CounterInfo, error) { return f.info, f.err }

// TestComputeDelta tests the delta and its status
func TestComputeDelta(t *testing.T) {
	tests := []struct {
		before, after int64
		delta         int64
		status        Status
	}{
		{10, 15, 5, Increased},
		{10, 10, 0, Unchanged},
		{10, 7, -3, Decreased},
		{0, 0, 0, Unchanged},
	}
	for _, tt := range tests {
		delta, status := ComputeDelta(tt.before, tt.after)
		if delta != tt.delta || status != tt.status {
			t.Errorf("ComputeDelta(%d, %d) = (%d, %v), want (%d, %v)",
				tt.before, tt.after, delta, status, tt.delta, tt.status)
		}
	}
	if Increased != 1 || Unchanged != 2 || Decreased != 3 {
		t.Error("status codes changed")
	}
}

// TestReadCounter tests successful and failing reads
func TestReadCounter(t *testing.T) {
	cred := credential.Credential{Token: "m"}
	ok := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		if call.Kind != remote.KindCounter || string(call.Payload) != "q" || call.Credential != cred {
			t.Errorf("unexpected call %+v", call)
		}
		return remote.Result{Outcome: remote.StatusOutcome(200), Body: []byte("body")}
	})
	rejected := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		return remote.Result{Outcome: remote.StatusOutcome(401)}
	})
	timedOut := remote.ClientFunc(func(ctx context.Context, call remote.Call) remote.Result {
		return remote.Result{Outcome: remote.Outcome{Code: remote.TimedOut}}
	})

	good := fakeCodec{info: remote.CounterInfo{Count: 3, AccountID: 42, Name: "bob"}}
	bad := fakeCodec{err: remote.ErrNoCounter}

	reading, err := NewReader(ok, good).ReadCounter(context.Background(), "BR", 42, cred)
	if err != nil {
		t.Fatalf("ReadCounter() error = %v", err)
	}
	want := Reading{Count: 3, AccountID: 42, Name: "bob", Reliable: true}
	if reading != want {
		t.Errorf("ReadCounter() = %+v, want %+v", reading, want)
	}

	failures := []struct {
		name   string
		reader *Reader
	}{
		{"rejected", NewReader(rejected, good)},
		{"timeout", NewReader(timedOut, good)},
		{"undecodable", NewReader(ok, bad)},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := tt.reader.ReadCounter(context.Background(), "BR", 42, cred)
			if !errors.Is(err, ErrMeasurementUnreliable) {
				t.Fatalf("error = %v, want ErrMeasurementUnreliable", err)
			}
			var merr *MeasurementError
			if !errors.As(err, &merr) || merr.Target != 42 || merr.Group != "BR" {
				t.Errorf("error = %#v, want *MeasurementError for 42/BR", err)
			}
			if reading != (Reading{}) {
				t.Errorf("reading = %+v, want zero unreliable reading", reading)
			}
		})
	}
}
