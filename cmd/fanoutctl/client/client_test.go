package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a client at handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *FanoutAPIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFanoutAPIClient(strings.TrimPrefix(srv.URL, "http://"), 5)
}

// TestDispatch tests request encoding and response decoding
func TestDispatch(t *testing.T) {
	var got DispatchRequest
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/dispatch" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"delta":2,"after":5,"before":3,"target_id":12345,
			"name":"N/A","status":1,"group":"BR","mode":"rotating","batch_size":5,
			"dispatch":{"attempted":5,"succeeded":5,"failed":0,"counts":{"success":5},"elapsed_ns":1500000000}}}`))
	})

	resp, err := api.Dispatch(DispatchRequest{TargetID: 12345, Group: "BR", Mode: "rotating"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got.TargetID != 12345 || got.Group != "BR" {
		t.Errorf("sent body = %+v", got)
	}
	if resp.Delta != 2 || resp.BatchSize != 5 || resp.Dispatch.Succeeded != 5 {
		t.Errorf("response = %+v", resp)
	}
	if resp.Status.String() != "increased" {
		t.Errorf("Status = %v, want increased", resp.Status)
	}
	if resp.Dispatch.Elapsed.Seconds() != 1.5 {
		t.Errorf("Elapsed = %v, want 1.5s", resp.Dispatch.Elapsed)
	}
}

// TestDispatch_ErrorEnvelope tests that error bodies surface in the error
func TestDispatch_ErrorEnvelope(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","error":"Invalid group","details":"bad name"}`))
	})

	_, err := api.Dispatch(DispatchRequest{TargetID: 1, Group: "??"})
	if err == nil {
		t.Fatal("Dispatch() = nil error, want error")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "Invalid group: bad name") {
		t.Errorf("error = %q", err)
	}
}

// TestGetPools tests decoding of the pools list
func TestGetPools(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","count":2,"data":[
			{"group":"BR","pool":"br","dispatch":250,"measurement":1,"cursor":100},
			{"group":"IND","pool":"ind","dispatch":0,"measurement":0,"cursor":0}]}`))
	})

	pools, err := api.GetPools()
	if err != nil {
		t.Fatalf("GetPools() error = %v", err)
	}
	if len(pools) != 2 || pools[0].Dispatch != 250 || pools[0].Cursor != 100 {
		t.Errorf("pools = %+v", pools)
	}
}

// TestReloadPools tests the reload call
func TestReloadPools(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/pools/reload" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"purged":true}}`))
	})

	purged, err := api.ReloadPools()
	if err != nil || !purged {
		t.Errorf("ReloadPools() = %v, %v; want true, nil", purged, err)
	}
}

// TestGetHealth_Degraded tests that a 503 health report is still returned
func TestGetHealth_Degraded(t *testing.T) {
	api := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","version":"0.3.0","uptime":"1m0s",
			"checks":[{"name":"redis","status":"unhealthy","message":"connection refused"}]}`))
	})

	health, err := api.GetHealth()
	if err != nil {
		t.Fatalf("GetHealth() error = %v", err)
	}
	if health.Status != "degraded" || len(health.Checks) != 1 {
		t.Errorf("health = %+v", health)
	}
}

// TestConnectionRefused tests the error for an unreachable daemon
func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	api := NewFanoutAPIClient(addr, 1)
	api.client.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(time.Millisecond)

	_, err := api.GetPools()
	if err == nil || !strings.Contains(err.Error(), "failed to connect") {
		t.Errorf("GetPools() error = %v, want connection failure", err)
	}
}
