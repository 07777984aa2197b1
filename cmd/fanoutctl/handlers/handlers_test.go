package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/concave-dev/fanout/cmd/fanoutctl/config"
	"github.com/concave-dev/fanout/cmd/fanoutctl/display"
	"github.com/concave-dev/fanout/internal/logging"
)

// fakeDaemon serves canned API responses and points the CLI config at it.
func fakeDaemon(t *testing.T) *bytes.Buffer {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/dispatch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"request_id":"0011aabbccdd","delta":2,"after":5,
			"before":3,"target_id":777,"name":"alice","status":1,"group":"BR","mode":"rotating",
			"batch_size":5,"before_reliable":true,"after_reliable":true,
			"dispatch":{"attempted":5,"succeeded":5,"failed":0,"counts":{"success":5},"elapsed_ns":0}}}`))
	})
	mux.HandleFunc("/api/v1/pools", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","count":1,"data":[
			{"group":"BR","pool":"br","dispatch":250,"measurement":1,"cursor":100}]}`))
	})
	mux.HandleFunc("/api/v1/pools/reload", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"purged":true}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	saved := config.Global
	savedDispatch := config.Dispatch
	savedOut := display.Out
	t.Cleanup(func() {
		config.Global = saved
		config.Dispatch = savedDispatch
		display.Out = savedOut
		logging.RestoreOutput()
	})

	config.Global.APIAddr = strings.TrimPrefix(srv.URL, "http://")
	config.Global.Timeout = 5
	config.Global.LogLevel = "ERROR"
	config.Global.Output = "table"
	config.Global.Verbose = false

	var buf bytes.Buffer
	display.Out = &buf
	return &buf
}

// TestHandleDispatch tests the dispatch command against a fake daemon
func TestHandleDispatch(t *testing.T) {
	out := fakeDaemon(t)
	config.Dispatch.Target = 777
	config.Dispatch.Group = "BR"
	config.Dispatch.Mode = "rotating"

	if err := HandleDispatch(nil, nil); err != nil {
		t.Fatalf("HandleDispatch() error = %v", err)
	}
	if !strings.Contains(out.String(), "777 (alice)") || !strings.Contains(out.String(), "+2") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

// TestHandlePools tests the pools command outside watch mode
func TestHandlePools(t *testing.T) {
	out := fakeDaemon(t)
	config.Pools.Watch = false

	if err := HandlePools(nil, nil); err != nil {
		t.Fatalf("HandlePools() error = %v", err)
	}
	if !strings.Contains(out.String(), "BR") || !strings.Contains(out.String(), "250") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

// TestHandlePoolsReload tests the reload command
func TestHandlePoolsReload(t *testing.T) {
	out := fakeDaemon(t)

	if err := HandlePoolsReload(nil, nil); err != nil {
		t.Fatalf("HandlePoolsReload() error = %v", err)
	}
	if out.Len() == 0 {
		t.Error("reload printed nothing")
	}
}

// TestHandleHealth_Unreachable tests that a missing daemon is reported
func TestHandleHealth_Unreachable(t *testing.T) {
	fakeDaemon(t)
	config.Global.APIAddr = "127.0.0.1:1"

	if err := HandleHealth(nil, nil); err == nil {
		t.Fatal("HandleHealth() = nil error, want error")
	}
}
