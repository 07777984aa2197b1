package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// TestHandleHealth tests the health handler response
func TestHandleHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	version := "1.0.0"
	startTime := time.Now().Add(-30 * time.Minute)

	router := gin.New()
	router.GET("/health", HandleHealth(version, startTime))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("HandleHealth() status = %d, want %d", w.Code, http.StatusOK)
	}

	var response HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Status != "healthy" {
		t.Errorf("HandleHealth() status = %q, want \"healthy\"", response.Status)
	}
	if response.Version != version {
		t.Errorf("HandleHealth() version = %q, want %q", response.Version, version)
	}
	if time.Since(response.Timestamp) > 5*time.Second {
		t.Error("HandleHealth() timestamp is not recent")
	}
	if response.Uptime == "" {
		t.Error("HandleHealth() uptime is empty")
	}
	if len(response.Checks) != 0 {
		t.Errorf("HandleHealth() checks = %v, want none", response.Checks)
	}
}

// TestHandleHealth_Checks tests that a failing dependency degrades health
func TestHandleHealth_Checks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := Checker{Name: "pools", Check: func(ctx context.Context) error { return nil }}
	down := Checker{Name: "redis", Check: func(ctx context.Context) error { return errors.New("connection refused") }}

	router := gin.New()
	router.GET("/health", HandleHealth("1.0.0", time.Now(), ok, down))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var response HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "degraded" || len(response.Checks) != 2 {
		t.Fatalf("response = %+v", response)
	}
	if response.Checks[0].Status != "healthy" || response.Checks[1].Status != "unhealthy" {
		t.Errorf("checks = %+v", response.Checks)
	}
	if response.Checks[1].Message != "connection refused" {
		t.Errorf("check message = %q", response.Checks[1].Message)
	}
}
