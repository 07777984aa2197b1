// Package client provides the fanoutd REST API client used by fanoutctl.
//
// Responses use the daemon's envelope, {"status":"success","data":...} on
// success and {"status":"error","error":...} on failure. Data payloads decode
// straight into the daemon's own response types.
//
// RETRY POLICY:
// Only connection-refused errors are retried, three times with backoff up to
// 3s. Timeouts and HTTP errors are never retried: the daemon may already have
// run the batch, and a retry would dispatch it again under a new request id.
//
// TIMEOUTS:
// The client timeout applies to the whole request. A dispatch answers only
// after every call of the batch has finished, so --timeout must exceed the
// daemon's request budget.
package client

import (
	"fmt"
	"time"

	"github.com/concave-dev/fanout/cmd/fanoutctl/config"
	"github.com/concave-dev/fanout/internal/api/handlers"
	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/netutil"
	"github.com/concave-dev/fanout/internal/orchestrator"
	"github.com/go-resty/resty/v2"
)

// envelope is the standard fanoutd response body.
type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
	Count  int    `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

// errorBody is decoded from non-2xx responses.
type errorBody struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DispatchRequest is the body of POST /dispatch.
type DispatchRequest struct {
	TargetID uint64 `json:"target_id"`
	Group    string `json:"group"`
	Mode     string `json:"mode,omitempty"`
}

// FanoutAPIClient talks to one fanoutd instance. It is safe for concurrent
// use, though fanoutctl issues one request per command.
type FanoutAPIClient struct {
	client  *resty.Client
	baseURL string
}

// NewFanoutAPIClient creates a client for the daemon at apiAddr with a
// request timeout in seconds.
func NewFanoutAPIClient(apiAddr string, timeout int) *FanoutAPIClient {
	client := resty.New()
	baseURL := fmt.Sprintf("http://%s/api/v1", apiAddr)

	client.SetLogger(logging.RestyLogger{})

	client.
		SetTimeout(time.Duration(timeout)*time.Second).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("fanoutctl/%s", config.Version))

	// A refused connection never reached the daemon, so retrying cannot
	// repeat a dispatch.
	client.
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil && netutil.IsConnectionRefusedError(err)
		})

	// Request tracing, visible with DEBUG=true
	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logging.Debug("Making API request: %s %s", req.Method, req.URL)
		return nil
	})
	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logging.Debug("API response: %d %s (took %v)", resp.StatusCode(), resp.Status(), resp.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("API request failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &FanoutAPIClient{client: client, baseURL: baseURL}
}

// CreateAPIClient creates a client from the global CLI configuration.
func CreateAPIClient() *FanoutAPIClient {
	return NewFanoutAPIClient(config.Global.APIAddr, config.Global.Timeout)
}

// BaseURL returns the API base URL.
func (api *FanoutAPIClient) BaseURL() string {
	return api.baseURL
}

// Dispatch runs one dispatch request and waits for its result. The request
// is sent as a JSON body; the daemon applies the default mode when Mode is
// empty.
func (api *FanoutAPIClient) Dispatch(req DispatchRequest) (*orchestrator.Response, error) {
	var response envelope[orchestrator.Response]
	var apiErr errorBody

	resp, err := api.client.R().
		SetBody(req).
		SetResult(&response).
		SetError(&apiErr).
		Post("/dispatch")
	if err := api.check(resp, err, &apiErr); err != nil {
		return nil, err
	}
	return &response.Data, nil
}

// GetPools returns pool sizes and rotation cursors for every known group, in
// the daemon's configured group order.
func (api *FanoutAPIClient) GetPools() ([]orchestrator.PoolStatus, error) {
	var response envelope[[]orchestrator.PoolStatus]
	var apiErr errorBody

	resp, err := api.client.R().
		SetResult(&response).
		SetError(&apiErr).
		Get("/pools")
	if err := api.check(resp, err, &apiErr); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ReloadPools asks the daemon to drop cached pools. Reports whether a cache
// was purged.
func (api *FanoutAPIClient) ReloadPools() (bool, error) {
	var response envelope[struct {
		Purged bool `json:"purged"`
	}]
	var apiErr errorBody

	resp, err := api.client.R().
		SetResult(&response).
		SetError(&apiErr).
		Post("/pools/reload")
	if err := api.check(resp, err, &apiErr); err != nil {
		return false, err
	}
	return response.Data.Purged, nil
}

// GetHealth returns the daemon health report. A degraded daemon answers 503
// with a full report, which is returned without error.
func (api *FanoutAPIClient) GetHealth() (*handlers.HealthResponse, error) {
	var health handlers.HealthResponse

	resp, err := api.client.R().
		SetResult(&health).
		SetError(&health).
		Get("/health")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 503 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return &health, nil
}

// check turns transport failures and error envelopes into errors. Error
// envelopes with details are reported as "<error>: <details>"; bodies that
// are not envelopes are reported verbatim.
func (api *FanoutAPIClient) check(resp *resty.Response, err error, apiErr *errorBody) error {
	if err != nil {
		return fmt.Errorf("failed to connect to API server at %s: %w", api.baseURL, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			if apiErr.Details != "" {
				return fmt.Errorf("API request failed with status %d: %s: %s", resp.StatusCode(), apiErr.Error, apiErr.Details)
			}
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), apiErr.Error)
		}
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
