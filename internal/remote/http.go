// Package remote talks to the remote service that dispatched actions and
// counter reads are sent to.
//
// This file implements the production Client over go-resty. Each call is a
// binary POST with bearer authentication to the group's endpoint.
//
// TRANSPORT RULES:
//   - No retries: one call is exactly one request, so a dispatch never sends
//     an action twice with the same credential
//   - Every call has its own deadline (Config.Timeout) applied via context
//   - Blank tokens are rejected locally as transport errors
//   - TLS certificates are verified unless InsecureSkipVerify is set
//
// Tokens are only ever logged through logging.Redact.
package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/concave-dev/fanout/internal/logging"
	"github.com/concave-dev/fanout/internal/version"
	"github.com/go-resty/resty/v2"
)

// ErrEmptyCredential is reported for calls made with a blank token. No
// request is sent for them.
var ErrEmptyCredential = errors.New("credential has no token")

// HTTPClient sends calls to the remote service as binary POST requests with
// bearer authentication. Each call gets its own deadline and is never
// retried.
type HTTPClient struct {
	client *resty.Client
	cfg    *Config
}

// NewHTTPClient creates a client from a validated config.
func NewHTTPClient(cfg *Config) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remote config: %w", err)
	}

	client := resty.New()
	client.SetLogger(logging.RestyLogger{})

	client.
		SetRetryCount(0).
		SetHeader("Content-Type", "application/octet-stream").
		SetHeader("User-Agent", "fanoutd/"+version.FanoutdVersion).
		SetHeaders(cfg.Headers)

	if cfg.InsecureSkipVerify {
		logging.Warn("TLS certificate verification is disabled for remote calls")
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	client.OnError(func(req *resty.Request, err error) {
		logging.Debug("Remote call failed: %s %s - %v", req.Method, req.URL, err)
	})

	return &HTTPClient{client: client, cfg: cfg}, nil
}

// URL returns the full URL a call of kind for group is sent to.
func (c *HTTPClient) URL(kind Kind, group string) string {
	path := c.cfg.ActionPath
	if kind == KindCounter {
		path = c.cfg.CounterPath
	}
	return strings.TrimRight(c.cfg.EndpointFor(group), "/") + path
}

// Do performs one call and classifies its outcome. The response body is
// returned for every answered call, including rejected ones.
func (c *HTTPClient) Do(ctx context.Context, call Call) Result {
	token := strings.TrimSpace(call.Credential.Token)
	if token == "" {
		return Result{Outcome: Outcome{Code: TransportError, Err: ErrEmptyCredential}}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(call.Payload).
		Post(c.URL(call.Kind, call.Group))
	if err != nil {
		outcome := classifyError(ctx, err)
		logging.Debug("%s call with %s: %s", call.Kind, logging.Redact(token), outcome)
		return Result{Outcome: outcome}
	}

	outcome := StatusOutcome(resp.StatusCode())
	if !outcome.OK() {
		logging.Debug("%s call with %s rejected: %d (took %v)", call.Kind, logging.Redact(token), resp.StatusCode(), time.Since(start))
	}
	return Result{Outcome: outcome, Body: resp.Body()}
}

// classifyError separates deadline expiry from other transport failures.
func classifyError(ctx context.Context, err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Outcome{Code: TimedOut, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Outcome{Code: TimedOut, Err: err}
	}
	return Outcome{Code: TransportError, Err: err}
}
