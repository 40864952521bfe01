// HTTP transport for OpenLineage collectors.
//
// The OpenLineage HTTP API accepts one RunEvent per POST, so a parse that
// produced hundreds of events turns into hundreds of requests; the
// client-side rate limiter keeps that from flooding the collector.

package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/correlator-io/dbt-lineage/internal/lineage"
)

// ErrEmitRejected indicates the collector rejected an event with a
// non-success status.
var ErrEmitRejected = errors.New("collector rejected event")

// HTTPTransport POSTs events to an OpenLineage-compatible collector endpoint.
type HTTPTransport struct {
	endpoint  string
	apiKey    string
	client    *http.Client
	limiter   *rate.Limiter
	validator *lineage.Validator
}

// NewHTTPTransport creates an HTTPTransport from config.
func NewHTTPTransport(cfg *Config) *HTTPTransport {
	return &HTTPTransport{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.EmitRPS), cfg.EmitBurst),
		validator: lineage.NewValidator(),
	}
}

// Emit validates and POSTs each event in order, waiting on the rate limiter
// between requests. The first failure aborts the batch: the caller decides
// whether to retry, and event ordering must not be reshuffled by partial
// retries here.
func (t *HTTPTransport) Emit(ctx context.Context, events []lineage.RunEvent) error {
	for i := range events {
		if err := t.validator.ValidateRunEvent(&events[i]); err != nil {
			return fmt.Errorf("invalid event %d: %w", i, err)
		}

		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		if err := t.post(ctx, &events[i]); err != nil {
			return fmt.Errorf("emit event %d (%s %s): %w", i, events[i].EventType, events[i].Job.Name, err)
		}
	}

	return nil
}

// post sends one event to the collector.
func (t *HTTPTransport) post(ctx context.Context, event *lineage.RunEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) // Drain so the connection can be reused
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrEmitRejected, resp.StatusCode)
	}

	return nil
}

// Close is a no-op: the HTTP client holds no long-lived connections worth
// tearing down explicitly.
func (t *HTTPTransport) Close() error {
	return nil
}
