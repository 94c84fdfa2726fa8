package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/cropyield/internal/features"
	"github.com/lox/cropyield/internal/metrics"
)

// DefaultTimeout bounds a single HTTP call to the model server.
const DefaultTimeout = 10 * time.Second

// Remote calls a model server that exposes POST /predict.
type Remote struct {
	baseURL    string
	client     *http.Client
	maxElapsed time.Duration
}

// NewRemote returns a client for the model server at baseURL. A nil client
// gets one with DefaultTimeout.
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     client,
		maxElapsed: 20 * time.Second,
	}
}

// SetMaxElapsed bounds the total time spent retrying a single prediction.
func (r *Remote) SetMaxElapsed(d time.Duration) {
	r.maxElapsed = d
}

type remoteRequest struct {
	Columns []string `json:"columns"`
	Values  []any    `json:"values"`
}

type remoteResponse struct {
	Prediction *float64 `json:"prediction"`
	Error      string   `json:"error"`
}

// Name implements Predictor.
func (r *Remote) Name() string {
	return "remote"
}

// Predict implements Predictor. Rate limiting, server errors and transport
// failures are retried with exponential backoff; other 4xx responses are not.
func (r *Remote) Predict(ctx context.Context, v features.Vector) (float64, error) {
	cols := v.Columns()
	req := remoteRequest{
		Columns: make([]string, len(cols)),
		Values:  make([]any, len(cols)),
	}
	for i, c := range cols {
		req.Columns[i] = c.Name
		if c.Kind == features.Category {
			req.Values[i] = c.Category
		} else {
			req.Values[i] = c.Number
		}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	var body []byte
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := r.client.Do(httpReq)
		if err != nil {
			metrics.RemoteCallsTotal.WithLabelValues("transport_error").Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("post predict: %w", err)
		}
		defer resp.Body.Close()
		metrics.RemoteCallsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("model server: status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, errorText(body)))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = r.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return 0, err
	}

	var out remoteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if out.Error != "" {
		return 0, fmt.Errorf("%w: %s", ErrRejected, out.Error)
	}
	if out.Prediction == nil {
		return 0, fmt.Errorf("%w: response has no prediction", ErrRejected)
	}
	if math.IsNaN(*out.Prediction) || math.IsInf(*out.Prediction, 0) {
		return 0, fmt.Errorf("%w: model server returned %v", ErrNumeric, *out.Prediction)
	}
	return *out.Prediction, nil
}

// errorText extracts a readable message from an error response body.
func errorText(body []byte) string {
	var out remoteResponse
	if err := json.Unmarshal(body, &out); err == nil && out.Error != "" {
		return out.Error
	}
	return strings.TrimSpace(string(body))
}
