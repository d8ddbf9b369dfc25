package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/retry"

	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// forwardedHeaders are copied from the client request to the backend.
var forwardedHeaders = []string{"Content-Type", "Accept", models.UserIDHeader, requestIDHeader}

// relayedHeaders are copied from the backend response to the client.
var relayedHeaders = []string{"Content-Type", "Content-Disposition"}

// BackendClient relays requests to the shareit backend.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
	logger     *zerolog.Logger
}

// BackendResponse is a backend answer relayed verbatim.
type BackendResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

func NewBackendClient(baseURL string, timeout time.Duration, policy retry.Policy, logger *zerolog.Logger) *BackendClient {
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		policy:     policy,
		logger:     logger,
	}
}

// Forward sends the request to the backend. GET requests are retried on
// transport errors; other methods are attempted once. Malformed requests
// and a done ctx end the retries.
func (c *BackendClient) Forward(ctx context.Context, src *http.Request, body []byte) (*BackendResponse, error) {
	endpoint := c.baseURL + src.URL.Path
	if src.URL.RawQuery != "" {
		endpoint += "?" + src.URL.RawQuery
	}

	var resp *BackendResponse
	attempt := func(ctx context.Context) error {
		var err error
		resp, err = c.do(ctx, src, endpoint, body)
		if err != nil {
			c.logger.Warn().Err(err).Str("method", src.Method).Str("endpoint", endpoint).Msg("backend request failed")
		}
		return err
	}

	var err error
	if src.Method == http.MethodGet {
		err = c.policy.Do(ctx, attempt)
	} else {
		err = attempt(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("forward %s %s: %w", src.Method, src.URL.Path, err)
	}

	metrics.IncForwarded(src.Method, resp.Status)
	return resp, nil
}

func (c *BackendClient) do(ctx context.Context, src *http.Request, endpoint string, body []byte) (*BackendResponse, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, src.Method, endpoint, reader)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	for _, h := range forwardedHeaders {
		if v := src.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	header := make(http.Header)
	for _, h := range relayedHeaders {
		if v := resp.Header.Get(h); v != "" {
			header.Set(h, v)
		}
	}
	return &BackendResponse{Status: resp.StatusCode, Header: header, Body: data}, nil
}
