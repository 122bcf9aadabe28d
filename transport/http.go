package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

const (
	sessionPath = "/v1/sessions"
	eventsPath  = "/v1/events"

	// DefaultDurableTimeout bounds fire-and-forget sends issued during
	// shutdown, after the caller's context is already cancelled.
	DefaultDurableTimeout = 3 * time.Second
)

// HTTP delivers session starts and event batches to a collector service
// over JSON HTTP.
type HTTP struct {
	baseURL        string
	client         *http.Client
	durableTimeout time.Duration
	headers        map[string]string
}

// Compile-time assertion that HTTP implements types.Transport.
var _ types.Transport = (*HTTP)(nil)

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient sets a custom HTTP client.
//
// Parameters:
//   - client: HTTP client to use for all requests
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTP) {
		t.client = client
	}
}

// WithHeader adds a header to every outgoing request, e.g. an API key.
func WithHeader(key, value string) HTTPOption {
	return func(t *HTTP) {
		t.headers[key] = value
	}
}

// WithDurableTimeout sets the deadline for durable (shutdown-time) sends.
func WithDurableTimeout(d time.Duration) HTTPOption {
	return func(t *HTTP) {
		if d > 0 {
			t.durableTimeout = d
		}
	}
}

// NewHTTP creates an HTTP transport targeting the given collector base URL.
//
// Parameters:
//   - baseURL: Collector base URL, e.g. "https://collect.example.com"
//   - opts: Optional configuration
//
// Returns:
//   - *HTTP: A Transport implementation posting JSON to the collector
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	t := &HTTP{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: 10 * time.Second},
		durableTimeout: DefaultDurableTimeout,
		headers:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

type batchRequest struct {
	SessionID string        `json:"sessionId"`
	Events    []types.Event `json:"events"`
}

// StartSession posts the session environment to the collector and returns
// the server-assigned session id.
func (t *HTTP) StartSession(ctx context.Context, init types.SessionInit) (string, error) {
	body, err := t.post(ctx, sessionPath, init)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("collector returned empty session id")
	}

	return resp.SessionID, nil
}

// SendBatch posts a batch of events for the given session.
//
// When durable is true the send detaches from ctx cancellation and runs
// under a short independent deadline, so shutdown-time batches are not
// aborted by the coordinator's own teardown.
func (t *HTTP) SendBatch(ctx context.Context, sessionID string, events []types.Event, durable bool) error {
	if len(events) == 0 {
		return nil
	}

	if durable {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), t.durableTimeout)
		defer cancel()
	}

	_, err := t.post(ctx, eventsPath, batchRequest{SessionID: sessionID, Events: events})
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

func (t *HTTP) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("collector returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
