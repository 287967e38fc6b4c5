package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// CredentialSource supplies the session credential attached to outgoing
// payloads. Implemented by the session cache. The second return value is
// false while unauthenticated — omission of the credential is not an error.
type CredentialSource interface {
	Credential() (string, bool)
}

// CredentialFunc adapts a plain function to CredentialSource. Useful at
// wiring time, where the session cache that will hold the credential is
// constructed after the client it depends on.
type CredentialFunc func() (string, bool)

// Credential implements CredentialSource.
func (f CredentialFunc) Credential() (string, bool) {
	return f()
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the remote service's base address, e.g.
	// "http://localhost:8000/api". A trailing slash is stripped.
	BaseURL string
	// Credentials supplies the session token. May be nil for a client that
	// only performs unauthenticated calls.
	Credentials CredentialSource
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client issues requests to the remote CrewCall service.
//
// Thread-safety: Client is stateless apart from its configuration and is
// safe for concurrent use.
type Client struct {
	baseURL     string
	credentials CredentialSource
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient creates a Client for the given base address.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		credentials: config.Credentials,
		httpClient:  httpClient,
		logger:      logger,
	}, nil
}

// Call sends one request to the named endpoint and normalizes the outcome.
//
// The payload map is copied before the session credential is injected, so
// callers can reuse their maps. Error taxonomy:
//
//   - network failure        -> "network error: <cause>"
//   - non-2xx status         -> "HTTP <status>: <body>"
//   - 2xx with body {"error": "<msg>", ...} and non-empty msg -> "<msg>"
//
// Everything else passes through as the raw success payload; field mapping
// is the cache layer's job.
func (c *Client) Call(ctx context.Context, endpoint string, payload map[string]any) Result {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	if c.credentials != nil {
		if token, ok := c.credentials.Credential(); ok {
			body["token"] = token
		}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return errResult("encoding request payload: %v", err)
	}

	requestURL := c.baseURL + "/" + endpoint
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(encoded))
	if err != nil {
		return errResult("building request: %v", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	requestID := uuid.Must(uuid.NewV7()).String()
	request.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("api call", "endpoint", endpoint, "request_id", requestID)

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("api network failure", "endpoint", endpoint, "request_id", requestID, "err", err)
		return errResult("network error: %v", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return errResult("network error: reading response: %v", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Debug("api error status",
			"endpoint", endpoint, "request_id", requestID, "status", response.StatusCode)
		return errResult("HTTP %d: %s", response.StatusCode, string(responseBody))
	}

	// A 2xx body may still carry a business failure. The remote service
	// signals those as an object with a non-empty "error" field.
	if msg := businessError(responseBody); msg != "" {
		c.logger.Debug("api business error",
			"endpoint", endpoint, "request_id", requestID, "err", msg)
		return Result{Err: msg}
	}

	return okResult(responseBody)
}

// businessError returns the embedded error message when the body is a JSON
// object declaring one, or "" otherwise. Non-object bodies (lists, strings)
// can never carry a business error.
func businessError(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error
}
