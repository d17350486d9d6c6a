// Package client is the HTTP wrapper used by the storefront and admin
// frontends. Every outgoing request passes through one interception point
// that attaches the stored credential, and one response interception point
// that reacts to authentication failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/pkg/credential"
)

// CredentialReader provides read access to the durable credential entry.
// session.Storage satisfies it; the client never writes storage.
type CredentialReader interface {
	Get(key string) ([]byte, error)
}

// APIError carries the backend's error payload for a failed request.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// UserMessage returns a human-readable message suitable for display.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Config bundles client construction parameters.
type Config struct {
	BaseURL     string
	Credentials CredentialReader
	Logger      *zap.Logger
	HTTPClient  *http.Client

	// OnUnauthorized runs once per 401 response, before the error is
	// returned to the caller. Embedding apps wire it to session
	// invalidation plus navigation to the sign-in destination. This hook is
	// the only place that policy lives; individual screens must not
	// reimplement it.
	OnUnauthorized func()
}

// Client calls the commerce backend.
type Client struct {
	base           string
	creds          CredentialReader
	logger         *zap.Logger
	httpClient     *http.Client
	onUnauthorized func()
}

// New builds a client. Logger and HTTPClient default when absent.
func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base:           strings.TrimRight(cfg.BaseURL, "/"),
		creds:          cfg.Credentials,
		logger:         logger,
		httpClient:     httpClient,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// do performs one request through both interception points.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := parseAPIError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// token reads the credential from durable storage for header injection.
func (c *Client) token() string {
	if c.creds == nil {
		return ""
	}
	raw, err := c.creds.Get(credential.StorageKeyCredential)
	if err != nil {
		return ""
	}
	return string(raw)
}

// parseAPIError extracts a display message from the backend's error payload.
// Both the service's nested shape and a flat string are accepted; anything
// else falls back to a generic message.
func parseAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status, Code: "ERROR", Message: "request failed"}

	var nested struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Error.Message != "" {
		if nested.Error.Code != "" {
			apiErr.Code = nested.Error.Code
		}
		apiErr.Message = nested.Error.Message
		return apiErr
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &flat); err == nil && flat.Error != "" {
		apiErr.Message = flat.Error
	}
	return apiErr
}
