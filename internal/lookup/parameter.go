package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Parameter is a resolved parameter value plus its source tag.
type Parameter struct {
	Key    string
	Value  string
	Source string
}

type remoteParameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParameterClient resolves parameter keys against the remote parameter
// catalog with the same degrade-to-fallback policy as MessageClient.
type ParameterClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ParameterOption configures a ParameterClient.
type ParameterOption func(*ParameterClient)

// WithParameterLogger sets the client logger.
func WithParameterLogger(logger *slog.Logger) ParameterOption {
	return func(c *ParameterClient) { c.logger = logger }
}

// WithParameterTimeout overrides the per-call wait bound.
func WithParameterTimeout(timeout time.Duration) ParameterOption {
	return func(c *ParameterClient) { c.http.Timeout = timeout }
}

// NewParameterClient builds a client for the catalog at baseURL.
func NewParameterClient(baseURL string, opts ...ParameterOption) *ParameterClient {
	c := &ParameterClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches the value for key. Availability failures degrade to a
// fallback parameter with an empty value; only a non-404 client-status
// response surfaces as an error.
func (c *ParameterClient) Get(ctx context.Context, key string) (Parameter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(key), nil)
	if err != nil {
		c.logger.Error("parameter lookup: building request failed", "key", key, "error", err)
		return fallbackParameter(key), nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("parameter lookup: catalog unreachable, using fallback", "key", key, "error", err)
		return fallbackParameter(key), nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Warn("parameter lookup: key not found, using fallback", "key", key)
		return fallbackParameter(key), nil
	case resp.StatusCode >= 500:
		c.logger.Error("parameter lookup: catalog error, using fallback", "key", key, "status", resp.StatusCode)
		return fallbackParameter(key), nil
	case resp.StatusCode >= 400:
		return Parameter{}, fmt.Errorf("parameter lookup: status %d for key %q", resp.StatusCode, key)
	}

	var payload remoteParameter
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("parameter lookup: malformed payload, using fallback", "key", key, "error", err)
		return fallbackParameter(key), nil
	}

	c.logger.Info("parameter lookup: resolved", "key", key, "value", payload.Value)
	return Parameter{Key: key, Value: payload.Value, Source: SourceParameterService}, nil
}

func fallbackParameter(key string) Parameter {
	return Parameter{Key: key, Source: SourceFallback}
}

// OfflineParameterClient always answers with the fallback, without any
// network attempt. Used when the parameter catalog is not configured.
type OfflineParameterClient struct{}

// NewOfflineParameterClient builds the no-op variant.
func NewOfflineParameterClient() *OfflineParameterClient { return &OfflineParameterClient{} }

// Get returns the fallback parameter immediately.
func (*OfflineParameterClient) Get(_ context.Context, key string) (Parameter, error) {
	return fallbackParameter(key), nil
}
