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

const (
	// SourceMessageService tags resolutions served by the remote catalog.
	SourceMessageService = "message-service"
	// SourceParameterService tags parameters served by the remote catalog.
	SourceParameterService = "parameter-service"
	// SourceFallback tags results produced locally when the remote catalog
	// could not serve the key.
	SourceFallback = "backend-fallback"

	// DefaultTimeout is the upper bound on the remote call.
	DefaultTimeout = 3 * time.Second
)

// Resolution is a resolved message pair plus its source tag.
type Resolution struct {
	Technical string
	Client    string
	Source    string
}

// remoteMessage tolerates both payload shapes the catalog has shipped:
// the legacy single {key,value} and the newer structured pair.
type remoteMessage struct {
	Key              string `json:"key"`
	Value            string `json:"value"`
	TechnicalMessage string `json:"technicalMessage"`
	ClientMessage    string `json:"clientMessage"`
}

// MessageClient resolves message keys against the remote message catalog,
// degrading to static fallback texts whenever the catalog is unreachable,
// errors out, or lacks the key.
type MessageClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// MessageOption configures a MessageClient.
type MessageOption func(*MessageClient)

// WithMessageLogger sets the client logger.
func WithMessageLogger(logger *slog.Logger) MessageOption {
	return func(c *MessageClient) { c.logger = logger }
}

// WithMessageTimeout overrides the per-call wait bound.
func WithMessageTimeout(timeout time.Duration) MessageOption {
	return func(c *MessageClient) { c.http.Timeout = timeout }
}

// NewMessageClient builds a client for the catalog at baseURL.
func NewMessageClient(baseURL string, opts ...MessageOption) *MessageClient {
	c := &MessageClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve fetches the texts for key. It returns a non-nil error only for a
// non-404 client-status response; every other failure mode degrades to a
// fallback resolution so the caller's outcome never depends on catalog
// availability.
func (c *MessageClient) Resolve(ctx context.Context, key string) (Resolution, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(key), nil)
	if err != nil {
		c.logger.Error("message lookup: building request failed", "key", key, "error", err)
		return serviceDownResolution(), nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("message lookup: catalog unreachable, using fallback", "key", key, "error", err)
		return serviceDownResolution(), nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Warn("message lookup: key not found, using defaults", "key", key)
		return missingKeyResolution(key), nil
	case resp.StatusCode >= 500:
		c.logger.Error("message lookup: catalog error, using fallback", "key", key, "status", resp.StatusCode)
		return serviceDownResolution(), nil
	case resp.StatusCode >= 400:
		// Not an availability problem: the request itself is wrong.
		return Resolution{}, fmt.Errorf("message lookup: status %d for key %q", resp.StatusCode, key)
	}

	var payload remoteMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("message lookup: malformed payload, using fallback", "key", key, "error", err)
		return serviceDownResolution(), nil
	}

	res := resolutionFromPayload(key, payload)
	c.logger.Info("message lookup: resolved", "key", key, "source", res.Source)
	return res, nil
}

// resolutionFromPayload backfills the structured pair from the legacy single
// value when the catalog still serves the old shape.
func resolutionFromPayload(key string, payload remoteMessage) Resolution {
	if payload.TechnicalMessage == "" && payload.ClientMessage == "" && payload.Value == "" {
		return serviceDownResolution()
	}
	technical := payload.TechnicalMessage
	if technical == "" {
		technical = payload.Value
	}
	if technical == "" {
		technical = missingKeyTechnical(key)
	}
	client := payload.ClientMessage
	if client == "" {
		client = payload.Value
	}
	if client == "" {
		client = missingKeyClient()
	}
	return Resolution{Technical: technical, Client: client, Source: SourceMessageService}
}

// FallbackResolution returns the static texts shipped when no catalog
// answer is usable. Exported for callers that must degrade after a hard
// resolver error.
func FallbackResolution() Resolution {
	return serviceDownResolution()
}

func serviceDownResolution() Resolution {
	return Resolution{
		Technical: "Technical error: message-service unavailable.",
		Client:    "Error genérico. El servicio de mensajes no está disponible.",
		Source:    SourceFallback,
	}
}

func missingKeyResolution(key string) Resolution {
	return Resolution{
		Technical: missingKeyTechnical(key),
		Client:    missingKeyClient(),
		Source:    SourceFallback,
	}
}

func missingKeyTechnical(key string) string {
	return "Technical error: missing message key " + key + "."
}

func missingKeyClient() string {
	return "Ocurrió un error al procesar tu solicitud, por favor inténtalo de nuevo."
}

// OfflineMessageClient always answers with the static fallback, without any
// network attempt. Used when the message catalog is not configured.
type OfflineMessageClient struct{}

// NewOfflineMessageClient builds the no-op variant.
func NewOfflineMessageClient() *OfflineMessageClient { return &OfflineMessageClient{} }

// Resolve returns the service-down fallback immediately.
func (*OfflineMessageClient) Resolve(context.Context, string) (Resolution, error) {
	return serviceDownResolution(), nil
}
