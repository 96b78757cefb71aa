package voiceagent

import (
	"net/http"
	"time"
)

// Credential represents an authentication method for the realtime API.
// Implementations apply the appropriate headers to the WebSocket handshake.
type Credential interface{ apply(h http.Header) }

// Bearer implements Credential using OAuth2-style Bearer token authentication.
// This is the scheme used by the OpenAI realtime endpoint.
type Bearer string

// apply adds the Bearer token to the Authorization header.
func (b Bearer) apply(h http.Header) {
	if b != "" {
		h.Set("Authorization", "Bearer "+string(b))
	}
}

// APIKey implements Credential using a provider API key header.
// This is the scheme used by the Gemini realtime endpoint.
type APIKey string

// apply adds the API key using the "x-goog-api-key" header.
func (k APIKey) apply(h http.Header) {
	if k != "" {
		h.Set("x-goog-api-key", string(k))
	}
}

// DefaultRealtimePath is the URL path of the realtime WebSocket endpoint,
// used when Config.Path is empty.
const DefaultRealtimePath = "/v1/realtime"

// Config holds all configuration options for creating a realtime client.
// All fields marked as required must be provided for successful connection.
type Config struct {
	// Endpoint is the base HTTPS URL of the provider.
	// Format: https://api.openai.com or https://generativelanguage.googleapis.com
	// Required: Yes
	Endpoint string

	// Model is the realtime model to request, e.g. "gpt-4o-realtime-preview"
	// or "gemini-2.0-flash-exp".
	// Required: Yes
	Model string

	// Path overrides the URL path of the realtime endpoint.
	// Defaults to DefaultRealtimePath.
	// Required: No
	Path string

	// Credential provides authentication for the WebSocket handshake.
	// Use Bearer for token auth or APIKey for key-header auth.
	// Required: Yes
	Credential Credential

	// DialTimeout sets the maximum time to wait for connection establishment.
	// If zero, no timeout is applied (not recommended for production).
	// Required: No
	DialTimeout time.Duration

	// HandshakeHeaders allows adding custom headers to the WebSocket handshake,
	// e.g. beta opt-in headers or tracing headers.
	// Required: No
	HandshakeHeaders http.Header

	// Logger is called for significant events (ws_connected, bad_event_json, ...).
	// The fields parameter contains structured data relevant to each event.
	// Required: No (if nil, no logging occurs)
	Logger func(event string, fields map[string]any)

	// StructuredLogger provides leveled structured logging. If both Logger and
	// StructuredLogger are provided, StructuredLogger takes precedence.
	// Use NewLogger, NewLoggerFromEnv or NewFileLogger to create one.
	// Required: No
	StructuredLogger *Logger
}
