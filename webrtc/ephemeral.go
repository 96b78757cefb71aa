// Package webrtc joins realtime voice sessions over WebRTC instead of the
// WebSocket transport, for browser-adjacent deployments where the backend
// hands out short-lived client secrets.
package webrtc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SessionsURL returns the endpoint that mints ephemeral client secrets.
func SessionsURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/realtime/sessions"
}

// EphemeralResponse is the session the backend creates for a client join.
type EphemeralResponse struct {
	ID           string `json:"id"`
	ClientSecret struct {
		Value string `json:"value"`
	} `json:"client_secret"`
}

// MintClientSecret creates a realtime session server-side and returns its ID
// together with the short-lived secret a client uses to join over WebRTC.
func MintClientSecret(ctx context.Context, baseURL, apiKey, model, voice string) (sessionID, clientSecret string, err error) {
	payload := map[string]any{"model": model}
	if voice != "" {
		payload["voice"] = voice
	}
	body, _ := json.Marshal(payload)

	req, _ := http.NewRequestWithContext(ctx, "POST", SessionsURL(baseURL), bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", "", fmt.Errorf("mint client secret: status %d", resp.StatusCode)
	}
	var er EphemeralResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return "", "", err
	}
	return er.ID, er.ClientSecret.Value, nil
}

// RealtimeRTCURL returns the SDP exchange endpoint for a base API URL.
func RealtimeRTCURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/realtime"
}
