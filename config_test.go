package voiceagent

import (
	"net/http"
	"testing"
	"time"
)

func TestValidateConfig(t *testing.T) {
	valid := Config{
		Endpoint:   "https://api.openai.com",
		Model:      "gpt-realtime",
		Credential: Bearer("sk-test"),
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"nil credential", func(c *Config) { c.Credential = nil }, true},
		{"negative timeout", func(c *Config) { c.DialTimeout = -time.Second }, true},
		{"with timeout", func(c *Config) { c.DialTimeout = 10 * time.Second }, false},
		{"with path override", func(c *Config) { c.Path = "/custom/realtime" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBearerCredential(t *testing.T) {
	h := http.Header{}
	Bearer("sk-secret").apply(h)
	if got := h.Get("Authorization"); got != "Bearer sk-secret" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestAPIKeyCredential(t *testing.T) {
	h := http.Header{}
	APIKey("gk-secret").apply(h)
	if got := h.Get("x-goog-api-key"); got != "gk-secret" {
		t.Errorf("x-goog-api-key = %q", got)
	}
}
