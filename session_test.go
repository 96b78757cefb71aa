package voiceagent

import (
	"strings"
	"testing"
)

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{"empty session", Session{}, false},
		{"valid modalities", Session{Modalities: []string{"text", "audio"}}, false},
		{"invalid modality", Session{Modalities: []string{"video"}}, true},
		{"valid temperature", Session{Temperature: Ptr(0.8)}, false},
		{"temperature too high", Session{Temperature: Ptr(2.5)}, true},
		{"temperature negative", Session{Temperature: Ptr(-0.1)}, true},
		{"valid audio format", Session{InputAudioFormat: Ptr("pcm16")}, false},
		{"invalid audio format", Session{OutputAudioFormat: Ptr("mp3")}, true},
		{"server vad", Session{TurnDetection: &TurnDetection{Type: "server_vad", Threshold: 0.5}}, false},
		{"semantic vad", Session{TurnDetection: &TurnDetection{Type: "semantic_vad"}}, false},
		{"empty vad type", Session{TurnDetection: &TurnDetection{}}, true},
		{"invalid vad type", Session{TurnDetection: &TurnDetection{Type: "client_vad"}}, true},
		{"vad threshold out of range", Session{TurnDetection: &TurnDetection{Type: "server_vad", Threshold: 1.5}}, true},
		{"negative prefix padding", Session{TurnDetection: &TurnDetection{Type: "server_vad", PrefixPaddingMS: -1}}, true},
		{"near field noise reduction", Session{NoiseReduction: &NoiseReduction{Type: "near_field"}}, false},
		{"far field noise reduction", Session{NoiseReduction: &NoiseReduction{Type: "far_field"}}, false},
		{"invalid noise reduction", Session{NoiseReduction: &NoiseReduction{Type: "studio"}}, true},
		{"instructions too long", Session{Instructions: Ptr(strings.Repeat("x", 10001))}, true},
		{"valid tools", Session{Tools: []ToolDefinition{{Type: "function", Name: "a"}, {Type: "function", Name: "b"}}}, false},
		{"empty tool name", Session{Tools: []ToolDefinition{{Type: "function"}}}, true},
		{"duplicate tool name", Session{Tools: []ToolDefinition{{Type: "function", Name: "a"}, {Type: "function", Name: "a"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSession(tt.session)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCreateResponseOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    CreateResponseOptions
		wantErr bool
	}{
		{"empty options", CreateResponseOptions{}, false},
		{"valid modalities", CreateResponseOptions{Modalities: []string{"text"}}, false},
		{"invalid modality", CreateResponseOptions{Modalities: []string{"smoke signals"}}, true},
		{"valid instructions", CreateResponseOptions{Instructions: "Greet the user."}, false},
		{"instructions too long", CreateResponseOptions{Instructions: strings.Repeat("x", 10001)}, true},
		{"temperature too high", CreateResponseOptions{Temperature: 3.0}, true},
		{"conversation id too long", CreateResponseOptions{Conversation: strings.Repeat("c", 101)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateResponseOptions(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCreateResponseOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
