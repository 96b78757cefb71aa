package voiceagent

import (
	"context"
	"errors"
	"fmt"
)

// Session defines the configuration for a realtime conversation session.
// Use this to customize the assistant's voice, instructions, sampling
// temperature, audio handling and tool set.
type Session struct {
	// Modalities selects which output types the model may produce.
	// Supported values: "text", "audio".
	Modalities []string `json:"modalities,omitempty"`

	// Voice specifies which voice to use for audio responses, e.g. "alloy",
	// "verse" (OpenAI) or "Kore", "Puck" (Gemini). Validation of the exact
	// name is left to the backend since the sets differ per provider.
	Voice *string `json:"voice,omitempty"`

	// Instructions provide system-level guidance to the assistant,
	// similar to the system message in chat completions.
	Instructions *string `json:"instructions,omitempty"`

	// Temperature controls sampling randomness for generated responses.
	Temperature *float64 `json:"temperature,omitempty"`

	// InputAudioFormat specifies the format for audio input from the client.
	// Supported: "pcm16" (16-bit PCM at 24kHz), "g711_ulaw", "g711_alaw"
	InputAudioFormat *string `json:"input_audio_format,omitempty"`

	// OutputAudioFormat specifies the format for audio output from the assistant.
	// Supported: "pcm16" (16-bit PCM at 24kHz), "g711_ulaw", "g711_alaw"
	OutputAudioFormat *string `json:"output_audio_format,omitempty"`

	// InputTranscription configures automatic transcription of user audio input.
	InputTranscription *InputTranscription `json:"input_audio_transcription,omitempty"`

	// TurnDetection configures when the assistant should start/stop responding.
	TurnDetection *TurnDetection `json:"turn_detection,omitempty"`

	// NoiseReduction enables server-side noise reduction on input audio.
	NoiseReduction *NoiseReduction `json:"input_audio_noise_reduction,omitempty"`

	// Tools declares function calling capabilities available to the assistant.
	Tools []ToolDefinition `json:"tools,omitempty"`
}

// InputTranscription configures automatic speech recognition for user input.
type InputTranscription struct {
	Model    string  `json:"model,omitempty"`    // Transcription model to use
	Language string  `json:"language,omitempty"` // Expected language code (e.g., "en")
	Prompt   *string `json:"prompt,omitempty"`   // Context to improve transcription accuracy
}

// TurnDetection configures voice activity detection and response timing.
type TurnDetection struct {
	Type              string  `json:"type"`                          // "server_vad" or "semantic_vad"
	Threshold         float64 `json:"threshold,omitempty"`           // Voice activity detection sensitivity (0.0-1.0)
	PrefixPaddingMS   int     `json:"prefix_padding_ms,omitempty"`   // Audio included before speech starts (ms)
	SilenceDurationMS int     `json:"silence_duration_ms,omitempty"` // Silence duration to trigger end of turn (ms)
	CreateResponse    bool    `json:"create_response,omitempty"`     // Whether to automatically create response
}

// NoiseReduction configures server-side input noise reduction. The hosted
// backend owns the filtering; this only selects the profile.
type NoiseReduction struct {
	Type string `json:"type"` // "near_field" for headsets, "far_field" for speakerphone/telephony
}

// SessionUpdate sends a session configuration update to the API.
// This changes settings like voice, instructions and tool declarations
// without creating a new connection.
func (c *Client) SessionUpdate(ctx context.Context, s Session) error {
	if ctx == nil {
		return NewSendError("session.update", "", errors.New("context cannot be nil"))
	}

	if err := ValidateSession(s); err != nil {
		return NewSendError("session.update", "", err)
	}

	payload := map[string]any{"type": "session.update", "session": s}
	return c.send(ctx, payload)
}

// ValidateSession performs validation on session configuration.
func ValidateSession(s Session) error {
	for _, m := range s.Modalities {
		if m != "text" && m != "audio" {
			return fmt.Errorf("invalid modality %q, must be 'text' or 'audio'", m)
		}
	}

	if s.Temperature != nil && (*s.Temperature < 0.0 || *s.Temperature > 2.0) {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", *s.Temperature)
	}

	validFormats := []string{"pcm16", "g711_ulaw", "g711_alaw"}
	if s.InputAudioFormat != nil && !containsString(validFormats, *s.InputAudioFormat) {
		return fmt.Errorf("invalid input audio format %q, must be one of: %v", *s.InputAudioFormat, validFormats)
	}
	if s.OutputAudioFormat != nil && !containsString(validFormats, *s.OutputAudioFormat) {
		return fmt.Errorf("invalid output audio format %q, must be one of: %v", *s.OutputAudioFormat, validFormats)
	}

	if s.TurnDetection != nil {
		td := s.TurnDetection
		if td.Type == "" {
			return errors.New("turn detection type cannot be empty")
		}
		if td.Type != "server_vad" && td.Type != "semantic_vad" {
			return fmt.Errorf("invalid turn detection type %q, must be 'server_vad' or 'semantic_vad'", td.Type)
		}
		if td.Threshold < 0.0 || td.Threshold > 1.0 {
			return fmt.Errorf("turn detection threshold must be between 0.0 and 1.0, got %f", td.Threshold)
		}
		if td.PrefixPaddingMS < 0 {
			return fmt.Errorf("prefix padding must be non-negative, got %d", td.PrefixPaddingMS)
		}
		if td.SilenceDurationMS < 0 {
			return fmt.Errorf("silence duration must be non-negative, got %d", td.SilenceDurationMS)
		}
	}

	if s.NoiseReduction != nil {
		nr := s.NoiseReduction.Type
		if nr != "near_field" && nr != "far_field" {
			return fmt.Errorf("invalid noise reduction type %q, must be 'near_field' or 'far_field'", nr)
		}
	}

	if s.Instructions != nil && len(*s.Instructions) > 10000 {
		return fmt.Errorf("instructions too long (%d characters), maximum is 10000", len(*s.Instructions))
	}

	seen := make(map[string]bool, len(s.Tools))
	for _, t := range s.Tools {
		if t.Name == "" {
			return errors.New("tool name cannot be empty")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate tool name %q", t.Name)
		}
		seen[t.Name] = true
	}

	return nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
