package voiceagent

// envelope is used for initial JSON parsing to determine the event type
// before unmarshaling into the specific event struct.
type envelope struct {
	Type string `json:"type"`
}

// ErrorEvent represents an error received from the realtime API. This covers
// both API-level errors (authentication, rate limits) and conversation-level
// errors (invalid requests, content policy violations).
type ErrorEvent struct {
	Type  string `json:"type"` // Always "error"
	Error struct {
		Type    string `json:"type,omitempty"`    // Error category (e.g., "invalid_request_error")
		Code    string `json:"code,omitempty"`    // Machine-readable error code
		Message string `json:"message,omitempty"` // Human-readable error description
	} `json:"error"`
}

// SessionCreated is sent by the server when a new session is established.
type SessionCreated struct {
	Type    string `json:"type"`     // Always "session.created"
	EventID string `json:"event_id"` // Unique identifier for this event
	Session struct {
		ID         string   `json:"id"`                   // Unique session identifier
		Model      string   `json:"model"`                // Model name serving the session
		Modalities []string `json:"modalities,omitempty"` // Supported modalities: ["text", "audio"]
		Voice      string   `json:"voice,omitempty"`      // Voice used for audio responses
		ExpiresAt  int64    `json:"expires_at,omitempty"` // Session expiration timestamp (Unix)
	} `json:"session"`
}

// SessionUpdated is sent after a session.update event takes effect.
type SessionUpdated struct {
	Type    string `json:"type"`               // Always "session.updated"
	EventID string `json:"event_id,omitempty"` // Event identifier (may be empty)
	Session any    `json:"session"`            // Updated session configuration (dynamic structure)
}

// RateLimitsUpdated provides current rate limiting information.
type RateLimitsUpdated struct {
	Type       string `json:"type"` // Always "rate_limits.updated"
	RateLimits []struct {
		Name         string `json:"name"`          // Rate limit name (e.g., "requests", "tokens")
		Limit        int    `json:"limit"`         // Maximum allowed per time window
		Remaining    int    `json:"remaining"`     // Remaining quota in current window
		ResetSeconds int    `json:"reset_seconds"` // Seconds until quota resets
	} `json:"rate_limits"`
}

// ResponseTextDelta contains incremental text content from the assistant.
type ResponseTextDelta struct {
	Type         string `json:"type"`          // Always "response.text.delta"
	ResponseID   string `json:"response_id"`   // Unique identifier for the response
	ItemID       string `json:"item_id"`       // Identifier for the content item
	OutputIndex  int    `json:"output_index"`  // Index of this output in the response
	ContentIndex int    `json:"content_index"` // Index of this content within the output
	Delta        string `json:"delta"`         // Incremental text content
}

// ResponseTextDone signals completion of a text response.
type ResponseTextDone struct {
	Type         string `json:"type"`          // Always "response.text.done"
	ResponseID   string `json:"response_id"`   // Unique identifier for the response
	ItemID       string `json:"item_id"`       // Identifier for the content item
	OutputIndex  int    `json:"output_index"`  // Index of this output in the response
	ContentIndex int    `json:"content_index"` // Index of this content within the output
	Text         string `json:"text"`          // Complete text content (may be empty if using deltas)
}

// ResponseAudioDelta contains incremental audio data from the assistant.
// Audio is provided as base64-encoded PCM16 at the session's sample rate.
type ResponseAudioDelta struct {
	Type         string `json:"type"`          // Always "response.audio.delta"
	ResponseID   string `json:"response_id"`   // Unique identifier for the response
	ItemID       string `json:"item_id"`       // Identifier for the content item
	OutputIndex  int    `json:"output_index"`  // Index of this output in the response
	ContentIndex int    `json:"content_index"` // Index of this content within the output
	DeltaBase64  string `json:"delta"`         // Base64-encoded PCM16 audio data
}

// ResponseAudioDone signals completion of an audio response.
type ResponseAudioDone struct {
	Type         string `json:"type"`          // Always "response.audio.done"
	ResponseID   string `json:"response_id"`   // Unique identifier for the response
	ItemID       string `json:"item_id"`       // Identifier for the content item
	OutputIndex  int    `json:"output_index"`  // Index of this output in the response
	ContentIndex int    `json:"content_index"` // Index of this content within the output
}

// ResponseAudioTranscriptDelta contains the incremental transcript of an
// audio response as the assistant speaks it.
type ResponseAudioTranscriptDelta struct {
	Type         string `json:"type"`          // Always "response.audio_transcript.delta"
	EventID      string `json:"event_id"`      // Unique identifier for this event
	ResponseID   string `json:"response_id"`   // The ID of the response
	ItemID       string `json:"item_id"`       // The ID of the item
	OutputIndex  int    `json:"output_index"`  // The index of the output item
	ContentIndex int    `json:"content_index"` // The index of the content part
	Delta        string `json:"delta"`         // The incremental transcript text
}

// ResponseAudioTranscriptDone indicates that the audio transcript is complete.
type ResponseAudioTranscriptDone struct {
	Type         string `json:"type"`          // Always "response.audio_transcript.done"
	EventID      string `json:"event_id"`      // Unique identifier for this event
	ResponseID   string `json:"response_id"`   // The ID of the response
	ItemID       string `json:"item_id"`       // The ID of the item
	OutputIndex  int    `json:"output_index"`  // The index of the output item
	ContentIndex int    `json:"content_index"` // The index of the content part
	Transcript   string `json:"transcript"`    // The final transcript text
}

// InputSpeechStarted indicates the server's VAD detected the start of user speech.
type InputSpeechStarted struct {
	Type         string `json:"type"`           // Always "input_audio_buffer.speech_started"
	EventID      string `json:"event_id"`       // Unique identifier for this event
	AudioStartMs int    `json:"audio_start_ms"` // Milliseconds from the beginning of the input buffer
	ItemID       string `json:"item_id"`        // The ID of the user message item that will be created
}

// InputSpeechStopped indicates the server's VAD detected the end of user speech.
type InputSpeechStopped struct {
	Type       string `json:"type"`         // Always "input_audio_buffer.speech_stopped"
	EventID    string `json:"event_id"`     // Unique identifier for this event
	AudioEndMs int    `json:"audio_end_ms"` // Milliseconds from the beginning of the input buffer
	ItemID     string `json:"item_id"`      // The ID of the user message item that will be created
}

// InputTranscriptionCompleted carries the transcription of committed user audio.
type InputTranscriptionCompleted struct {
	Type         string `json:"type"`          // Always "conversation.item.input_audio_transcription.completed"
	EventID      string `json:"event_id"`      // Unique identifier for this event
	ItemID       string `json:"item_id"`       // The ID of the user message item
	ContentIndex int    `json:"content_index"` // The index of the content part containing the audio
	Transcript   string `json:"transcript"`    // The transcribed text
}

// ConversationItem is an item in the session's conversation history.
type ConversationItem struct {
	ID      string `json:"id,omitempty"`      // Unique item identifier
	Type    string `json:"type"`              // "message", "function_call" or "function_call_output"
	Status  string `json:"status,omitempty"`  // "in_progress" or "completed"
	Role    string `json:"role,omitempty"`    // "user", "assistant" or "system" (messages only)
	Name    string `json:"name,omitempty"`    // Function name (function calls only)
	CallID  string `json:"call_id,omitempty"` // Function call ID (function calls and outputs)
	Output  string `json:"output,omitempty"`  // Function output (function_call_output only)
	Content []struct {
		Type       string `json:"type"`                 // "input_text", "text", "input_audio", "audio"
		Text       string `json:"text,omitempty"`       // Text content
		Transcript string `json:"transcript,omitempty"` // Audio transcript
	} `json:"content,omitempty"`
}

// ConversationItemCreated indicates that a conversation item has been created.
type ConversationItemCreated struct {
	Type           string           `json:"type"`             // Always "conversation.item.created"
	EventID        string           `json:"event_id"`         // Unique identifier for this event
	PreviousItemID string           `json:"previous_item_id"` // The ID of the preceding item
	Item           ConversationItem `json:"item"`             // The created conversation item
}

// FunctionCallDone indicates that the model has finished emitting the
// arguments of a function call. The agent session uses this event to dispatch
// registered tools.
type FunctionCallDone struct {
	Type        string `json:"type"`         // Always "response.function_call_arguments.done"
	EventID     string `json:"event_id"`     // Unique identifier for this event
	ResponseID  string `json:"response_id"`  // The ID of the response
	ItemID      string `json:"item_id"`      // The ID of the function call item
	OutputIndex int    `json:"output_index"` // The index of the output item
	CallID      string `json:"call_id"`      // The ID of the function call
	Name        string `json:"name"`         // The name of the invoked function
	Arguments   string `json:"arguments"`    // The final function arguments (JSON)
}

// ResponseCreated indicates that a response has been created.
type ResponseCreated struct {
	Type     string         `json:"type"`     // Always "response.created"
	EventID  string         `json:"event_id"` // Unique identifier for this event
	Response ResponseObject `json:"response"` // The response resource
}

// ResponseDone indicates that a response is complete.
type ResponseDone struct {
	Type     string         `json:"type"`     // Always "response.done"
	EventID  string         `json:"event_id"` // Unique identifier for this event
	Response ResponseObject `json:"response"` // The response resource
}

// ResponseObject describes a model response resource.
type ResponseObject struct {
	ID            string             `json:"id"`                       // Unique response identifier
	Status        string             `json:"status,omitempty"`         // "in_progress", "completed", "cancelled", "failed"
	StatusDetails any                `json:"status_details,omitempty"` // Additional status information
	Output        []ConversationItem `json:"output,omitempty"`         // Output items produced by the response
	Usage         *ResponseUsage     `json:"usage,omitempty"`          // Token usage, present once complete
}

// ResponseUsage reports token consumption for a completed response.
type ResponseUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
