package voiceagent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// MockServer is a test WebSocket server that simulates a hosted realtime
// backend: it greets with session.created, acknowledges session.update, and
// answers response.create with a spoken-transcript exchange. A scripted
// function call can be injected after the session is configured.
type MockServer struct {
	server   *httptest.Server
	messages []interface{}
	t        *testing.T

	// functionCall, when set, is sent after acknowledging session.update so
	// agent tests can exercise tool dispatch.
	functionCall *FunctionCallDone

	// received collects raw client frames for assertions.
	received chan []byte
}

// NewMockServer creates a new mock server for testing.
func NewMockServer(t *testing.T) *MockServer {
	ms := &MockServer{
		t:        t,
		messages: make([]interface{}, 0),
		received: make(chan []byte, 32),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handleWebSocket))
	return ms
}

// Close shuts down the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// URL returns the HTTP URL of the mock server.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// AddMessage queues a message the server sends right after session.created.
func (ms *MockServer) AddMessage(msg interface{}) {
	ms.messages = append(ms.messages, msg)
}

// ScriptFunctionCall makes the server emit a function call once the client
// configures the session.
func (ms *MockServer) ScriptFunctionCall(name, callID, arguments string) {
	ms.functionCall = &FunctionCallDone{
		Type:       "response.function_call_arguments.done",
		EventID:    "evt_mock_fn",
		ResponseID: "resp_mock_fn",
		ItemID:     "item_mock_fn",
		CallID:     callID,
		Name:       name,
		Arguments:  arguments,
	}
}

// Received exposes the raw frames the client sent.
func (ms *MockServer) Received() <-chan []byte {
	return ms.received
}

func (ms *MockServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Both credential styles set a header on the handshake.
	if r.Header.Get("Authorization") == "" && r.Header.Get("x-goog-api-key") == "" {
		http.Error(w, "Missing authentication", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // For testing only
	})
	if err != nil {
		ms.t.Errorf("failed to upgrade to websocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Give the dialing test a moment to register handlers before the first
	// event arrives.
	time.Sleep(50 * time.Millisecond)

	sessionCreated := SessionCreated{
		Type:    "session.created",
		EventID: "evt_mock_session_created",
	}
	sessionCreated.Session.ID = "sess_mock_123"
	sessionCreated.Session.Model = r.URL.Query().Get("model")
	sessionCreated.Session.Modalities = []string{"text", "audio"}
	sessionCreated.Session.Voice = "marin"

	if err := ms.write(r, conn, sessionCreated); err != nil {
		return
	}

	for _, msg := range ms.messages {
		if err := ms.write(r, conn, msg); err != nil {
			return
		}
	}

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return // Connection closed
		}

		select {
		case ms.received <- data:
		default:
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}

		switch env.Type {
		case "session.update":
			updated := SessionUpdated{
				Type:    "session.updated",
				EventID: "evt_mock_session_updated",
				Session: map[string]interface{}{"updated": true},
			}
			if err := ms.write(r, conn, updated); err != nil {
				return
			}
			if ms.functionCall != nil {
				if err := ms.write(r, conn, ms.functionCall); err != nil {
					return
				}
			}

		case "response.create":
			delta := ResponseAudioTranscriptDelta{
				Type:       "response.audio_transcript.delta",
				ResponseID: "resp_mock_123",
				ItemID:     "item_mock_456",
				Delta:      "Hello from the mock backend!",
			}
			if err := ms.write(r, conn, delta); err != nil {
				return
			}
			done := ResponseAudioTranscriptDone{
				Type:       "response.audio_transcript.done",
				ResponseID: "resp_mock_123",
				ItemID:     "item_mock_456",
				Transcript: "Hello from the mock backend!",
			}
			if err := ms.write(r, conn, done); err != nil {
				return
			}
			respDone := ResponseDone{
				Type:     "response.done",
				EventID:  "evt_mock_response_done",
				Response: ResponseObject{ID: "resp_mock_123", Status: "completed"},
			}
			if err := ms.write(r, conn, respDone); err != nil {
				return
			}
		}
	}
}

func (ms *MockServer) write(r *http.Request, conn *websocket.Conn, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		ms.t.Errorf("failed to marshal message: %v", err)
		return err
	}
	if err := conn.Write(r.Context(), websocket.MessageText, data); err != nil {
		return err
	}
	return nil
}

// CreateMockConfig creates a valid config pointing to the mock server.
func CreateMockConfig(serverURL string) Config {
	return Config{
		Endpoint:   serverURL,
		Model:      "gpt-realtime-mock",
		Credential: Bearer("test-key"),
	}
}
