package voiceagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Client represents a connection to a hosted realtime voice model API.
// It manages the WebSocket connection, handles event dispatching, and provides
// methods for sending requests. The client is safe for concurrent use.
//
// The client uses an event-driven architecture: register callback functions
// for the event types you care about before driving the conversation.
type Client struct {
	cfg Config // Configuration used to create this client

	// Connection state
	conn       *websocket.Conn    // Underlying WebSocket connection
	writeMu    sync.Mutex         // Protects writes to the WebSocket
	readCancel context.CancelFunc // Cancels the read loop when closing
	closedCh   chan struct{}      // Signals when the client is closed
	closeOnce  sync.Once          // Ensures closedCh is only closed once

	// Event handlers, called from the read loop goroutine
	handlerMu                     sync.RWMutex
	onError                       func(ErrorEvent)
	onSessionCreated              func(SessionCreated)
	onSessionUpdated              func(SessionUpdated)
	onRateLimitsUpdated           func(RateLimitsUpdated)
	onResponseTextDelta           func(ResponseTextDelta)
	onResponseTextDone            func(ResponseTextDone)
	onResponseAudioDelta          func(ResponseAudioDelta)
	onResponseAudioDone           func(ResponseAudioDone)
	onResponseAudioTranscriptDelta func(ResponseAudioTranscriptDelta)
	onResponseAudioTranscriptDone func(ResponseAudioTranscriptDone)
	onInputSpeechStarted          func(InputSpeechStarted)
	onInputSpeechStopped          func(InputSpeechStopped)
	onInputTranscriptionCompleted func(InputTranscriptionCompleted)
	onConversationItemCreated     func(ConversationItemCreated)
	onFunctionCallDone            func(FunctionCallDone)
	onResponseCreated             func(ResponseCreated)
	onResponseDone                func(ResponseDone)
}

// Dial establishes a WebSocket connection to the realtime API.
// It validates the configuration, constructs the WebSocket URL, performs
// authentication, and starts the background goroutines for handling messages
// and keepalives.
//
// The returned client is ready to use and will automatically handle incoming
// events. Call Close when finished to release resources.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	// Construct WebSocket URL from the HTTPS endpoint
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, NewConfigError("Endpoint", cfg.Endpoint, "invalid URL format")
	}

	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws" // For HTTP (mainly for testing)
	}
	u.Path = cfg.Path
	if u.Path == "" {
		u.Path = DefaultRealtimePath
	}
	q := u.Query()
	q.Set("model", cfg.Model)
	u.RawQuery = q.Encode()

	// Prepare authentication and custom headers
	h := http.Header{}
	if cfg.HandshakeHeaders != nil {
		for k, vals := range cfg.HandshakeHeaders {
			for _, v := range vals {
				h.Add(k, v)
			}
		}
	}
	cfg.Credential.apply(h)

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, u.String(), &websocket.DialOptions{HTTPHeader: h})
	if err != nil {
		return nil, NewConnectionError(u.String(), "dial", err)
	}

	c := &Client{cfg: cfg, conn: ws, closedCh: make(chan struct{})}
	c.log("ws_connected", map[string]any{"url": u.Redacted(), "model": cfg.Model})

	rcCtx, cancel := context.WithCancel(context.Background())
	c.readCancel = cancel
	go c.readLoop(rcCtx)
	go c.pingLoop()
	return c, nil
}

// Close gracefully shuts down the client and cleans up all resources.
// Safe to call multiple times; never blocks.
func (c *Client) Close() error {
	if c.readCancel != nil {
		c.readCancel()
	}

	c.writeMu.Lock()
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "closing")
		c.conn = nil
	}
	c.writeMu.Unlock()

	c.closeOnce.Do(func() {
		close(c.closedCh)
	})
	return nil
}

// Closed returns a channel that is closed when the connection terminates,
// either via Close or because the server dropped the connection. Use it to
// block an entry point until the session ends.
func (c *Client) Closed() <-chan struct{} { return c.closedCh }

// Event handler registration methods. Callbacks are executed in the read
// loop goroutine and must not block; hand off long work to a goroutine.

// OnError registers a callback for API error events.
func (c *Client) OnError(fn func(ErrorEvent)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onError = fn
}

// OnSessionCreated registers a callback for session creation events.
func (c *Client) OnSessionCreated(fn func(SessionCreated)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onSessionCreated = fn
}

// OnSessionUpdated registers a callback for session update events.
func (c *Client) OnSessionUpdated(fn func(SessionUpdated)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onSessionUpdated = fn
}

// OnRateLimitsUpdated registers a callback for rate limit update events.
func (c *Client) OnRateLimitsUpdated(fn func(RateLimitsUpdated)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onRateLimitsUpdated = fn
}

// OnResponseTextDelta registers a callback for streaming text response events.
func (c *Client) OnResponseTextDelta(fn func(ResponseTextDelta)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseTextDelta = fn
}

// OnResponseTextDone registers a callback for completed text response events.
func (c *Client) OnResponseTextDone(fn func(ResponseTextDone)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseTextDone = fn
}

// OnResponseAudioDelta registers a callback for streaming audio response events.
func (c *Client) OnResponseAudioDelta(fn func(ResponseAudioDelta)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseAudioDelta = fn
}

// OnResponseAudioDone registers a callback for completed audio response events.
func (c *Client) OnResponseAudioDone(fn func(ResponseAudioDone)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseAudioDone = fn
}

// OnResponseAudioTranscriptDelta registers a callback for assistant speech transcript deltas.
func (c *Client) OnResponseAudioTranscriptDelta(fn func(ResponseAudioTranscriptDelta)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseAudioTranscriptDelta = fn
}

// OnResponseAudioTranscriptDone registers a callback for completed assistant speech transcripts.
func (c *Client) OnResponseAudioTranscriptDone(fn func(ResponseAudioTranscriptDone)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseAudioTranscriptDone = fn
}

// OnInputSpeechStarted registers a callback for user speech start events.
func (c *Client) OnInputSpeechStarted(fn func(InputSpeechStarted)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onInputSpeechStarted = fn
}

// OnInputSpeechStopped registers a callback for user speech stop events.
func (c *Client) OnInputSpeechStopped(fn func(InputSpeechStopped)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onInputSpeechStopped = fn
}

// OnInputTranscriptionCompleted registers a callback for completed user audio transcriptions.
func (c *Client) OnInputTranscriptionCompleted(fn func(InputTranscriptionCompleted)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onInputTranscriptionCompleted = fn
}

// OnConversationItemCreated registers a callback for conversation item created events.
func (c *Client) OnConversationItemCreated(fn func(ConversationItemCreated)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onConversationItemCreated = fn
}

// OnFunctionCallDone registers a callback for completed function call arguments.
func (c *Client) OnFunctionCallDone(fn func(FunctionCallDone)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onFunctionCallDone = fn
}

// OnResponseCreated registers a callback for response created events.
func (c *Client) OnResponseCreated(fn func(ResponseCreated)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseCreated = fn
}

// OnResponseDone registers a callback for response done events.
func (c *Client) OnResponseDone(fn func(ResponseDone)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.onResponseDone = fn
}

// readLoop continuously reads messages from the WebSocket connection.
// It runs in a separate goroutine and handles message parsing and event
// dispatching. The loop terminates when the context is canceled or the
// connection fails.
func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.writeMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close(websocket.StatusNormalClosure, "reader_exit")
			c.conn = nil
		}
		c.writeMu.Unlock()
		c.closeOnce.Do(func() {
			close(c.closedCh)
		})
	}()

	// Capture the connection once: Close nils c.conn under writeMu, and the
	// read side must not observe that mid-iteration.
	c.writeMu.Lock()
	conn := c.conn
	c.writeMu.Unlock()
	if conn == nil {
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return // Connection closed or error occurred
		}

		// Only process text messages (JSON events)
		if typ != websocket.MessageText {
			continue
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logError("bad_event_json", map[string]any{"err": err, "raw_data": string(data)})
			continue
		}

		c.dispatch(env, data)
	}
}

func (c *Client) pingLoop() {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-c.closedCh:
			return
		case <-t.C:
			c.writeMu.Lock()
			if c.conn != nil {
				_ = c.conn.Ping(context.Background())
			}
			c.writeMu.Unlock()
		}
	}
}

func (c *Client) dispatch(env envelope, raw []byte) {
	switch env.Type {
	case "error":
		var e ErrorEvent
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onError != nil {
			c.onError(e)
		}
		c.handlerMu.RUnlock()
	case "session.created":
		var e SessionCreated
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onSessionCreated != nil {
			c.onSessionCreated(e)
		}
		c.handlerMu.RUnlock()
	case "session.updated":
		var e SessionUpdated
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onSessionUpdated != nil {
			c.onSessionUpdated(e)
		}
		c.handlerMu.RUnlock()
	case "rate_limits.updated":
		var e RateLimitsUpdated
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onRateLimitsUpdated != nil {
			c.onRateLimitsUpdated(e)
		}
		c.handlerMu.RUnlock()
	case "response.text.delta":
		var e ResponseTextDelta
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseTextDelta != nil {
			c.onResponseTextDelta(e)
		}
		c.handlerMu.RUnlock()
	case "response.text.done":
		var e ResponseTextDone
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseTextDone != nil {
			c.onResponseTextDone(e)
		}
		c.handlerMu.RUnlock()
	case "response.audio.delta":
		var e ResponseAudioDelta
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseAudioDelta != nil {
			c.onResponseAudioDelta(e)
		}
		c.handlerMu.RUnlock()
	case "response.audio.done":
		var e ResponseAudioDone
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseAudioDone != nil {
			c.onResponseAudioDone(e)
		}
		c.handlerMu.RUnlock()
	case "response.audio_transcript.delta":
		var e ResponseAudioTranscriptDelta
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseAudioTranscriptDelta != nil {
			c.onResponseAudioTranscriptDelta(e)
		}
		c.handlerMu.RUnlock()
	case "response.audio_transcript.done":
		var e ResponseAudioTranscriptDone
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseAudioTranscriptDone != nil {
			c.onResponseAudioTranscriptDone(e)
		}
		c.handlerMu.RUnlock()
	case "input_audio_buffer.speech_started":
		var e InputSpeechStarted
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onInputSpeechStarted != nil {
			c.onInputSpeechStarted(e)
		}
		c.handlerMu.RUnlock()
	case "input_audio_buffer.speech_stopped":
		var e InputSpeechStopped
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onInputSpeechStopped != nil {
			c.onInputSpeechStopped(e)
		}
		c.handlerMu.RUnlock()
	case "conversation.item.input_audio_transcription.completed":
		var e InputTranscriptionCompleted
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onInputTranscriptionCompleted != nil {
			c.onInputTranscriptionCompleted(e)
		}
		c.handlerMu.RUnlock()
	case "conversation.item.created":
		var e ConversationItemCreated
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onConversationItemCreated != nil {
			c.onConversationItemCreated(e)
		}
		c.handlerMu.RUnlock()
	case "response.function_call_arguments.done":
		var e FunctionCallDone
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onFunctionCallDone != nil {
			c.onFunctionCallDone(e)
		}
		c.handlerMu.RUnlock()
	case "response.created":
		var e ResponseCreated
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseCreated != nil {
			c.onResponseCreated(e)
		}
		c.handlerMu.RUnlock()
	case "response.done":
		var e ResponseDone
		_ = json.Unmarshal(raw, &e)
		c.handlerMu.RLock()
		if c.onResponseDone != nil {
			c.onResponseDone(e)
		}
		c.handlerMu.RUnlock()
	default:
		// Log unknown event types for debugging
		c.log("unknown_event", map[string]any{"type": env.Type})
	}
}

// SendFunctionOutput delivers the result of a function tool invocation back
// to the model as a conversation item. Callers typically follow this with
// CreateResponse so the model can speak the result.
func (c *Client) SendFunctionOutput(ctx context.Context, callID, output string) error {
	if ctx == nil {
		return NewSendError("conversation.item.create", "", errors.New("context cannot be nil"))
	}
	if callID == "" {
		return NewSendError("conversation.item.create", "", errors.New("call ID cannot be empty"))
	}
	payload := map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  output,
		},
	}
	return c.send(ctx, payload)
}

func (c *Client) send(ctx context.Context, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrClosed
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return NewSendError("unknown", "", fmt.Errorf("marshal payload: %w", err))
	}

	// Apply send timeout
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err = c.conn.Write(ctx, websocket.MessageText, b)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewSendError("unknown", "", ErrSendTimeout)
		}
		return NewSendError("unknown", "", err)
	}

	return nil
}

func (c *Client) nextEventID(ctx context.Context, payload map[string]any) (string, error) {
	id := fmt.Sprintf("evt_%d", time.Now().UnixNano())
	payload["event_id"] = id
	return id, c.send(ctx, payload)
}

func (c *Client) log(event string, fields map[string]any) {
	if c.cfg.StructuredLogger != nil {
		c.cfg.StructuredLogger.Info(event, fields)
	} else if c.cfg.Logger != nil {
		c.cfg.Logger(event, fields)
	}
}

func (c *Client) logError(event string, fields map[string]any) {
	if c.cfg.StructuredLogger != nil {
		c.cfg.StructuredLogger.Error(event, fields)
	} else if c.cfg.Logger != nil {
		c.cfg.Logger("ERROR: "+event, fields)
	}
}
