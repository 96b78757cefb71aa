package voiceagent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Agent is a configured persona: instructions plus the function tools the
// remote model may invoke during a conversation turn.
type Agent struct {
	// Name identifies the agent in logs.
	Name string

	// Instructions provide system-level guidance to the assistant.
	Instructions string

	// Tools the model may call. Their declarations are sent with the
	// session configuration; their handlers run when the model invokes them.
	Tools []Tool
}

// SessionOptions configures the realtime session an agent runs in.
// Zero values leave the backend defaults in place.
type SessionOptions struct {
	// Voice for audio responses (e.g. "verse", "Kore").
	Voice string

	// Temperature for response sampling. Nil keeps the backend default.
	Temperature *float64

	// Modalities the model may produce; defaults to text and audio.
	Modalities []string

	// TurnDetection overrides the default server VAD configuration.
	TurnDetection *TurnDetection

	// NoiseReduction selects a server-side input noise reduction profile.
	NoiseReduction *NoiseReduction

	// InputTranscription enables transcription of user audio.
	InputTranscription *InputTranscription

	// ToolTimeout bounds each tool handler invocation. Defaults to 30s.
	ToolTimeout time.Duration

	// Logger receives session lifecycle and tool dispatch events.
	Logger *Logger
}

// AgentSession binds an Agent to a realtime Client: it pushes the agent's
// configuration to the backend, logs conversation transcripts, and dispatches
// the model's function calls to the agent's tool handlers.
type AgentSession struct {
	ID     string
	client *Client
	agent  Agent
	opts   SessionOptions

	registry    *toolRegistry
	transcripts *TranscriptAssembler
	logger      *Logger
}

// NewAgentSession creates a session for the given agent on an established
// client. Call Start to configure the backend and begin handling events.
func NewAgentSession(client *Client, agent Agent, opts SessionOptions) *AgentSession {
	logger := opts.Logger
	if logger == nil {
		logger = NewLoggerFromEnv()
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = 30 * time.Second
	}
	return &AgentSession{
		ID:          uuid.NewString(),
		client:      client,
		agent:       agent,
		opts:        opts,
		registry:    newToolRegistry(agent.Tools),
		transcripts: NewTranscriptAssembler(),
		logger:      logger,
	}
}

// Start sends the agent's session configuration and wires event handlers.
// After Start returns, the backend drives the conversation: server-side turn
// detection decides when the assistant responds, and function calls are
// dispatched to the agent's tools as they arrive.
func (s *AgentSession) Start(ctx context.Context) error {
	sess := Session{
		Modalities:         s.opts.Modalities,
		InputTranscription: s.opts.InputTranscription,
		TurnDetection:      s.opts.TurnDetection,
		NoiseReduction:     s.opts.NoiseReduction,
		Temperature:        s.opts.Temperature,
		Tools:              s.registry.definitions(s.agent.Tools),
	}
	if len(sess.Modalities) == 0 {
		sess.Modalities = []string{"text", "audio"}
	}
	if s.agent.Instructions != "" {
		sess.Instructions = Ptr(s.agent.Instructions)
	}
	if s.opts.Voice != "" {
		sess.Voice = Ptr(s.opts.Voice)
	}

	s.wireHandlers()

	if err := s.client.SessionUpdate(ctx, sess); err != nil {
		return fmt.Errorf("configure session: %w", err)
	}

	s.logger.Info("session_started", map[string]any{
		"session_id": s.ID,
		"agent":      s.agent.Name,
		"tools":      len(s.agent.Tools),
		"voice":      s.opts.Voice,
	})
	return nil
}

// GenerateReply asks the assistant to produce a reply now, guided by the
// given instructions (e.g. "Greet the user and offer your assistance.").
func (s *AgentSession) GenerateReply(ctx context.Context, instructions string) error {
	_, err := s.client.CreateResponse(ctx, CreateResponseOptions{Instructions: instructions})
	if err != nil {
		return err
	}
	s.logger.Debug("reply_requested", map[string]any{
		"session_id":   s.ID,
		"instructions": instructions,
	})
	return nil
}

// Wait blocks until the underlying connection terminates or the context is
// cancelled.
func (s *AgentSession) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.client.Closed():
		return nil
	}
}

// Close shuts down the underlying client.
func (s *AgentSession) Close() error { return s.client.Close() }

func (s *AgentSession) wireHandlers() {
	s.client.OnError(func(e ErrorEvent) {
		s.logger.Error("backend_error", map[string]any{
			"session_id": s.ID,
			"error_type": e.Error.Type,
			"message":    e.Error.Message,
		})
	})

	s.client.OnSessionCreated(func(e SessionCreated) {
		s.logger.Info("backend_session_created", map[string]any{
			"session_id": s.ID,
			"backend_id": e.Session.ID,
			"model":      e.Session.Model,
		})
	})

	s.client.OnInputTranscriptionCompleted(func(e InputTranscriptionCompleted) {
		s.logger.Info("user_turn", map[string]any{
			"session_id": s.ID,
			"item_id":    e.ItemID,
			"transcript": e.Transcript,
		})
	})

	s.client.OnResponseAudioTranscriptDelta(func(e ResponseAudioTranscriptDelta) {
		s.transcripts.OnDelta(e)
	})

	s.client.OnResponseAudioTranscriptDone(func(e ResponseAudioTranscriptDone) {
		s.logger.Info("assistant_turn", map[string]any{
			"session_id":  s.ID,
			"response_id": e.ResponseID,
			"transcript":  s.transcripts.OnDone(e),
		})
	})

	s.client.OnFunctionCallDone(func(e FunctionCallDone) {
		// Tool handlers may block on network calls; keep the read loop free.
		go s.dispatchTool(e)
	})
}

// dispatchTool runs a tool invocation and reports the result to the model.
// Handler failures are flattened to a plain-text message so the assistant
// can relay them verbally instead of the turn dying silently.
func (s *AgentSession) dispatchTool(e FunctionCallDone) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ToolTimeout)
	defer cancel()

	started := time.Now()
	s.logger.Info("tool_invoked", map[string]any{
		"session_id": s.ID,
		"tool":       e.Name,
		"call_id":    e.CallID,
	})

	output, err := s.registry.invoke(ctx, e.Name, e.CallID, []byte(e.Arguments))
	if err != nil {
		s.logger.Error("tool_failed", map[string]any{
			"session_id": s.ID,
			"tool":       e.Name,
			"call_id":    e.CallID,
			"err":        err.Error(),
			"duration":   time.Since(started).String(),
		})
		output = fmt.Sprintf("The %s tool is currently unavailable.", e.Name)
	} else {
		s.logger.Info("tool_completed", map[string]any{
			"session_id": s.ID,
			"tool":       e.Name,
			"call_id":    e.CallID,
			"duration":   time.Since(started).String(),
		})
	}

	if err := s.client.SendFunctionOutput(ctx, e.CallID, output); err != nil {
		s.logger.Error("tool_output_send_failed", map[string]any{
			"session_id": s.ID,
			"call_id":    e.CallID,
			"err":        err.Error(),
		})
		return
	}
	// Prompt the model to speak the tool result.
	if _, err := s.client.CreateResponse(ctx, CreateResponseOptions{}); err != nil {
		s.logger.Error("tool_response_create_failed", map[string]any{
			"session_id": s.ID,
			"call_id":    e.CallID,
			"err":        err.Error(),
		})
	}
}
