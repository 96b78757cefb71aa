// Package pipeline implements a turn-based voice loop from discrete model
// calls: speech-to-text, a chat completion, then text-to-speech. It serves
// deployments where the realtime transport is unavailable and higher
// latency per turn is acceptable.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// ChatModel produces the next assistant message for a conversation.
type ChatModel interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Synthesizer turns assistant text into speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Models bundles the three stages. All fields are required.
type Models struct {
	STT Transcriber
	LLM ChatModel
	TTS Synthesizer
}

// Turn is the outcome of one exchange.
type Turn struct {
	Transcript string
	Reply      string
	Audio      []byte
}

// Session runs a conversation through the three-stage pipeline, keeping the
// message history between turns.
type Session struct {
	models       Models
	instructions string

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

// NewSession creates a pipeline session with the given system instructions.
func NewSession(models Models, instructions string) (*Session, error) {
	if models.STT == nil || models.LLM == nil || models.TTS == nil {
		return nil, fmt.Errorf("pipeline: all three model stages are required")
	}
	s := &Session{models: models, instructions: instructions}
	if instructions != "" {
		s.history = append(s.history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	return s, nil
}

// Greet generates and voices an opening line without user input.
func (s *Session) Greet(ctx context.Context, prompt string) (Turn, error) {
	if prompt == "" {
		prompt = "Greet the user and offer your assistance."
	}
	return s.advance(ctx, "", openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt,
	})
}

// ProcessTurn transcribes the user's audio, completes the next reply, and
// synthesizes it.
func (s *Session) ProcessTurn(ctx context.Context, wav []byte) (Turn, error) {
	transcript, err := s.models.STT.Transcribe(ctx, wav)
	if err != nil {
		return Turn{}, fmt.Errorf("pipeline: transcribe: %w", err)
	}
	return s.advance(ctx, transcript, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: transcript,
	})
}

func (s *Session) advance(ctx context.Context, transcript string, msg openai.ChatCompletionMessage) (Turn, error) {
	s.mu.Lock()
	s.history = append(s.history, msg)
	messages := make([]openai.ChatCompletionMessage, len(s.history))
	copy(messages, s.history)
	s.mu.Unlock()

	reply, err := s.models.LLM.Complete(ctx, messages)
	if err != nil {
		return Turn{}, fmt.Errorf("pipeline: complete: %w", err)
	}

	s.mu.Lock()
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	s.mu.Unlock()

	audio, err := s.models.TTS.Synthesize(ctx, reply)
	if err != nil {
		return Turn{}, fmt.Errorf("pipeline: synthesize: %w", err)
	}
	return Turn{Transcript: transcript, Reply: reply, Audio: audio}, nil
}

// History returns a copy of the conversation so far.
func (s *Session) History() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]openai.ChatCompletionMessage, len(s.history))
	copy(out, s.history)
	return out
}

const (
	defaultSTTModel  = openai.Whisper1
	defaultChatModel = "gpt-4.1-nano"
	defaultTTSModel  = openai.TTSModel1
	defaultTTSVoice  = openai.VoiceAlloy
)

// OpenAIModels builds the three stages on an OpenAI client with the default
// model choices.
func OpenAIModels(client *openai.Client) Models {
	return Models{
		STT: &openAITranscriber{client: client, model: defaultSTTModel},
		LLM: &openAIChat{client: client, model: defaultChatModel},
		TTS: &openAISynthesizer{client: client, model: defaultTTSModel, voice: defaultTTSVoice},
	}
}

type openAITranscriber struct {
	client *openai.Client
	model  string
}

func (o *openAITranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: "turn.wav",
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type openAIChat struct {
	client *openai.Client
	model  string
}

func (o *openAIChat) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type openAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func (o *openAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: o.model,
		Voice: o.voice,
		Input: text,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	return io.ReadAll(resp)
}
