// Voice assistant on the OpenAI realtime backend with weather lookup and
// web search tools. Requires OPENAI_API_KEY and MISTRAL_API_KEY; set
// REDIS_ADDR to cache search results.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	voiceagent "github.com/mbaskaran/voiceagent"
	"github.com/mbaskaran/voiceagent/internal/config"
	"github.com/mbaskaran/voiceagent/tools/weather"
	"github.com/mbaskaran/voiceagent/tools/websearch"
)

const reconnectDelay = 2 * time.Second

func main() {
	openaiKey, err := config.OpenAIAPIKey()
	if err != nil {
		log.Fatal(err)
	}
	mistralKey, err := config.MistralAPIKey()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := voiceagent.NewFileLogger(voiceagent.LogLevelInfo, config.LogDir())
	if err != nil {
		log.Fatalf("log dir: %v", err)
	}

	searchOpts := []websearch.Option{websearch.WithLogger(logger)}
	if addr := config.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		searchOpts = append(searchOpts, websearch.WithCache(websearch.NewRedisCache(rdb), 0))
	}
	search := websearch.New(mistralKey, searchOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := voiceagent.Config{
		Endpoint:         config.OpenAIRealtimeEndpoint(),
		Model:            "gpt-realtime",
		Credential:       voiceagent.Bearer(openaiKey),
		DialTimeout:      15 * time.Second,
		StructuredLogger: logger,
	}
	agent := voiceagent.Agent{
		Name:         "assistant",
		Instructions: "You are a helpful voice AI assistant. You can look up weather and search the web for current information.",
		Tools: []voiceagent.Tool{
			weather.New().Tool(),
			search.Tool(),
		},
	}
	opts := voiceagent.SessionOptions{
		Voice:          "marin",
		NoiseReduction: &voiceagent.NoiseReduction{Type: "near_field"},
		InputTranscription: &voiceagent.InputTranscription{
			Model: "whisper-1",
		},
		Logger: logger,
	}

	// The breaker keeps a flapping backend from being hammered with
	// reconnect attempts; each attempt itself dials with backoff.
	breaker := voiceagent.NewCircuitBreaker(voiceagent.CircuitBreakerConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 1,
	})

	for ctx.Err() == nil {
		err := breaker.Execute(func() error {
			return runSession(ctx, cfg, agent, opts)
		})
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			logger.Warn("session_failed", map[string]any{"err": err.Error()})
		}
		logger.Info("reconnecting", map[string]any{"delay": reconnectDelay.String()})
		select {
		case <-ctx.Done():
		case <-time.After(reconnectDelay):
		}
	}
	logger.Info("agent_shutdown", nil)
}

// runSession dials with retry, runs one agent session to completion, and
// returns when the connection ends or ctx is cancelled.
func runSession(ctx context.Context, cfg voiceagent.Config, agent voiceagent.Agent, opts voiceagent.SessionOptions) error {
	client, err := voiceagent.DialWithRetry(ctx, cfg, voiceagent.DefaultRetryConfig())
	if err != nil {
		return err
	}

	session := voiceagent.NewAgentSession(client, agent, opts)
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return err
	}
	if err := session.GenerateReply(ctx, "Greet the user and offer your assistance."); err != nil {
		return err
	}
	return session.Wait(ctx)
}
