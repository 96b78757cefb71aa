// Voice assistant on the Gemini live backend with the weather lookup tool.
// Requires GOOGLE_API_KEY.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	voiceagent "github.com/mbaskaran/voiceagent"
	"github.com/mbaskaran/voiceagent/internal/config"
	"github.com/mbaskaran/voiceagent/tools/weather"
)

func main() {
	googleKey, err := config.GoogleAPIKey()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := voiceagent.NewFileLogger(voiceagent.LogLevelInfo, config.LogDir())
	if err != nil {
		log.Fatalf("log dir: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := voiceagent.DialWithRetry(ctx, voiceagent.Config{
		Endpoint:         config.GeminiRealtimeEndpoint(),
		Model:            "gemini-2.0-flash-live-001",
		Credential:       voiceagent.APIKey(googleKey),
		DialTimeout:      15 * time.Second,
		StructuredLogger: logger,
	}, voiceagent.DefaultRetryConfig())
	if err != nil {
		log.Fatalf("dial: %v", err)
	}

	session := voiceagent.NewAgentSession(client, voiceagent.Agent{
		Name:         "assistant",
		Instructions: "You are a helpful assistant",
		Tools: []voiceagent.Tool{
			weather.New().Tool(),
		},
	}, voiceagent.SessionOptions{
		Voice:       "Kore",
		Temperature: voiceagent.Ptr(0.8),
		Logger:      logger,
	})

	if err := session.Start(ctx); err != nil {
		log.Fatalf("start session: %v", err)
	}
	defer session.Close()

	if err := session.GenerateReply(ctx, "Greet the user and offer your assistance."); err != nil {
		log.Fatalf("greet: %v", err)
	}

	if err := session.Wait(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("session ended: %v", err)
	}
	logger.Info("agent_shutdown", nil)
}
