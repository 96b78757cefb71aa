// Turn-based voice assistant on the staged pipeline backend. Each line on
// stdin names a WAV recording of one user turn; the transcript and reply are
// printed and the spoken reply is written next to the input file.
// Requires OPENAI_API_KEY.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	voiceagent "github.com/mbaskaran/voiceagent"
	"github.com/mbaskaran/voiceagent/internal/config"
	"github.com/mbaskaran/voiceagent/pipeline"
)

func main() {
	openaiKey, err := config.OpenAIAPIKey()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := voiceagent.NewFileLogger(voiceagent.LogLevelInfo, config.LogDir())
	if err != nil {
		log.Fatalf("log dir: %v", err)
	}

	client := openai.NewClient(openaiKey)
	session, err := pipeline.NewSession(pipeline.OpenAIModels(client),
		"You are a helpful voice AI assistant.")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	greeting, err := session.Greet(ctx, "")
	if err != nil {
		log.Fatalf("greet: %v", err)
	}
	logger.Info("assistant_turn", map[string]any{"text": greeting.Reply})
	fmt.Println("assistant:", greeting.Reply)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}
		wav, err := os.ReadFile(path)
		if err != nil {
			log.Printf("read %s: %v", path, err)
			continue
		}

		turn, err := session.ProcessTurn(ctx, wav)
		if err != nil {
			logger.Error("turn_failed", map[string]any{"error": err.Error()})
			log.Printf("turn: %v", err)
			continue
		}
		logger.Info("user_turn", map[string]any{"text": turn.Transcript})
		logger.Info("assistant_turn", map[string]any{"text": turn.Reply})

		fmt.Println("user:", turn.Transcript)
		fmt.Println("assistant:", turn.Reply)

		out := strings.TrimSuffix(path, ".wav") + ".reply.mp3"
		if err := os.WriteFile(out, turn.Audio, 0o644); err != nil {
			log.Printf("write %s: %v", out, err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}
