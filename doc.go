// Package voiceagent provides a Go client and agent runtime for hosted
// realtime voice model APIs.
//
// The package connects to a provider's realtime endpoint over WebSocket,
// dispatches server events to registered callbacks, and layers an agent
// abstraction on top: a persona (instructions) plus a set of function tools
// the remote model may invoke mid-conversation. Audio transport, speech
// recognition, speech synthesis and turn detection are all performed by the
// hosted backend; this package configures them and reacts to the resulting
// event stream.
//
// Basic usage:
//
//	cfg := voiceagent.Config{
//		Endpoint:   "https://api.openai.com",
//		Model:      "gpt-4o-realtime-preview",
//		Credential: voiceagent.Bearer(os.Getenv("OPENAI_API_KEY")),
//	}
//	client, err := voiceagent.Dial(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	assistant := voiceagent.Agent{
//		Name:         "assistant",
//		Instructions: "You are a helpful voice AI assistant.",
//	}
//	sess := voiceagent.NewAgentSession(client, assistant, voiceagent.SessionOptions{})
//	if err := sess.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	_ = sess.GenerateReply(ctx, "Greet the user and offer your assistance.")
//	<-client.Closed()
//
// Tools implementing weather lookups, web search and similar capabilities
// live in the tools/ subpackages. Room access tokens for browser clients are
// minted by the token package.
package voiceagent
