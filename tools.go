package voiceagent

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolDefinition declares a function tool to the model as part of the
// session configuration. Parameters is a JSON Schema object describing the
// arguments the model must produce.
type ToolDefinition struct {
	Type        string         `json:"type"` // Always "function"
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolHandler executes a tool invocation. The raw arguments are the JSON the
// model produced; the returned string is sent back verbatim as the function
// output. Handlers run outside the read loop and may block on network calls.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool pairs a declaration with its handler.
type Tool struct {
	Definition ToolDefinition
	Handler    ToolHandler
}

// NewTool creates a function tool whose arguments are decoded into T before
// invoking the typed handler.
//
// Example:
//
//	type weatherArgs struct {
//		Location string `json:"location"`
//	}
//	tool := voiceagent.NewTool("lookup_weather", "Used to look up weather information.",
//		voiceagent.ObjectSchema(map[string]any{
//			"location": map[string]any{"type": "string", "description": "City to look up"},
//		}, "location"),
//		func(ctx context.Context, args weatherArgs) (string, error) {
//			return svc.Lookup(args.Location).String(), nil
//		},
//	)
func NewTool[T any](name, description string, parameters map[string]any, fn func(ctx context.Context, args T) (string, error)) Tool {
	return Tool{
		Definition: ToolDefinition{
			Type:        "function",
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args T
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &args); err != nil {
					return "", fmt.Errorf("decode arguments for %s: %w", name, err)
				}
			}
			return fn(ctx, args)
		},
	}
}

// ObjectSchema builds a JSON Schema object declaration from a property map
// and the list of required property names.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// toolRegistry indexes tools by name for dispatch.
type toolRegistry struct {
	tools map[string]Tool
}

func newToolRegistry(tools []Tool) *toolRegistry {
	r := &toolRegistry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t.Definition.Name != "" {
			r.tools[t.Definition.Name] = t
		}
	}
	return r
}

// definitions returns the declarations in registration order for session.update.
func (r *toolRegistry) definitions(ordered []Tool) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(ordered))
	for _, t := range ordered {
		defs = append(defs, t.Definition)
	}
	return defs
}

// invoke runs the named tool. A missing tool, a handler error, or a handler
// panic is reported via ToolError; the caller decides how to surface it to
// the model. Panics must not escape: the handler runs in a dispatch goroutine
// and an unrecovered panic would take down the process mid-conversation.
func (r *toolRegistry) invoke(ctx context.Context, name, callID string, args json.RawMessage) (out string, err error) {
	t, ok := r.tools[name]
	if !ok {
		return "", &ToolError{Tool: name, CallID: callID, Cause: ErrUnknownTool}
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = &ToolError{Tool: name, CallID: callID, Cause: fmt.Errorf("handler panicked: %v", rec)}
		}
	}()
	out, err = t.Handler(ctx, args)
	if err != nil {
		return "", &ToolError{Tool: name, CallID: callID, Cause: err}
	}
	return out, nil
}
