package voiceagent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewToolDecodesArguments(t *testing.T) {
	type args struct {
		Location string `json:"location"`
	}
	tool := NewTool("lookup", "Looks things up.",
		ObjectSchema(map[string]any{"location": map[string]any{"type": "string"}}, "location"),
		func(ctx context.Context, a args) (string, error) {
			return "got " + a.Location, nil
		})

	if tool.Definition.Type != "function" {
		t.Errorf("definition type %q", tool.Definition.Type)
	}

	out, err := tool.Handler(context.Background(), json.RawMessage(`{"location":"Oslo"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out != "got Oslo" {
		t.Errorf("got %q", out)
	}
}

func TestNewToolEmptyArguments(t *testing.T) {
	type args struct {
		Query string `json:"query"`
	}
	tool := NewTool("search", "", nil, func(ctx context.Context, a args) (string, error) {
		return "query=" + a.Query, nil
	})

	out, err := tool.Handler(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out != "query=" {
		t.Errorf("got %q", out)
	}
}

func TestNewToolBadArguments(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	tool := NewTool("count", "", nil, func(ctx context.Context, a args) (string, error) {
		return "", nil
	})

	if _, err := tool.Handler(context.Background(), json.RawMessage(`{broken`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestObjectSchema(t *testing.T) {
	schema := ObjectSchema(map[string]any{
		"location": map[string]any{"type": "string"},
	}, "location")

	if schema["type"] != "object" {
		t.Errorf("type = %v", schema["type"])
	}
	req, ok := schema["required"].([]string)
	if !ok || len(req) != 1 || req[0] != "location" {
		t.Errorf("required = %v", schema["required"])
	}

	noReq := ObjectSchema(map[string]any{})
	if _, present := noReq["required"]; present {
		t.Error("required should be omitted when empty")
	}
}

func TestToolRegistryInvoke(t *testing.T) {
	tool := NewTool("echo", "", nil, func(ctx context.Context, a struct {
		Text string `json:"text"`
	}) (string, error) {
		return a.Text, nil
	})
	r := newToolRegistry([]Tool{tool})

	out, err := r.invoke(context.Background(), "echo", "call_1", json.RawMessage(`{"text":"hi"}`))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out != "hi" {
		t.Errorf("got %q", out)
	}
}

func TestToolRegistryUnknownTool(t *testing.T) {
	r := newToolRegistry(nil)

	_, err := r.invoke(context.Background(), "missing", "call_1", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Tool != "missing" {
		t.Errorf("expected ToolError naming the tool, got %v", err)
	}
}

func TestToolRegistryWrapsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	tool := NewTool("fails", "", nil, func(ctx context.Context, a struct{}) (string, error) {
		return "", boom
	})
	r := newToolRegistry([]Tool{tool})

	_, err := r.invoke(context.Background(), "fails", "call_2", nil)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped handler error, got %v", err)
	}
}

func TestToolRegistryRecoversHandlerPanic(t *testing.T) {
	tool := NewTool("explodes", "", nil, func(ctx context.Context, a struct{}) (string, error) {
		panic("handler exploded")
	})
	r := newToolRegistry([]Tool{tool})

	out, err := r.invoke(context.Background(), "explodes", "call_3", nil)
	if err == nil {
		t.Fatal("expected error from panicking handler")
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Tool != "explodes" || toolErr.CallID != "call_3" {
		t.Errorf("expected ToolError naming the tool and call, got %v", err)
	}
	if !strings.Contains(err.Error(), "handler exploded") {
		t.Errorf("panic value not carried in error: %v", err)
	}
}
