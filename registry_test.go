package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/qri-io/jsonschema"

	mcp "github.com/hypermindz/mediamath-mcp"
)

func echoTool() (mcp.Tool, mcp.ToolHandler) {
	tool := mcp.Tool{
		Name:        "echo",
		Description: "Echoes back the message argument.",
		InputSchema: jsonschema.Must(`{
			"type": "object",
			"properties": {
				"message": {"type": "string"},
				"count": {"type": "integer", "minimum": 1}
			},
			"required": ["message"]
		}`),
		Annotations: mcp.ToolAnnotations{ReadOnly: true, Idempotent: true},
	}
	handler := func(_ context.Context, req mcp.ToolRequest) (mcp.CallToolResult, error) {
		var args struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			return mcp.CallToolResult{}, err
		}
		return mcp.CallToolResult{
			Content: []mcp.Content{{Type: mcp.ContentTypeText, Text: args.Message}},
		}, nil
	}
	return tool, handler
}

func decodeErrorPayload(t *testing.T, result mcp.CallToolResult) map[string]any {
	t.Helper()

	if !result.IsError {
		t.Fatal("expected an error-shaped result")
	}
	if len(result.Content) != 1 || result.Content[0].Type != mcp.ContentTypeText {
		t.Fatalf("expected a single text content block, got %+v", result.Content)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].Text), &payload); err != nil {
		t.Fatalf("error content is not valid JSON: %v", err)
	}
	return payload
}

func TestToolRegistryRegister(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)

	tool, handler := echoTool()
	if err := reg.Register(tool, handler); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.Register(tool, handler); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := reg.Register(mcp.Tool{InputSchema: tool.InputSchema}, handler); err == nil {
		t.Fatal("expected empty name to fail")
	}
	if err := reg.Register(mcp.Tool{Name: "no-handler", InputSchema: tool.InputSchema}, nil); err == nil {
		t.Fatal("expected nil handler to fail")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 registered tool, got %d", reg.Len())
	}
}

func TestToolRegistryCallUnknownTool(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)

	result := reg.Call(context.Background(), mcp.CallToolParams{Name: "nope"}, mcp.ToolRequest{})

	payload := decodeErrorPayload(t, result)
	if payload["category"] != string(mcp.CategoryNotFound) {
		t.Fatalf("expected NotFound category, got %v", payload["category"])
	}
}

func TestToolRegistryCallValidatesAllFields(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)
	tool, handler := echoTool()
	if err := reg.Register(tool, handler); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Two independent violations: message missing, count below minimum.
	result := reg.Call(context.Background(), mcp.CallToolParams{
		Name:      "echo",
		Arguments: json.RawMessage(`{"count": 0}`),
	}, mcp.ToolRequest{})

	payload := decodeErrorPayload(t, result)
	if payload["category"] != string(mcp.CategoryValidationError) {
		t.Fatalf("expected ValidationError category, got %v", payload["category"])
	}

	fields, ok := payload["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected per-field detail, got %v", payload["fields"])
	}
	if len(fields) < 2 {
		t.Fatalf("expected every failing field to be reported, got %v", fields)
	}
}

func TestToolRegistryCallSuccess(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)
	tool, handler := echoTool()
	if err := reg.Register(tool, handler); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result := reg.Call(context.Background(), mcp.CallToolParams{
		Name:      "echo",
		Arguments: json.RawMessage(`{"message": "hello"}`),
	}, mcp.ToolRequest{})

	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}
	if result.Content[0].Text != "hello" {
		t.Fatalf("expected echoed message, got %q", result.Content[0].Text)
	}
}

func TestToolRegistryCallRecoversPanic(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)
	tool, _ := echoTool()
	tool.Name = "boom"
	err := reg.Register(tool, func(context.Context, mcp.ToolRequest) (mcp.CallToolResult, error) {
		panic("handler bug")
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result := reg.Call(context.Background(), mcp.CallToolParams{
		Name:      "boom",
		Arguments: json.RawMessage(`{"message": "x"}`),
	}, mcp.ToolRequest{})

	payload := decodeErrorPayload(t, result)
	if payload["category"] != string(mcp.CategoryOperationFailed) {
		t.Fatalf("expected OperationFailed category, got %v", payload["category"])
	}
	if !strings.Contains(payload["message"].(string), "handler bug") {
		t.Fatalf("expected panic value in message, got %v", payload["message"])
	}
}

func TestToolRegistryCallKeepsHandlerCategory(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)
	tool, _ := echoTool()
	tool.Name = "missing"
	err := reg.Register(tool, func(context.Context, mcp.ToolRequest) (mcp.CallToolResult, error) {
		return mcp.CallToolResult{}, &mcp.Error{
			Category: mcp.CategoryNotFound,
			Message:  "campaign not found",
		}
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result := reg.Call(context.Background(), mcp.CallToolParams{
		Name:      "missing",
		Arguments: json.RawMessage(`{"message": "x"}`),
	}, mcp.ToolRequest{})

	payload := decodeErrorPayload(t, result)
	if payload["category"] != string(mcp.CategoryNotFound) {
		t.Fatalf("expected handler category preserved, got %v", payload["category"])
	}
}

func TestToolRegistryListOrder(t *testing.T) {
	reg := mcp.NewToolRegistry(nil)
	schema := jsonschema.Must(`{"type": "object"}`)
	noop := func(context.Context, mcp.ToolRequest) (mcp.CallToolResult, error) {
		return mcp.CallToolResult{}, nil
	}

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(mcp.Tool{Name: name, InputSchema: schema}, noop); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}

	list := reg.List()
	got := []string{list[0].Name, list[1].Name, list[2].Name}
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected registration order %v, got %v", want, got)
		}
	}
}

func TestPromptRegistryGet(t *testing.T) {
	reg := mcp.NewPromptRegistry()
	prompt := mcp.Prompt{
		Name: "greeting",
		Arguments: []mcp.PromptArgument{
			{Name: "name", Required: true},
			{Name: "tone", Required: true},
			{Name: "style"},
		},
	}
	err := reg.Register(prompt, func(_ context.Context, params mcp.GetPromptParams) (mcp.GetPromptResult, error) {
		return mcp.GetPromptResult{
			Messages: []mcp.PromptMessage{{
				Role:    mcp.RoleUser,
				Content: mcp.Content{Type: mcp.ContentTypeText, Text: "Hello " + params.Arguments["name"]},
			}},
		}, nil
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// All required arguments missing are reported together.
	_, err = reg.Get(context.Background(), mcp.GetPromptParams{Name: "greeting"})
	var pErr *mcp.Error
	if !errors.As(err, &pErr) || pErr.Category != mcp.CategoryValidationError {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(pErr.Fields) != 2 {
		t.Fatalf("expected both missing arguments reported, got %v", pErr.Fields)
	}

	result, err := reg.Get(context.Background(), mcp.GetPromptParams{
		Name:      "greeting",
		Arguments: map[string]string{"name": "Ada", "tone": "warm"},
	})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if result.Messages[0].Content.Text != "Hello Ada" {
		t.Fatalf("unexpected rendered message: %q", result.Messages[0].Content.Text)
	}

	_, err = reg.Get(context.Background(), mcp.GetPromptParams{Name: "nope"})
	if !errors.As(err, &pErr) || pErr.Category != mcp.CategoryNotFound {
		t.Fatalf("expected NotFound for unknown prompt, got %v", err)
	}
}
