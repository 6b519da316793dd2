package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ToolRequest is what a tool handler receives: the raw validated arguments,
// the resolved session, and the caller identity (zero-valued when the
// transport ran without authentication).
type ToolRequest struct {
	Name      string
	Arguments json.RawMessage
	Session   Session
	Caller    Caller
}

// ToolHandler executes one tool call. A returned *Error keeps its category in
// the error-shaped result; any other error (or a panic) is reported as
// OperationFailed.
type ToolHandler func(ctx context.Context, req ToolRequest) (CallToolResult, error)

// ToolRegistry maps tool names to their definition and handler. Registration
// happens once at startup and fails loudly on duplicates; lookups at call
// time never mutate the registry, so no locking is needed.
type ToolRegistry struct {
	logger *slog.Logger

	order    []string
	tools    map[string]Tool
	handlers map[string]ToolHandler
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry(logger *slog.Logger) *ToolRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolRegistry{
		logger:   logger.With(slog.String("component", "tools")),
		tools:    make(map[string]Tool),
		handlers: make(map[string]ToolHandler),
	}
}

// Register adds a tool definition and its handler. The tool name is the
// unique key; registering it twice is a startup bug and returns an error.
func (r *ToolRegistry) Register(tool Tool, handler ToolHandler) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %q: handler must not be nil", tool.Name)
	}
	if tool.InputSchema == nil {
		return fmt.Errorf("tool %q: input schema must not be nil", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q is already registered", tool.Name)
	}

	r.order = append(r.order, tool.Name)
	r.tools[tool.Name] = tool
	r.handlers[tool.Name] = handler
	return nil
}

// List returns all tool definitions in registration order.
func (r *ToolRegistry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *ToolRegistry) Len() int { return len(r.order) }

// Call looks up the named tool, validates the arguments against its input
// schema, and invokes the handler. Every failure mode, including a missing
// tool, bad arguments, a handler error, or a handler panic, is converted into
// an error-shaped CallToolResult so the dispatch loop always produces a
// well-formed reply and one bad tool cannot take the server down.
func (r *ToolRegistry) Call(ctx context.Context, params CallToolParams, req ToolRequest) CallToolResult {
	tool, ok := r.tools[params.Name]
	if !ok {
		return errorResult(newError(CategoryNotFound, "tool %q not found", params.Name))
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	keyErrs, err := tool.InputSchema.ValidateBytes(ctx, args)
	if err != nil {
		return errorResult(newError(CategoryValidationError,
			"arguments for tool %q are not a valid JSON object: %s", params.Name, err.Error()))
	}
	if len(keyErrs) > 0 {
		// Report every failing field, not just the first.
		vErr := &Error{
			Category: CategoryValidationError,
			Message:  fmt.Sprintf("arguments for tool %q failed validation", params.Name),
			Fields:   make(map[string]string, len(keyErrs)),
		}
		for _, ke := range keyErrs {
			path := ke.PropertyPath
			if path == "" || path == "/" {
				path = "(root)"
			}
			if prev, ok := vErr.Fields[path]; ok {
				vErr.Fields[path] = prev + "; " + ke.Message
				continue
			}
			vErr.Fields[path] = ke.Message
		}
		return errorResult(vErr)
	}

	req.Name = params.Name
	req.Arguments = args

	return r.invoke(ctx, tool, req)
}

func (r *ToolRegistry) invoke(ctx context.Context, tool Tool, req ToolRequest) (result CallToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool handler panicked",
				slog.String("tool", tool.Name),
				slog.Any("panic", rec))
			result = errorResult(newError(CategoryOperationFailed, "tool %q failed: %v", tool.Name, rec))
		}
	}()

	result, err := r.handlers[tool.Name](ctx, req)
	if err != nil {
		r.logger.Warn("tool call failed",
			slog.String("tool", tool.Name),
			slog.String("err", err.Error()))
		if e, ok := err.(*Error); ok {
			return errorResult(e)
		}
		return errorResult(newError(CategoryOperationFailed, "tool %q failed: %s", tool.Name, err.Error()))
	}
	return result
}

// errorResult renders a categorized error as a tool result with a single JSON
// text content block, so agent callers can parse the category back out.
func errorResult(e *Error) CallToolResult {
	payload := map[string]any{
		"category": string(e.Category),
		"message":  e.Message,
	}
	if len(e.Fields) > 0 {
		// Deterministic field order keeps the rendered text stable.
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		details := make([]string, 0, len(keys))
		for _, k := range keys {
			details = append(details, k+": "+e.Fields[k])
		}
		payload["fields"] = e.Fields
		payload["message"] = e.Message + ": " + strings.Join(details, ", ")
	}
	text, _ := json.Marshal(payload)

	return CallToolResult{
		Content: []Content{{Type: ContentTypeText, Text: string(text)}},
		IsError: true,
	}
}

// PromptHandler renders one prompt with validated arguments.
type PromptHandler func(ctx context.Context, params GetPromptParams) (GetPromptResult, error)

// PromptRegistry is the read-only analogue of ToolRegistry for prompt
// templates: register once at startup, list in order, render by name.
type PromptRegistry struct {
	order    []string
	prompts  map[string]Prompt
	handlers map[string]PromptHandler
}

// NewPromptRegistry creates an empty prompt registry.
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{
		prompts:  make(map[string]Prompt),
		handlers: make(map[string]PromptHandler),
	}
}

// Register adds a prompt definition and its handler, failing on duplicates.
func (r *PromptRegistry) Register(prompt Prompt, handler PromptHandler) error {
	if prompt.Name == "" {
		return fmt.Errorf("prompt name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("prompt %q: handler must not be nil", prompt.Name)
	}
	if _, exists := r.prompts[prompt.Name]; exists {
		return fmt.Errorf("prompt %q is already registered", prompt.Name)
	}

	r.order = append(r.order, prompt.Name)
	r.prompts[prompt.Name] = prompt
	r.handlers[prompt.Name] = handler
	return nil
}

// List returns all prompt definitions in registration order.
func (r *PromptRegistry) List() []Prompt {
	out := make([]Prompt, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.prompts[name])
	}
	return out
}

// Len returns the number of registered prompts.
func (r *PromptRegistry) Len() int { return len(r.order) }

// Get renders the named prompt after checking that every required argument is
// present. Missing arguments are all reported together.
func (r *PromptRegistry) Get(ctx context.Context, params GetPromptParams) (GetPromptResult, error) {
	prompt, ok := r.prompts[params.Name]
	if !ok {
		return GetPromptResult{}, newError(CategoryNotFound, "prompt %q not found", params.Name)
	}

	var missing []string
	for _, arg := range prompt.Arguments {
		if !arg.Required {
			continue
		}
		if _, ok := params.Arguments[arg.Name]; !ok {
			missing = append(missing, arg.Name)
		}
	}
	if len(missing) > 0 {
		vErr := &Error{
			Category: CategoryValidationError,
			Message:  fmt.Sprintf("prompt %q is missing required arguments: %s", params.Name, strings.Join(missing, ", ")),
			Fields:   make(map[string]string, len(missing)),
		}
		for _, name := range missing {
			vErr.Fields[name] = "required argument is missing"
		}
		return GetPromptResult{}, vErr
	}

	result, err := r.handlers[params.Name](ctx, params)
	if err != nil {
		if e, ok := err.(*Error); ok {
			return GetPromptResult{}, e
		}
		return GetPromptResult{}, newError(CategoryOperationFailed, "prompt %q failed: %s", params.Name, err.Error())
	}
	return result, nil
}
