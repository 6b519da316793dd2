package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// MustString is a type that enforces string representation for fields that can be either string or integer
// in the protocol, such as request IDs. It handles automatic conversion during JSON marshaling/unmarshaling.
type MustString string

// JSONRPCMessage represents a JSON-RPC 2.0 message used for every exchange with the server.
// It can represent either a request, response, or notification depending on which fields are populated:
//   - Request: JSONRPC, ID, Method, and Params are set
//   - Response: JSONRPC, ID, and exactly one of Result or Error are set
//   - Notification: JSONRPC and Method are set (no ID)
type JSONRPCMessage struct {
	// JSONRPC must always be "2.0" per the JSON-RPC specification
	JSONRPC string `json:"jsonrpc"`
	// ID uniquely identifies request-response pairs and must be a string or number
	ID MustString `json:"id,omitempty"`
	// Method contains the RPC method name for requests and notifications
	Method string `json:"method,omitempty"`
	// Params contains the parameters for the method call as a raw JSON message
	Params json.RawMessage `json:"params,omitempty"`
	// Result contains the successful response data as a raw JSON message
	Result json.RawMessage `json:"result,omitempty"`
	// Error contains error details if the request failed
	Error *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError represents an error response in the JSON-RPC 2.0 protocol.
type JSONRPCError struct {
	// Code indicates the error type that occurred.
	Code int `json:"code"`

	// Message provides a short description of the error.
	Message string `json:"message"`

	// Data contains additional information about the error, including the
	// stable error category (see errors.go). The value may be omitted.
	Data map[string]any `json:"data,omitempty"`
}

// Info contains metadata about a server or client instance including its name and version.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities represents server capabilities advertised during initialization.
type ServerCapabilities struct {
	Prompts *PromptsCapability `json:"prompts,omitempty"`
	Tools   *ToolsCapability   `json:"tools,omitempty"`
}

// ClientCapabilities represents the capabilities a client declares on initialize.
// The server stores them on the session; it does not currently gate any
// behavior on them.
type ClientCapabilities struct {
	Notifications *NotificationsCapability `json:"notifications,omitempty"`
}

// PromptsCapability represents prompts-specific capabilities.
type PromptsCapability struct{}

// ToolsCapability represents tools-specific capabilities.
type ToolsCapability struct{}

// NotificationsCapability indicates the client intends to open the
// server-to-client event stream.
type NotificationsCapability struct{}

// ToolAnnotations describe behavioral hints for a tool: whether it only
// reads, whether it can destroy data, whether repeated calls with the same
// arguments are safe, and whether it reaches outside the entity store.
type ToolAnnotations struct {
	ReadOnly    bool `json:"readOnly"`
	Destructive bool `json:"destructive"`
	Idempotent  bool `json:"idempotent"`
	OpenWorld   bool `json:"openWorld"`
}

// Tool defines a callable tool with its input schema. The same schema object
// validates arguments at call time and is serialized into tools/list, so the
// advertised contract can never drift from the enforced one.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"inputSchema,omitempty"`
	Annotations ToolAnnotations    `json:"annotations"`
}

// ListToolsParams contains parameters for listing available tools.
type ListToolsParams struct {
	// Cursor is an optional pagination cursor from a previous tools/list call.
	Cursor string `json:"cursor,omitempty"`
}

// ListToolsResult represents the tools returned by tools/list, in
// registration order.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolParams contains parameters for executing a specific tool.
type CallToolParams struct {
	// Name is the unique identifier of the tool to execute
	Name string `json:"name"`

	// Arguments is a JSON object of argument name-value pairs.
	// Must satisfy the tool's InputSchema.
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult represents the outcome of a tool invocation via tools/call.
// IsError indicates whether the operation failed, with details in Content.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// ContentType represents the type of content in messages.
type ContentType string

// Content types used in tool results and prompt messages.
const (
	ContentTypeText ContentType = "text"
)

// Content represents a message content block with its type.
type Content struct {
	Type ContentType `json:"type"`
	Text string      `json:"text,omitempty"`
}

// Role represents the role in a prompt conversation (user or assistant).
type Role string

// Prompt conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Prompt defines a template for generating prompt messages with optional arguments.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptArgument defines a single argument that can be passed to a prompt.
// Required indicates whether the argument must be provided when using the prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// PromptMessage represents a message in a rendered prompt.
type PromptMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// ListPromptsParams contains parameters for listing available prompts.
type ListPromptsParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ListPromptsResult represents the prompts returned by prompts/list, in
// registration order.
type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor string   `json:"nextCursor,omitempty"`
}

// GetPromptParams contains parameters for retrieving a specific prompt.
type GetPromptParams struct {
	// Name is the unique identifier of the prompt to retrieve
	Name string `json:"name"`

	// Arguments is a map of argument name-value pairs.
	// Must satisfy the required arguments declared on the prompt.
	Arguments map[string]string `json:"arguments,omitempty"`
}

// GetPromptResult represents the rendered messages of a prompt request.
type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

type initializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Info               `json:"clientInfo"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Info               `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
	SessionID       string             `json:"sessionId"`
}

const (
	// JSONRPCVersion specifies the JSON-RPC protocol version used for communication.
	JSONRPCVersion = "2.0"

	// HeaderSessionID is the HTTP header carrying the opaque session id. It is
	// absent only on initialize, and echoed back on every reply so the caller
	// can persist it for subsequent calls.
	HeaderSessionID = "Mcp-Session-Id"

	// MethodInitialize is the method name for establishing a new session.
	MethodInitialize = "initialize"
	// MethodPing is the method name for liveness checks within a session.
	MethodPing = "ping"

	// MethodToolsList is the method name for retrieving a list of available tools.
	MethodToolsList = "tools/list"
	// MethodToolsCall is the method name for invoking a specific tool.
	MethodToolsCall = "tools/call"

	// MethodPromptsList is the method name for retrieving a list of available prompts.
	MethodPromptsList = "prompts/list"
	// MethodPromptsGet is the method name for retrieving a specific prompt by name.
	MethodPromptsGet = "prompts/get"

	// MethodNotificationsEntitiesChanged is pushed over the event stream after
	// a tool mutates the entity store.
	MethodNotificationsEntitiesChanged = "notifications/entities/changed"
	// MethodNotificationsHeartbeat is the periodic keep-alive pushed over the
	// event stream to detect silent disconnects.
	MethodNotificationsHeartbeat = "notifications/heartbeat"

	protocolVersion = "2024-11-05"

	methodNotificationsInitialized = "notifications/initialized"

	jsonRPCParseErrorCode     = -32700
	jsonRPCInvalidRequestCode = -32600
	jsonRPCMethodNotFoundCode = -32601
	jsonRPCInvalidParamsCode  = -32602
	jsonRPCInternalErrorCode  = -32603

	jsonRPCSessionNotFoundCode = -32001
	jsonRPCAccessDeniedCode    = -32002
)

// UnmarshalJSON implements json.Unmarshaler to convert JSON data into MustString,
// handling both string and numeric input formats.
func (m *MustString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch v := v.(type) {
	case string:
		*m = MustString(v)
	case float64:
		*m = MustString(fmt.Sprintf("%d", int(v)))
	case int:
		*m = MustString(fmt.Sprintf("%d", v))
	default:
		return fmt.Errorf("invalid type: %T", v)
	}

	return nil
}

// MarshalJSON implements json.Marshaler to convert MustString into its JSON representation,
// always encoding as a string value.
func (m MustString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(m))
}

func (j JSONRPCError) Error() string {
	return fmt.Sprintf("request error, code: %d, message: %s, data %v", j.Code, j.Message, j.Data)
}
