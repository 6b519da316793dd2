package mcp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mcp "github.com/hypermindz/mediamath-mcp"
)

type testEnv struct {
	server   *httptest.Server
	sessions *mcp.SessionManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions := mcp.NewSessionManager(
		mcp.WithSessionTTL(time.Hour),
		mcp.WithSweepInterval(time.Hour),
	)
	t.Cleanup(sessions.Close)

	tools := mcp.NewToolRegistry(nil)
	tool, handler := echoTool()
	if err := tools.Register(tool, handler); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	prompts := mcp.NewPromptRegistry()
	err := prompts.Register(mcp.Prompt{Name: "hello"}, func(context.Context, mcp.GetPromptParams) (mcp.GetPromptResult, error) {
		return mcp.GetPromptResult{
			Messages: []mcp.PromptMessage{{
				Role:    mcp.RoleUser,
				Content: mcp.Content{Type: mcp.ContentTypeText, Text: "hi"},
			}},
		}, nil
	})
	if err != nil {
		t.Fatalf("register prompt failed: %v", err)
	}

	srv := mcp.NewServer(
		mcp.Info{Name: "test-server", Version: "0.1.0"},
		sessions,
		mcp.WithToolRegistry(tools),
		mcp.WithPromptRegistry(prompts),
		mcp.WithInstructions("test instructions"),
	)

	ts := httptest.NewServer(srv.HandleMessage())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, sessions: sessions}
}

// post sends one JSON-RPC message and decodes the reply envelope.
func (e *testEnv) post(t *testing.T, sessionID string, msg mcp.JSONRPCMessage) (*http.Response, mcp.JSONRPCMessage) {
	t.Helper()

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request failed: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.server.URL, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(mcp.HeaderSessionID, sessionID)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var reply mcp.JSONRPCMessage
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply failed: %v", err)
	}
	return resp, reply
}

func (e *testEnv) initialize(t *testing.T) string {
	t.Helper()

	resp, reply := e.post(t, "", mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("init"),
		Method:  mcp.MethodInitialize,
		Params:  json.RawMessage(`{"protocolVersion":"2024-11-05","clientInfo":{"name":"test-client","version":"1.0"}}`),
	})
	if reply.Error != nil {
		t.Fatalf("initialize failed: %v", reply.Error)
	}

	sessID := resp.Header.Get(mcp.HeaderSessionID)
	if sessID == "" {
		t.Fatal("expected session header on initialize reply")
	}
	return sessID
}

func errorCategory(t *testing.T, reply mcp.JSONRPCMessage) string {
	t.Helper()

	if reply.Error == nil {
		t.Fatalf("expected an error reply, got result %s", reply.Result)
	}
	cat, _ := reply.Error.Data["category"].(string)
	return cat
}

func TestServerInitialize(t *testing.T) {
	env := newTestEnv(t)

	resp, reply := env.post(t, "", mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodInitialize,
		Params:  json.RawMessage(`{"protocolVersion":"2024-11-05","clientInfo":{"name":"c","version":"1"}}`),
	})

	if reply.Error != nil {
		t.Fatalf("initialize failed: %v", reply.Error)
	}

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		SessionID       string `json:"sessionId"`
		Instructions    string `json:"instructions"`
		Capabilities    struct {
			Tools   *struct{} `json:"tools"`
			Prompts *struct{} `json:"prompts"`
		} `json:"capabilities"`
	}
	if err := json.Unmarshal(reply.Result, &result); err != nil {
		t.Fatalf("decode result failed: %v", err)
	}

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("unexpected protocol version %q", result.ProtocolVersion)
	}
	if result.SessionID == "" {
		t.Error("expected session id in result")
	}
	if result.SessionID != resp.Header.Get(mcp.HeaderSessionID) {
		t.Error("session id in body and header must match")
	}
	if result.Capabilities.Tools == nil || result.Capabilities.Prompts == nil {
		t.Error("expected tools and prompts capabilities to be advertised")
	}
	if result.Instructions != "test instructions" {
		t.Errorf("unexpected instructions %q", result.Instructions)
	}
}

func TestServerInitializeRejectsUnknownProtocol(t *testing.T) {
	env := newTestEnv(t)

	_, reply := env.post(t, "", mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodInitialize,
		Params:  json.RawMessage(`{"protocolVersion":"1999-01-01"}`),
	})

	if got := errorCategory(t, reply); got != string(mcp.CategoryMalformedRequest) {
		t.Fatalf("expected MalformedRequest, got %q", got)
	}
}

func TestServerMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Post(env.server.URL, "application/json",
		bytes.NewReader([]byte(`{not json`)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var reply mcp.JSONRPCMessage
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply failed: %v", err)
	}
	if reply.Error == nil || reply.Error.Code != -32700 {
		t.Fatalf("expected parse error envelope, got %+v", reply.Error)
	}
}

func TestServerRejectsWrongJSONRPCVersion(t *testing.T) {
	env := newTestEnv(t)

	_, reply := env.post(t, "", mcp.JSONRPCMessage{
		JSONRPC: "1.0",
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodPing,
	})

	if got := errorCategory(t, reply); got != string(mcp.CategoryMalformedRequest) {
		t.Fatalf("expected MalformedRequest, got %q", got)
	}
}

func TestServerRequiresRequestID(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	_, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		Method:  mcp.MethodPing,
	})

	if got := errorCategory(t, reply); got != string(mcp.CategoryMalformedRequest) {
		t.Fatalf("expected MalformedRequest, got %q", got)
	}
}

func TestServerUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	resp, reply := env.post(t, "no-such-session", mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodPing,
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if got := errorCategory(t, reply); got != string(mcp.CategorySessionNotFound) {
		t.Fatalf("expected SessionNotFound, got %q", got)
	}
}

func TestServerPing(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	resp, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodPing,
	})

	if reply.Error != nil {
		t.Fatalf("ping failed: %v", reply.Error)
	}
	if got := resp.Header.Get(mcp.HeaderSessionID); got != sessID {
		t.Fatalf("expected session header echoed, got %q", got)
	}
}

func TestServerToolsListAndCall(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	_, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodToolsList,
	})
	if reply.Error != nil {
		t.Fatalf("tools/list failed: %v", reply.Error)
	}

	var listResult mcp.ListToolsResult
	if err := json.Unmarshal(reply.Result, &listResult); err != nil {
		t.Fatalf("decode tools/list result failed: %v", err)
	}
	if len(listResult.Tools) != 1 || listResult.Tools[0].Name != "echo" {
		t.Fatalf("unexpected tools: %+v", listResult.Tools)
	}

	_, reply = env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("2"),
		Method:  mcp.MethodToolsCall,
		Params:  json.RawMessage(`{"name":"echo","arguments":{"message":"hello"}}`),
	})
	if reply.Error != nil {
		t.Fatalf("tools/call failed: %v", reply.Error)
	}

	var callResult mcp.CallToolResult
	if err := json.Unmarshal(reply.Result, &callResult); err != nil {
		t.Fatalf("decode tools/call result failed: %v", err)
	}
	if callResult.IsError || callResult.Content[0].Text != "hello" {
		t.Fatalf("unexpected call result: %+v", callResult)
	}
}

func TestServerToolFailureKeepsEnvelopeWellFormed(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	// Invalid arguments produce an error-shaped result, not a protocol error.
	_, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodToolsCall,
		Params:  json.RawMessage(`{"name":"echo","arguments":{"count":0}}`),
	})
	if reply.Error != nil {
		t.Fatalf("expected a result envelope, got error %v", reply.Error)
	}

	var callResult mcp.CallToolResult
	if err := json.Unmarshal(reply.Result, &callResult); err != nil {
		t.Fatalf("decode result failed: %v", err)
	}
	if !callResult.IsError {
		t.Fatal("expected an error-shaped tool result")
	}

	// The session is still usable afterwards.
	_, reply = env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("2"),
		Method:  mcp.MethodPing,
	})
	if reply.Error != nil {
		t.Fatalf("ping after failed call errored: %v", reply.Error)
	}
}

func TestServerPromptsListAndGet(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	_, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodPromptsList,
	})
	if reply.Error != nil {
		t.Fatalf("prompts/list failed: %v", reply.Error)
	}

	var listResult mcp.ListPromptsResult
	if err := json.Unmarshal(reply.Result, &listResult); err != nil {
		t.Fatalf("decode prompts/list result failed: %v", err)
	}
	if len(listResult.Prompts) != 1 || listResult.Prompts[0].Name != "hello" {
		t.Fatalf("unexpected prompts: %+v", listResult.Prompts)
	}

	_, reply = env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("2"),
		Method:  mcp.MethodPromptsGet,
		Params:  json.RawMessage(`{"name":"hello"}`),
	})
	if reply.Error != nil {
		t.Fatalf("prompts/get failed: %v", reply.Error)
	}

	var getResult mcp.GetPromptResult
	if err := json.Unmarshal(reply.Result, &getResult); err != nil {
		t.Fatalf("decode prompts/get result failed: %v", err)
	}
	if len(getResult.Messages) != 1 || getResult.Messages[0].Content.Text != "hi" {
		t.Fatalf("unexpected prompt result: %+v", getResult)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	_, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  "resources/list",
	})

	if got := errorCategory(t, reply); got != string(mcp.CategoryMethodNotFound) {
		t.Fatalf("expected MethodNotFound, got %q", got)
	}
}

func TestServerDeleteTerminatesSession(t *testing.T) {
	env := newTestEnv(t)
	sessID := env.initialize(t)

	req, err := http.NewRequest(http.MethodDelete, env.server.URL, nil)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	req.Header.Set(mcp.HeaderSessionID, sessID)

	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// Subsequent requests on the session must fail.
	_, reply := env.post(t, sessID, mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      mcp.MustString("1"),
		Method:  mcp.MethodPing,
	})
	if got := errorCategory(t, reply); got != string(mcp.CategorySessionNotFound) {
		t.Fatalf("expected SessionNotFound after delete, got %q", got)
	}

	// Deleting again is a 404; the id no longer resolves.
	resp, err = env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestServerRejectsGet(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.server.Client().Get(env.server.URL)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestServerNotificationsInitializedAccepted(t *testing.T) {
	env := newTestEnv(t)

	body := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	resp, err := env.server.Client().Post(env.server.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
}
