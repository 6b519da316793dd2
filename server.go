package mcp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// ServerOption represents the options for the server.
type ServerOption func(*Server)

// Server is the request/response side of the protocol: it decodes JSON-RPC
// messages arriving over HTTP POST, resolves the session named by the request
// header, and routes each method to the tool or prompt registry. Every request
// produces exactly one reply; tool failures surface as error-shaped results,
// never as broken envelopes.
//
// Use NewServer to create instances, and mount HandleMessage on the message
// endpoint.
type Server struct {
	info         Info
	instructions string

	sessions *SessionManager
	tools    *ToolRegistry
	prompts  *PromptRegistry
	notifier *NotificationServer

	logger *slog.Logger
}

// WithInstructions sets the usage instructions returned on initialize.
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// WithToolRegistry sets the tool registry backing tools/list and tools/call.
func WithToolRegistry(tools *ToolRegistry) ServerOption {
	return func(s *Server) {
		s.tools = tools
	}
}

// WithPromptRegistry sets the prompt registry backing prompts/list and
// prompts/get.
func WithPromptRegistry(prompts *PromptRegistry) ServerOption {
	return func(s *Server) {
		s.prompts = prompts
	}
}

// WithNotifier attaches the push channel. The dispatcher itself never
// publishes; tool handlers reach the notifier through their server wiring.
// Attaching it here keeps lifecycle ownership in one place.
func WithNotifier(notifier *NotificationServer) ServerOption {
	return func(s *Server) {
		s.notifier = notifier
	}
}

// WithServerLogger sets the logger for the server.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger.With(slog.String("component", "server"))
	}
}

// NewServer creates a dispatcher bound to the given session manager.
func NewServer(info Info, sessions *SessionManager, options ...ServerOption) *Server {
	s := &Server{
		info:     info,
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// capabilities is computed from what is actually registered, so the
// initialize advertisement can never claim more than the server serves.
func (s *Server) capabilities() ServerCapabilities {
	caps := ServerCapabilities{}
	if s.tools != nil && s.tools.Len() > 0 {
		caps.Tools = &ToolsCapability{}
	}
	if s.prompts != nil && s.prompts.Len() > 0 {
		caps.Prompts = &PromptsCapability{}
	}
	return caps
}

// HandleMessage returns the http.Handler for the message endpoint. POST
// carries JSON-RPC requests and notifications; DELETE terminates the session
// named by the session header.
func (s *Server) HandleMessage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			s.handleDelete(w, r)
		case http.MethodPost:
			s.handlePost(w, r)
		default:
			w.Header().Set("Allow", "POST, DELETE")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessID := r.Header.Get(HeaderSessionID)
	if sessID == "" {
		http.Error(w, "missing session header", http.StatusBadRequest)
		return
	}
	if _, ok := s.sessions.Get(sessID); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	s.sessions.Expire(sessID)
	s.logger.Info("session terminated by client", slog.String("sessionID", sessID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var msg JSONRPCMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.writeError(w, http.StatusBadRequest, "", &JSONRPCError{
			Code:    jsonRPCParseErrorCode,
			Message: fmt.Sprintf("failed to parse request: %s", err.Error()),
			Data:    map[string]any{"category": string(CategoryMalformedRequest)},
		})
		return
	}

	if msg.JSONRPC != JSONRPCVersion {
		s.writeError(w, http.StatusBadRequest, msg.ID, newError(CategoryMalformedRequest,
			"unsupported jsonrpc version %q", msg.JSONRPC).JSONRPC())
		return
	}

	switch msg.Method {
	case MethodInitialize:
		s.handleInitialize(w, msg)
		return
	case methodNotificationsInitialized:
		// Client acknowledgment; nothing to reply to.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if msg.ID == "" {
		s.writeError(w, http.StatusBadRequest, "", newError(CategoryMalformedRequest,
			"request for method %q is missing an id", msg.Method).JSONRPC())
		return
	}

	sessID := r.Header.Get(HeaderSessionID)
	sess, err := s.sessions.Touch(sessID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, msg.ID, newError(CategorySessionNotFound,
			"session not found").JSONRPC())
		return
	}
	w.Header().Set(HeaderSessionID, sess.ID)

	ctx := r.Context()
	caller, _ := CallerFromContext(ctx)
	req := ToolRequest{Session: sess, Caller: caller}

	switch msg.Method {
	case MethodPing:
		s.writeResult(w, msg.ID, struct{}{})
	case MethodToolsList:
		if s.tools == nil {
			s.writeError(w, http.StatusOK, msg.ID, newError(CategoryMethodNotFound,
				"method %q is not supported", msg.Method).JSONRPC())
			return
		}
		s.writeResult(w, msg.ID, ListToolsResult{Tools: s.tools.List()})
	case MethodToolsCall:
		if s.tools == nil {
			s.writeError(w, http.StatusOK, msg.ID, newError(CategoryMethodNotFound,
				"method %q is not supported", msg.Method).JSONRPC())
			return
		}
		var params CallToolParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.writeError(w, http.StatusBadRequest, msg.ID, newError(CategoryMalformedRequest,
				"failed to parse tools/call params: %s", err.Error()).JSONRPC())
			return
		}
		result := s.tools.Call(ctx, params, req)
		s.writeResult(w, msg.ID, result)
	case MethodPromptsList:
		if s.prompts == nil {
			s.writeError(w, http.StatusOK, msg.ID, newError(CategoryMethodNotFound,
				"method %q is not supported", msg.Method).JSONRPC())
			return
		}
		s.writeResult(w, msg.ID, ListPromptsResult{Prompts: s.prompts.List()})
	case MethodPromptsGet:
		if s.prompts == nil {
			s.writeError(w, http.StatusOK, msg.ID, newError(CategoryMethodNotFound,
				"method %q is not supported", msg.Method).JSONRPC())
			return
		}
		var params GetPromptParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.writeError(w, http.StatusBadRequest, msg.ID, newError(CategoryMalformedRequest,
				"failed to parse prompts/get params: %s", err.Error()).JSONRPC())
			return
		}
		result, err := s.prompts.Get(ctx, params)
		if err != nil {
			if e, ok := err.(*Error); ok {
				s.writeError(w, http.StatusOK, msg.ID, e.JSONRPC())
				return
			}
			s.writeError(w, http.StatusOK, msg.ID, newError(CategoryOperationFailed,
				"prompt failed: %s", err.Error()).JSONRPC())
			return
		}
		s.writeResult(w, msg.ID, result)
	default:
		s.writeError(w, http.StatusOK, msg.ID, newError(CategoryMethodNotFound,
			"method %q not found", msg.Method).JSONRPC())
	}
}

// handleInitialize is the one method served without an existing session: it
// always creates a fresh session and returns its id both in the result body
// and the session header.
func (s *Server) handleInitialize(w http.ResponseWriter, msg JSONRPCMessage) {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.writeError(w, http.StatusBadRequest, msg.ID, newError(CategoryMalformedRequest,
				"failed to parse initialize params: %s", err.Error()).JSONRPC())
			return
		}
	}

	if params.ProtocolVersion != "" && params.ProtocolVersion != protocolVersion {
		s.writeError(w, http.StatusOK, msg.ID, newError(CategoryMalformedRequest,
			"unsupported protocol version %q, server speaks %s",
			params.ProtocolVersion, protocolVersion).JSONRPC())
		return
	}

	sess := s.sessions.Create(params.Capabilities, params.ClientInfo)
	w.Header().Set(HeaderSessionID, sess.ID)

	s.logger.Info("session initialized",
		slog.String("sessionID", sess.ID),
		slog.String("client", params.ClientInfo.Name))

	s.writeResult(w, msg.ID, initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    s.capabilities(),
		ServerInfo:      s.info,
		Instructions:    s.instructions,
		SessionID:       sess.ID,
	})
}

func (s *Server) writeResult(w http.ResponseWriter, id MustString, result any) {
	resultBs, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, id, newError(CategoryOperationFailed,
			"failed to marshal result: %s", err.Error()).JSONRPC())
		return
	}
	s.writeReply(w, http.StatusOK, JSONRPCMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  resultBs,
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, id MustString, rpcErr *JSONRPCError) {
	s.writeReply(w, status, JSONRPCMessage{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   rpcErr,
	})
}

func (s *Server) writeReply(w http.ResponseWriter, status int, msg JSONRPCMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		s.logger.Error("failed to write reply", slog.String("err", err.Error()))
	}
}
