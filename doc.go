// Package mcp implements a session-oriented Model Context Protocol (MCP)
// server over HTTP. Requests travel as JSON-RPC 2.0 messages on a POST
// endpoint, server-to-client notifications on a separate Server-Sent Events
// stream, and both sides are correlated by an opaque session id issued on
// initialize and carried in the Mcp-Session-Id header.
//
// The package provides the transport and dispatch machinery only: a
// SessionManager with idle-timeout expiry, a ToolRegistry that validates
// arguments against JSON Schemas and isolates handler failures, a
// PromptRegistry for prompt templates, and a NotificationServer for
// best-effort push delivery. Domain servers register their tools and prompts
// on top; see the servers subpackages.
package mcp
