package mcp

import "context"

// Caller is the already-resolved identity of the requester: an opaque subject
// plus the organization it acts for. The dispatch layer treats both as opaque
// context; resolving credentials into a Caller is the job of the transport
// middleware in front of the server.
type Caller struct {
	Subject string
	OrgID   string
}

type callerContextKey struct{}

// ContextWithCaller returns a context carrying the resolved caller identity.
func ContextWithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerContextKey{}, caller)
}

// CallerFromContext extracts the caller identity placed by ContextWithCaller.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerContextKey{}).(Caller)
	return caller, ok
}
