// Package auth resolves request credentials into an opaque caller identity.
// It accepts either a static API key (X-API-Key header) or an HS256-signed
// bearer token, and places the resolved identity on the request context for
// the dispatch layer to consume. It makes no authorization decisions.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	mcp "github.com/hypermindz/mediamath-mcp"
)

// Authenticator validates request credentials. With no keys and no secret
// configured it is a pass-through and requests run anonymously.
type Authenticator struct {
	// apiKeys maps a static key to the subject it authenticates.
	apiKeys   map[string]string
	jwtSecret []byte
	logger    *slog.Logger
}

// New creates an authenticator from the configured static keys and JWT
// secret. Either may be empty.
func New(apiKeys map[string]string, jwtSecret string, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}

	var secret []byte
	if jwtSecret != "" {
		secret = []byte(jwtSecret)
	}

	return &Authenticator{
		apiKeys:   apiKeys,
		jwtSecret: secret,
		logger:    logger.With(slog.String("component", "auth")),
	}
}

// enabled reports whether any credential source is configured.
func (a *Authenticator) enabled() bool {
	return len(a.apiKeys) > 0 || len(a.jwtSecret) > 0
}

// Middleware wraps next with credential resolution. Valid credentials place
// the caller identity on the request context; invalid or missing ones are
// rejected with a JSON-RPC error envelope before reaching the handler.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := a.resolve(r)
		if err != nil {
			a.logger.Warn("request rejected", slog.String("err", err.Error()))
			writeDenied(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(mcp.ContextWithCaller(r.Context(), caller)))
	})
}

func (a *Authenticator) resolve(r *http.Request) (mcp.Caller, error) {
	if key := r.Header.Get("X-API-Key"); key != "" {
		subject, ok := a.apiKeys[key]
		if !ok {
			return mcp.Caller{}, fmt.Errorf("unknown api key")
		}
		return mcp.Caller{Subject: subject}, nil
	}

	if header := r.Header.Get("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return mcp.Caller{}, fmt.Errorf("malformed authorization header")
		}
		return a.resolveJWT(raw)
	}

	return mcp.Caller{}, fmt.Errorf("no credentials supplied")
}

func (a *Authenticator) resolveJWT(raw string) (mcp.Caller, error) {
	if len(a.jwtSecret) == 0 {
		return mcp.Caller{}, fmt.Errorf("bearer tokens are not configured")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return mcp.Caller{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return mcp.Caller{}, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return mcp.Caller{}, fmt.Errorf("token is missing sub claim")
	}

	caller := mcp.Caller{Subject: subject}
	if orgID, ok := claims["org_id"]; ok {
		caller.OrgID = fmt.Sprintf("%v", orgID)
	}
	return caller, nil
}

func writeDenied(w http.ResponseWriter) {
	e := &mcp.Error{Category: mcp.CategoryAccessDenied, Message: "access denied"}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(mcp.JSONRPCMessage{
		JSONRPC: mcp.JSONRPCVersion,
		Error:   e.JSONRPC(),
	})
}
