package mcp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tmaxmax/go-sse"
)

var defaultKeepAliveInterval = 30 * time.Second

// Event is one discrete message on a session's push stream. Every event is
// independently parseable JSON carrying a sortable unique id, a notification
// method name, and an optional payload.
type Event struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NotificationServer is the server-to-client push side of the protocol: one
// long-lived SSE stream per session, opened independently of the
// request/response path. Delivery is best-effort; pushing to a session with
// no open stream is a silent no-op, and events are never queued for later.
//
// Instances should be created using NewNotificationServer and shut down with
// Close when no longer needed.
type NotificationServer struct {
	sessions          *SessionManager
	logger            *slog.Logger
	keepAliveInterval time.Duration

	mu      sync.RWMutex
	streams map[string]*notificationStream

	done   chan struct{}
	closed sync.Once
}

type notificationStream struct {
	sessionID string
	events    chan Event
	// replaced is closed when a newer stream takes over this session.
	replaced chan struct{}
}

// NotificationServerOption represents the options for the NotificationServer.
type NotificationServerOption func(*NotificationServer)

// WithKeepAliveInterval sets the heartbeat cadence for open streams. The
// heartbeat is what surfaces silent client disconnects: writing to a dead
// connection fails and the stream is torn down.
func WithKeepAliveInterval(interval time.Duration) NotificationServerOption {
	return func(s *NotificationServer) {
		s.keepAliveInterval = interval
	}
}

// WithNotificationLogger sets the logger for the notification server.
func WithNotificationLogger(logger *slog.Logger) NotificationServerOption {
	return func(s *NotificationServer) {
		s.logger = logger.With(slog.String("component", "notifications"))
	}
}

// NewNotificationServer creates a notification server that validates stream
// opens against the given session manager.
func NewNotificationServer(sessions *SessionManager, options ...NotificationServerOption) *NotificationServer {
	s := &NotificationServer{
		sessions: sessions,
		logger:   slog.Default(),
		streams:  make(map[string]*notificationStream),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.keepAliveInterval == 0 {
		s.keepAliveInterval = defaultKeepAliveInterval
	}
	return s
}

// Publish enqueues an event for the session's open stream. It is a no-op when
// no stream is open, and drops the event when the stream's buffer is full;
// push delivery is best-effort by design.
func (s *NotificationServer) Publish(sessionID, method string, params any) {
	s.mu.RLock()
	stream, ok := s.streams[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	ev, err := newEvent(method, params)
	if err != nil {
		s.logger.Error("failed to build event",
			slog.String("method", method),
			slog.String("err", err.Error()))
		return
	}

	select {
	case stream.events <- ev:
	default:
		s.logger.Warn("event dropped, stream buffer full",
			slog.String("sessionID", sessionID),
			slog.String("method", method))
	}
}

// HandleEvents returns an http.Handler for the GET event stream. The session
// id is taken from the sessionID query parameter or the session header; an
// unknown session is rejected before the connection is upgraded. The handler
// blocks until the client disconnects, the stream is replaced by a newer one
// for the same session, or the server closes, and always releases the
// stream's resources on the way out.
func (s *NotificationServer) HandleEvents() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessID := r.URL.Query().Get("sessionID")
		if sessID == "" {
			sessID = r.Header.Get(HeaderSessionID)
		}
		if sessID == "" {
			http.Error(w, "missing sessionID", http.StatusBadRequest)
			return
		}

		if _, ok := s.sessions.Get(sessID); !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		w.Header().Set(HeaderSessionID, sessID)

		sess, err := sse.Upgrade(w, r)
		if err != nil {
			nErr := fmt.Errorf("failed to upgrade session: %w", err)
			s.logger.Error("failed to upgrade session", "err", nErr)
			http.Error(w, nErr.Error(), http.StatusInternalServerError)
			return
		}

		stream := s.register(sessID)
		defer s.unregister(stream)

		ticker := time.NewTicker(s.keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				// Client went away; release the stream promptly.
				return
			case <-s.done:
				return
			case <-stream.replaced:
				return
			case <-ticker.C:
				hb, err := newEvent(MethodNotificationsHeartbeat, map[string]any{
					"time": time.Now().UTC().Format(time.RFC3339),
				})
				if err != nil {
					continue
				}
				if err := sendEvent(sess, "heartbeat", hb); err != nil {
					s.logger.Debug("heartbeat failed, closing stream",
						slog.String("sessionID", sessID),
						slog.String("err", err.Error()))
					return
				}
			case ev := <-stream.events:
				if err := sendEvent(sess, "message", ev); err != nil {
					s.logger.Warn("failed to send event",
						slog.String("sessionID", sessID),
						slog.String("err", err.Error()))
					return
				}
			}
		}
	})
}

// Close terminates all open streams.
func (s *NotificationServer) Close() {
	s.closed.Do(func() {
		close(s.done)
	})
}

// register installs a stream for the session, displacing any stream already
// open for it so each session has at most one.
func (s *NotificationServer) register(sessionID string) *notificationStream {
	stream := &notificationStream{
		sessionID: sessionID,
		events:    make(chan Event, 16),
		replaced:  make(chan struct{}),
	}

	s.mu.Lock()
	if old, ok := s.streams[sessionID]; ok {
		close(old.replaced)
	}
	s.streams[sessionID] = stream
	s.mu.Unlock()

	s.logger.Debug("event stream opened", slog.String("sessionID", sessionID))
	return stream
}

func (s *NotificationServer) unregister(stream *notificationStream) {
	s.mu.Lock()
	if current, ok := s.streams[stream.sessionID]; ok && current == stream {
		delete(s.streams, stream.sessionID)
	}
	s.mu.Unlock()

	s.logger.Debug("event stream closed", slog.String("sessionID", stream.sessionID))
}

func newEvent(method string, params any) (Event, error) {
	ev := Event{
		ID:     ulid.Make().String(),
		Method: method,
	}
	if params != nil {
		paramsBs, err := json.Marshal(params)
		if err != nil {
			return Event{}, fmt.Errorf("failed to marshal event params: %w", err)
		}
		ev.Params = paramsBs
	}
	return ev, nil
}

func sendEvent(sess *sse.Session, eventType string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sse.Message{
		Type: sse.Type(eventType),
	}
	msg.AppendData(string(data))

	if err := sess.Send(msg); err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	if err := sess.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	return nil
}
