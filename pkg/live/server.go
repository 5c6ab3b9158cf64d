// Package live serves interactive views over WebSocket. Each session
// owns one view controller; client events are dispatched to it and
// every new snapshot is pushed back as a frame.
package live

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recera/fightweb/pkg/fightweb/view"
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("live: session closed")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	maxMessageSize = 4096
)

// Factory builds the controller for a new session.
type Factory func() (*view.Controller, error)

// Server handles WebSocket connections for live views.
type Server struct {
	upgrader websocket.Upgrader
	factory  Factory
	log      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCheckOrigin overrides the upgrader's origin check.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = fn }
}

// NewServer creates a live server building views with factory.
func NewServer(factory Factory, opts ...Option) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		factory:  factory,
		log:      zap.NewNop(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSessionID returns a fresh session id for a page.
func NewSessionID() string { return uuid.NewString() }

// HandleWebSocket upgrades the request and runs the session named by the
// {session} path value until the connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	ctrl, err := s.factory()
	if err != nil {
		s.log.Error("creating view", zap.Error(err))
		http.Error(w, "view unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		_ = ctrl.Close()
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(id, conn, ctrl, s.log.With(zap.String("session", id)))
	s.add(sess)
	go func() {
		sess.run()
		s.remove(sess)
	}()
}

func (s *Server) add(sess *Session) {
	s.mu.Lock()
	old := s.sessions[sess.ID]
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	if old != nil {
		// a reconnect with the same id replaces the old connection
		old.Close()
	}
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	if s.sessions[sess.ID] == sess {
		delete(s.sessions, sess.ID)
	}
	s.mu.Unlock()
}

// Session returns the live session with id.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len returns the number of open sessions.
func (s *Server) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Each calls fn for every open session.
func (s *Server) Each(fn func(*Session)) {
	s.mu.RLock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()
	for _, sess := range list {
		fn(sess)
	}
}

// Shutdown closes every session.
func (s *Server) Shutdown() {
	s.Each(func(sess *Session) { sess.Close() })
}

// Session is one connected client.
type Session struct {
	ID   string
	conn *websocket.Conn
	ctrl *view.Controller
	log  *zap.Logger

	// latest snapshot not yet written; wake signals the writer
	mu      sync.Mutex
	pending *view.Snapshot
	wake    chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(id string, conn *websocket.Conn, ctrl *view.Controller, log *zap.Logger) *Session {
	return &Session{
		ID:     id,
		conn:   conn,
		ctrl:   ctrl,
		log:    log,
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Controller returns the session's view.
func (s *Session) Controller() *view.Controller { return s.ctrl }

// Close ends the session and its view.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
		_ = s.ctrl.Close()
	})
}

func (s *Session) run() {
	defer s.Close()

	unsubscribe, err := s.ctrl.Subscribe(s.offer)
	if err != nil {
		s.log.Warn("subscribe failed", zap.Error(err))
		return
	}
	defer unsubscribe()

	if snap, err := s.ctrl.Snapshot(); err == nil {
		s.offer(snap)
	}

	go s.writer()
	s.reader()
}

// offer keeps only the newest snapshot; it runs on the view loop and
// never blocks.
func (s *Session) offer(snap view.Snapshot) {
	s.mu.Lock()
	if s.pending == nil || snap.Version >= s.pending.Version {
		s.pending = &snap
	}
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) take() *view.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.pending
	s.pending = nil
	return snap
}

func (s *Session) reader() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("unexpected close", zap.Error(err))
			}
			return
		}
		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			s.log.Debug("malformed event", zap.Error(err))
			continue
		}
		if err := Dispatch(s.ctrl, e); err != nil {
			if errors.Is(err, view.ErrClosed) {
				return
			}
			s.log.Debug("event rejected", zap.String("type", string(e.Type)), zap.Error(err))
		}
	}
}

func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.Close()

	var last *view.Snapshot
	for {
		select {
		case <-s.wake:
			snap := s.take()
			if snap == nil || (last != nil && snap.Version <= last.Version) {
				continue
			}
			frame, changed, err := encodeFrame(last, *snap)
			if err != nil {
				s.log.Error("encoding frame", zap.Error(err))
				continue
			}
			last = snap
			if !changed {
				continue
			}
			if err := s.writeJSON(frame); err != nil {
				s.log.Debug("write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.closed:
			return
		}
	}
}

func (s *Session) writeJSON(v any) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(v)
}
