// Package live serves editor sessions over a websocket. The host page sends
// pointer, wheel, key and control events; the server applies them to the
// session's editor, rebuilds the scene and streams keyed patches back.
package live

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/editor"
)

// PathPrefix is where the websocket endpoint is mounted
const PathPrefix = "/live/"

const (
	DefaultPingInterval = 54 * time.Second
	DefaultReadTimeout  = 300 * time.Second
	DefaultSendBuffer   = 256
	DefaultIdleTimeout  = 10 * time.Minute
	writeTimeout        = 10 * time.Second
)

// Options configures a Server
type Options struct {
	Editor editor.Options

	// AllowedOrigins lists accepted Origin headers. Empty accepts only
	// same-host requests; "*" accepts any origin.
	AllowedOrigins []string

	PingInterval time.Duration
	ReadTimeout  time.Duration
	SendBuffer   int

	// IdleTimeout is how long the editor of a disconnected session is kept
	// for a reconnect with the same id
	IdleTimeout time.Duration

	Logger *zap.Logger
}

func (o *Options) withDefaults() Options {
	d := Options{
		PingInterval: DefaultPingInterval,
		ReadTimeout:  DefaultReadTimeout,
		SendBuffer:   DefaultSendBuffer,
		IdleTimeout:  DefaultIdleTimeout,
		Logger:       zap.NewNop(),
	}
	if o == nil {
		return d
	}
	d.Editor = o.Editor
	d.AllowedOrigins = o.AllowedOrigins
	if o.PingInterval > 0 {
		d.PingInterval = o.PingInterval
	}
	if o.ReadTimeout > 0 {
		d.ReadTimeout = o.ReadTimeout
	}
	if o.SendBuffer > 0 {
		d.SendBuffer = o.SendBuffer
	}
	if o.IdleTimeout > 0 {
		d.IdleTimeout = o.IdleTimeout
	}
	if o.Logger != nil {
		d.Logger = o.Logger
	}
	return d
}

// Server handles websocket connections and owns their sessions
type Server struct {
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu         sync.RWMutex
	sessions   map[string]*Session // connected
	states     map[string]*state   // connected or idle
	editorOpts editor.Options
	closed     bool

	wg sync.WaitGroup
}

// NewServer creates a live protocol server
func NewServer(opts *Options) *Server {
	o := opts.withDefaults()
	s := &Server{
		opts:       o,
		log:        o.Logger,
		sessions:   make(map[string]*Session),
		states:     make(map[string]*state),
		editorOpts: o.Editor,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(o.AllowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil // gorilla's same-host check
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// SetEditorOptions changes the options used for sessions created from now on.
// The wire bend and spawn stagger are also applied to the editors of existing
// sessions, and connected clients receive the rerouted wires.
func (s *Server) SetEditorOptions(o editor.Options) {
	s.mu.Lock()
	s.editorOpts = o
	states := make(map[string]*state, len(s.states))
	for id, st := range s.states {
		states[id] = st
	}
	sessions := make(map[string]*Session, len(s.sessions))
	for id, sess := range s.sessions {
		sessions[id] = sess
	}
	s.mu.Unlock()

	for id, st := range states {
		if sess, ok := sessions[id]; ok && sess.state == st {
			sess.Do(func(ed *editor.Editor) { ed.Restyle(&o) })
			continue
		}
		st.mu.Lock()
		st.ed.Restyle(&o)
		st.mu.Unlock()
	}
}

// Session returns a live session by id
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SessionCount returns the number of connected sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EditorCount returns the number of editors held, including those of
// disconnected sessions waiting for a reconnect
func (s *Server) EditorCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// HandleWebSocket upgrades PathPrefix+{session}. An empty session id gets a
// fresh uuid. Reconnecting with a known id takes over that session's editor.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, PathPrefix), "/")
	if id == "" {
		id = uuid.NewString()
	}
	if strings.ContainsAny(id, "/?#") || len(id) > 128 {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	sess, err := s.attach(id, conn)
	if err != nil {
		s.log.Info("Rejecting connection", zap.String("session", id), zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		conn.Close()
		return
	}

	go func() {
		defer s.wg.Done()
		sess.run()
		s.detach(sess)
	}()
}

var errServerClosed = errors.New("live: server closed")

// attach registers a session for conn, reusing the editor kept for the same
// id. A connection still open on that id is closed.
func (s *Server) attach(id string, conn *websocket.Conn) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errServerClosed
	}

	st, ok := s.states[id]
	if ok {
		st.gen++
		if st.idle != nil {
			st.idle.Stop()
			st.idle = nil
		}
		if old, connected := s.sessions[id]; connected {
			old.Close()
		}
		s.log.Info("Session resumed", zap.String("session", id))
	} else {
		opts := s.editorOpts
		base := opts.Logger
		if base == nil {
			base = s.log
		}
		opts.Logger = base.With(zap.String("session", id))
		st = &state{ed: editor.New(&opts)}
		s.states[id] = st
		s.log.Info("Session created", zap.String("session", id))
	}

	sess := newSession(id, conn, st, s.opts, s.log.With(zap.String("session", id)))
	s.sessions[id] = sess
	s.wg.Add(1)
	return sess, nil
}

// detach drops a finished connection. Its editor stays for IdleTimeout.
func (s *Server) detach(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sess.ID] != sess {
		return // replaced by a newer connection
	}
	delete(s.sessions, sess.ID)
	s.log.Info("Session disconnected", zap.String("session", sess.ID))
	if s.closed {
		return
	}

	st := sess.state
	st.gen++
	gen := st.gen
	st.idle = time.AfterFunc(s.opts.IdleTimeout, func() { s.expire(sess.ID, st, gen) })
}

func (s *Server) expire(id string, st *state, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states[id] != st || st.gen != gen {
		return
	}
	delete(s.states, id)
	s.log.Info("Session expired", zap.String("session", id))
}

// Shutdown closes every session and waits for their goroutines, or for ctx
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for _, sess := range s.sessions {
		sess.Close()
	}
	for id, st := range s.states {
		if st.idle != nil {
			st.idle.Stop()
		}
		delete(s.states, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
