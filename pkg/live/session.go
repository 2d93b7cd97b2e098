package live

import (
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/scene"
)

// state is the editor behind a session id. It outlives a single connection.
type state struct {
	mu sync.Mutex
	ed *editor.Editor

	// guarded by Server.mu
	idle *time.Timer
	gen  uint64
}

// Session is one websocket connection to an editor
type Session struct {
	ID string

	log   *zap.Logger
	opts  Options
	conn  *websocket.Conn
	state *state

	// guarded by state.mu
	tree *scene.Element
	seq  uint64

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id string, conn *websocket.Conn, st *state, opts Options, log *zap.Logger) *Session {
	return &Session{
		ID:    id,
		log:   log,
		opts:  opts,
		conn:  conn,
		state: st,
		send:  make(chan []byte, opts.SendBuffer),
		done:  make(chan struct{}),
	}
}

// Close ends the session. The writer sends a close frame and drops the
// connection, which stops the reader.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Do runs fn with exclusive access to the session's editor and then pushes
// any resulting scene changes to the client.
func (s *Session) Do(fn func(ed *editor.Editor)) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	fn(s.state.ed)
	s.flush()
}

func (s *Session) run() {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writer()
	}()

	s.enqueue(EncodeControl("HELLO", s.ID, strconv.FormatUint(s.seq, 10)))
	s.Do(func(*editor.Editor) {}) // full scene

	s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	})

	for {
		typ, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Info("Unexpected close", zap.Error(err))
			}
			break
		}
		switch typ {
		case websocket.BinaryMessage:
			s.handleBinary(data)
		case websocket.TextMessage:
			s.handleText(data)
		}
	}

	s.Close()
	<-writerDone
}

func (s *Session) writer() {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()
	defer s.conn.Close()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				s.log.Debug("Write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		}
	}
}

// enqueue hands a frame to the writer. A client too slow to drain its buffer
// is disconnected; it gets a full scene when it reconnects.
func (s *Session) enqueue(frame []byte) {
	select {
	case s.send <- frame:
	case <-s.done:
	default:
		s.log.Warn("Send buffer full, closing session")
		s.Close()
	}
}

// flush diffs the editor's scene against what the client has. Callers hold
// state.mu.
func (s *Session) flush() {
	next := scene.Build(s.state.ed)
	patches := scene.Diff(s.tree, next)
	s.tree = next
	if len(patches) == 0 {
		return
	}
	s.seq++
	frame, err := EncodePatches(s.seq, patches)
	if err != nil {
		s.log.Error("Encoding patches failed", zap.Error(err))
		return
	}
	s.enqueue(frame)
}

func (s *Session) handleBinary(data []byte) {
	if len(data) == 0 {
		return
	}
	switch MessageType(data[0]) {
	case FrameEvent:
		evt, err := DecodeEvent(data)
		if err != nil {
			s.log.Warn("Dropping malformed event", zap.Error(err))
			return
		}
		s.apply(evt)

	case FrameControl:
		d := NewDecoder(data[1:])
		name, err := d.ReadString()
		if err != nil {
			s.log.Warn("Dropping malformed control frame", zap.Error(err))
			return
		}
		switch name {
		case "PING":
			s.enqueue(EncodeControl("PONG"))
		case "HELLO":
			s.log.Debug("Client hello")
		default:
			s.log.Warn("Unknown control frame", zap.String("name", name))
		}

	default:
		s.log.Warn("Unknown frame type", zap.Uint8("frame", data[0]))
	}
}

func (s *Session) handleText(data []byte) {
	evt, err := DecodeJSONEvent(data)
	if err != nil {
		s.log.Warn("Dropping malformed event", zap.Error(err))
		return
	}
	s.apply(evt)
}

func (s *Session) apply(evt *Event) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	changed, err := Apply(s.state.ed, evt)
	if err != nil {
		s.log.Warn("Event rejected",
			zap.Stringer("type", evt.Type),
			zap.String("target", evt.Target),
			zap.Error(err))
	}
	if changed {
		s.flush()
	}
}
