package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recera/nodeflow/pkg/editor"
	"github.com/recera/nodeflow/pkg/geom"
	"github.com/recera/nodeflow/pkg/graph"
	"github.com/recera/nodeflow/pkg/scene"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server, path string) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return &testClient{t: t, conn: conn}
}

func (c *testClient) read() []byte {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	typ, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	require.Equal(c.t, websocket.BinaryMessage, typ)
	return data
}

func (c *testClient) readPatches() []WirePatch {
	c.t.Helper()
	_, ps, err := DecodePatches(c.read())
	require.NoError(c.t, err)
	return ps
}

func (c *testClient) sendJSON(s string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(s)))
}

func (c *testClient) sendEvent(evt Event) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.BinaryMessage, EncodeEvent(evt)))
}

func (c *testClient) hello() string {
	c.t.Helper()
	data := c.read()
	require.Equal(c.t, byte(FrameControl), data[0])
	d := NewDecoder(data[1:])
	name, err := d.ReadString()
	require.NoError(c.t, err)
	require.Equal(c.t, "HELLO", name)
	id, err := d.ReadString()
	require.NoError(c.t, err)
	return id
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	return newTestServerWith(t, &Options{})
}

func newTestServerWith(t *testing.T, opts *Options) (*Server, *httptest.Server) {
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	srv := NewServer(opts)
	mux := http.NewServeMux()
	mux.HandleFunc(PathPrefix, srv.HandleWebSocket)
	return srv, httptest.NewServer(mux)
}

func shutdown(t *testing.T, srv *Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}

func findPatch(ps []WirePatch, op scene.PatchOp, key string) (WirePatch, bool) {
	for _, p := range ps {
		if p.Op == op && p.Key == key {
			return p, true
		}
	}
	return WirePatch{}, false
}

func TestSession_RoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServer(t)
	defer ts.Close()
	defer shutdown(t, srv)

	c := dial(t, ts, PathPrefix+"abc")
	defer c.conn.Close()

	assert.Equal(t, "abc", c.hello())
	initial := c.readPatches()
	require.Len(t, initial, 1)
	assert.Equal(t, scene.OpReplace, initial[0].Op)
	assert.Contains(t, initial[0].HTML, `id="qagentEditorCanvas"`)

	c.sendEvent(Event{Type: EventResize, X: 800, Y: 600})
	c.sendJSON(`{"type":"control","target":"palette:open"}`)
	ps := c.readPatches()
	p, ok := findPatch(ps, scene.OpSetAttr, scene.PaletteKey)
	require.True(t, ok, "patches: %v", ps)
	assert.Equal(t, "node-modal-overlay open", p.Value)

	c.sendJSON(`{"type":"control","target":"palette:item:node:display"}`)
	ps = c.readPatches()
	p, ok = findPatch(ps, scene.OpInsert, "node-1")
	require.True(t, ok, "patches: %v", ps)
	assert.Equal(t, scene.ViewportKey, p.Parent)
	assert.Contains(t, p.HTML, `data-port-id="D1:in:value"`)

	sess, ok := srv.Session("abc")
	require.True(t, ok)
	sess.Do(func(ed *editor.Editor) {
		assert.Equal(t, 1, ed.Graph().NodeCount())
		assert.False(t, ed.Palette().IsOpen())
	})
}

func TestSession_PingPongAndBadFrames(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServer(t)
	defer ts.Close()
	defer shutdown(t, srv)

	c := dial(t, ts, PathPrefix)
	defer c.conn.Close()
	id := c.hello()
	assert.Len(t, id, 36, "a uuid is minted for an empty id")
	c.readPatches()

	c.sendJSON(`{"type":"bogus"}`)
	require.NoError(t, c.conn.WriteMessage(websocket.BinaryMessage, []byte{byte(FrameEvent)}))
	c.sendJSON(`{"type":"control","target":"nowhere"}`)
	require.NoError(t, c.conn.WriteMessage(websocket.BinaryMessage, EncodeControl("PING")))

	data := c.read()
	require.Equal(t, byte(FrameControl), data[0])
	name, err := NewDecoder(data[1:]).ReadString()
	require.NoError(t, err)
	assert.Equal(t, "PONG", name)
	assert.Equal(t, 1, srv.SessionCount())
}

func TestSession_ResumeKeepsEditor(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServer(t)
	defer ts.Close()
	defer shutdown(t, srv)

	first := dial(t, ts, PathPrefix+"resume")
	first.hello()
	first.readPatches()
	first.sendJSON(`{"type":"control","target":"palette:item:node:add"}`)
	first.readPatches()

	second := dial(t, ts, PathPrefix+"resume")
	defer second.conn.Close()
	second.hello()
	full := second.readPatches()
	require.Len(t, full, 1)
	assert.Contains(t, full[0].HTML, `data-node="A1"`)

	// the first connection is closed by the server
	require.NoError(t, first.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		if _, _, err := first.conn.ReadMessage(); err != nil {
			break
		}
	}
	first.conn.Close()
}

func TestSession_ResumeAfterDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServer(t)
	defer ts.Close()
	defer shutdown(t, srv)

	first := dial(t, ts, PathPrefix+"tab1")
	first.hello()
	first.readPatches()
	first.sendJSON(`{"type":"control","target":"palette:item:node:add"}`)
	first.readPatches()
	require.NoError(t, first.conn.Close())

	require.Eventually(t, func() bool { return srv.SessionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, srv.EditorCount())

	second := dial(t, ts, PathPrefix+"tab1")
	defer second.conn.Close()
	assert.Equal(t, "tab1", second.hello())
	full := second.readPatches()
	require.Len(t, full, 1)
	assert.Contains(t, full[0].HTML, `data-node="A1"`)
}

func TestSession_IdleEditorExpires(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServerWith(t, &Options{IdleTimeout: 20 * time.Millisecond})
	defer ts.Close()
	defer shutdown(t, srv)

	first := dial(t, ts, PathPrefix+"tab1")
	first.hello()
	first.readPatches()
	first.sendJSON(`{"type":"control","target":"palette:item:node:add"}`)
	first.readPatches()
	require.NoError(t, first.conn.Close())

	require.Eventually(t, func() bool { return srv.EditorCount() == 0 }, 5*time.Second, 10*time.Millisecond)

	second := dial(t, ts, PathPrefix+"tab1")
	defer second.conn.Close()
	second.hello()
	full := second.readPatches()
	require.Len(t, full, 1)
	assert.NotContains(t, full[0].HTML, `data-node=`)
}

func TestSession_EditorLoggerFromOptions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	core, logs := observer.New(zap.DebugLevel)
	srv, ts := newTestServerWith(t, &Options{
		Editor: editor.Options{Logger: zap.New(core).Named("editor")},
	})
	defer ts.Close()
	defer shutdown(t, srv)

	c := dial(t, ts, PathPrefix+"logged")
	defer c.conn.Close()
	c.hello()
	c.readPatches()
	c.sendJSON(`{"type":"control","target":"palette:item:node:add"}`)
	c.readPatches()

	spawned := logs.FilterMessage("Spawned node").All()
	require.Len(t, spawned, 1)
	assert.Equal(t, "editor", spawned[0].LoggerName)
	assert.Equal(t, "logged", spawned[0].ContextMap()["session"])
}

func TestSetEditorOptions_RestylesOpenSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServer(t)
	defer ts.Close()
	defer shutdown(t, srv)

	c := dial(t, ts, PathPrefix+"styled")
	defer c.conn.Close()
	c.hello()
	c.readPatches()

	sess, ok := srv.Session("styled")
	require.True(t, ok)
	var conn *graph.Connection
	sess.Do(func(ed *editor.Editor) {
		v, err := ed.Spawn(graph.KindValue, geom.Pt(0, 0))
		require.NoError(t, err)
		d, err := ed.Spawn(graph.KindDisplay, geom.Pt(300, 0))
		require.NoError(t, err)
		g := ed.Graph()
		conn, err = g.AddConnection(g.PortByName(v.ID, graph.Output, "value").ID, g.PortByName(d.ID, graph.Input, "value").ID)
		require.NoError(t, err)
	})
	c.readPatches()

	bend := geom.Bend{Factor: 1, Min: 10, Max: 500}
	srv.SetEditorOptions(editor.Options{Bend: bend})
	ps := c.readPatches()
	p, ok := findPatch(ps, scene.OpSetAttr, scene.WireKey(conn.ID))
	require.True(t, ok, "patches: %v", ps)
	assert.Equal(t, "d", p.Name)
	sess.Do(func(ed *editor.Editor) {
		assert.Equal(t, geom.Connector(conn.Path.P0, conn.Path.P1, bend), conn.Path)
		assert.Equal(t, p.Value, conn.Path.SVG())
	})
}

func TestShutdown_RejectsNewSessions(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, ts := newTestServer(t)
	defer ts.Close()

	c := dial(t, ts, PathPrefix+"x")
	defer c.conn.Close()
	c.hello()

	shutdown(t, srv)
	assert.Equal(t, 0, srv.SessionCount())
	assert.Equal(t, 0, srv.EditorCount())

	late := dial(t, ts, PathPrefix+"y")
	defer late.conn.Close()
	require.NoError(t, late.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := late.conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
