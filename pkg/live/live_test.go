package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/view"
)

func testPayload() *graph.Payload {
	return &graph.Payload{
		Nodes: []graph.FighterNode{
			{ID: "a", Name: "Ana", Division: "Flyweight", TotalFights: 12},
			{ID: "b", Name: "Bo", Division: "Flyweight", TotalFights: 4},
		},
		Links: []graph.RivalryEdge{{Source: "a", Target: "b", Fights: 2}},
	}
}

func newView(t *testing.T) *view.Controller {
	t.Helper()
	c := view.New(view.DefaultOptions(), view.WithLogger(zaptest.NewLogger(t)))
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.SetPayload(testPayload()))
	return c
}

func TestDispatch(t *testing.T) {
	c := newView(t)

	require.NoError(t, Dispatch(c, Event{Type: EventEnter, ID: "a"}))
	s, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "a", s.State.Target)

	require.NoError(t, Dispatch(c, Event{Type: EventKey, Key: "+"}))
	s, err = c.Snapshot()
	require.NoError(t, err)
	assert.InDelta(t, 1.25, s.Transform.Scale, 1e-9)

	require.NoError(t, Dispatch(c, Event{Type: EventReset}))
	s, err = c.Snapshot()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.Transform.Scale, 1e-9)
}

func TestDispatchPointerCancelOwnership(t *testing.T) {
	c := newView(t)

	require.NoError(t, Dispatch(c, Event{Type: EventPointerDown, Pointer: 1, X: 100, Y: 100}))
	require.NoError(t, Dispatch(c, Event{Type: EventPointerMove, Pointer: 1, X: 200, Y: 150}))
	require.NoError(t, Dispatch(c, Event{Type: EventPointerCancel, Pointer: 2}))

	s, err := c.Snapshot()
	require.NoError(t, err)
	assert.InDelta(t, 100, s.Transform.X, 1e-9)
	assert.InDelta(t, 50, s.Transform.Y, 1e-9)

	require.NoError(t, Dispatch(c, Event{Type: EventPointerCancel, Pointer: 1}))
	s, err = c.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, s.Transform.X)
	assert.Zero(t, s.Transform.Y)
}

func TestClientScriptGatesPointerCancel(t *testing.T) {
	start := strings.Index(ClientScript, `addEventListener("pointercancel"`)
	require.NotEqual(t, -1, start)
	end := strings.Index(ClientScript[start:], `send({ type: "pointercancel"`)
	require.NotEqual(t, -1, end)
	assert.Contains(t, ClientScript[start:start+end], "hasPointerCapture(ev.pointerId)")
}

func TestDispatchUnknown(t *testing.T) {
	c := newView(t)

	assert.ErrorIs(t, Dispatch(c, Event{Type: "teleport"}), ErrUnknownEvent)
	assert.ErrorIs(t, Dispatch(c, Event{Type: EventAction, Action: "delete"}), ErrUnknownEvent)
}

func TestDispatchAfterClose(t *testing.T) {
	c := newView(t)
	require.NoError(t, c.Close())

	assert.ErrorIs(t, Dispatch(c, Event{Type: EventFit}), view.ErrClosed)
}

func TestEncodeFrame(t *testing.T) {
	c := newView(t)
	first, err := c.Snapshot()
	require.NoError(t, err)

	f, changed, err := encodeFrame(nil, first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "frame", f.Type)
	assert.True(t, strings.HasPrefix(f.SVG, "<svg"))
	assert.True(t, f.OverlayChanged)
	assert.Nil(t, f.Overlay)

	_, changed, err = encodeFrame(&first, first)
	require.NoError(t, err)
	assert.False(t, changed, "identical snapshot sends nothing")

	require.NoError(t, c.PointerEnter("a"))
	next, err := c.Snapshot()
	require.NoError(t, err)
	f, changed, err = encodeFrame(&first, next)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, f.Overlay)
	assert.Contains(t, f.Overlay.HTML, "Ana")
	assert.Equal(t, next.Panel.At.X, f.Overlay.Left)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(func() (*view.Controller, error) {
		c := view.New(view.DefaultOptions())
		if err := c.SetPayload(testPayload()); err != nil {
			return nil, err
		}
		return c, nil
	}, WithLogger(zaptest.NewLogger(t)))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live/{session}", srv.HandleWebSocket)
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return srv, ts
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestServer_Session(t *testing.T) {
	srv, ts := newTestServer(t)
	id := NewSessionID()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readFrame(t, conn)
	assert.Equal(t, "frame", first.Type)
	assert.Contains(t, first.SVG, `data-id="a"`)

	require.Eventually(t, func() bool {
		_, ok := srv.Session(id)
		return ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Event{Type: EventEnter, ID: "b"}))

	var withOverlay Frame
	for i := 0; i < 5; i++ {
		f := readFrame(t, conn)
		if f.Overlay != nil {
			withOverlay = f
			break
		}
	}
	require.NotNil(t, withOverlay.Overlay)
	assert.Contains(t, withOverlay.Overlay.HTML, "Bo")
	assert.Greater(t, withOverlay.Version, first.Version)
}

func TestServer_RejectsBadSessionID(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/live/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CloseRemovesSession(t *testing.T) {
	srv, ts := newTestServer(t)
	id := uuid.NewString()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readFrame(t, conn)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return srv.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
