package wsx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/skyflydev/threadly-go/pkg/apperr"
)

var upgrader = websocket.Upgrader{}

type testEvent struct {
	Seq   int64  `json:"seq"`
	Chunk string `json:"chunk"`
}

func decodeTestEvent(data []byte) (testEvent, error) {
	var ev testEvent
	err := json.Unmarshal(data, &ev)
	return ev, err
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestObserve_DeliversFramesInArrivalOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		for _, frame := range []string{
			`{"seq":2,"chunk":"llo"}`,
			`{"seq":1,"chunk":"He"}`,
		} {
			require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []testEvent
	for ev := range Observe(ctx, New(), wsURL(srv), decodeTestEvent) {
		got = append(got, ev)
	}

	// Arrival order, not seq order: reordering is the reducer's job.
	require.Equal(t, []testEvent{{Seq: 2, Chunk: "llo"}, {Seq: 1, Chunk: "He"}}, got)
}

func TestObserve_DropsMalformedFramesWithoutEndingStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		ws.WriteMessage(websocket.TextMessage, []byte(`{"seq":1,"chunk":"a"}`))
		ws.WriteMessage(websocket.TextMessage, []byte(`{"seq": not-json`))
		ws.WriteMessage(websocket.TextMessage, []byte(`{"seq":2,"chunk":"b"}`))
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []testEvent
	for ev := range Observe(ctx, New(), wsURL(srv), decodeTestEvent) {
		got = append(got, ev)
	}
	require.Equal(t, []testEvent{{Seq: 1, Chunk: "a"}, {Seq: 2, Chunk: "b"}}, got)
}

func TestObserve_SubscriberCancelCompletesStream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()

		ws.WriteMessage(websocket.TextMessage, []byte(`{"seq":1,"chunk":"a"}`))
		// Keep the channel open until the client goes away.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stream := Observe(ctx, New(), wsURL(srv), decodeTestEvent)

	ev, open := <-stream
	require.True(t, open)
	require.Equal(t, int64(1), ev.Seq)

	cancel()
	// Cancelling twice is a no-op.
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-stream:
			return !open
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "stream must complete after cancellation")
}

func TestSession_CleanBodyCompletion(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	res := New().Session(context.Background(), wsURL(srv), func(conn *Conn) error {
		return conn.WriteText([]byte(`{"hello":"world"}`))
	})
	require.True(t, res.IsOk())
}

func TestSession_RejectedHandshakeFiresMonitor(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	var hookCalls atomic.Int32
	c := New(WithUnauthorizedHook(func() { hookCalls.Add(1) }))

	res := c.Session(context.Background(), wsURL(srv), func(conn *Conn) error {
		t.Fatal("body must not run when the handshake fails")
		return nil
	})
	require.ErrorIs(t, res.Err(), apperr.Unauthorized())
	require.Equal(t, int32(1), hookCalls.Load())
}

func TestSession_MonitorPanicDoesNotMaskClassification(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(WithUnauthorizedHook(func() { panic("hook exploded") }))
	res := c.Session(context.Background(), wsURL(srv), func(conn *Conn) error { return nil })
	require.ErrorIs(t, res.Err(), apperr.Unauthorized())
}

func TestSession_UnreachableHostIsNoInternet(t *testing.T) {
	t.Parallel()

	res := New().Session(context.Background(), "ws://host.invalid/observe/sessions", func(conn *Conn) error {
		return nil
	})
	require.ErrorIs(t, res.Err(), apperr.NoInternet())
}
