package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// feedServer runs an in-process websocket feed and hands each connection to
// the given handler.
func feedServer(t *testing.T, handler func(conn *websocket.Conn)) Endpoint {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		handler(conn)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return Endpoint{Host: host, Port: port}
}

func TestEndpointURL(t *testing.T) {
	ep := Endpoint{Host: "localhost", Port: 9001}
	if got := ep.URL(); got != "ws://localhost:9001" {
		t.Fatalf("URL() = %q", got)
	}
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = Dial(context.Background(), Endpoint{Host: "127.0.0.1", Port: port}, noopLogger())
	if err == nil {
		t.Fatal("dial to a port with no listener should fail")
	}
	if !errors.Is(err, ErrConnect) {
		t.Fatalf("expected ErrConnect, got %v", err)
	}
}

func TestFramesOrderlyClose(t *testing.T) {
	sent := []string{"one", "two", "three"}
	ep := feedServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		for _, msg := range sent {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.SetReadDeadline(deadline)
		_, _, _ = conn.ReadMessage() // wait for the close response
	})

	sess, err := Dial(context.Background(), ep, noopLogger())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	var got []string
	for frame := range sess.Frames(context.Background()) {
		got = append(got, string(frame))
	}

	if err := sess.Err(); err != nil {
		t.Fatalf("orderly close should not report an error, got %v", err)
	}
	if len(got) != len(sent) {
		t.Fatalf("received %d frames, want %d", len(got), len(sent))
	}
	for i := range sent {
		if got[i] != sent[i] {
			t.Fatalf("frame %d = %q, want %q (order must be preserved)", i, got[i], sent[i])
		}
	}
}

func TestFramesAbnormalDrop(t *testing.T) {
	ep := feedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("one"))
		_ = conn.UnderlyingConn().Close() // drop without a close frame
	})

	sess, err := Dial(context.Background(), ep, noopLogger())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	count := 0
	for range sess.Frames(context.Background()) {
		count++
	}

	if count != 1 {
		t.Fatalf("received %d frames before the drop, want 1", count)
	}
	if sess.Err() == nil {
		t.Fatal("abnormal drop should surface a transport error")
	}
}

func TestFramesCancellation(t *testing.T) {
	ep := feedServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_, _, _ = conn.ReadMessage() // idle until the client goes away
	})

	ctx, cancel := context.WithCancel(context.Background())
	sess, err := Dial(ctx, ep, noopLogger())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	frames := sess.Frames(ctx)
	time.AfterFunc(50*time.Millisecond, cancel)

	for range frames {
	}

	if err := sess.Err(); err != nil {
		t.Fatalf("cancellation should end the stream without error, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	ep := feedServer(t, func(conn *websocket.Conn) {
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	})

	sess, err := Dial(context.Background(), ep, noopLogger())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	sess.Close()
	sess.Close()
}
