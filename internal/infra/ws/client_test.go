package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func shortenPingInterval(t *testing.T, d time.Duration) {
	t.Helper()
	old := pingInterval
	pingInterval = d
	t.Cleanup(func() { pingInterval = old })
}

func dialTestHub(t *testing.T) *websocket.Conn {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntilClosed drains the connection so control frames are processed and
// reports when the server hangs up.
func readUntilClosed(conn *websocket.Conn) chan error {
	done := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				done <- err
				return
			}
		}
	}()
	return done
}

func TestStaleClientIsReaped(t *testing.T) {
	shortenPingInterval(t, 25*time.Millisecond)
	conn := dialTestHub(t)

	// swallow pings instead of answering them
	conn.SetPingHandler(func(string) error { return nil })
	done := readUntilClosed(conn)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unresponsive client was never dropped")
	}
}

func TestPongingClientSurvives(t *testing.T) {
	shortenPingInterval(t, 25*time.Millisecond)
	conn := dialTestHub(t)

	// the default ping handler answers with a pong
	done := readUntilClosed(conn)

	select {
	case err := <-done:
		t.Fatalf("responsive client was dropped: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
}
