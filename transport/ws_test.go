package transport

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/starbots/droidlink/internal/testutil/testlog"
)

// wsEchoServer upgrades each request and echoes binary messages back.
func wsEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind != websocket.BinaryMessage {
				continue
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		}
	}))
}

func TestWSEchoRoundTrip(t *testing.T) {
	testlog.Start(t)

	srv := wsEchoServer(t)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	tr, err := DialWS(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer tr.Close()

	got := make(chan []byte, 4)
	tr.Subscribe(func(p []byte) { got <- p })

	want := []byte{0x8D, 0x0A, 0x13, 0x0D, 0x00, 0xD5, 0xD8}
	if err := tr.Write(context.Background(), want); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case data := <-got:
		if !bytes.Equal(data, want) {
			t.Fatalf("echo returned % X, want % X", data, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}
}

func TestWSWriteAfterClose(t *testing.T) {
	testlog.Start(t)

	srv := wsEchoServer(t)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	tr, err := DialWS(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tr.Write(context.Background(), []byte{0x01}); !errors.Is(err, ErrClosed) {
		t.Fatalf("write after close: got %v, want ErrClosed", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
