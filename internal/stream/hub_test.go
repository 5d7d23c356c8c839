package stream

import (
	"bytes"
	"image"
	"image/color"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", h.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcast(t *testing.T) {
	h := NewHub(nil)
	if err := h.SetInfo(map[string]string{"left": "walk-low-weight.bvh"}); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	defer a.Close()
	defer b.Close()
	waitClients(t, h, 2)

	h.Broadcast([]byte("frame-1"))

	for _, c := range []*websocket.Conn{a, b} {
		c.SetReadDeadline(time.Now().Add(2 * time.Second))
		typ, msg, err := c.ReadMessage()
		if err != nil || typ != websocket.TextMessage || !strings.Contains(string(msg), "walk-low-weight") {
			t.Fatalf("info message = %d %q %v", typ, msg, err)
		}
		typ, msg, err = c.ReadMessage()
		if err != nil || typ != websocket.BinaryMessage || string(msg) != "frame-1" {
			t.Fatalf("frame message = %d %q %v", typ, msg, err)
		}
	}
}

func TestBroadcastImage(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	// No clients: nothing to encode, nothing to fail.
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := h.BroadcastImage(img); err != nil {
		t.Fatal(err)
	}

	c := dial(t, srv)
	defer c.Close()
	waitClients(t, h, 1)

	img.SetNRGBA(1, 1, color.NRGBA{0, 0x7b, 0xff, 0xff})
	if err := h.BroadcastImage(img); err != nil {
		t.Fatal(err)
	}
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	got, err := nativewebp.Decode(bytes.NewReader(msg))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Bounds().Dx() != 4 {
		t.Errorf("width = %d", got.Bounds().Dx())
	}
}

func TestDisconnectAndClose(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := dial(t, srv)
	waitClients(t, h, 1)
	c.Close()
	waitClients(t, h, 0)

	d := dial(t, srv)
	defer d.Close()
	waitClients(t, h, 1)
	h.Close()
	if h.Clients() != 0 {
		t.Errorf("clients after Close = %d", h.Clients())
	}
	d.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := d.ReadMessage(); err == nil {
		t.Error("read succeeded after hub closed")
	}
}

func TestSetInfoRejectsUnencodable(t *testing.T) {
	h := NewHub(nil)
	defer h.Close()
	if err := h.SetInfo(map[string]any{"bad": make(chan int)}); err == nil {
		t.Error("SetInfo accepted a channel value")
	}
}
