/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package preview

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"

	"github.com/friendsincode/d4events/internal/events"
	"github.com/friendsincode/d4events/internal/inject"
)

const testPage = "<html><body><nav></nav><main>hi</main></body></html>"

func newTestServer(t *testing.T, page string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "site.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Options{File: path, Addr: "127.0.0.1:0", Debounce: 20 * time.Millisecond}, events.NewBus(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, path
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestNewRejectsMissingFile(t *testing.T) {
	if _, err := New(Options{File: filepath.Join(t.TempDir(), "missing.html")}, events.NewBus(), zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := New(Options{File: t.TempDir()}, events.NewBus(), zerolog.Nop()); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestPageGetsReloadClient(t *testing.T) {
	srv, _ := newTestServer(t, testPage)

	for _, path := range []string{"/", "/index.html"} {
		rr := get(t, srv.Handler(), path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rr.Code)
		}
		body := rr.Body.String()
		sig := strings.Index(body, reloadSignature)
		if sig < 0 || sig > strings.Index(body, "</body>") {
			t.Fatalf("%s: reload client missing or misplaced:\n%s", path, body)
		}
		if rr.Header().Get("Cache-Control") != "no-store" {
			t.Fatalf("%s: page must not be cached", path)
		}
	}
}

func TestPageWithoutBodyCloseStillReloads(t *testing.T) {
	srv, _ := newTestServer(t, "<p>fragment</p>")

	body := get(t, srv.Handler(), "/").Body.String()
	if !strings.HasPrefix(body, "<p>fragment</p>") || !strings.Contains(body, reloadSignature) {
		t.Fatalf("unexpected body:\n%s", body)
	}
}

func TestPageReadsFreshFromDisk(t *testing.T) {
	srv, path := newTestServer(t, testPage)
	if err := os.WriteFile(path, []byte("<body>changed</body>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if body := get(t, srv.Handler(), "/").Body.String(); !strings.Contains(body, "changed") {
		t.Fatalf("stale page served:\n%s", body)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if rr := get(t, srv.Handler(), "/"); rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
}

func TestStaticAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, testPage)

	if rr := get(t, srv.Handler(), "/site.css"); rr.Code != http.StatusOK || rr.Body.String() != "body{}" {
		t.Fatalf("static file: %d %q", rr.Code, rr.Body.String())
	}

	rr := get(t, srv.Handler(), "/healthz")
	var health map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if health["status"] != "ok" {
		t.Fatalf("healthz = %v", health)
	}

	if rr := get(t, srv.Handler(), "/metrics"); !strings.Contains(rr.Body.String(), "d4events_preview_reloads_total") {
		t.Fatal("metrics endpoint missing preview counters")
	}
}

func TestReloadSocketReceivesReload(t *testing.T) {
	srv, _ := newTestServer(t, testPage)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/reload", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	msgs := make(chan []byte, 1)
	go func() {
		_, data, err := conn.Read(ctx)
		if err == nil {
			msgs <- data
		}
	}()

	// The handler subscribes after the upgrade; publish until it is listening.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case data := <-msgs:
			var msg reloadMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Type != "reload" || msg.Reason != "test" {
				t.Fatalf("unexpected message %+v", msg)
			}
			return
		case <-ticker.C:
			srv.Reload("test")
		case <-ctx.Done():
			t.Fatal("no reload message received")
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, testPage)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestPageWithWidgetInjections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(testPage), 0o644); err != nil {
		t.Fatal(err)
	}

	srv, err := New(Options{
		File: path,
		Injections: []inject.Injection{
			{Name: "banner", Marker: "</nav>", Block: "<div>banner</div>", Placement: inject.After},
		},
	}, events.NewBus(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := get(t, srv.Handler(), "/").Body.String()
	if !strings.Contains(body, "</nav><div>banner</div>") {
		t.Fatalf("widget not spliced:\n%s", body)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != testPage {
		t.Fatal("page on disk was modified")
	}
}
