package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/app"
)

func newDeps() Dependencies {
	store := app.NewStore(nil, nil, app.StoreConfig{})
	return Dependencies{Board: common.NewAppServiceAdapter(app.NewService(store))}
}

func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{APIEndpoint: "api/v1/", MCPEndpoint: "mcp"}, newDeps())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" || cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}
	if cfg.ServerName != "kanboard" || cfg.ServerVersion != "dev" {
		t.Fatalf("unexpected server identity %#v", cfg)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("%s: status=%d body=%s", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/board", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"columns"`) {
		t.Fatalf("board: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNewHandlerValidation(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected missing board dependency error")
	}
	collisions := []Config{
		{APIEndpoint: "/same", MCPEndpoint: "/same/"},
		{APIEndpoint: "/api", MCPEndpoint: "/api/mcp"},
		{APIEndpoint: "/healthz"},
		{MCPEndpoint: "/readyz/mcp"},
	}
	for _, cfg := range collisions {
		if _, _, err := NewHandler(cfg, newDeps()); err == nil {
			t.Fatalf("expected endpoint collision error for %#v", cfg)
		}
	}
	if _, _, err := NewHandler(Config{APIEndpoint: "/api", MCPEndpoint: "/apis"}, newDeps()); err != nil {
		t.Fatalf("expected sibling endpoints to be allowed, got %v", err)
	}
}

func TestReadinessProbe(t *testing.T) {
	deps := newDeps()
	var probeErr error
	deps.Ready = func(context.Context) error { return probeErr }
	handler, _, err := NewHandler(Config{}, deps)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d body=%s", rec.Code, rec.Body.String())
	}

	probeErr = errors.New("database is locked")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "database is locked") {
		t.Fatalf("not-ready status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz should not depend on readiness, status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /healthz status = %d, want 405", rec.Code)
	}
}

func TestNewHandlerAppliesMiddleware(t *testing.T) {
	deps := newDeps()
	var seen []string
	deps.Middleware = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	handler, _, err := NewHandler(Config{}, deps)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if len(seen) != 1 || seen[0] != "/healthz" {
		t.Fatalf("middleware saw %#v", seen)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"":          "/fallback",
		"/":         "/fallback",
		"api":       "/api",
		" /api/v2/": "/api/v2",
	}
	for in, want := range cases {
		if got := normalizeEndpoint(in, "/fallback"); got != want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunServesUntilContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	deps := newDeps()
	addrCh := make(chan net.Addr, 1)
	deps.OnListen = func(addr net.Addr) { addrCh <- addr }

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, deps)
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("Run() returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener never opened")
	}
	resp, err := http.Get("http://" + addr.String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()
	if err := Run(context.Background(), Config{HTTPBind: ln.Addr().String()}, newDeps()); err == nil {
		t.Fatal("expected listen error for an address in use")
	}
}
