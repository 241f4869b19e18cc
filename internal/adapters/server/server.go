// Package server mounts the board's REST API and MCP transports on one local listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/adapters/server/httpapi"
	"github.com/evanschultz/kanboard/internal/adapters/server/mcpapi"
)

const (
	defaultBindAddress     = "127.0.0.1:8080"
	defaultAPIEndpoint     = "/api/v1"
	defaultMCPEndpoint     = "/mcp"
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
	readinessTimeout       = 2 * time.Second
)

// Config defines serve-mode endpoint configuration.
type Config struct {
	HTTPBind      string
	APIEndpoint   string
	MCPEndpoint   string
	ServerName    string
	ServerVersion string
}

// Dependencies carries the board surface plus optional serve hooks.
type Dependencies struct {
	Board common.BoardService
	// Ready backs /readyz. A nil probe always reports ready.
	Ready func(context.Context) error
	// Middleware wraps the composed mux, typically for request logging.
	Middleware func(http.Handler) http.Handler
	// OnListen receives the bound address once the listener is open.
	OnListen func(net.Addr)
}

// healthStatus is the /healthz and /readyz payload.
type healthStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// NewHandler builds the mux serving health probes, the REST API, and MCP.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Board == nil {
		return nil, Config{}, errors.New("board dependency is required")
	}

	mcpHandler, err := mcpapi.NewHandler(mcpapi.Config{
		ServerName:    cfg.ServerName,
		ServerVersion: cfg.ServerVersion,
		EndpointPath:  cfg.MCPEndpoint,
	}, deps.Board)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}
	api := http.StripPrefix(cfg.APIEndpoint, httpapi.NewHandler(deps.Board))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, healthStatus{Status: "ok"})
	})
	mux.HandleFunc("GET /readyz", readinessHandler(deps.Ready))
	mux.Handle(cfg.MCPEndpoint, mcpHandler)
	mux.Handle(cfg.APIEndpoint, api)
	mux.Handle(cfg.APIEndpoint+"/", api)

	var handler http.Handler = mux
	if deps.Middleware != nil {
		handler = deps.Middleware(mux)
	}
	return handler, cfg, nil
}

// Run listens on cfg.HTTPBind and serves until ctx is cancelled.
// Listen failures are returned before any request is accepted.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, deps)
	if err != nil {
		return fmt.Errorf("build server handler: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.HTTPBind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPBind, err)
	}
	if deps.OnListen != nil {
		deps.OnListen(ln.Addr())
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve after shutdown: %w", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown server: %w", shutdownErr)
	}
	return nil
}

// readinessHandler reports 503 while the probe fails.
func readinessHandler(probe func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe == nil {
			writeHealth(w, http.StatusOK, healthStatus{Status: "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := probe(ctx); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, healthStatus{Status: "unavailable", Error: err.Error()})
			return
		}
		writeHealth(w, http.StatusOK, healthStatus{Status: "ok"})
	}
}

func writeHealth(w http.ResponseWriter, status int, body healthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// normalizeConfig fills defaults and rejects endpoints that would shadow each other.
func normalizeConfig(cfg Config) (Config, error) {
	cfg.HTTPBind = strings.TrimSpace(cfg.HTTPBind)
	if cfg.HTTPBind == "" {
		cfg.HTTPBind = defaultBindAddress
	}
	cfg.APIEndpoint = normalizeEndpoint(cfg.APIEndpoint, defaultAPIEndpoint)
	cfg.MCPEndpoint = normalizeEndpoint(cfg.MCPEndpoint, defaultMCPEndpoint)
	if overlaps(cfg.APIEndpoint, cfg.MCPEndpoint) {
		return Config{}, fmt.Errorf("api endpoint %q and mcp endpoint %q overlap", cfg.APIEndpoint, cfg.MCPEndpoint)
	}
	for _, reserved := range []string{"/healthz", "/readyz"} {
		if overlaps(cfg.APIEndpoint, reserved) || overlaps(cfg.MCPEndpoint, reserved) {
			return Config{}, fmt.Errorf("endpoint collides with %s", reserved)
		}
	}

	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "kanboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	return cfg, nil
}

// normalizeEndpoint returns a rooted path without a trailing slash.
func normalizeEndpoint(path, fallback string) string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return fallback
	}
	return "/" + path
}

// overlaps reports whether one endpoint equals or nests under the other.
func overlaps(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}
