package web

import (
	"context"
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"weekcal/internal/config"
	"weekcal/internal/grid"
	appLog "weekcal/internal/log"
)

// Server exposes the published grid over HTTP.
//
//   - /health       liveness, never authenticated
//   - /api/days     the current grid as JSON
//   - /calendar     the grid as an HTML page (captured for previews)
//   - /ws           pushes the grid on every change
//   - /preview.png  the last captured preview
type Server struct {
	cfg      *config.Server
	grid     *config.Config
	pub      *grid.Publisher
	mux      *http.ServeMux
	page     *template.Template
	upgrader websocket.Upgrader
}

//go:embed templates/calendar.html
var calendarTemplate string

// NewServer constructs a new Server.
func NewServer(cfg *config.Server, gridCfg *config.Config, pub *grid.Publisher) *Server {
	s := &Server{
		cfg:  cfg,
		grid: gridCfg,
		pub:  pub,
		mux:  http.NewServeMux(),
		page: template.Must(template.New("calendar").Parse(calendarTemplate)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// 빈 사용자명 또는 비밀번호가 설정된 경우에는 비활성화로 취급한다.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="weekcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/days", s.handleDays)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.Handle("GET /{$}", http.RedirectHandler("/calendar", http.StatusFound))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleDays returns the grid with formatted summaries and the last
// cycle error. Before the first successful cycle days is empty and
// ready is false.
func (s *Server) handleDays(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildView(s.grid, s.pub.Snapshot()))
}

func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	view := buildView(s.grid, s.pub.Snapshot())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, view); err != nil {
		appLog.Error("calendar template failed", err)
	}
}

// handlePreview serves the last captured PNG. http.ServeFile answers 404
// until the first capture has been written.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Preview.Enabled {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, s.cfg.Preview.Output)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}
