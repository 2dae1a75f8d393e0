package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/handlers"

	"jobcal/internal/config"
	"jobcal/internal/ics"
	appLog "jobcal/internal/log"
	"jobcal/internal/model"
	"jobcal/internal/refresh"
	"jobcal/internal/schedule"
)

//go:embed templates/*.html
var templateFS embed.FS

// SnapshotSource supplies the current records, typically a refresh.Runner.
type SnapshotSource interface {
	Snapshot() refresh.Snapshot
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server serves the week calendar as HTML, JSON and iCalendar.
type Server struct {
	cfg   *config.Config
	src   SnapshotSource
	cache *schedule.Cache
	loc   *time.Location
	now   func() time.Time
	mux   *http.ServeMux
	tmpl  *template.Template
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, src SnapshotSource, opts ...Option) *Server {
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", cfg.Timezone)
	}

	projector := schedule.Projector{Palette: cfg.ColorPalette(), Location: loc}
	s := &Server{
		cfg:   cfg,
		src:   src,
		cache: schedule.NewCache(projector, 0),
		loc:   loc,
		now:   time.Now,
		mux:   http.NewServeMux(),
		tmpl:  template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

// Handler returns the routes wrapped in auth, gzip, access logging (at
// debug level) and panic recovery.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		h = s.basicAuthMiddleware(h)
	}
	h = handlers.CompressHandler(h)
	h = handlers.LoggingHandler(appLog.Writer{Level: appLog.LevelDebug, Msg: "http request"}, h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(appLog.Writer{Level: appLog.LevelError, Msg: "http handler panic"}),
	)(h)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
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
			w.Header().Set("WWW-Authenticate", `Basic realm="jobcal", charset="UTF-8"`)
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

// StartServer serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, cfg *config.Config, src SnapshotSource) error {
	s := NewServer(cfg, src)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http shutdown failed", err)
		}
	}()

	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/week", s.handleWeek)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// weekResponse is the JSON shape of /api/week.
type weekResponse struct {
	schedule.WeekLayout
	Timezone string    `json:"timezone"`
	LoadedAt time.Time `json:"loaded_at"`
}

// handleWeek returns the laid-out week containing ?date=YYYY-MM-DD
// (default today).
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.loc)
	anchor, err := s.parseDate(r.URL.Query().Get("date"), now)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	snap := s.src.Snapshot()
	wl := s.cache.Week(snap.Records, anchor, now)
	writeJSON(w, http.StatusOK, weekResponse{
		WeekLayout: wl,
		Timezone:   s.loc.String(),
		LoadedAt:   snap.LoadedAt,
	})
}

// eventsResponse is the JSON shape of /api/events.
type eventsResponse struct {
	Events   []model.CalendarEvent `json:"events"`
	Timezone string                `json:"timezone"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// handleEvents returns every projected event in projection order.
func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	snap := s.src.Snapshot()
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:   s.cache.Events(snap.Records),
		Timezone: s.loc.String(),
		LoadedAt: snap.LoadedAt,
	})
}

// handleICS serves the projected events as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	snap := s.src.Snapshot()
	stamp := snap.LoadedAt
	if stamp.IsZero() {
		stamp = s.now()
	}
	body := ics.Export(s.cache.Events(snap.Records), "Job applications", stamp)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="jobcal.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) parseDate(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseInLocation(time.DateOnly, v, s.loc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
