package server

import (
	"database/sql"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/houseboard/internal/handler"
	"github.com/dukerupert/houseboard/internal/loader"
	"github.com/dukerupert/houseboard/internal/metrics"
	"github.com/dukerupert/houseboard/internal/middleware"
	"github.com/dukerupert/houseboard/internal/model"
	"github.com/dukerupert/houseboard/internal/store"
	ws "github.com/dukerupert/houseboard/internal/websocket"
	"github.com/dukerupert/houseboard/web"
)

// Config carries the settings the server needs from the outer config.
type Config struct {
	SessionTTL     time.Duration
	TraitRateLimit int
}

type Server struct {
	cfg          Config
	hub          *ws.Hub
	loader       *loader.Loader
	metrics      *metrics.Metrics
	houseH       *handler.HouseHandler
	templateH    *handler.TemplateHandler
	sessionStore *store.SessionStore
	sessions     *store.SessionHouses
	rateLimiter  *middleware.RateLimiter
	static       fs.FS
	logger       *slog.Logger
}

func New(db *sql.DB, fetcher loader.Fetcher, cfg Config, logger *slog.Logger) *Server {
	m := metrics.New()
	hub := ws.NewHub(logger.With("component", "websocket"), func(n int) {
		m.WSClients.Set(float64(n))
	})

	sessions := store.NewSessionHouses()
	fetchLog := store.NewFetchLogStore(db)

	ld := loader.New(fetcher, fetchLog, m, func(s loader.Status, houses []model.House) {
		if s.State == loader.StateLoaded {
			sessions.Seed(houses)
		}
		hub.Broadcast(ws.NewMessage("catalog", string(s.State), "", map[string]any{
			"house_count": s.HouseCount,
		}))
	}, logger.With("component", "loader"))

	return &Server{
		cfg:          cfg,
		hub:          hub,
		loader:       ld,
		metrics:      m,
		houseH:       handler.NewHouseHandler(ld, fetchLog, hub, m, logger.With("component", "house")),
		templateH:    handler.NewTemplateHandler(ld, hub, m, logger.With("component", "template")),
		sessionStore: store.NewSessionStore(db),
		sessions:     sessions,
		rateLimiter:  middleware.NewRateLimiter(),
		static:       web.Static(),
		logger:       logger,
	}
}

// Loader returns the catalog loader so the caller can start it.
func (s *Server) Loader() *loader.Loader {
	return s.loader
}

// CleanupSessions expires sessions idle longer than the TTL and drops their
// in-memory house state.
func (s *Server) CleanupSessions() {
	hashes, err := s.sessionStore.DeleteIdle(time.Now().Add(-s.cfg.SessionTTL))
	if err != nil {
		s.logger.Error("cleanup sessions", "error", err)
		return
	}
	for _, h := range hashes {
		s.sessions.Drop(h)
		s.hub.CloseSession(h)
	}
	windows := s.rateLimiter.Cleanup()
	s.metrics.ActiveSessions.Set(float64(s.sessions.Len()))
	if len(hashes) > 0 || windows > 0 {
		s.logger.Info("cleanup", "sessions_expired", len(hashes), "rate_windows", windows)
	}
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Routes that need no session
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())

	sessionMux := http.NewServeMux()
	s.registerSessionRoutes(sessionMux)

	ensure := middleware.EnsureSession(s.sessionStore, s.sessions, s.cfg.SessionTTL, s.logger.With("component", "session"))
	outerMux.Handle("/", ensure(sessionMux))

	return middleware.RequestLogger(s.logger.With("component", "http"), s.metrics)(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"catalog": string(s.loader.Status().State),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.TraitRateLimit, time.Minute)(h)
}

func (s *Server) registerSessionRoutes(mux *http.ServeMux) {
	// JSON API
	mux.HandleFunc("GET /api/houses", s.houseH.List)
	mux.HandleFunc("GET /api/houses/{id}", s.houseH.Get)
	mux.Handle("POST /api/houses/{id}/traits", s.rateLimited(s.houseH.AddTrait))
	mux.Handle("DELETE /api/houses/{id}/traits/{name}", s.rateLimited(s.houseH.RemoveTrait))
	mux.Handle("POST /api/houses/{id}/draft", s.rateLimited(s.houseH.SubmitDraft))
	mux.HandleFunc("GET /api/status", s.houseH.Status)
	mux.HandleFunc("GET /api/fetches", s.houseH.FetchLog)

	// Page
	mux.HandleFunc("GET /", s.templateH.Board)

	// Partials (HTMX)
	mux.HandleFunc("GET /partials/houses", s.templateH.HouseList)
	mux.HandleFunc("GET /partials/houses/{id}", s.templateH.HouseCard)
	mux.HandleFunc("GET /partials/houses/{id}/traits", s.templateH.TraitSearch)
	mux.Handle("POST /partials/houses/{id}/traits", s.rateLimited(s.templateH.TraitSubmit))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
