// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle activity backend.
// Responsibilities:
//   - Router + middleware (request IDs, logging, panic recovery, timeouts, JSON, CORS).
//   - Public endpoints: /health, /metrics, /debug/words, word lookup,
//     stateless validate/hint, leaderboard and achievement reads, Discord token exchange.
//   - Session endpoints (require auth): /api/game/{instanceId}/*.
//   - Outcome submission: achievements + leaderboard read-modify-write on game end.
//
// Notes:
//   - Request bodies are decoded strictly: unknown fields are rejected and every payload
//     is checked with validator tags before it reaches the game engine.
//   - Storage failures surface as 503 so the activity client can retry; the server
//     itself never retries.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/activity-server/internal/achievements"
	"github.com/robalobadob/wordle/apps/activity-server/internal/discord"
	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
	"github.com/robalobadob/wordle/apps/activity-server/internal/metrics"
	"github.com/robalobadob/wordle/apps/activity-server/internal/store"
	"github.com/robalobadob/wordle/apps/activity-server/internal/words"
)

// Options carries the configuration the HTTP layer needs.
type Options struct {
	JWTSecret        string
	JWTTTL           time.Duration
	CookieName       string
	ClientOrigin     string
	Production       bool
	LeaderboardLimit int
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Words        *words.List
	Repo         *store.Repo
	Engine       *game.Engine
	Achievements *achievements.Engine
	Discord      *discord.Client
	Metrics      *metrics.Metrics
}

// Server bundles the router and its collaborators.
type Server struct {
	r        *chi.Mux
	words    *words.List
	repo     *store.Repo
	engine   *game.Engine
	ach      *achievements.Engine
	discord  *discord.Client
	metrics  *metrics.Metrics
	validate *validator.Validate
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "wordle_token"
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 14 * 24 * time.Hour
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New("wordle")
	}
	s := &Server{
		r:        chi.NewRouter(),
		words:    d.Words,
		repo:     d.Repo,
		engine:   d.Engine,
		ach:      d.Achievements,
		discord:  d.Discord,
		metrics:  d.Metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // single-origin CORS for the activity iframe

	// --- diagnostics ---
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.words.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g})
	})
	s.r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.r.Route("/api", func(r chi.Router) {
		s.mountPublic(r)
		s.mountLeaderboard(r)
		s.mountAchievements(r)
		s.mountGame(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.opts.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
