package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server expose les calculateurs en JSON. Il ne garde aucun état de calcul :
// chaque requête porte tous ses paramètres.
type Server struct {
	log      *zap.Logger
	router   chi.Router
	version  string
	started  time.Time
	defaults Defaults
}

// Defaults complète les paramètres absents d'une requête.
type Defaults struct {
	InitialSize        float64
	RevenuePerCustomer float64
	SweepFrom          int
	SweepTo            int
	SweepStep          int
}

// New construit le serveur : routes, middlewares et valeurs par défaut.
func New(log *zap.Logger, version string, defaults Defaults) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		log:      log,
		version:  version,
		started:  time.Now(),
		defaults: defaults,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/decay", s.handleDecay)
		r.Get("/ltv", s.handleLTV)
		r.Get("/sweep", s.handleSweep)
		r.Post("/report", s.handleReport)
	})

	s.router = r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
