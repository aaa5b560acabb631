// Package server exposes the LifeSync JSON API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/edgard/lifesync/internal/auth"
	"github.com/edgard/lifesync/internal/config"
	"github.com/edgard/lifesync/internal/database"
	"github.com/edgard/lifesync/internal/gemini"
	"github.com/edgard/lifesync/internal/health"
	"github.com/edgard/lifesync/internal/insights"
	"github.com/edgard/lifesync/internal/logger"
	"github.com/edgard/lifesync/internal/nutrition"
)

// Deps are the collaborators the handlers use. MCP is optional.
type Deps struct {
	HTTP      config.HTTPConfig
	Auth      config.AuthConfig
	Store     database.Store
	Tokens    *auth.Tokens
	Parser    *nutrition.Parser
	Dietitian gemini.Asker
	Insights  *insights.Service
	MCP       http.Handler
	Logger    *slog.Logger
}

type Server struct {
	deps     Deps
	store    database.Store
	tokens   *auth.Tokens
	parser   *nutrition.Parser
	ai       gemini.Asker
	insights *insights.Service
	validate *validator.Validate
	log      *slog.Logger
	handler  http.Handler
}

// New wires the router. It fails when a required dependency is missing.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Tokens == nil:
		return nil, errors.New("server: token issuer is required")
	case deps.Parser == nil:
		return nil, errors.New("server: nutrition parser is required")
	case deps.Dietitian == nil:
		return nil, errors.New("server: dietitian is required")
	case deps.Insights == nil:
		return nil, errors.New("server: insights service is required")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		deps:     deps,
		store:    deps.Store,
		tokens:   deps.Tokens,
		parser:   deps.Parser,
		ai:       deps.Dietitian,
		insights: deps.Insights,
		validate: newValidator(),
		log:      log.With("component", "http"),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.HTTPMiddleware(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.deps.MCP != nil {
		r.Method(http.MethodPost, "/mcp", s.deps.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/nutrition", s.handleNutrition)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/profile", s.handleGetProfile)
			r.Patch("/profile", s.handleUpdateProfile)
			r.Get("/dashboard", s.handleDashboard)

			r.Get("/meals", s.handleListMeals)
			r.Post("/meals", s.handleAddMeal)
			r.Get("/workouts", s.handleListWorkouts)
			r.Post("/workouts", s.handleAddWorkout)
			r.Get("/sleep", s.handleListSleep)
			r.Post("/sleep", s.handleAddSleep)
			r.Get("/body-stats", s.handleListBodyStats)
			r.Post("/body-stats", s.handleAddBodyStats)

			r.Post("/chat", s.handleChat)
			r.Get("/suggestions", s.handleSuggestions)
			r.Get("/analytics", s.handleAnalytics)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.deps.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.deps.HTTP.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.deps.HTTP.ReadTimeout,
		WriteTimeout: s.deps.HTTP.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deps.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "Health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNutrition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query" validate:"max=2000"`
	}
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if r.URL.Query().Get("detail") == "true" {
		writeJSON(w, http.StatusOK, s.parser.Analyze(req.Query))
		return
	}
	writeJSON(w, http.StatusOK, s.parser.Parse(req.Query))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message" validate:"required,max=4000"`
	}
	if err := s.decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": s.ai.Ask(r.Context(), req.Message)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.insights.Dashboard(r.Context(), userID(r.Context()))
	if err != nil {
		s.internalError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	wk, err := s.insights.Weekly(r.Context(), userID(r.Context()))
	if err != nil {
		s.internalError(w, r, "suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.insights.Analytics(r.Context(), userID(r.Context()))
	if err != nil {
		s.internalError(w, r, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Days int `json:"days"`
		insights.Analytics
	}{health.WeekDays, a})
}
