// Package server provides the HTTP REST API of the skills dossier service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/skills-dossier/internal/config"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/parsing"
	"github.com/jonathan/skills-dossier/internal/server/middleware"
	"github.com/jonathan/skills-dossier/internal/server/ratelimit"
	"github.com/jonathan/skills-dossier/internal/types"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	parser      CVParser
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	corsOrigin  string
	maxUpload   int64
}

// Config holds server configuration
type Config struct {
	Port           int
	CORSOrigin     string
	MaxUploadBytes int64
	JWT            *config.JWTConfig
	Password       *config.PasswordConfig
	RateLimit      *ratelimit.Config
}

// New wires the routes around store and parser.
func New(cfg Config, store Store, parser CVParser) (*Server, error) {
	if cfg.JWT == nil || cfg.Password == nil {
		return nil, fmt.Errorf("JWT and password configuration are required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = config.DefaultMaxUploadMB << 20
	}

	s := &Server{
		store:       store,
		parser:      parser,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		jwtService:  NewJWTService(cfg.JWT),
		corsOrigin:  cfg.CORSOrigin,
		maxUpload:   cfg.MaxUploadBytes,
	}
	s.userService = NewUserService(store, cfg.Password)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // remote CV parsing can take a minute
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/signup", s.authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/signin", s.authHandler.SignIn)
	mux.Handle("GET /api/me", auth(http.HandlerFunc(s.handleMe)))

	mux.Handle("POST /api/profiles", auth(http.HandlerFunc(s.handleCreateProfile)))
	mux.Handle("GET /api/profiles", auth(http.HandlerFunc(s.handleListProfiles)))

	mux.HandleFunc("POST /api/parse-cv", s.handleParseCV)
	mux.HandleFunc("POST /api/import-cv", s.handleImportCV)

	mux.Handle("GET /api/admin/users", auth(s.requireAdmin(s.handleListUsers)))
	mux.Handle("PUT /api/admin/users/{id}/roles", auth(s.requireAdmin(s.handleSetUserRoles)))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	logger.Info().Msg("server stopped")
	return nil
}

// withCORS allows the configured front-end origin with credentials.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && (s.corsOrigin == "*" || origin == s.corsOrigin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their endpoint budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging attaches a request-scoped logger and logs each request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		reqLogger := logger.Logger.With().Str("request_id", requestID).Logger()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(reqLogger.WithContext(r.Context())))

		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// requireAdmin answers 403 unless the authenticated caller is an admin.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.GetUserID(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		role, err := s.userService.EffectiveRole(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if role != types.RoleAdmin {
			writeServiceError(w, r, &ErrForbidden{Required: "admin"})
			return
		}
		next(w, r)
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("health check: database unreachable")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("error encoding JSON response")
	}
}

// writeError writes an {"error": message} response
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}

// writeServiceError maps err to a status. Internal errors are logged and
// answered with a generic message; parser failures keep their summary.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status < http.StatusInternalServerError {
		writeError(w, r, status, err.Error())
		return
	}

	logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")

	var parserErr *parsing.ParserServiceError
	if errors.As(err, &parserErr) {
		writeError(w, r, status, "parser service error: "+parserErr.Message)
		return
	}
	writeError(w, r, status, "internal server error")
}

// extractClientID identifies the client by the IP of RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	logger.Ctx(r.Context()).Warn().
		Str("client", extractClientID(r)).
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Msg("rate limit exceeded")

	writeJSON(w, r, http.StatusTooManyRequests, response)
}
