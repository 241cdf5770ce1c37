// Package server exposes recommendations and the career catalog over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-navigator/internal/catalog"
	"github.com/spigell/career-navigator/internal/logger"
	"github.com/spigell/career-navigator/internal/metrics"
	"github.com/spigell/career-navigator/internal/navigator"
	"github.com/spigell/career-navigator/internal/profile"
	"github.com/spigell/career-navigator/internal/recommend"
)

const (
	maxBodyBytes = 1 << 20

	errRecommendations = "Failed to get AI recommendations"
)

type Recommender interface {
	Recommend(ctx context.Context, req navigator.Request) (*navigator.Response, error)
	CareerPaths(ctx context.Context, userID string) (recommend.Partition, error)
}

// Config holds listener settings.
type Config struct {
	Listen          string        `mapstructure:"listen"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type Server struct {
	recommender Recommender
	catalog     *catalog.Catalog
	health      func(context.Context) error
	logger      *zap.Logger
}

type recommendationRequest struct {
	UserProfile      *profile.UserProfile `json:"userProfile"`
	UserID           string               `json:"userId"`
	AvailableCourses []string             `json:"availableCourses,omitempty"`
}

// New creates a server. health may be nil when there is nothing to check.
func New(r Recommender, c *catalog.Catalog, health func(context.Context) error, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{recommender: r, catalog: c, health: health, logger: log}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ai-recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/career-paths", s.handleCareerPaths)
	mux.HandleFunc("GET /api/career-paths/{id}", s.handleCareerPath)
	mux.HandleFunc("GET /api/users/{id}/career-paths", s.handleUserCareerPaths)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return s.loggingMiddleware(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log := logger.WithRequest(s.logger, requestID(r.Context()), req.UserID)

	resp, err := s.recommender.Recommend(r.Context(), navigator.Request{
		Profile: req.UserProfile,
		UserID:  req.UserID,
		Titles:  req.AvailableCourses,
	})
	if errors.Is(err, navigator.ErrMissingProfile) {
		s.respondError(w, http.StatusBadRequest, "userProfile or a known userId is required")
		return
	}
	if err != nil {
		log.Error("Error in AI recommendations API", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, errRecommendations)
		return
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCareerPaths(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.catalog.Paths())
}

func (s *Server) handleCareerPath(w http.ResponseWriter, r *http.Request) {
	path, ok := s.catalog.ByID(r.PathValue("id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "career path not found")
		return
	}
	s.respondJSON(w, http.StatusOK, path)
}

func (s *Server) handleUserCareerPaths(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	partition, err := s.recommender.CareerPaths(r.Context(), userID)
	if errors.Is(err, navigator.ErrMissingProfile) {
		s.respondError(w, http.StatusNotFound, "user profile not found")
		return
	}
	if err != nil {
		logger.WithRequest(s.logger, requestID(r.Context()), userID).Error("partition career paths", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to get career paths")
		return
	}
	s.respondJSON(w, http.StatusOK, partition)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}
