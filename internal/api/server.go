// Package api exposes the assessment service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/health-risk-server/internal/domain"
	"github.com/health-risk-server/internal/middleware"
	"github.com/health-risk-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg      *domain.Config
	logger   *logrus.Logger
	assessor *service.AssessmentService
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, logger *logrus.Logger, assessor *service.AssessmentService) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	server := &Server{
		cfg:      cfg,
		logger:   logger,
		assessor: assessor,
		router:   router,
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine, primarily for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/assessments", s.handleAssess)
		v1.POST("/assessments/batch", s.handleAssessBatch)
		v1.GET("/assessments", s.handleListAssessments)
		v1.GET("/assessments/:id", s.handleGetAssessment)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleAssess scores one marker record.
func (s *Server) handleAssess(c *gin.Context) {
	var params service.AssessParams
	if err := c.ShouldBindJSON(&params); err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	result, err := s.assessor.Assess(c.Request.Context(), &params)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleAssessBatch scores a list of marker records.
func (s *Server) handleAssessBatch(c *gin.Context) {
	var batch struct {
		Records []*service.AssessParams `json:"records"`
	}
	if err := c.ShouldBindJSON(&batch); err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	items, err := s.assessor.AssessBatch(c.Request.Context(), batch.Records)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// handleGetAssessment retrieves a stored assessment by ID.
func (s *Server) handleGetAssessment(c *gin.Context) {
	id := c.Param("id")

	assessment, err := s.assessor.GetAssessment(c.Request.Context(), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// handleListAssessments lists stored assessments, newest first.
func (s *Server) handleListAssessments(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	list, total, err := s.assessor.ListAssessments(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"limit":       limit,
		"offset":      offset,
		"assessments": list,
	})
}

// respondServiceError maps service errors to HTTP status codes.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNotFound):
		s.respondError(c, http.StatusNotFound, err)
	default:
		s.logger.WithError(err).Error("Request failed")
		s.respondError(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"error":          err.Error(),
		"correlation_id": c.GetString("correlation_id"),
	})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
