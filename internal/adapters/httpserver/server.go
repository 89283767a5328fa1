package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// Server exposes the scan pipeline over HTTP. It is deliberately thin:
// request decoding and status mapping only, no scoring logic.
type Server struct {
	service    *core.ScanService
	logger     *zap.Logger
	listenAddr string
	httpServer *http.Server
}

// NewServer creates a new HTTP server for the scan pipeline
func NewServer(service *core.ScanService, logger *zap.Logger, listenAddr string) *Server {
	return &Server{
		service:    service,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Scan submits a request to the pipeline and returns the assessment
func (s *Server) Scan(ctx context.Context, req *core.ScanRequest) (*core.RiskAssessment, error) {
	return s.service.Scan(ctx, req)
}

// router builds the route table.
func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.POST("/v1/scan", s.handleScan)
	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScan(c *gin.Context) {
	var req core.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	assessment, err := s.service.Scan(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, core.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("Scan failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, assessment)
}
