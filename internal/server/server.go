// Package server is the operator surface: a JSON API for chase control and
// candidate review, a geolocation feed endpoint, and a websocket live feed
// for the dashboard.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xericdusk/ghostbuster/internal/candidate"
	"github.com/xericdusk/ghostbuster/internal/metrics"
	"github.com/xericdusk/ghostbuster/internal/position"
	"github.com/xericdusk/ghostbuster/internal/track"
)

// Status is the operator-facing snapshot of the chase loop.
type Status struct {
	Chasing     bool              `json:"chasing"`
	SessionUUID string            `json:"sessionUUID,omitempty"`
	Frequency   int64             `json:"frequency,omitempty"`
	SampleCount int               `json:"sampleCount"`
	Candidates  int               `json:"candidates"`
	Position    position.Position `json:"position"`
	LastSweep   *time.Time        `json:"lastSweep,omitempty"`
}

// Controller is the chase loop surface the server drives. Implemented by the
// orchestrator; commands take effect between ticks.
type Controller interface {
	Status() Status
	Candidates() []candidate.Candidate
	Samples() []track.Sample
	StartChase(frequency int64) error
	StopChase() error
	SelectFrequency(frequency int64) error
	SetSweepInterval(interval time.Duration) error
	UpdatePosition(p position.Position)
}

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) func(*Server) {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) func(*Server) {
	return func(s *Server) {
		s.logger = logger.With(slog.String("component", "server"))
	}
}

// Server serves the operator API.
type Server struct {
	addr       string
	controller Controller
	hub        *Hub
	router     *gin.Engine
	logger     *slog.Logger
}

// New creates the server and registers its routes.
func New(controller Controller, hub *Hub, options ...func(*Server)) *Server {
	s := Server{
		addr:       ":8080",
		controller: controller,
		hub:        hub,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.registerRoutes()

	return &s
}

// Router exposes the gin engine, mainly for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/candidates", s.handleCandidates)
		api.GET("/samples", s.handleSamples)
		api.POST("/chase/start", s.handleChaseStart)
		api.POST("/chase/stop", s.handleChaseStop)
		api.POST("/chase/frequency", s.handleChaseFrequency)
		api.POST("/sweep/interval", s.handleSweepInterval)
		api.POST("/location", s.handleLocation)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	s.router.GET("/live", func(c *gin.Context) {
		s.hub.serve(c.Request.Context(), c.Writer, c.Request)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("operator API listening", slog.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err

	case <-ctx.Done():
		s.hub.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Status())
}

func (s *Server) handleCandidates(c *gin.Context) {
	candidates := s.controller.Candidates()
	if candidates == nil {
		candidates = []candidate.Candidate{}
	}
	c.JSON(http.StatusOK, candidates)
}

func (s *Server) handleSamples(c *gin.Context) {
	samples := s.controller.Samples()
	if samples == nil {
		samples = []track.Sample{}
	}
	c.JSON(http.StatusOK, samples)
}

type chaseRequest struct {
	Frequency int64 `json:"frequency" binding:"required,gt=0"` // Hz
}

func (s *Server) handleChaseStart(c *gin.Context) {
	var req chaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.controller.StartChase(req.Frequency); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.controller.Status())
}

func (s *Server) handleChaseStop(c *gin.Context) {
	if err := s.controller.StopChase(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.controller.Status())
}

func (s *Server) handleChaseFrequency(c *gin.Context) {
	var req chaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.controller.SelectFrequency(req.Frequency); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.controller.Status())
}

type sweepIntervalRequest struct {
	Seconds float64 `json:"seconds" binding:"required,gt=0"`
}

func (s *Server) handleSweepInterval(c *gin.Context) {
	var req sweepIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval := time.Duration(req.Seconds * float64(time.Second))
	if err := s.controller.SetSweepInterval(interval); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Pointer fields so a fix on the equator or prime meridian (lat/lon 0) is
// not mistaken for a missing field.
type locationRequest struct {
	Latitude  *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"lon" binding:"required,min=-180,max=180"`
	Heading   float64  `json:"heading"`
}

func (s *Server) handleLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.controller.UpdatePosition(position.Position{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Heading:   req.Heading,
		Timestamp: time.Now(),
	})

	c.Status(http.StatusNoContent)
}
