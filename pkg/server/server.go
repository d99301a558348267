// Package server exposes the calibration and a live gesture stream over
// HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/gesture"
)

// Server serves the REST and WebSocket endpoints.
type Server struct {
	router *gin.Engine
	hub    *Hub
	mapper *calib.Mapper
	store  calib.Store
}

// calibrationResponse is the body of GET /api/calibration.
type calibrationResponse struct {
	Calibrated bool           `json:"calibrated"`
	Active     calib.Profile  `json:"active"`
	Stored     *calib.Profile `json:"stored,omitempty"`
	Rotation   int            `json:"rotation"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
}

// New creates a server and subscribes its hub to registry.
func New(mapper *calib.Mapper, store calib.Store, registry *gesture.Registry) *Server {
	s := &Server{
		router: gin.New(),
		hub:    NewHub(),
		mapper: mapper,
		store:  store,
	}
	registry.OnEvent(s.hub.Broadcast)

	s.router.Use(requestLogger(), gin.Recovery())
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := s.router.Group("/api")
	{
		api.GET("/calibration", s.getCalibration)
		api.DELETE("/calibration", s.deleteCalibration)
	}
	s.router.GET("/ws", gin.WrapH(s.hub))

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the gesture fan-out.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Gesture server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) getCalibration(c *gin.Context) {
	stored, ok, err := s.store.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	width, height := s.mapper.Size()
	resp := calibrationResponse{
		Calibrated: ok,
		Active:     s.mapper.Profile(),
		Rotation:   int(s.mapper.Rotation()),
		Width:      width,
		Height:     height,
	}
	if ok {
		resp.Stored = &stored
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) deleteCalibration(c *gin.Context) {
	if err := s.store.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.mapper.SetProfile(calib.DefaultProfile()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("Calibration cleared, using factory default")
	c.Status(http.StatusNoContent)
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[%s] %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
