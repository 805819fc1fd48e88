// Package httpapi exposes the OAuth operations over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/open-elt/open-elt/internal/metrics"
)

// Server wraps the echo routing tree and its handlers. Listener lifecycle
// belongs to the caller; Server is a plain http.Handler.
type Server struct {
	h *Handlers
	e *echo.Echo
}

// NewServer wires routes for the given handlers.
func NewServer(h *Handlers) *Server {
	s := &Server{h: h, e: echo.New()}
	s.e.Use(s.recordRequest)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.e.GET("/healthz", s.h.HandleHealthz)

	api := s.e.Group("/api/v1")
	api.POST("/source_oauths/get_consent_url", s.h.HandleGetConsentURL)
	api.POST("/source_oauths/complete_oauth", s.h.HandleCompleteOAuth)
}

func (s *Server) recordRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		start := time.Now()
		err := next(c)
		s.h.Emitter.Count(metrics.HTTPRequestsTotal, 1)
		s.h.Emitter.Timing(metrics.HTTPRequestMillis, time.Since(start))
		return err
	}
}

// Handler exposes the routing tree.
func (s *Server) Handler() http.Handler { return s.e }
