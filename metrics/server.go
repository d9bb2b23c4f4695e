package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/liifit/fit"
)

// Status is the /status payload.
type Status struct {
	Run      string `json:"run"`
	Name     string `json:"name,omitempty"`
	Mode     string `json:"mode"`
	Active   bool   `json:"active"`
	Canceled bool   `json:"canceled"`
	Problems int    `json:"problems"`
	Finished int64  `json:"finished"`
	Total    int64  `json:"total"`
	Done     int64  `json:"done"`
}

// RunStatus reports the live state of run.
func RunStatus(run *fit.Run) func() Status {
	return func() Status {
		total, done := run.Progress().Snapshot()

		return Status{
			Run:      run.ID().String(),
			Name:     run.Name(),
			Mode:     string(run.Mode()),
			Active:   run.Active(),
			Canceled: run.Canceled(),
			Problems: len(run.Problems()),
			Finished: run.Finished(),
			Total:    total,
			Done:     done,
		}
	}
}

// Server exposes /metrics, /healthz and /status.
type Server struct {
	echo   *echo.Echo
	log    zerolog.Logger
	status func() Status
}

// NewServer builds the HTTP handlers. status may be nil until a run
// exists; /status then answers 503.
func NewServer(g prometheus.Gatherer, log zerolog.Logger, status func() Status) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	s := &Server{echo: e, log: log, status: status}

	e.Use(s.requestLogging())
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/status", s.handleStatus)

	return s
}

func (s *Server) handleStatus(c echo.Context) error {
	if s.status == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no run")
	}

	return c.JSON(http.StatusOK, s.status())
}

func (s *Server) requestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			s.log.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("http request")

			return err
		}
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr in the background.
func (s *Server) Start(addr string) {
	go func() {
		s.log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server")
		}
	}()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics: shutdown: %w", err)
	}

	return nil
}
