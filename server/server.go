// Package server wires the HTTP surface of the gateway.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vjinviraj/pwalib-backend/ai/metrics"
	"github.com/vjinviraj/pwalib-backend/ai/summary"
	"github.com/vjinviraj/pwalib-backend/internal/profile"
	apiv1 "github.com/vjinviraj/pwalib-backend/server/router/api/v1"
	"github.com/vjinviraj/pwalib-backend/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, summarizer summary.Summarizer) (*Server, error) {
	e := echo.New()
	e.Debug = profile.IsDev()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())

	// Request IDs make it possible to correlate a slow upload with its
	// storage call in the logs.
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(requestLogger())

	// Static cross-origin and payload-size policy applied to all routes.
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: profile.CORSOriginList(),
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", profile.UploadLimitMB)))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	exporter := metrics.NewExporter(metrics.DefaultConfig())
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	s.apiService = apiv1.NewAPIV1Service(profile, store, summarizer, exporter)
	s.apiService.Register(e)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped properly")
}

// requestLogger logs every request through slog with method, path, status and latency.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				slog.Warn("request", attrs...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}
