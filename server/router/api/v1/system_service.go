package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vjinviraj/pwalib-backend/internal/profile"
	"github.com/vjinviraj/pwalib-backend/internal/version"
	"github.com/vjinviraj/pwalib-backend/store"
)

const storagePingTimeout = 3 * time.Second

type SystemService struct {
	Store   *store.Store
	Profile *profile.Profile

	startTime time.Time
}

type healthzResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type systemStatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
	Uptime  string `json:"uptime"`
	Storage string `json:"storage"`
	AI      string `json:"ai"`
}

// Healthz reports process liveness.
func (s *SystemService) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, healthzResponse{
		Status:  "ok",
		Version: version.String(),
	})
}

// Status reports storage connectivity and instance diagnostics. A degraded
// dependency is reported in the body, not as a 5xx; the endpoint is for
// operators, not load balancers.
func (s *SystemService) Status(c echo.Context) error {
	resp := systemStatusResponse{
		Status:  "ok",
		Version: version.String(),
		Mode:    s.Profile.Mode,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		Storage: "disabled",
		AI:      "disabled",
	}

	if s.Profile.IsAIEnabled() {
		resp.AI = "configured"
	}

	if s.Profile.IsStorageEnabled() {
		ctx, cancel := context.WithTimeout(c.Request().Context(), storagePingTimeout)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Storage = "unavailable"
		} else {
			resp.Storage = "ok"
		}
	}

	return c.JSON(http.StatusOK, resp)
}
