package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vjinviraj/pwalib-backend/ai/metrics"
	"github.com/vjinviraj/pwalib-backend/ai/summary"
)

type SummaryService struct {
	// Summarizer is nil when no LLM is configured.
	Summarizer summary.Summarizer

	exporter *metrics.Exporter
}

type generateSummaryRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	MaxLen      int    `json:"max_len"`
}

type generateSummaryResponse struct {
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Model     string `json:"model,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Generate builds a prompt from book metadata and walks the model fallback
// chain. LLM failures degrade to a canned summary, never to a 5xx.
func (s *SummaryService) Generate(c echo.Context) error {
	if s.Summarizer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "summary generation is not configured")
	}

	var req generateSummaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	resp, err := s.Summarizer.Summarize(c.Request().Context(), &summary.SummarizeRequest{
		Title:       req.Title,
		Author:      strings.TrimSpace(req.Author),
		Genre:       strings.TrimSpace(req.Genre),
		Description: strings.TrimSpace(req.Description),
		MaxLen:      req.MaxLen,
	})
	if err != nil {
		// Only context cancellation surfaces here; the chain absorbs model errors.
		return echo.NewHTTPError(http.StatusRequestTimeout, "summary generation canceled").SetInternal(err)
	}

	s.exporter.RecordSummary(resp.Source, resp.Model, resp.Latency)

	return c.JSON(http.StatusOK, generateSummaryResponse{
		Summary:   resp.Summary,
		Source:    resp.Source,
		Model:     resp.Model,
		LatencyMs: resp.Latency.Milliseconds(),
	})
}
