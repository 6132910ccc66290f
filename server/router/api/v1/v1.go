package v1

import (
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/vjinviraj/pwalib-backend/ai/metrics"
	"github.com/vjinviraj/pwalib-backend/ai/summary"
	"github.com/vjinviraj/pwalib-backend/internal/profile"
	"github.com/vjinviraj/pwalib-backend/store"
)

// maxConcurrentUploads caps in-flight object-store writes so a burst of large
// uploads cannot exhaust memory with buffered files.
const maxConcurrentUploads = 8

type APIV1Service struct {
	// Domain Services
	FileService    *FileService
	SummaryService *SummaryService
	SystemService  *SystemService

	// Shared Infra
	Profile *profile.Profile
	Store   *store.Store
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, summarizer summary.Summarizer, exporter *metrics.Exporter) *APIV1Service {
	service := &APIV1Service{
		Profile: profile,
		Store:   store,
	}

	service.FileService = &FileService{
		Store:           store,
		Profile:         profile,
		exporter:        exporter,
		uploadSemaphore: semaphore.NewWeighted(maxConcurrentUploads),
	}
	service.SummaryService = &SummaryService{
		Summarizer: summarizer,
		exporter:   exporter,
	}
	service.SystemService = &SystemService{
		Store:     store,
		Profile:   profile,
		startTime: time.Now(),
	}

	return service
}

// Register mounts all v1 routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.SystemService.Healthz)

	v1Group := echoServer.Group("/api/v1")
	v1Group.POST("/files", s.FileService.Upload)
	v1Group.DELETE("/files", s.FileService.Delete)
	v1Group.POST("/books/summary", s.SummaryService.Generate)
	v1Group.GET("/system/status", s.SystemService.Status)
}
