package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/greeting"
	"greeting-card-go/internal/model"
)

// GreetingService is the greeting business logic used by the handlers
type GreetingService interface {
	Create(ctx context.Context, in greeting.Input) (model.Greeting, error)
	List(ctx context.Context) ([]model.Greeting, error)
	Get(ctx context.Context, id string) (model.Greeting, error)
	Update(ctx context.Context, id string, in greeting.Input) (model.Greeting, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// SchedulerStatus exposes the stats scheduler state to the health check
type SchedulerStatus interface {
	IsRunning() bool
	GetNextRun() time.Time
	GetLastRun() time.Time
	LastCount() int
}

// Handlers contains all HTTP handlers
type Handlers struct {
	greetings GreetingService
	scheduler SchedulerStatus
}

// NewHandlers creates new HTTP handlers. scheduler may be nil when disabled.
func NewHandlers(greetings GreetingService, scheduler SchedulerStatus) *Handlers {
	return &Handlers{
		greetings: greetings,
		scheduler: scheduler,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		api.POST("/greetings", h.CreateGreeting)
		api.GET("/greetings", h.ListGreetings)
		api.GET("/greeting/:id", h.GetGreeting)
		api.PUT("/greeting/:id", h.UpdateGreeting)
		api.DELETE("/greeting/:id", h.DeleteGreeting)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Success:   true,
		Status:    "Server is running",
		Timestamp: time.Now().UTC(),
		Storage:   "ok",
		Scheduler: "disabled",
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.greetings.Ping(ctx); err != nil {
		response.Success = false
		response.Status = "Storage unavailable"
		response.Storage = "error"
		logrus.WithError(err).Error("Storage health check failed")
	}

	if h.scheduler != nil {
		if h.scheduler.IsRunning() {
			response.Scheduler = "running"
			response.NextRun = h.scheduler.GetNextRun().Format(time.RFC3339)
		} else {
			response.Scheduler = "stopped"
		}
		if last := h.scheduler.GetLastRun(); !last.IsZero() {
			count := h.scheduler.LastCount()
			response.LastRun = last.Format(time.RFC3339)
			response.GreetingCount = &count
		}
	}

	statusCode := http.StatusOK
	if !response.Success {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// respondError maps service errors onto status codes. Unexpected errors
// are logged and reported with the generic failMsg only.
func respondError(c *gin.Context, err error, failMsg string) {
	_ = c.Error(err)

	var verr *greeting.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:      verr.Error(),
			Violations: verr.Violations,
		})
	case errors.Is(err, greeting.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Greeting not found"})
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error(failMsg)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: failMsg})
	}
}
