package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of /health and /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Templates int       `json:"templates"`
}

// HealthHandler serves liveness checks.
type HealthHandler struct {
	serviceName string
	version     string
	count       func() int
}

// NewHealthHandler reports liveness. count may be nil.
func NewHealthHandler(serviceName, version string, count func() int) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		count:       count,
	}
}

// HealthCheck reports the service as healthy with its template count.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	n := 0
	if h.count != nil {
		n = h.count()
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Templates: n,
	})
}

// RegisterRoutes mounts /health and /healthz on r.
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
