// Package httpapi is the HTTP shell over the session: a gin router that
// mirrors the MCP tools as JSON endpoints, plus health and metrics.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HendryAvila/promptforge/internal/session"
)

// Options configures the router.
type Options struct {
	Service  string
	Version  string
	Gatherer prometheus.Gatherer // nil disables /metrics
	Logger   *slog.Logger
}

// NewRouter builds the gin engine for sess.
func NewRouter(sess *session.Session, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Service == "" {
		opts.Service = "promptforge"
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger))

	NewHealthHandler(opts.Service, opts.Version, func() int {
		return len(sess.Templates())
	}).RegisterRoutes(r)

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	NewHandler(sess, opts.Logger).Register(r.Group("/api/v1"))
	return r
}

// Register attaches the form, template and prompt routes to rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	f := rg.Group("/form")
	f.GET("", h.getForm)
	f.GET("/options/:field", h.options)
	f.PUT("/fields/:field", h.setField)
	f.POST("/config-files/toggle", h.toggleConfigFile)
	f.POST("/other/confirm", h.confirmOther)
	f.POST("/other/cancel", h.cancelOther)
	f.POST("/reset", h.reset)

	t := rg.Group("/templates")
	t.GET("", h.listTemplates)
	t.POST("", h.saveTemplate)
	t.POST("/edit/cancel", h.cancelEdit)
	t.GET("/:id", h.getTemplate)
	t.POST("/:id/load", h.loadTemplate)
	t.POST("/:id/edit", h.editTemplate)
	t.POST("/:id/clone", h.cloneTemplate)
	t.DELETE("/:id", h.deleteTemplate)

	p := rg.Group("/prompt")
	p.GET("", h.renderPrompt)
	p.PUT("/panel", h.selectPanel)
	p.GET("/download", h.downloadPrompt)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
