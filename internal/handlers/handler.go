package handlers

import (
	"context"
	"net/http"

	"coffeebot/internal/dispatcher"
	"coffeebot/internal/logger"
	"coffeebot/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Actions runs the HTTP-triggered commands. Implemented by *dispatcher.Dispatcher.
type Actions interface {
	Do(ctx context.Context, action dispatcher.Action, arg string) dispatcher.Outcome
}

// Options carries the HTTP surface configuration.
type Options struct {
	// Prefix is the normalised mount point, "" or "/something" without trailing slash.
	Prefix    string
	AssetsDir string
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	actions  Actions
	log      *logger.Logger
	opts     Options
	engine   *gin.Engine
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, actions Actions, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{services: services, actions: actions, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	h.engine = router
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	router.Use(gin.Recovery(), h.pathGuard, h.requestLogger)

	prefix := h.opts.Prefix
	if prefix != "" {
		router.GET(prefix, h.redirectToPrefix)
	}

	root := router.Group(prefix)
	{
		root.GET("/", h.front)
		root.GET("/brew", h.brew)
		root.GET("/fresh", h.fresh)
		root.GET("/status", h.status)
		root.GET("/health", h.health)
		root.GET("/ws", h.wsConnect)
		root.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		if h.opts.Metrics != nil {
			root.GET("/metrics", gin.WrapH(h.opts.Metrics))
		}
	}

	h.registerAuthRoutes(root)
	h.registerAPIRoutes(root)

	router.NoRoute(h.asset)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/token", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.RouterGroup) {
	api := r.Group("/api/v1", h.adminMiddleware)
	{
		api.POST("/reset", h.reset)
		api.GET("/brew-delay", h.getBrewDelay)
		api.PUT("/brew-delay", h.setBrewDelay)
		api.GET("/logs", h.getLogs)
	}
}

func (h *Handler) redirectToPrefix(c *gin.Context) {
	target := h.opts.Prefix + "/"
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	c.Redirect(http.StatusFound, target)
}
