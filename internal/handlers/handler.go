package handlers

import (
	"errors"
	"net/http"

	"garage_gateway/internal/logger"
	"garage_gateway/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Unauthenticated read surface
	router.GET("/health", h.health)
	router.GET("/status", h.status)
	router.GET("/events", h.recentEvents)

	// Live state stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)
	h.registerSessionRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
		auth.POST("/check", h.checkUser)
		auth.POST("/role", h.getRole)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		door := api.Group("/door")
		{
			door.POST("/open", h.openDoor)
			door.POST("/close", h.closeDoor)
		}
		api.POST("/gps", h.ingestGPS)

		users := api.Group("/users")
		{
			users.GET("", h.listUsers)
			users.POST("", h.addUser)
			users.DELETE("/:username", h.removeUser)
			users.POST("/password", h.changePassword)
		}
	}
}

// Session endpoints carry their own credentials in the body, so they sit
// outside the auth middleware.
func (h *Handler) registerSessionRoutes(r *gin.Engine) {
	sessions := r.Group("/api/v1/sessions")
	{
		sessions.POST("/login", h.sessionLogin)
		sessions.POST("/logout", h.sessionLogout)
		sessions.GET("/:client_id", h.sessionStatus)
	}
}

// bindJSONOrBadRequest binds the request body into dst and writes a 400
// JSON on failure. Returns false if the request was already handled.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// serviceError maps the domain error taxonomy onto HTTP status codes;
// anything unclassified is an internal failure.
func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnprocessable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		if h.log != nil {
			h.log.Errorw("internal_error", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
