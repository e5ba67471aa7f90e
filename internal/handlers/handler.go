package handlers

import (
	"fireplace_rf/internal/logger"
	"fireplace_rf/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a new HTTP handler with dependencies. allowedOrigins
// lists the browser origins, besides the API's own host, that may open /ws.
func NewHandler(services *service.Service, log *logger.Logger, allowedOrigins ...string) *Handler {
	return &Handler{
		services: services,
		log:      logger.OrNop(log),
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// State stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerFireplaceRoutes(api)
		h.registerReceiverRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerFireplaceRoutes(api *gin.RouterGroup) {
	fp := api.Group("/fireplace")
	{
		fp.GET("/state", h.getState)
		fp.POST("/turn_on", h.turnOn)
		fp.POST("/turn_off", h.turnOff)
		fp.POST("/toggle", h.toggle)
		// Body example: {"state":true,"power":3,"preset_mode":"eco"}
		fp.POST("/call", h.performCall)
		fp.POST("/cycle_power", h.cyclePower)
	}
}

func (h *Handler) registerReceiverRoutes(api *gin.RouterGroup) {
	rx := api.Group("/receiver")
	{
		// Body example: {"durations":[2000,-413,826,-9000]}
		rx.POST("/capture", h.capture)
		rx.GET("/stats", h.receiverStats)
		rx.POST("/stats/reset", h.resetReceiverStats)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
