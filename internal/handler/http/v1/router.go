package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1.
// Изменяющие маршруты закрыты API-ключом.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	auth := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Инциденты и диспетчеризация
	incidents := api.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.GET("/:id/candidates", h.findCandidates)

		incidents.POST("", auth, h.reportIncident)
		incidents.POST("/:id/assign", auth, h.assignProvider)
		incidents.POST("/:id/status", auth, h.advanceStatus)
	}

	// Исполнители
	providers := api.Group("/providers")
	{
		providers.GET("/nearby", h.nearbyProviders)
		providers.GET("/:id", h.getProvider)

		providers.POST("", auth, h.registerProvider)
		providers.PUT("/:id/status", auth, h.updateProviderStatus)
		providers.POST("/:id/ping", auth, h.recordPing)
		providers.POST("/:id/verify", auth, h.verifyProvider)
		providers.PUT("/:id/active", auth, h.setProviderActive)
		providers.POST("/:id/rating", auth, h.rateProvider)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
