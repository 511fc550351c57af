package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"query-genie/internal/di"
)

func SetupDefaultRoutes(router *gin.Engine) {
	queryHandler, err := di.GetQueryHandler()
	if err != nil {
		log.Fatalf("Failed to get query handler: %v", err)
	}
	jwtService, err := di.GetJWTService()
	if err != nil {
		log.Fatalf("Failed to get JWT service: %v", err)
	}

	router.GET("/health", queryHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	SetupQueryRoutes(router, queryHandler, jwtService)
}
