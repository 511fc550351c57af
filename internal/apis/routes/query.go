package routes

import (
	"github.com/gin-gonic/gin"

	"query-genie/internal/apis/handlers"
	"query-genie/internal/middlewares"
	"query-genie/internal/utils"
)

func SetupQueryRoutes(router *gin.Engine, queryHandler *handlers.QueryHandler, jwtService utils.JWTService) {
	api := router.Group("/api")
	api.Use(middlewares.SessionMiddleware(jwtService))
	{
		api.POST("/connect", queryHandler.Connect)
		api.POST("/disconnect", queryHandler.Disconnect)
		api.POST("/chat", queryHandler.Chat)
		api.POST("/confirm-sql", queryHandler.ConfirmSQL)
	}
}
