package app

import (
	"testlab_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", monitoring.PrometheusHandler())

	// WebSocket 入口 身份通过 login 事件绑定，和旧前端保持一致
	router.GET("/ws", c.ws.HandleWS)

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 令牌签发与校验
		api.POST("/generate-token", c.auth.GenerateToken)
		api.GET("/validate-token/:token", c.auth.ValidateToken)

		// 练习目录
		api.GET("/exercises", c.exercise.List)
		api.GET("/exercises-status/:token", c.exercise.StatusByToken)
	}
}
