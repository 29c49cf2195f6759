package app

import (
	"quiz_admin_backend/docs"
	"quiz_admin_backend/internal/config"
	"quiz_admin_backend/internal/middleware"
	"quiz_admin_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 测验接口，与前端约定的路径保持在根层级
	router.POST("/login", c.auth.Login)
	router.GET("/questions", c.quiz.GetQuestions)
	router.POST("/submit", c.quiz.Submit)
	router.GET("/score/:username", c.quiz.GetScore)

	// AI求助
	router.POST("/ai-help", c.ai.RequestHint)
	router.GET("/ai-usage/:username", c.ai.GetUsage)

	// 报表导出
	router.GET("/download-report", c.report.DownloadReport)

	// 需要登录态的接口
	authGroup := router.Group("/")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
	}
}
