package app

import (
	"paper_review_backend/docs"
	"paper_review_backend/internal/config"
	"paper_review_backend/internal/middleware"
	"paper_review_backend/internal/model"
	"paper_review_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// 教师接口：试卷工作副本、审核、导入
	teacher := router.Group("/api/teacher")
	teacher.Use(middleware.AuthMiddleware(),
		middleware.RoleMiddleware(model.Teacher),
		middleware.ActivityMiddleware(repos.user))
	{
		teacher.GET("/me", c.auth.Me)

		papers := teacher.Group("/papers")
		{
			papers.POST("", c.paper.Create)
			papers.GET("", c.paper.List)
			papers.GET("/:id", c.paper.Get)
			papers.PUT("/:id", c.paper.Update)
			papers.DELETE("/:id", c.paper.Delete)

			papers.POST("/:id/questions", c.question.Create)

			papers.GET("/:id/review", c.review.GetSummary)
			papers.POST("/:id/review/fix", c.review.ApplyFixes)
			papers.GET("/:id/review/export", c.review.ExportReport)

			papers.POST("/:id/import", c.importCtrl.Import)
			papers.GET("/:id/import/history", c.importCtrl.History)
		}

		questions := teacher.Group("/questions")
		{
			questions.GET("/:id", c.question.Get)
			questions.PUT("/:id", c.question.Update)
			questions.DELETE("/:id", c.question.Delete)
			questions.POST("/:id/attachments", c.attachment.Upload)
		}

		teacher.DELETE("/attachments/:id", c.attachment.Delete)
	}
}
