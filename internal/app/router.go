package app

import (
	"language_gems_backend/docs"
	"language_gems_backend/internal/config"
	"language_gems_backend/internal/middleware"
	"language_gems_backend/internal/model"
	"language_gems_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 语法目录对游客开放（营销页/语法参考页直接读）
		public.GET("/grammar/topics", c.content.ListTopics)
		public.GET("/grammar/topics/:id", c.content.GetTopic)
		public.GET("/grammar/topics/:id/content", c.content.ListTopicContent)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 语法会话
		authGroup.POST("/grammar/sessions/start", c.session.StartSession)
		authGroup.POST("/grammar/sessions/:sessionId/attempts", c.session.RecordAttempt)
		authGroup.POST("/grammar/sessions/:sessionId/end", c.session.EndSession)
		authGroup.GET("/grammar/sessions", c.session.ListSessions)
		authGroup.GET("/grammar/sessions/:sessionId/gems", c.session.ListSessionGems)

		// 学生视角的作业进度
		authGroup.GET("/assignments/:id", c.assignment.GetAssignment)
		authGroup.GET("/assignments/:id/progress", c.progress.GetMyProgress)
		authGroup.GET("/assignments/:id/completion", c.progress.GetCompletionPercentage)

		// 教师相关接口
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
		{
			teacher.POST("/assignments", c.assignment.CreateAssignment)
			teacher.GET("/assignments", c.assignment.ListAssignments)
			teacher.PUT("/assignments/:id", c.assignment.UpdateAssignment)
			teacher.DELETE("/assignments/:id", c.assignment.DeleteAssignment)
			teacher.GET("/assignments/:id/progress", c.assignment.ListAssignmentProgress)
		}
	}
}
