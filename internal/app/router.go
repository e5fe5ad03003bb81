package app

import (
	"code_mentor_backend/internal/config"
	"code_mentor_backend/internal/middleware"
	"code_mentor_backend/internal/model"
	"code_mentor_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 题目浏览允许游客访问，未发布题目只有作者和管理员可见
		public.GET("/problems", c.problem.List)
		public.GET("/problems/:id", middleware.TryAuthMiddleware(cfg), c.problem.Get)

		public.GET("/progression/leaderboard", c.progression.Leaderboard)
	}

	// 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/auth/me", c.auth.Me)

		authGroup.PUT("/users/profile", c.user.UpdateProfile)
		authGroup.POST("/users/avatar", c.user.UploadAvatar)

		authGroup.POST("/attempts", c.attempt.Submit)

		authGroup.GET("/progression", c.progression.Get)

		authGroup.GET("/performance", c.performance.Report)
		authGroup.POST("/performance/assess", c.performance.Assess)
		authGroup.GET("/performance/history", c.performance.History)

		// 教师接口：题目管理
		teacher := authGroup.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/problems", c.problem.Create)
			teacher.PUT("/problems/:id", c.problem.Update)
			teacher.DELETE("/problems/:id", c.problem.Delete)
		}
	}
}
