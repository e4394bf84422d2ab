package app

import (
	"aru_academy_backend/docs"
	"aru_academy_backend/internal/config"
	"aru_academy_backend/internal/middleware"
	"aru_academy_backend/internal/model"

	"aru_academy_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		a.registerAuthedRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 注册页院系下拉框
		public.GET("/departments", c.course.Departments)

		// AI服务状态用于前端降级提示，无需登录
		public.GET("/ai/status", c.tutor.Status)
	}
}

func (a *App) registerAuthedRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/me", c.auth.Me)
	rg.POST("/auth/change-password", c.auth.ChangePassword)

	// 课程
	rg.GET("/courses", c.course.List)
	rg.GET("/courses/:id", c.course.Get)
	rg.POST("/courses", middleware.RoleMiddleware(model.Instructor), c.course.Create)
	rg.PUT("/courses/:id", middleware.RoleMiddleware(model.Instructor), c.course.Update)
	rg.DELETE("/courses/:id", middleware.RoleMiddleware(model.Instructor), c.course.Delete)
	rg.GET("/departments/:id/courses", c.course.ListByDepartment)

	// 学习资源
	rg.GET("/resources", c.resource.List)
	rg.GET("/resources/:id", c.resource.Get)
	rg.POST("/resources", middleware.RoleMiddleware(model.Instructor), c.resource.Create)
	rg.POST("/resources/upload", middleware.RoleMiddleware(model.Instructor), c.resource.Upload)
	rg.PUT("/resources/:id", middleware.RoleMiddleware(model.Instructor), c.resource.Update)
	rg.DELETE("/resources/:id", middleware.RoleMiddleware(model.Instructor), c.resource.Delete)

	// 学习进度
	rg.POST("/resources/:id/progress", c.resource.UpdateProgress)
	rg.GET("/resources/:id/progress", c.resource.ResourceProgress)
	rg.GET("/progress", c.resource.MyProgress)

	// 测验
	rg.GET("/quizzes", c.quiz.List)
	rg.GET("/quizzes/history", c.quiz.History)
	rg.GET("/quizzes/:id", c.quiz.Get)
	rg.POST("/quizzes", middleware.RoleMiddleware(model.Instructor), c.quiz.Create)
	rg.PUT("/quizzes/:id", middleware.RoleMiddleware(model.Instructor), c.quiz.Update)
	rg.DELETE("/quizzes/:id", middleware.RoleMiddleware(model.Instructor), c.quiz.Delete)
	rg.POST("/quizzes/:id/submit", c.quiz.Submit)
	rg.GET("/quizzes/:id/results", middleware.RoleMiddleware(model.Instructor), c.quiz.Results)
	rg.GET("/quizzes/:id/statistics", c.quiz.Statistics)

	// AI助教
	ai := rg.Group("/ai")
	{
		ai.POST("/ask", c.tutor.Ask)
		ai.POST("/generate-questions", middleware.RoleMiddleware(model.Instructor), c.tutor.GenerateQuestions)
		ai.POST("/create-quiz", middleware.RoleMiddleware(model.Instructor), c.tutor.CreateQuiz)
		ai.POST("/evaluate-answer", c.tutor.EvaluateAnswer)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/stats", c.admin.Stats)
		admin.GET("/health", c.admin.SystemHealth)
		admin.GET("/analytics", c.admin.Analytics)
		admin.GET("/ai-logs", c.admin.AiLogs)

		// 用户管理
		admin.GET("/users", c.admin.Users)
		admin.GET("/users/export", c.admin.ExportUsers)
		admin.PUT("/users/:id/status", c.admin.UpdateUserStatus)
		admin.PUT("/users/:id/role", c.admin.UpdateUserRole)
		admin.DELETE("/users/:id", c.admin.DeleteUser)

		// 注册审批
		admin.GET("/approvals", c.admin.PendingApprovals)
		admin.POST("/approvals", c.admin.AddApprovedUser)
		admin.POST("/approvals/approve-all", c.admin.ApproveAll)
		admin.POST("/approvals/:id/approve", c.admin.ApproveUser)
		admin.POST("/approvals/:id/deny", c.admin.DenyUser)

		// 院系管理
		admin.GET("/departments", c.admin.Departments)
		admin.POST("/departments", c.admin.CreateDepartment)
		admin.PUT("/departments/:id", c.admin.UpdateDepartment)
		admin.DELETE("/departments/:id", c.admin.DeleteDepartment)
	}
}
