package app

import (
	"pyland_backend/docs"
	"pyland_backend/internal/config"
	"pyland_backend/internal/middleware"
	"pyland_backend/internal/model"
	"pyland_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公开路由（游客可访问）
	a.registerPublicRoutes(router, c, repos)

	// 2. 登录用户路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerReviewerRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 证书核验对外公开
		public.GET("/certificates/verify/:code", c.certificate.Verify)
	}

	// 课程目录允许游客浏览，登录学生附带个人进度
	catalog := router.Group("/api")
	catalog.Use(middleware.TryAuthMiddleware(a.Config))
	{
		catalog.GET("/courses", c.course.ListCourses)
		catalog.GET("/courses/:slug", c.course.GetCourse)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/me", c.auth.Me)
	rg.PUT("/profile", c.user.UpdateProfile)
	rg.POST("/profile/avatar", c.user.UploadAvatar)
	rg.GET("/dashboard", c.dashboard.GetDashboard)

	// 学习进度
	rg.POST("/courses/:slug/lessons/:lessonSlug/steps/:stepId/toggle", c.progress.ToggleStep)
	rg.POST("/courses/:slug/lessons/:lessonSlug/steps/:stepId/advance", c.progress.AdvanceStep)
	rg.GET("/courses/:slug/lessons/:lessonSlug/progress", c.progress.LessonProgress)
	rg.GET("/courses/:slug/progress", c.progress.CourseProgress)

	// 作业提交
	rg.POST("/courses/:slug/lessons/:lessonSlug/submissions", c.submission.Submit)
	rg.POST("/courses/:slug/lessons/:lessonSlug/submissions/resubmit", c.submission.Resubmit)
	rg.POST("/improvements/:id/toggle", c.submission.ToggleImprovement)
	rg.GET("/submissions", c.submission.MySubmissions)

	// 证书
	rg.GET("/certificates", c.certificate.MyCertificates)
}

func (a *App) registerReviewerRoutes(rg *gin.RouterGroup, c *controllers) {
	review := rg.Group("/review")
	review.Use(middleware.RoleMiddleware(model.ReviewRoles...))
	{
		review.GET("/queue", c.review.Queue)
		review.GET("/queue/ws", c.review.QueueFeed)
		review.GET("/submissions/:id", c.review.GetSubmission)
		review.POST("/submissions/:id", c.review.Review)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.StaffRoles...))
	{
		admin.POST("/courses", c.course.CreateCourse)
		admin.PUT("/courses/:slug/status", c.course.SetCourseStatus)
		admin.PUT("/courses/:slug/translations", c.course.UpsertCourseTranslation)
		admin.POST("/courses/:slug/cover", c.course.UploadCourseCover)
		admin.POST("/courses/:slug/lessons", c.course.CreateLesson)
		admin.POST("/courses/:slug/lessons/:lessonSlug/steps", c.course.CreateStep)
		admin.PUT("/steps/:id/translations", c.course.UpsertStepTranslation)
		admin.POST("/steps/:id/video", c.course.UploadStepVideo)

		admin.PUT("/users/:id/role", c.user.SetRole)
		admin.GET("/notifications", c.notification.ListLogs)
	}
}
