package app

import (
	"questionnaire_backend/docs"
	"questionnaire_backend/internal/config"
	"questionnaire_backend/internal/middleware"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, s.sessions))
	{
		a.registerSessionRoutes(authGroup, c)
		a.registerQuestionnaireRoutes(authGroup, c)

		// 3. 管理员
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerSessionRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/session", c.auth.GetSession)
	rg.POST("/session/refresh", c.auth.RefreshSession)
	rg.POST("/logout", c.auth.Logout)
}

func (a *App) registerQuestionnaireRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/questionnaires", c.questionnaire.ListQuestionnaires)
	rg.GET("/questionnaire-selector", c.questionnaire.Selector)
	rg.GET("/questionnaire/:id", c.questionnaire.GetForm)
	rg.POST("/questionnaire/:id", c.questionnaire.SubmitForm)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/counts", c.admin.GetCounts)
		admin.GET("/users/:userId", c.admin.GetUserAnswers)
		admin.POST("/users/:userId/export", c.admin.ExportUserAnswers)
	}
}
