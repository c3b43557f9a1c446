package router

import (
	"taskforge/internal/database"
	"taskforge/internal/handlers"
	"taskforge/internal/middleware"
	"taskforge/internal/services"
	"taskforge/pkg/revoke"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(revokeStore *revoke.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SetupCORS())

	// 注册自定义校验规则
	handlers.RegisterValidators()

	db := database.GetDB()

	// 初始化服务
	tenantService := services.NewTenantService(db)
	userService := services.NewUserService(db)
	projectService := services.NewProjectService(db)
	taskService := services.NewTaskService(db)

	// 初始化处理器
	authHandler := handlers.NewAuthHandler(userService, tenantService, revokeStore)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// 认证中间件
	authMiddleware := middleware.NewAuthMiddleware(revokeStore)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// 认证相关（注册和登录无需令牌）
	auth := api.Group("/auth")
	{
		auth.POST("/register-tenant", authHandler.RegisterTenant)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireLogin(), authHandler.Me)
		auth.POST("/logout", authMiddleware.RequireLogin(), authHandler.Logout)
	}

	// 租户管理及租户下的用户管理
	tenants := api.Group("/tenants")
	tenants.Use(authMiddleware.RequireLogin())
	{
		tenants.GET("", tenantHandler.List)
		tenants.GET("/:tenantId", tenantHandler.GetDetails)
		tenants.PUT("/:tenantId", tenantHandler.Update)

		tenants.POST("/:tenantId/users", userHandler.Add)
		tenants.GET("/:tenantId/users", userHandler.List)
		tenants.PUT("/:tenantId/users/:userId", userHandler.Update)
		tenants.DELETE("/:tenantId/users/:userId", userHandler.Delete)
	}

	// 项目及项目下的任务
	projects := api.Group("/projects")
	projects.Use(authMiddleware.RequireLogin())
	{
		projects.GET("", projectHandler.List)
		projects.POST("", projectHandler.Create)
		projects.PUT("/:projectId", projectHandler.Update)
		projects.DELETE("/:projectId", projectHandler.Delete)

		projects.POST("/:projectId/tasks", taskHandler.Create)
		projects.GET("/:projectId/tasks", taskHandler.List)
	}

	// 任务更新
	tasks := api.Group("/tasks")
	tasks.Use(authMiddleware.RequireLogin())
	{
		tasks.PATCH("/:taskId/status", taskHandler.UpdateStatus)
		tasks.PUT("/:taskId", taskHandler.Update)
	}

	return r
}
