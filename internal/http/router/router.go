package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskmarket-backend/internal/config"
	"github.com/ignatzorin/taskmarket-backend/internal/http/handlers"
	"github.com/ignatzorin/taskmarket-backend/internal/http/middleware"
	"github.com/ignatzorin/taskmarket-backend/internal/models"
	"github.com/ignatzorin/taskmarket-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	enterpriseHandler *handlers.EnterpriseHandler,
	workerHandler *handlers.WorkerHandler,
	reviewHandler *handlers.ReviewHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/wechat-login", authHandler.WechatLogin)
		if cfg.Env == "development" {
			authGroup.POST("/dev-login", authHandler.DevLogin)
		}
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/role", authHandler.SetRole)
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/market/tasks", workerHandler.Market)
	api.GET("/users/:id/reviews", reviewHandler.ListUserReviews)
	api.GET("/ws", wsHandler.Handle)

	enterprise := api.Group("/enterprise")
	enterprise.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleEnterprise))
	{
		enterprise.GET("/stats", enterpriseHandler.Stats)
		enterprise.GET("/tasks/recent", enterpriseHandler.RecentTasks)
		enterprise.GET("/tasks", enterpriseHandler.ListTasks)
		enterprise.POST("/tasks", enterpriseHandler.CreateTask)
		enterprise.GET("/tasks/:id", enterpriseHandler.TaskDetail)
		enterprise.POST("/tasks/:id/approve", enterpriseHandler.Approve)
		enterprise.POST("/tasks/:id/reject", enterpriseHandler.Reject)
		enterprise.POST("/tasks/:id/cancel", enterpriseHandler.CancelTask)
		enterprise.GET("/profile", enterpriseHandler.Profile)
		enterprise.PUT("/profile", enterpriseHandler.UpdateProfile)
		enterprise.POST("/recharge", enterpriseHandler.Recharge)
		enterprise.GET("/transactions", enterpriseHandler.Transactions)
	}

	worker := api.Group("/worker")
	worker.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleIndividual))
	{
		worker.GET("/tasks", workerHandler.MyTasks)
		worker.POST("/tasks/:id/accept", workerHandler.Accept)
		worker.POST("/tasks/:id/submit", workerHandler.Submit)
		worker.GET("/tasks/:id", workerHandler.TaskDetail)
		worker.GET("/profile", workerHandler.Profile)
		worker.PUT("/profile", workerHandler.UpdateProfile)
		worker.POST("/withdraw", workerHandler.Withdraw)
		worker.GET("/transactions", workerHandler.Transactions)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/orders/:id/reviews", reviewHandler.CreateReview)
		protected.POST("/media/attachments", mediaHandler.UploadAttachment)
	}

	return r
}
