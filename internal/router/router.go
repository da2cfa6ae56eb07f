package router

import (
	"net/http"
	"time"

	"vestra/config"
	"vestra/internal/handler"
	"vestra/internal/middleware"
	"vestra/internal/repository"
	"vestra/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived components shared with the CLI.
type Deps struct {
	Engine  handler.Executor
	Roi     handler.RoiRunner
	Limiter *middleware.InMemoryRateLimiter
}

func Setup(cfg *config.Config, db *gorm.DB, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewInMemoryRateLimiter(100, 60*time.Second)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(limiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	settlementHandler := handler.NewSettlementHandler(deps.Engine, auditRepo)
	cronHandler := handler.NewCronHandler(deps.Roi, cfg.Scheduler.CronKey)

	authMw := middleware.AuthRequired(&cfg.JWT)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired(), middleware.RateLimit(limiter))
		{
			admin.POST("/deposits/:id/approve", settlementHandler.ApproveDeposit)
			admin.POST("/deposits/:id/reject", settlementHandler.RejectDeposit)
			admin.POST("/withdrawals/:id/approve", settlementHandler.ApproveWithdrawal)
			admin.POST("/withdrawals/:id/reject", settlementHandler.RejectWithdrawal)
			admin.POST("/withdrawals/:id/paid", settlementHandler.MarkWithdrawalPaid)
			admin.POST("/investments/:id/roi", settlementHandler.CreditRoi)
			admin.PATCH("/investments/:id/status", settlementHandler.UpdateInvestmentStatus)
			admin.GET("/audit", settlementHandler.AuditTrail)
		}

		api.POST("/cron/roi", cronHandler.RunRoi)
	}

	return r
}
