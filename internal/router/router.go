package router

import (
	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/handler"
	"github.com/blues/gfc/internal/logic"
	"github.com/blues/gfc/internal/mailer"
	"github.com/blues/gfc/internal/payment"
	"github.com/blues/gfc/internal/storage"
	"github.com/blues/gfc/internal/wizard"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由依赖
type Deps struct {
	DB         *gorm.DB
	Config     *config.Config
	Store      *storage.Store
	Dispatcher *mailer.Dispatcher
	Gateways   *payment.Registry
	Sessions   *wizard.Store
}

func Setup(deps Deps) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "gift-for-cause",
		})
	})

	// 上传文件静态访问
	r.Static("/uploads", deps.Store.BaseDir())

	secret := deps.Config.Auth.JWTSecret

	// 业务逻辑装配
	auditLogic := logic.NewAuditLogic(deps.DB)
	userLogic := logic.NewUserLogic(deps.DB, deps.Dispatcher)
	ngoLogic := logic.NewNgoLogic(deps.DB)
	wishlistLogic := logic.NewWishlistLogic(deps.DB)
	statsLogic := logic.NewStatsLogic(deps.DB)
	storyLogic := logic.NewStoryLogic(deps.DB)
	donationLogic := logic.NewDonationLogic(deps.DB, deps.Sessions, deps.Gateways,
		deps.Dispatcher, wishlistLogic, ngoLogic)
	dashboardLogic := logic.NewDashboardLogic(ngoLogic, wishlistLogic, donationLogic,
		storyLogic, auditLogic, statsLogic)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 认证相关路由
		userHandler := handler.NewUserHandler(userLogic, auditLogic, deps.Config.Auth)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/signup", userHandler.Signup)
			authGroup.POST("/login", userHandler.Login)
			authGroup.POST("/logout", auth.OptionalAuth(secret), userHandler.Logout)
			authGroup.POST("/password-reset", userHandler.RequestPasswordReset)
			authGroup.POST("/password-reset/confirm", userHandler.ResetPassword)
			authGroup.GET("/me", auth.Authenticate(secret), userHandler.Me)
			authGroup.PUT("/me", auth.Authenticate(secret), userHandler.UpdateProfile)
		}

		// 机构相关路由
		ngoHandler := handler.NewNgoHandler(ngoLogic, deps.Store)
		ngos := v1.Group("/ngos")
		{
			ngos.GET("", ngoHandler.GetNgos)
			ngos.GET("/:id", ngoHandler.GetNgo)
			ngos.GET("/:id/settlement", ngoHandler.GetSettlement)
			ngos.POST("", auth.Authenticate(secret),
				auth.RequireRoles(auth.RoleNgoOwner, auth.RoleNgoEditor), ngoHandler.CreateNgo)
			ngos.PUT("/:id", auth.Authenticate(secret), ngoHandler.UpdateNgo)
			ngos.POST("/:id/logo", auth.Authenticate(secret), ngoHandler.UploadLogo)
			ngos.PUT("/:id/settlement", auth.Authenticate(secret), ngoHandler.SaveSettlement)
		}

		// 清单相关路由
		wishlistHandler := handler.NewWishlistHandler(wishlistLogic, ngoLogic, statsLogic)
		wishlists := v1.Group("/wishlists")
		{
			wishlists.GET("", wishlistHandler.GetWishlists)
			wishlists.GET("/:id", wishlistHandler.GetWishlist)
			wishlists.GET("/:id/stats", wishlistHandler.GetWishlistStats)
			wishlists.POST("", auth.Authenticate(secret),
				auth.RequireRoles(auth.RoleNgoOwner, auth.RoleNgoEditor), wishlistHandler.CreateWishlist)
			wishlists.POST("/:id/submit", auth.Authenticate(secret), wishlistHandler.SubmitWishlist)
			wishlists.POST("/:id/complete", auth.Authenticate(secret), wishlistHandler.CompleteWishlist)
		}

		// 捐赠相关路由，向导对游客开放
		donationHandler := handler.NewDonationHandler(donationLogic)
		donations := v1.Group("/donations", auth.OptionalAuth(secret))
		{
			donations.POST("/sessions", donationHandler.StartSession)
			donations.GET("/sessions/:sid", donationHandler.GetSession)
			donations.DELETE("/sessions/:sid", donationHandler.CancelSession)
			donations.PUT("/sessions/:sid/items", donationHandler.ToggleItem)
			donations.PUT("/sessions/:sid/items/qty", donationHandler.SetItemQty)
			donations.PUT("/sessions/:sid/details", donationHandler.SetDetails)
			donations.POST("/sessions/:sid/next", donationHandler.NextStep)
			donations.POST("/sessions/:sid/prev", donationHandler.PrevStep)
			donations.POST("/sessions/:sid/confirm", donationHandler.Confirm)
			donations.GET("/sessions/:sid/summary", donationHandler.GetSummary)
			donations.POST("/manual", donationHandler.CreateManualDonation)
			donations.POST("/manual/:id/confirm", donationHandler.ConfirmManualDonation)
		}
		v1.GET("/donations/mine", auth.Authenticate(secret), donationHandler.GetMyDonations)

		// 成功案例路由
		storyHandler := handler.NewStoryHandler(storyLogic, ngoLogic, deps.Store)
		stories := v1.Group("/stories")
		{
			stories.GET("", storyHandler.GetStories)
			stories.POST("", auth.Authenticate(secret),
				auth.RequireRoles(auth.RoleNgoOwner, auth.RoleNgoEditor), storyHandler.CreateStory)
		}

		// 角色分发仪表盘
		dashboardHandler := handler.NewDashboardHandler(dashboardLogic)
		v1.GET("/dashboard", auth.Authenticate(secret), dashboardHandler.GetDashboard)

		// 管理端路由
		adminHandler := handler.NewAdminHandler(ngoLogic, wishlistLogic, storyLogic,
			donationLogic, auditLogic, statsLogic)
		admin := v1.Group("/admin", auth.Authenticate(secret),
			auth.RequireRoles(auth.RoleAdmin, auth.RoleModerator))
		{
			admin.PUT("/ngos/:id/verify", adminHandler.VerifyNgo)
			admin.PUT("/wishlists/:id/review", adminHandler.ReviewWishlist)
			admin.PUT("/stories/:id/review", adminHandler.ReviewStory)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.GET("/donations/pending", adminHandler.GetPendingDonations)
			admin.GET("/stats", adminHandler.GetPlatformStats)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
