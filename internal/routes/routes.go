package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/handlers"
	"github.com/nexvpn/backend/internal/middleware"
	"github.com/nexvpn/backend/internal/services/purchase"
)

// RegisterRoutes wires all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, purchaseSvc *purchase.Service) {
	limiter := middleware.NewRateLimiter(10, 20)
	router.Use(limiter.Middleware())

	userHandler := handlers.NewUserHandler(db)
	pricingHandler := handlers.NewPricingHandler(db, purchaseSvc)
	referralHandler := handlers.NewReferralHandler(db)
	balanceHandler := handlers.NewBalanceHandler(db, purchaseSvc)
	adminHandler := handlers.NewAdminSettingsHandler(db)

	api := router.Group("/api")
	api.POST("/users", userHandler.Register)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/profile", userHandler.GetProfile)

		authed.POST("/pricing/quote", pricingHandler.QuotePlan)
		authed.POST("/pricing/devices/quote", pricingHandler.QuoteExtraDevices)

		authed.GET("/balance", balanceHandler.GetBalance)
		authed.POST("/balance/topup", balanceHandler.TopUp)
		authed.POST("/purchase/plan", balanceHandler.PurchasePlan)
		authed.POST("/purchase/devices", balanceHandler.PurchaseExtraDevices)

		authed.POST("/referrals", referralHandler.CreateReferral)
		authed.GET("/referrals/stats", referralHandler.GetStats)
		authed.POST("/referrals/withdraw", referralHandler.Withdraw)
		authed.POST("/referrals/rewards/:id/apply", referralHandler.ApplyExtraDaysReward)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/settings/discount", adminHandler.GetGlobalDiscount)
		admin.PUT("/settings/discount", adminHandler.UpdateGlobalDiscount)
		admin.GET("/settings/referral", adminHandler.GetReferralProgram)
		admin.PUT("/settings/referral", adminHandler.UpdateReferralProgram)
		admin.GET("/settings/billing", adminHandler.GetBillingSettings)
		admin.PUT("/settings/billing", adminHandler.UpdateBillingSettings)
		admin.PUT("/users/:id/discount", adminHandler.UpdateUserDiscount)
		admin.POST("/rewards", adminHandler.CreateDirectReward)
	}
}
