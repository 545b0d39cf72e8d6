package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tiejeevan/gsale-backend/internal/admin"
	"github.com/tiejeevan/gsale-backend/internal/badge"
	"github.com/tiejeevan/gsale-backend/internal/event"
	"github.com/tiejeevan/gsale-backend/internal/gamification"
	"github.com/tiejeevan/gsale-backend/internal/identity"
	"github.com/tiejeevan/gsale-backend/internal/leaderboard"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/reputation"
	"github.com/tiejeevan/gsale-backend/internal/xp"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, notifier notify.Notifier) {
	gamification.SetNotifier(notifier)
	admin.SetNotifier(notifier)

	router.Use(identity.LoadUserMiddleware())

	api := router.Group("/api/gamification")
	{
		// 公开读取
		api.GET("/badges", badge.ListBadges)
		api.GET("/leaderboard/:type", leaderboard.GetLeaderboardByType)
		api.GET("/events", event.GetActive)

		// 需要登录的用户路由
		user := api.Group("")
		user.Use(identity.RequireUser())
		{
			user.GET("/profile", gamification.GetMyProfile)
			user.POST("/daily-bonus", gamification.ClaimDailyBonusHandler)
			user.GET("/xp/history", xp.GetHistory)
			user.GET("/xp/breakdown", xp.GetBreakdown)
			user.GET("/badges/me", badge.ListMyBadges)
			user.GET("/badges/progress/:id", badge.GetBadgeProgress)
			user.GET("/reputation", reputation.GetMyReputation)
		}
	}

	// 管理端路由组 /api/admin/gamification
	adminRoutes := router.Group("/api/admin/gamification")
	adminRoutes.Use(identity.RequireAdmin())
	{
		adminRoutes.GET("/xp-rules", admin.ListXPRules)
		adminRoutes.PATCH("/xp-rules/:actionType", admin.UpdateXPRule)

		adminRoutes.GET("/badges", admin.ListBadges)
		adminRoutes.POST("/badges", admin.CreateBadge)
		adminRoutes.PATCH("/badges/:id", admin.UpdateBadge)
		adminRoutes.DELETE("/badges/:id", admin.DeleteBadge)

		adminRoutes.GET("/events", admin.ListEvents)
		adminRoutes.POST("/events", admin.CreateEvent)
		adminRoutes.PATCH("/events/:id", admin.UpdateEvent)
		adminRoutes.DELETE("/events/:id", admin.DeleteEvent)

		adminRoutes.GET("/settings", admin.GetSettings)
		adminRoutes.PUT("/settings", admin.UpdateSetting)

		adminRoutes.POST("/xp-adjustments", admin.AdjustUserXP)
		adminRoutes.POST("/leaderboards/rebuild", admin.ForceLeaderboardRebuild)
		adminRoutes.GET("/stats", admin.GetSystemStats)
		adminRoutes.GET("/audit-log", admin.GetAuditLog)
	}
}
