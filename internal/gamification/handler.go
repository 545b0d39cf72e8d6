package gamification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiejeevan/gsale-backend/internal/badge"
	"github.com/tiejeevan/gsale-backend/internal/identity"
	"github.com/tiejeevan/gsale-backend/internal/notify"
	"github.com/tiejeevan/gsale-backend/internal/profile"
	"github.com/tiejeevan/gsale-backend/internal/settings"
	"github.com/tiejeevan/gsale-backend/internal/xp"
)

// 路由层注入的通知端口，未注入时退化为无操作
var handlerNotifier notify.Notifier = notify.Nop{}

// SetNotifier 设置HTTP入口使用的通知端口
func SetNotifier(n notify.Notifier) {
	if n != nil {
		handlerNotifier = n
	}
}

// ProfileResponse 是 GET /api/gamification/profile 的响应体
type ProfileResponse struct {
	UserID       string             `json:"userId"`
	TotalXP      int                `json:"totalXp"`
	CurrentLevel int                `json:"currentLevel"`
	NextLevelXP  int                `json:"nextLevelXp"`
	Reputation   int                `json:"reputationScore"`
	RepLevel     string             `json:"reputationLevel"`
	Streak       int                `json:"currentStreak"`
	Badges       []badge.OwnedBadge `json:"badges"`
	RecentXP     []xp.XPTransaction `json:"recentXp"`
}

// GetMyProfile 处理 GET /api/gamification/profile
// 返回当前用户的游戏化档案：等级、积分、徽章和最近的XP流水。
// 尚无档案的用户返回1级0分的空档案。
func GetMyProfile(c *gin.Context) {
	userID := identity.UserID(c)

	resp := ProfileResponse{
		UserID:       userID,
		CurrentLevel: 1,
		NextLevelXP:  xp.XPThresholdForLevel(2),
		RepLevel:     "Beginner",
		Badges:       []badge.OwnedBadge{},
		RecentXP:     []xp.XPTransaction{},
	}

	if userProfile, err := profile.Get(userID); err == nil && userProfile != nil {
		resp.TotalXP = userProfile.TotalXP
		resp.CurrentLevel = userProfile.CurrentLevel
		resp.NextLevelXP = xp.XPThresholdForLevel(userProfile.CurrentLevel + 1)
		resp.Reputation = userProfile.ReputationScore
		resp.RepLevel = userProfile.ReputationLevel
		resp.Streak = userProfile.CurrentStreak
	}

	if owned, err := badge.GetUserBadges(userID); err == nil {
		resp.Badges = owned
	}
	if recent, err := xp.History(userID, 10, 0); err == nil {
		resp.RecentXP = recent
	}

	c.JSON(http.StatusOK, resp)
}

// ClaimDailyBonusHandler 处理 POST /api/gamification/daily-bonus
// 当天已领取或功能关闭时 claimed 为 false，不视为错误。
func ClaimDailyBonusHandler(c *gin.Context) {
	userID := identity.UserID(c)

	if !settings.IsFeatureEnabled(settings.FeatureXP) {
		c.JSON(http.StatusOK, gin.H{"claimed": false})
		return
	}

	result := ClaimDailyBonus(userID, handlerNotifier)
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"claimed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claimed": true,
		"result":  result,
	})
}
