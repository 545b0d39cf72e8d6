package leaderboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tiejeevan/gsale-backend/internal/identity"
	"github.com/tiejeevan/gsale-backend/internal/settings"
)

// GetLeaderboardByType 返回某个榜的前N名，附带当前用户自己的名次。
// 排行榜功能关闭时返回空榜单。
func GetLeaderboardByType(c *gin.Context) {
	lbType := c.Param("type")
	if !ValidType(lbType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的排行榜类型: " + lbType})
		return
	}

	if !settings.IsFeatureEnabled(settings.FeatureLeaderboards) {
		c.JSON(http.StatusOK, gin.H{"entries": []LeaderboardEntry{}, "myRank": nil})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := GetLeaderboard(lbType, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜失败"})
		return
	}

	var myRank *LeaderboardEntry
	if userID := identity.UserID(c); userID != "" {
		myRank, err = GetUserRank(userID, lbType)
		if err != nil {
			// 自己的名次查询失败不影响榜单主体
			myRank = nil
		}
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "myRank": myRank})
}
