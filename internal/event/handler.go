package event

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tiejeevan/gsale-backend/internal/settings"
)

// GetActive 返回当前生效的活动列表。
// 赛季活动功能关闭时返回空列表，而不是错误。
func GetActive(c *gin.Context) {
	if !settings.IsFeatureEnabled(settings.FeatureSeasonalEvents) {
		c.JSON(http.StatusOK, gin.H{"events": []SeasonalEvent{}})
		return
	}

	rows, err := GetActiveEvents(time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取活动列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": rows})
}
